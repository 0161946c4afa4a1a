package odoo

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is returned before any network call when an argument or
// configuration value is missing or malformed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "odoo: " + e.Message
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// RemoteError is returned when the transport or the server reports a failure:
// an XML-RPC fault, an unreachable host or a response of unexpected shape.
type RemoteError struct {
	Op    string
	Model string
	Err   error
}

func (e *RemoteError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("odoo: %s on %s: %v", e.Op, e.Model, e.Err)
	}
	return fmt.Sprintf("odoo: %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// ErrAuthenticationFailed is the cause of an AuthenticationError when the
// server answered but rejected the credentials.
var ErrAuthenticationFailed = errors.New("invalid credentials")

// AuthenticationError is returned by Connect. Its message names neither the
// user nor the database, either of which may equal the password.
type AuthenticationError struct {
	Username string
	Database string
	Err      error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("odoo: authentication failed: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// redactedError replaces a cause whose message contained a secret. It does
// not unwrap, so the original message cannot be reached through the chain.
type redactedError struct {
	msg string
}

func (e *redactedError) Error() string { return e.msg }

// redact replaces every occurrence of secret in err's message.
func redact(err error, secret string) error {
	if err == nil || secret == "" || !strings.Contains(err.Error(), secret) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), secret, "***")}
}
