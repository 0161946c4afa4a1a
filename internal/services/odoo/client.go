package odoo

import (
	"errors"
	"fmt"
	"net/http"
	"net/rpc"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/xelth-com/eckodoo/internal/logger"
)

// Client represents an Odoo XML-RPC client.
//
// A Client is safe for concurrent use. Every operation is a single
// request/response round trip; concurrent calls are independent requests and
// their ordering on the server is up to the server.
type Client struct {
	cfg    Config
	dial   Dialer
	logger *logger.Logger

	mu  sync.RWMutex
	uid int64
}

// NewClient validates the options and returns an unconnected client. It does
// not contact the server.
func NewClient(opts ...Option) (*Client, error) {
	s := &settings{}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	cfg, err := s.resolve()
	if err != nil {
		return nil, err
	}

	dial := s.dialer
	if dial == nil {
		transport := s.transport
		if transport == nil {
			transport = http.DefaultTransport
		}
		dial = xmlrpcDialer(transport)
	}

	log := s.logger
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		cfg:    cfg,
		dial:   dial,
		logger: log,
	}, nil
}

// Config returns the resolved configuration with the password cleared.
func (c *Client) Config() Config {
	cfg := c.cfg
	cfg.Password = ""
	return cfg
}

// UID returns the session id from the last successful Connect, or 0.
func (c *Client) UID() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.uid
}

// Connect authenticates with Odoo and returns the user ID.
func (c *Client) Connect() (int64, error) {
	args := []interface{}{c.cfg.Database, c.cfg.Username, c.cfg.Password, map[string]interface{}{}}

	var result interface{}
	err := c.call(c.cfg.commonURL(), "authenticate", "", args, &result)
	if err != nil {
		var fault rpc.ServerError
		if errors.As(err, &fault) {
			return 0, c.authError(redact(err, c.cfg.Password))
		}
		return 0, &RemoteError{Op: "authenticate", Err: redact(err, c.cfg.Password)}
	}

	uid, ok := toInt64(result)
	if !ok || uid <= 0 {
		// Odoo answers false for unknown users and wrong passwords.
		return 0, c.authError(ErrAuthenticationFailed)
	}

	c.mu.Lock()
	c.uid = uid
	c.mu.Unlock()

	c.logger.Debug().Int64("uid", uid).Str("database", c.cfg.Database).Msg("odoo session established")
	return uid, nil
}

func (c *Client) authError(cause error) error {
	c.logger.Warn().
		Str("username", c.scrub(c.cfg.Username)).
		Str("database", c.scrub(c.cfg.Database)).
		Msg("odoo authentication failed")
	return &AuthenticationError{Username: c.cfg.Username, Database: c.cfg.Database, Err: cause}
}

// scrub masks s when it is the password.
func (c *Client) scrub(s string) string {
	if c.cfg.Password != "" && strings.Contains(s, c.cfg.Password) {
		return strings.ReplaceAll(s, c.cfg.Password, "***")
	}
	return s
}

// Version returns the server's version information. It needs no session.
func (c *Client) Version() (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := c.call(c.cfg.commonURL(), "version", "", nil, &result); err != nil {
		return nil, &RemoteError{Op: "version", Err: redact(err, c.cfg.Password)}
	}
	return result, nil
}

// Create creates a new record and returns its ID.
func (c *Client) Create(model string, params map[string]interface{}) (int64, error) {
	if err := validateModel(model); err != nil {
		return 0, err
	}
	if params == nil {
		return 0, invalid("params", "parameters object is required")
	}

	var result interface{}
	if err := c.execute("create", model, "create", []interface{}{params}, nil, &result); err != nil {
		return 0, err
	}

	// Some versions answer a one-element list for a single create.
	if list, ok := result.([]interface{}); ok && len(list) == 1 {
		result = list[0]
	}
	id, ok := toInt64(result)
	if !ok || id <= 0 {
		return 0, unexpected("create", model, result)
	}
	return id, nil
}

// Read reads records by IDs. Without fields every field is returned. IDs that
// do not exist are skipped, so the result may be shorter than ids or empty.
func (c *Client) Read(model string, ids []int64, fields ...string) ([]Record, error) {
	if err := validateModel(model); err != nil {
		return nil, err
	}
	if err := validateIDs(ids); err != nil {
		return nil, err
	}

	var kwargs map[string]interface{}
	if len(fields) > 0 {
		kwargs = map[string]interface{}{"fields": fields}
	}

	var raw []map[string]interface{}
	if err := c.execute("read", model, "read", []interface{}{ids}, kwargs, &raw); err != nil {
		return nil, err
	}
	return toRecords(raw), nil
}

// Update writes params to the record with the given ID.
func (c *Client) Update(model string, id int64, params map[string]interface{}) (bool, error) {
	if err := validateModel(model); err != nil {
		return false, err
	}
	if err := validateIDs([]int64{id}); err != nil {
		return false, err
	}
	if params == nil {
		return false, invalid("params", "parameters object is required")
	}

	var result interface{}
	if err := c.execute("update", model, "write", []interface{}{[]int64{id}, params}, nil, &result); err != nil {
		return false, err
	}
	return asBool("update", model, result)
}

// Delete unlinks the record with the given ID. Whether a non-existent ID
// yields true or a server fault depends on the Odoo version; both are passed
// through as received.
func (c *Client) Delete(model string, id int64) (bool, error) {
	if err := validateModel(model); err != nil {
		return false, err
	}
	if err := validateIDs([]int64{id}); err != nil {
		return false, err
	}

	var result interface{}
	if err := c.execute("delete", model, "unlink", []interface{}{[]int64{id}}, nil, &result); err != nil {
		return false, err
	}
	return asBool("delete", model, result)
}

// Search returns the IDs of records matching domain. A nil domain matches
// every record.
func (c *Client) Search(model string, domain Criteria, opts ...SearchOption) ([]int64, error) {
	if err := validateModel(model); err != nil {
		return nil, err
	}
	params, err := buildSearchParams(opts)
	if err != nil {
		return nil, err
	}

	var ids []int64
	if err := c.execute("search", model, "search", []interface{}{domainTerms(domain)}, params.kwargs(), &ids); err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// SearchRead combines search and read in one call.
func (c *Client) SearchRead(model string, domain Criteria, fields []string, opts ...SearchOption) ([]Record, error) {
	if err := validateModel(model); err != nil {
		return nil, err
	}
	params, err := buildSearchParams(opts)
	if err != nil {
		return nil, err
	}

	kwargs := params.kwargs()
	if len(fields) > 0 {
		kwargs["fields"] = fields
	}

	var raw []map[string]interface{}
	if err := c.execute("searchRead", model, "search_read", []interface{}{domainTerms(domain)}, kwargs, &raw); err != nil {
		return nil, err
	}
	return toRecords(raw), nil
}

// SearchCount returns the number of records matching domain.
func (c *Client) SearchCount(model string, domain Criteria) (int64, error) {
	if err := validateModel(model); err != nil {
		return 0, err
	}

	var result interface{}
	if err := c.execute("searchCount", model, "search_count", []interface{}{domainTerms(domain)}, nil, &result); err != nil {
		return 0, err
	}
	n, ok := toInt64(result)
	if !ok {
		return 0, unexpected("searchCount", model, result)
	}
	return n, nil
}

// FieldsGet describes the model's fields, optionally restricted to the given
// attributes ("string", "type", "required", ...).
func (c *Client) FieldsGet(model string, attributes ...string) (map[string]interface{}, error) {
	if err := validateModel(model); err != nil {
		return nil, err
	}

	var kwargs map[string]interface{}
	if len(attributes) > 0 {
		kwargs = map[string]interface{}{"attributes": attributes}
	}

	var result map[string]interface{}
	if err := c.execute("fieldsGet", model, "fields_get", []interface{}{}, kwargs, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Action calls a record method such as "action_confirm" on the given IDs.
func (c *Client) Action(model, action string, ids ...int64) (interface{}, error) {
	if err := validateModel(model); err != nil {
		return nil, err
	}
	if strings.TrimSpace(action) == "" {
		return nil, invalid("action", "action name is required")
	}
	if err := validateIDs(ids); err != nil {
		return nil, err
	}

	var result interface{}
	if err := c.execute("action", model, action, []interface{}{ids}, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ExecuteKw calls any model method with positional and keyword arguments.
func (c *Client) ExecuteKw(model, method string, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	if err := validateModel(model); err != nil {
		return nil, err
	}
	if strings.TrimSpace(method) == "" {
		return nil, invalid("method", "method name is required")
	}
	if args == nil {
		args = []interface{}{}
	}

	var result interface{}
	if err := c.execute("executeKw", model, method, args, kwargs, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// execute issues execute_kw on the object endpoint.
func (c *Client) execute(op, model, method string, positional []interface{}, kwargs map[string]interface{}, reply interface{}) error {
	args := []interface{}{
		c.cfg.Database,
		c.UID(),
		c.cfg.Password,
		model,
		method,
		positional,
	}
	if len(kwargs) > 0 {
		args = append(args, kwargs)
	}

	if err := c.call(c.cfg.objectURL(), "execute_kw", model+"."+method, args, reply); err != nil {
		return &RemoteError{Op: op, Model: model, Err: redact(err, c.cfg.Password)}
	}
	return nil
}

// call opens a caller for endpoint, issues one call and closes it.
func (c *Client) call(endpoint, method, target string, args []interface{}, reply interface{}) error {
	start := time.Now()

	caller, err := c.dial(endpoint)
	if err != nil {
		return err
	}
	defer caller.Close()

	err = caller.Call(method, args, reply)

	var event *zerolog.Event
	if err != nil {
		event = c.logger.Warn().Err(redact(err, c.cfg.Password))
	} else {
		event = c.logger.Debug()
	}
	event.Str("method", method).
		Str("target", target).
		Dur("took", time.Since(start)).
		Msg("odoo call")

	return err
}

func validateModel(model string) error {
	if strings.TrimSpace(model) == "" {
		return invalid("model", "model name is required")
	}
	return nil
}

func validateIDs(ids []int64) error {
	if len(ids) == 0 {
		return invalid("ids", "record ID is required")
	}
	for _, id := range ids {
		if id <= 0 {
			return invalid("ids", "record ID is required, got %d", id)
		}
	}
	return nil
}

func unexpected(op, model string, v interface{}) error {
	return &RemoteError{Op: op, Model: model, Err: fmt.Errorf("unexpected response %T(%v)", v, v)}
}

// asBool reads a write/unlink answer. Anything but a boolean or an integer is
// a malformed response.
func asBool(op, model string, v interface{}) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	if n, ok := toInt64(v); ok {
		return n != 0, nil
	}
	return false, unexpected(op, model, v)
}
