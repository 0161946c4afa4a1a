package odoo

import (
	"fmt"
	"net/http"

	"github.com/kolo/xmlrpc"
)

//go:generate mockgen -source=caller.go -destination=../../mock/caller_mock.go -package=mock

// Caller issues a single XML-RPC method call against one endpoint.
// *xmlrpc.Client satisfies it.
type Caller interface {
	Call(serviceMethod string, args interface{}, reply interface{}) error
	Close() error
}

// Dialer opens a Caller for an endpoint URL such as
// "https://erp.example.com:443/xmlrpc/2/object".
type Dialer func(endpoint string) (Caller, error)

// xmlrpcDialer returns a Dialer backed by kolo/xmlrpc sharing one transport,
// so keep-alive connections are reused across calls.
func xmlrpcDialer(transport http.RoundTripper) Dialer {
	return func(endpoint string) (Caller, error) {
		client, err := xmlrpc.NewClient(endpoint, transport)
		if err != nil {
			return nil, fmt.Errorf("failed to create XML-RPC client: %w", err)
		}
		return client, nil
	}
}
