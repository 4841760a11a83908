package client

import "context"

// Transport performs the network exchange for a fully merged set of options.
// Implementations must be safe for concurrent use.
type Transport interface {
	Send(ctx context.Context, method, url string, opts Options) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, method, url string, opts Options) (*Response, error)

// Send implements Transport.
func (f TransportFunc) Send(ctx context.Context, method, url string, opts Options) (*Response, error) {
	return f(ctx, method, url, opts)
}
