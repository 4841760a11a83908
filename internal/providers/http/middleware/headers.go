package middleware

import (
	"context"
	"net/http"

	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/client"
)

// Header sets a request header. Values already present in the options win
// unless overwrite is true.
func Header(name, value string, overwrite bool) client.Middleware {
	return client.MiddlewareFunc(func(next client.Handler) client.Handler {
		return func(ctx context.Context, method, url string, opts client.Options) (*client.Response, error) {
			out, err := withHeader(opts, name, value, overwrite)
			if err != nil {
				return nil, err
			}
			return next(ctx, method, url, out)
		}
	})
}

// UserAgent sets the transport user agent for every request passing through.
func UserAgent(ua string) client.Middleware {
	return client.MiddlewareFunc(func(next client.Handler) client.Handler {
		return func(ctx context.Context, method, url string, opts client.Options) (*client.Response, error) {
			out := client.Merge(opts, client.Options{
				client.KeyTransport: client.Options{client.KeyUserAgent: ua},
			})
			return next(ctx, method, url, out)
		}
	})
}

// withHeader returns a copy of opts whose headers entry is a fresh http.Header.
func withHeader(opts client.Options, name, value string, overwrite bool) (client.Options, error) {
	h, err := headersOf(opts)
	if err != nil {
		return nil, err
	}
	if h.Get(name) != "" && !overwrite {
		return opts, nil
	}
	h.Set(name, value)

	out := opts.Clone()
	out[client.KeyHeaders] = h
	return out, nil
}

// headersOf copies the headers entry of opts into a new http.Header.
func headersOf(opts client.Options) (http.Header, error) {
	values, err := client.Values(opts[client.KeyHeaders])
	if err != nil {
		return nil, client.ConfigurationError(client.KeyHeaders, err)
	}
	h := make(http.Header, len(values))
	for k, vals := range values {
		for _, val := range vals {
			h.Add(k, val)
		}
	}
	return h, nil
}
