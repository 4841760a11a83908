package middleware

import (
	"context"

	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/client"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/shared/id"
)

// RequestIDHeader is the header used when RequestID is given an empty name.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// ContextWithRequestID pins the ID the RequestID layer will send.
func ContextWithRequestID(ctx context.Context, rid id.RequestID) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// RequestIDFrom returns the request ID carried by ctx.
func RequestIDFrom(ctx context.Context) (id.RequestID, bool) {
	rid, ok := ctx.Value(requestIDKey{}).(id.RequestID)
	return rid, ok
}

// RequestID tags every request with a ULID request ID header. An ID already
// present in the context is reused; a header already present in the options
// is left alone.
func RequestID(header string) client.Middleware {
	if header == "" {
		header = RequestIDHeader
	}
	return client.MiddlewareFunc(func(next client.Handler) client.Handler {
		return func(ctx context.Context, method, url string, opts client.Options) (*client.Response, error) {
			rid, ok := RequestIDFrom(ctx)
			if !ok {
				rid = id.NewRequestID()
				ctx = ContextWithRequestID(ctx, rid)
			}

			out, err := withHeader(opts, header, rid.String(), false)
			if err != nil {
				return nil, err
			}
			return next(ctx, method, url, out)
		}
	})
}
