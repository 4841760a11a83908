package middleware

import (
	"context"
	"net/url"
	"strconv"

	"github.com/GriffinCanCode/AgentOS/foundation/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/client"
)

// Metrics records every request that reaches it.
func Metrics(m *monitoring.Metrics) client.Middleware {
	return client.MiddlewareFunc(func(next client.Handler) client.Handler {
		return func(ctx context.Context, method, rawURL string, opts client.Options) (*client.Response, error) {
			timer := monitoring.NewTimer(m, method, hostOf(rawURL))

			resp, err := next(ctx, method, rawURL, opts)
			if err != nil {
				timer.Fail(errorKind(err))
				return nil, err
			}
			if resp == nil {
				timer.Fail(string(client.KindTransport))
				return nil, nil
			}

			var size int64
			if resp.Body != nil {
				size = int64(resp.Body.Len())
			}
			timer.Stop(strconv.Itoa(resp.StatusCode), size)
			return resp, nil
		}
	})
}

// hostOf keeps label cardinality bounded by dropping path and query.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}

func errorKind(err error) string {
	if kind := client.KindOf(err); kind != "" {
		return string(kind)
	}
	return "other"
}
