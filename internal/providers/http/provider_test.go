package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/GriffinCanCode/AgentOS/foundation/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/client"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/requests"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/transport"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseline(t *testing.T) {
	cfg := config.Default().HTTP
	opts := Baseline(cfg)

	sub := opts.Sub(client.KeyTransport)
	assert.Equal(t, client.IPResolveV4, sub[client.KeyIPResolve])
	assert.Equal(t, 30*time.Second, sub[client.KeyTimeout])
	assert.Equal(t, "AgentOS-Foundation/1.0", sub[client.KeyUserAgent])
	assert.NotContains(t, sub, client.KeyVerify)
	assert.NotContains(t, sub, client.KeyProxy)

	cfg.IPResolve = client.IPResolveAny
	cfg.Verify = false
	cfg.Proxy = "http://proxy.local:3128"
	sub = Baseline(cfg).Sub(client.KeyTransport)
	assert.Equal(t, client.IPResolveAny, sub[client.KeyIPResolve])
	assert.Equal(t, false, sub[client.KeyVerify])
	assert.Equal(t, "http://proxy.local:3128", sub[client.KeyProxy])
}

func TestProviderRegister(t *testing.T) {
	var seen client.Options
	stub := client.TransportFunc(func(ctx context.Context, method, url string, opts client.Options) (*client.Response, error) {
		seen = opts
		return client.NewResponse(http.StatusOK, "OK", http.Header{}, nil), nil
	})
	var order []string
	mark := func(name string) client.Middleware {
		return client.MiddlewareFunc(func(next client.Handler) client.Handler {
			return func(ctx context.Context, method, url string, opts client.Options) (*client.Response, error) {
				order = append(order, name)
				return next(ctx, method, url, opts)
			}
		})
	}

	r := service.NewRegistry()
	p := NewProvider(config.Default().HTTP,
		WithTransport(stub),
		WithMiddleware("first", mark("first")),
		WithMiddleware("second", mark("second")),
	)
	require.NoError(t, r.Register(p))

	exec, err := service.Resolve[*requests.Executor](r, ServiceName)
	require.NoError(t, err)
	defaults, err := service.Resolve[*client.Defaults](r, ServiceDefaults)
	require.NoError(t, err)
	tr, err := service.Resolve[client.Transport](r, ServiceTransport)
	require.NoError(t, err)

	assert.Same(t, defaults, exec.Defaults())
	assert.NotNil(t, tr)

	_, err = exec.Get(context.Background(), "http://example.test/", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, client.IPResolveV4, seen.Sub(client.KeyTransport)[client.KeyIPResolve])
}

func TestProviderDefaultTransport(t *testing.T) {
	r := service.NewRegistry()
	require.NoError(t, r.Register(NewProvider(config.Default().HTTP)))

	tr, err := service.Resolve[client.Transport](r, ServiceTransport)
	require.NoError(t, err)
	assert.IsType(t, &transport.Resty{}, tr)
}
