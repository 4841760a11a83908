package foundation

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/GriffinCanCode/AgentOS/foundation/internal/infrastructure/cache"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/infrastructure/config"
	httpprovider "github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/client"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type greeter struct{ greeting string }

type greeterProvider struct{ name string }

func (p greeterProvider) Name() string { return p.name }

func (p greeterProvider) Register(r *service.Registry) error {
	return r.Bind(p.name, &greeter{greeting: "hello"})
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "cache")
	return cfg
}

func stubTransport(calls *int) client.Transport {
	return client.TransportFunc(func(ctx context.Context, method, url string, opts client.Options) (*client.Response, error) {
		*calls++
		return client.NewResponse(http.StatusOK, "", http.Header{}, []byte("ok")), nil
	})
}

func TestNewRegistersBaseServices(t *testing.T) {
	c, err := New(testConfig(t), WithCache(cache.NewMemory()))
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, []string{"config", "logger", "cache", "metrics", "http"}, c.Providers())
	assert.NotEmpty(t, c.ID())
	assert.NotNil(t, c.HTTP())
	assert.NotNil(t, c.Metrics())

	cfg, err := Resolve[*config.Config](c, ServiceConfig)
	require.NoError(t, err)
	assert.Same(t, c.Config(), cfg)
}

func TestNewDefaultsToFilesystemCache(t *testing.T) {
	cfg := testConfig(t)
	c, err := New(cfg)
	require.NoError(t, err)
	defer c.Close()

	fsc, ok := c.Cache().(*cache.Filesystem)
	require.True(t, ok)
	assert.Equal(t, cfg.Cache.Dir, fsc.Dir())
	assert.DirExists(t, cfg.Cache.Dir)
}

func TestProvidersRunInOrder(t *testing.T) {
	c, err := New(testConfig(t),
		WithCache(cache.NewMemory()),
		WithProvider(greeterProvider{name: "greeter"}),
		WithProvider(greeterProvider{name: "greeter.alt"}),
	)
	require.NoError(t, err)
	defer c.Close()

	providers := c.Providers()
	assert.Equal(t, []string{"greeter", "greeter.alt"}, providers[len(providers)-2:])

	g, err := Resolve[*greeter](c, "greeter")
	require.NoError(t, err)
	assert.Equal(t, "hello", g.greeting)

	_, err = Resolve[*greeter](c, ServiceCache)
	assert.Error(t, err)
}

func TestDuplicateProviderRejected(t *testing.T) {
	_, err := New(testConfig(t),
		WithCache(cache.NewMemory()),
		WithProvider(greeterProvider{name: "http"}),
	)
	assert.ErrorContains(t, err, "already registered")
}

func TestDefaultsFollowConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTP.UserAgent = "agent-test/1.0"
	cfg.HTTP.Verify = false

	c, err := New(cfg, WithCache(cache.NewMemory()))
	require.NoError(t, err)
	defer c.Close()

	sub := c.Defaults().Get().Sub(client.KeyTransport)
	assert.Equal(t, client.IPResolveV4, sub[client.KeyIPResolve])
	assert.Equal(t, "agent-test/1.0", sub[client.KeyUserAgent])
	assert.Equal(t, false, sub[client.KeyVerify])
	assert.Equal(t, cfg.HTTP.Timeout, sub[client.KeyTimeout])
}

func TestDebugLoggingThroughContainer(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	cfg := testConfig(t)
	cfg.Debug = true

	var calls int
	c, err := New(cfg,
		WithCache(cache.NewMemory()),
		WithLogCore(core),
		WithHTTP(httpprovider.WithTransport(stubTransport(&calls))),
	)
	require.NoError(t, err)
	defer c.Close()

	before := logs.Len()
	resp, err := c.HTTP().Post(context.Background(), "/login", map[string]string{"user": "a"})
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "ok", resp.Body.String())
	assert.Equal(t, 1, calls)

	entries := logs.All()[before:]
	require.Len(t, entries, 2)
	assert.Equal(t, "Client Request:", entries[0].Message)
	assert.Equal(t, "API response:", entries[1].Message)
}

func TestLoggerIsNopWithoutDebug(t *testing.T) {
	c, err := New(testConfig(t), WithCache(cache.NewMemory()))
	require.NoError(t, err)
	defer c.Close()

	assert.False(t, c.Logger().Core().Enabled(zap.DebugLevel))
}

func TestLoggerFileSink(t *testing.T) {
	cfg := testConfig(t)
	cfg.Debug = true
	cfg.Log.File = filepath.Join(t.TempDir(), "foundation.log")

	c, err := New(cfg, WithCache(cache.NewMemory()))
	require.NoError(t, err)
	defer c.Close()

	assert.True(t, c.Logger().Core().Enabled(zap.WarnLevel))
	assert.False(t, c.Logger().Core().Enabled(zap.InfoLevel), "file sink defaults to warn")
	assert.FileExists(t, cfg.Log.File)
}

func TestLogCoreIgnoredWithoutDebug(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	var calls int
	c, err := New(testConfig(t),
		WithCache(cache.NewMemory()),
		WithLogCore(core),
		WithHTTP(httpprovider.WithTransport(stubTransport(&calls))),
	)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.HTTP().Get(context.Background(), "/ping", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Zero(t, logs.Len(), "debug off silences even a caller core")
}

type failingCache struct {
	*cache.Memory
	err error
}

func (f failingCache) Close() error { return f.err }

func TestCloseReturnsCacheError(t *testing.T) {
	boom := errors.New("disk gone")
	c, err := New(testConfig(t), WithCache(failingCache{Memory: cache.NewMemory(), err: boom}))
	require.NoError(t, err)

	assert.ErrorIs(t, c.Close(), boom)
}

func TestCloseWithoutError(t *testing.T) {
	c, err := New(testConfig(t))
	require.NoError(t, err)

	assert.NoError(t, c.Close())
}
