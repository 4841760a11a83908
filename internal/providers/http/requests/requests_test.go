package requests

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/client"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/files"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// call is one invocation seen by the stub transport.
type call struct {
	method string
	url    string
	opts   client.Options
}

// stub answers every request with a fixed status and body.
type stub struct {
	mu     sync.Mutex
	calls  []call
	status int
	body   string
	err    error
}

func (s *stub) Send(ctx context.Context, method, url string, opts client.Options) (*client.Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, call{method: method, url: url, opts: opts})
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	status := s.status
	if status == 0 {
		status = http.StatusOK
	}
	return client.NewResponse(status, "", http.Header{"Content-Type": {"text/plain"}}, []byte(s.body)), nil
}

func newExecutor(t *testing.T, tr client.Transport, baseline client.Options) (*Executor, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	exec := New(
		WithDefaults(client.NewDefaults(baseline)),
		WithTransport(tr),
		WithLogger(zap.New(core)),
	)
	return exec, logs
}

func TestPostLogin(t *testing.T) {
	tr := &stub{body: "ok"}
	exec, logs := newExecutor(t, tr, client.BaselineOptions())

	resp, err := exec.Post(context.Background(), "/login", map[string]string{"user": "a"})
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "OK", resp.Reason)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Client Request:", entries[0].Message)
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	assert.Equal(t, "API response:", entries[1].Message)

	require.Len(t, tr.calls, 1)
	assert.Equal(t, "POST", tr.calls[0].method)
	assert.Equal(t, map[string]string{"user": "a"}, tr.calls[0].opts[client.KeyForm])
}

func TestGetTwiceLogsIndependentPairs(t *testing.T) {
	tr := &stub{body: "pong"}
	baseline := client.Options{"headers": map[string]string{"Accept": "text/plain"}}
	exec, logs := newExecutor(t, tr, baseline)

	_, err := exec.Get(context.Background(), "/ping", map[string]string{"n": "1"})
	require.NoError(t, err)
	_, err = exec.Get(context.Background(), "/ping", nil)
	require.NoError(t, err)

	entries := logs.FilterMessage("Client Request:").All()
	require.Len(t, entries, 2)
	assert.Len(t, logs.FilterMessage("API response:").All(), 2)

	first := entries[0].ContextMap()["options"].(client.Options)
	second := entries[1].ContextMap()["options"].(client.Options)
	assert.Equal(t, map[string]string{"n": "1"}, first[client.KeyQuery])
	assert.Nil(t, second[client.KeyQuery], "first call's query does not leak")

	assert.NotContains(t, exec.Defaults().Get(), client.KeyQuery)
}

func TestCallSiteOverridesBaseline(t *testing.T) {
	tr := &stub{}
	baseline := client.Options{
		client.KeyTransport: client.Options{client.KeyIPResolve: client.IPResolveV4, client.KeyTimeout: 30},
		client.KeyHeaders:   map[string]string{"X-Base": "1"},
	}
	exec, _ := newExecutor(t, tr, baseline)

	_, err := exec.Request(context.Background(), "get", "/x", client.Options{
		client.KeyTransport: client.Options{client.KeyTimeout: 5},
		client.KeyHeaders:   map[string]string{"X-Call": "2"},
	})
	require.NoError(t, err)

	opts := tr.calls[0].opts
	assert.Equal(t, "GET", tr.calls[0].method, "method is upper-cased")
	assert.Equal(t, client.IPResolveV4, opts.Sub(client.KeyTransport)[client.KeyIPResolve])
	assert.Equal(t, 5, opts.Sub(client.KeyTransport)[client.KeyTimeout])
	assert.Equal(t, client.Options{"X-Base": "1", "X-Call": "2"}, opts[client.KeyHeaders])
}

func TestBaselineQuerySurvivesConvenienceCalls(t *testing.T) {
	tr := &stub{}
	baseline := client.Options{
		client.KeyQuery:   map[string]string{"api_key": "k"},
		client.KeyHeaders: map[string]string{"Authorization": "Bearer t"},
	}
	exec, _ := newExecutor(t, tr, baseline)

	_, err := exec.Get(context.Background(), "/x", map[string]string{"n": "1"})
	require.NoError(t, err)
	_, err = exec.Get(context.Background(), "/z", nil)
	require.NoError(t, err)
	_, err = exec.Delete(context.Background(), "/d", map[string]string{"api_key": "other"})
	require.NoError(t, err)

	require.Len(t, tr.calls, 3)
	assert.Equal(t, client.Options{"api_key": "k", "n": "1"}, tr.calls[0].opts[client.KeyQuery])
	assert.Equal(t, client.Options{"api_key": "k"}, tr.calls[1].opts[client.KeyQuery])
	assert.Equal(t, client.Options{"api_key": "other"}, tr.calls[2].opts[client.KeyQuery], "call site wins per key")
	for _, call := range tr.calls {
		assert.Equal(t, map[string]string{"Authorization": "Bearer t"}, call.opts[client.KeyHeaders])
	}
	assert.Equal(t, map[string]string{"api_key": "k"}, exec.Defaults().Get()[client.KeyQuery])
}

func TestBodySnapshotMatchesReturnedBody(t *testing.T) {
	tr := &stub{body: `{"items":[1,2,3]}`}
	exec, logs := newExecutor(t, tr, nil)

	resp, err := exec.JSON(context.Background(), "/items", map[string]int{"n": 3})
	require.NoError(t, err)

	logged := logs.FilterMessage("API response:").All()[0].ContextMap()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, logged["Body"], string(data))
	assert.EqualValues(t, 200, logged["Status"])
	assert.Equal(t, "OK", logged["Reason"])
}

func TestTransportErrorStillLogsRequest(t *testing.T) {
	cause := client.TransportError("GET", "/down", errors.New("connection refused"))
	tr := &stub{err: cause}
	exec, logs := newExecutor(t, tr, nil)

	resp, err := exec.Get(context.Background(), "/down", nil)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, client.ErrTransport)

	assert.Len(t, logs.FilterMessage("Client Request:").All(), 1)
	assert.Empty(t, logs.FilterMessage("API response:").All())
}

func TestNonSuccessIsNotAnError(t *testing.T) {
	tr := &stub{status: http.StatusNotFound, body: "nope"}
	exec, _ := newExecutor(t, tr, nil)

	resp, err := exec.Delete(context.Background(), "/gone", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "DELETE", tr.calls[0].method)
}

func TestConvenienceShapes(t *testing.T) {
	tr := &stub{}
	exec, _ := newExecutor(t, tr, nil)
	ctx := context.Background()
	payload := map[string]string{"k": "v"}

	_, _ = exec.JSON(ctx, "/j", payload)
	_, _ = exec.Put(ctx, "/p", payload)
	_, _ = exec.Patch(ctx, "/pa", payload)

	require.Len(t, tr.calls, 3)
	for i, method := range []string{"POST", "PUT", "PATCH"} {
		assert.Equal(t, method, tr.calls[i].method)
		assert.Equal(t, payload, tr.calls[i].opts[client.KeyJSON])
	}
}

func TestMiddlewareOrderAndBaselineHandler(t *testing.T) {
	var trace []string
	layer := func(name string) client.Middleware {
		return client.MiddlewareFunc(func(next client.Handler) client.Handler {
			return func(ctx context.Context, method, url string, opts client.Options) (*client.Response, error) {
				trace = append(trace, name)
				return next(ctx, method, url, opts)
			}
		})
	}

	tr := &stub{}
	exec, _ := newExecutor(t, tr, client.Options{client.KeyHandler: layer("U")})
	exec.Use(layer("A")).UseNamed("b", layer("B")).Use(layer("C"))

	_, err := exec.Get(context.Background(), "/", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C", "U"}, trace)
	assert.NotContains(t, tr.calls[0].opts, client.KeyHandler, "handler never reaches the transport")

	layers := exec.Middlewares()
	require.Len(t, layers, 3)
	assert.Equal(t, "b", layers[1].Name)
}

func TestInvalidBaselineHandlerIgnored(t *testing.T) {
	tr := &stub{body: "fine"}
	exec, _ := newExecutor(t, tr, client.Options{client.KeyHandler: "not callable"})

	resp, err := exec.Get(context.Background(), "/", nil)
	require.NoError(t, err)
	assert.Equal(t, "fine", resp.Body.String())
}

func TestUpload(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b1 := filepath.Join(dir, "b1.txt")
	b2 := filepath.Join(dir, "b2.txt")
	for _, p := range []string{a, b1, b2} {
		require.NoError(t, os.WriteFile(p, []byte(filepath.Base(p)), 0o644))
	}

	tr := &stub{}
	exec, _ := newExecutor(t, tr, nil)

	_, err := exec.Upload(context.Background(), "/upload",
		map[string]string{"v": "2"},
		[]files.FileField{files.File("a", a), files.FileList("b", b1, b2)},
		map[string]string{"x": "1"},
	)
	require.NoError(t, err)

	require.Len(t, tr.calls, 1)
	opts := tr.calls[0].opts
	parts := opts[client.KeyMultipart].([]files.Part)
	assert.Equal(t, []string{"a", "b[]", "b[]", "x"}, files.Names(parts))
	assert.Equal(t, map[string]string{"v": "2"}, opts[client.KeyQuery])
}

func TestUploadMissingFileNeverSends(t *testing.T) {
	tr := &stub{}
	exec, logs := newExecutor(t, tr, nil)

	_, err := exec.Upload(context.Background(), "/upload", nil,
		[]files.FileField{files.File("a", filepath.Join(t.TempDir(), "missing"))}, nil)

	assert.ErrorIs(t, err, client.ErrFileResolution)
	assert.Empty(t, tr.calls)
	assert.Zero(t, logs.Len())
}

func TestLazyDefaultTransport(t *testing.T) {
	built := 0
	exec := New(
		WithDefaults(client.NewDefaults(nil)),
		WithTransportFactory(func() client.Transport {
			built++
			return &stub{}
		}),
	)

	first := exec.Transport()
	second := exec.Transport()
	assert.Same(t, first, second)
	assert.Equal(t, 1, built)

	replacement := &stub{body: "swapped"}
	exec.SetTransport(replacement)
	resp, err := exec.Get(context.Background(), "/", nil)
	require.NoError(t, err)
	assert.Equal(t, "swapped", resp.Body.String())
}

func TestNilResponseIsTransportError(t *testing.T) {
	tr := client.TransportFunc(func(ctx context.Context, method, url string, opts client.Options) (*client.Response, error) {
		return nil, nil
	})
	exec, _ := newExecutor(t, tr, nil)

	_, err := exec.Get(context.Background(), "/", nil)
	assert.ErrorIs(t, err, client.ErrTransport)
}

func TestUsesSharedDefaultsWhenNoneGiven(t *testing.T) {
	exec := New(WithTransport(&stub{}))
	assert.Same(t, client.SharedDefaults(), exec.Defaults())
}

func TestConcurrentRequests(t *testing.T) {
	tr := &stub{body: "ok"}
	exec, logs := newExecutor(t, tr, client.BaselineOptions())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := exec.Get(context.Background(), "/c", nil)
			if assert.NoError(t, err) {
				assert.Equal(t, "ok", resp.Body.String())
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 40, logs.Len())
	assert.Len(t, tr.calls, 20)
}
