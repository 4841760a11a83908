package requests

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/GriffinCanCode/AgentOS/foundation/internal/logging"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/client"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/files"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/transport"
	"go.uber.org/zap"
)

var errNoResponse = errors.New("handler returned no response")

// Executor dispatches requests through the middleware chain and the transport.
type Executor struct {
	defaults *client.Defaults
	chain    client.Chain
	logger   *zap.Logger

	mu         sync.Mutex
	transport  client.Transport
	newDefault func() client.Transport
}

// Option configures an Executor.
type Option func(*Executor)

// WithDefaults uses d as the baseline instead of the process-wide registry.
func WithDefaults(d *client.Defaults) Option {
	return func(e *Executor) { e.defaults = d }
}

// WithTransport injects the transport up front.
func WithTransport(t client.Transport) Option {
	return func(e *Executor) { e.transport = t }
}

// WithLogger pins the logger. Without it the process-wide logger is looked up
// on every request.
func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithTransportFactory overrides how the lazy default transport is built.
func WithTransportFactory(f func() client.Transport) Option {
	return func(e *Executor) { e.newDefault = f }
}

// New creates an executor.
func New(opts ...Option) *Executor {
	e := &Executor{
		newDefault: func() client.Transport { return transport.New() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.defaults == nil {
		e.defaults = client.SharedDefaults()
	}
	return e
}

// Get sends a GET with query parameters.
func (e *Executor) Get(ctx context.Context, url string, query map[string]string) (*client.Response, error) {
	return e.Request(ctx, "GET", url, client.Options{client.KeyQuery: query})
}

// Post sends a url-encoded form.
func (e *Executor) Post(ctx context.Context, url string, form map[string]string) (*client.Response, error) {
	return e.Request(ctx, "POST", url, client.Options{client.KeyForm: form})
}

// JSON posts body encoded as JSON.
func (e *Executor) JSON(ctx context.Context, url string, body interface{}) (*client.Response, error) {
	return e.Request(ctx, "POST", url, client.Options{client.KeyJSON: body})
}

// Put sends body as JSON with PUT.
func (e *Executor) Put(ctx context.Context, url string, body interface{}) (*client.Response, error) {
	return e.Request(ctx, "PUT", url, client.Options{client.KeyJSON: body})
}

// Patch sends body as JSON with PATCH.
func (e *Executor) Patch(ctx context.Context, url string, body interface{}) (*client.Response, error) {
	return e.Request(ctx, "PATCH", url, client.Options{client.KeyJSON: body})
}

// Delete sends a DELETE with query parameters.
func (e *Executor) Delete(ctx context.Context, url string, query map[string]string) (*client.Response, error) {
	return e.Request(ctx, "DELETE", url, client.Options{client.KeyQuery: query})
}

// Upload posts a multipart body built from files and form fields.
//
// Files are resolved before anything is sent; a missing file fails the call
// without touching the transport.
func (e *Executor) Upload(ctx context.Context, url string, queries map[string]string, fields []files.FileField, form map[string]string) (*client.Response, error) {
	parts, err := files.Build(fields, form)
	if err != nil {
		return nil, err
	}
	defer files.Close(parts)

	return e.Request(ctx, "POST", url, client.Options{
		client.KeyQuery:     queries,
		client.KeyMultipart: parts,
	})
}

// Request is the primitive every convenience method reduces to.
func (e *Executor) Request(ctx context.Context, method, url string, opts client.Options) (*client.Response, error) {
	method = strings.ToUpper(method)

	baseline := e.defaults.Get()
	merged := client.Merge(baseline, opts).Without(client.KeyHandler)

	log := e.log()
	log.Debug("Client Request:",
		zap.String("url", url),
		zap.String("method", method),
		zap.Any("options", loggable(merged)),
	)

	handler := e.chain.Build(e.Transport().Send, baseline)

	resp, err := handler(ctx, method, url, merged)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, client.TransportError(method, url, errNoResponse)
	}
	if resp.Body == nil {
		resp.Body = client.NewBody(nil)
	}

	log.Debug("API response:",
		zap.Int("Status", resp.StatusCode),
		zap.String("Reason", resp.Reason),
		zap.Any("Headers", resp.Header),
		zap.String("Body", resp.Body.String()),
	)

	resp.Body.Rewind()
	return resp, nil
}

// SetTransport replaces the transport for all subsequent calls.
func (e *Executor) SetTransport(t client.Transport) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transport = t
}

// Transport returns the transport, building the default one on first use.
func (e *Executor) Transport() client.Transport {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.transport == nil {
		e.transport = e.newDefault()
	}
	return e.transport
}

// Use appends a middleware.
func (e *Executor) Use(m client.Middleware) *Executor {
	e.chain.Add(m)
	return e
}

// UseNamed appends a named middleware.
func (e *Executor) UseNamed(name string, m client.Middleware) *Executor {
	e.chain.AddNamed(name, m)
	return e
}

// Middlewares returns the registered middlewares in order.
func (e *Executor) Middlewares() []client.Layer {
	return e.chain.List()
}

// Defaults returns the baseline registry in use.
func (e *Executor) Defaults() *client.Defaults {
	return e.defaults
}

func (e *Executor) log() *zap.Logger {
	if e.logger != nil {
		return e.logger
	}
	return logging.L().Logger
}

// loggable replaces multipart parts by their descriptions, since the part
// readers must not be touched before the transport consumes them.
func loggable(opts client.Options) client.Options {
	parts, ok := opts[client.KeyMultipart].([]files.Part)
	if !ok {
		return opts
	}
	out := opts.Clone()
	described := make([]map[string]string, len(parts))
	for i, p := range parts {
		described[i] = map[string]string{
			"name":         p.Name,
			"filename":     p.FileName,
			"content_type": p.ContentType,
		}
	}
	out[client.KeyMultipart] = described
	return out
}
