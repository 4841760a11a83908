package http

import (
	"github.com/GriffinCanCode/AgentOS/foundation/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/client"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/requests"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/transport"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/service"
	"go.uber.org/zap"
)

// Binding names contributed by the provider.
const (
	ServiceName      = "http"
	ServiceDefaults  = "http.defaults"
	ServiceTransport = "http.transport"
)

// Provider binds the request executor, its defaults and its transport.
type Provider struct {
	cfg         config.HTTPConfig
	transport   client.Transport
	logger      *zap.Logger
	middlewares []client.Layer
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithTransport replaces the default resty transport.
func WithTransport(t client.Transport) ProviderOption {
	return func(p *Provider) { p.transport = t }
}

// WithLogger pins the executor logger.
func WithLogger(l *zap.Logger) ProviderOption {
	return func(p *Provider) { p.logger = l }
}

// WithMiddleware registers a named layer on the executor, in call order.
func WithMiddleware(name string, m client.Middleware) ProviderOption {
	return func(p *Provider) {
		p.middlewares = append(p.middlewares, client.Layer{Name: name, Middleware: m})
	}
}

// NewProvider creates the HTTP provider for cfg.
func NewProvider(cfg config.HTTPConfig, opts ...ProviderOption) *Provider {
	p := &Provider{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Name implements service.Provider.
func (p *Provider) Name() string {
	return ServiceName
}

// Register implements service.Provider.
func (p *Provider) Register(r *service.Registry) error {
	defaults := client.NewDefaults(Baseline(p.cfg))

	tr := p.transport
	if tr == nil {
		tr = transport.New(
			transport.WithTimeout(p.cfg.Timeout),
			transport.WithUserAgent(p.cfg.UserAgent),
		)
	}

	opts := []requests.Option{
		requests.WithDefaults(defaults),
		requests.WithTransport(tr),
	}
	if p.logger != nil {
		opts = append(opts, requests.WithLogger(p.logger))
	}
	exec := requests.New(opts...)
	for _, layer := range p.middlewares {
		exec.UseNamed(layer.Name, layer.Middleware)
	}

	if err := r.Bind(ServiceDefaults, defaults); err != nil {
		return err
	}
	if err := r.Bind(ServiceTransport, tr); err != nil {
		return err
	}
	return r.Bind(ServiceName, exec)
}

// Baseline turns the HTTP configuration into baseline request options. It
// starts from the process baseline, so IPv4 stays forced unless configured
// otherwise.
func Baseline(cfg config.HTTPConfig) client.Options {
	sub := client.Options{}
	if cfg.IPResolve != "" {
		sub[client.KeyIPResolve] = cfg.IPResolve
	}
	if cfg.Timeout > 0 {
		sub[client.KeyTimeout] = cfg.Timeout
	}
	if cfg.UserAgent != "" {
		sub[client.KeyUserAgent] = cfg.UserAgent
	}
	if !cfg.Verify {
		sub[client.KeyVerify] = false
	}
	if cfg.Proxy != "" {
		sub[client.KeyProxy] = cfg.Proxy
	}
	return client.Merge(client.BaselineOptions(), client.Options{client.KeyTransport: sub})
}
