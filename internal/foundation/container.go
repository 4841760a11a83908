package foundation

import (
	"fmt"
	"io"

	"github.com/GriffinCanCode/AgentOS/foundation/internal/infrastructure/cache"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/logging"
	httpprovider "github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/client"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/requests"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/service"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/shared/id"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Binding names of the base services.
const (
	ServiceConfig  = "config"
	ServiceCache   = "cache"
	ServiceLogger  = "logger"
	ServiceMetrics = "metrics"
)

// Provider contributes services to a container.
type Provider = service.Provider

// Container wires configuration, cache, logging and the HTTP executor.
type Container struct {
	*service.Registry

	id      id.InstanceID
	cfg     *config.Config
	logger  *logging.Logger
	cache   cache.Cache
	metrics *monitoring.Metrics
}

type options struct {
	providers     []Provider
	cache         cache.Cache
	logCore       zapcore.Core
	httpProviders []httpprovider.ProviderOption
}

// Option configures New.
type Option func(*options)

// WithProvider registers p after the base services. Providers run in the
// order given.
func WithProvider(p Provider) Option {
	return func(o *options) { o.providers = append(o.providers, p) }
}

// WithCache replaces the filesystem cache.
func WithCache(c cache.Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithLogCore sends logs to core instead of the configured sinks.
func WithLogCore(core zapcore.Core) Option {
	return func(o *options) { o.logCore = core }
}

// WithHTTP passes options to the HTTP provider.
func WithHTTP(opts ...httpprovider.ProviderOption) Option {
	return func(o *options) { o.httpProviders = append(o.httpProviders, opts...) }
}

// New builds a container. A nil cfg loads the environment.
//
// Order: logger, config, cache, metrics, HTTP, then caller providers. The
// logger is installed process-wide on first use; later containers keep their
// own logger without replacing the global one.
func New(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		cfg = config.LoadOrDefault()
	}
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	logger, err := newLogger(cfg, o.logCore)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logging.Init(logger)

	c := &Container{
		Registry: service.NewRegistry(),
		id:       id.NewInstanceID(),
		cfg:      cfg,
		logger:   logger,
	}

	store := o.cache
	if store == nil {
		fsc, err := cache.NewFilesystem(cfg.Cache.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache: %w", err)
		}
		store = fsc
	}
	c.cache = store
	c.metrics = monitoring.NewMetrics()

	base := []Provider{
		bindProvider{name: ServiceConfig, value: cfg},
		bindProvider{name: ServiceLogger, value: logger},
		bindProvider{name: ServiceCache, value: store},
		bindProvider{name: ServiceMetrics, value: c.metrics},
		httpprovider.NewProvider(cfg.HTTP, append(
			[]httpprovider.ProviderOption{httpprovider.WithLogger(logger.Logger)},
			o.httpProviders...,
		)...),
	}
	for _, p := range append(base, o.providers...) {
		if err := c.Register(p); err != nil {
			c.Close()
			return nil, err
		}
	}

	logger.Debug("Foundation initialized",
		zap.String("instance", c.id.String()),
		zap.Strings("providers", c.Providers()),
	)
	return c, nil
}

// newLogger picks the sink: nothing unless debug, then a caller core, the log
// file, or stderr.
func newLogger(cfg *config.Config, core zapcore.Core) (*logging.Logger, error) {
	if !cfg.Debug {
		return logging.NewNop(), nil
	}
	if core != nil {
		return logging.NewCore(core, cfg.Log.Name), nil
	}
	level := cfg.Log.Level
	if level == "" {
		level = "warn"
	}
	if cfg.Log.File != "" {
		return logging.NewFile(cfg.Log.File, level, cfg.Log.Name)
	}
	return logging.NewConsole(level, cfg.Log.Name)
}

// ID returns the container instance ID.
func (c *Container) ID() id.InstanceID { return c.id }

// Config returns the configuration.
func (c *Container) Config() *config.Config { return c.cfg }

// Logger returns the container logger.
func (c *Container) Logger() *logging.Logger { return c.logger }

// Cache returns the cache backend.
func (c *Container) Cache() cache.Cache { return c.cache }

// Metrics returns the client metrics.
func (c *Container) Metrics() *monitoring.Metrics { return c.metrics }

// HTTP returns the request executor.
func (c *Container) HTTP() *requests.Executor {
	exec, _ := service.Resolve[*requests.Executor](c.Registry, httpprovider.ServiceName)
	return exec
}

// Defaults returns the executor's baseline registry.
func (c *Container) Defaults() *client.Defaults {
	d, _ := service.Resolve[*client.Defaults](c.Registry, httpprovider.ServiceDefaults)
	return d
}

// Close releases the cache and idle connections and flushes the logger. It
// returns the first error encountered; every step runs regardless.
func (c *Container) Close() error {
	var firstErr error
	if closer, ok := c.cache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close cache: %w", err)
		}
	}
	if v, ok := c.Get(httpprovider.ServiceTransport); ok {
		if idle, ok := v.(interface{ CloseIdleConnections() }); ok {
			idle.CloseIdleConnections()
		}
	}
	_ = c.logger.Sync()
	return firstErr
}

// Resolve returns the service bound under name as a T.
func Resolve[T any](c *Container, name string) (T, error) {
	return service.Resolve[T](c.Registry, name)
}

// bindProvider binds one ready value.
type bindProvider struct {
	name  string
	value interface{}
}

func (b bindProvider) Name() string { return b.name }

func (b bindProvider) Register(r *service.Registry) error {
	return r.Bind(b.name, b.value)
}
