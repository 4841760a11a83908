package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/GriffinCanCode/AgentOS/foundation/internal/foundation"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/middleware"
	"github.com/spf13/cobra"
)

// Version is reported by the version subcommand.
var Version = "dev"

type globalOptions struct {
	cfgPath   string
	debug     bool
	headers   []string
	timeout   time.Duration
	insecure  bool
	ipResolve string
	output    string
	metrics   bool
	cache     bool
	rate      float64
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "foundation",
		Short:         "Send HTTP requests through the foundation client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fs := root.PersistentFlags()
	fs.StringVarP(&opts.cfgPath, "config", "c", "", "config file (yaml or toml)")
	fs.BoolVar(&opts.debug, "debug", false, "log requests and responses")
	fs.StringArrayVarP(&opts.headers, "header", "H", nil, `request header "Name: value" (repeatable)`)
	fs.DurationVar(&opts.timeout, "timeout", 0, "request timeout (overrides config)")
	fs.BoolVarP(&opts.insecure, "insecure", "k", false, "skip TLS verification")
	fs.StringVar(&opts.ipResolve, "ip-resolve", "", "address family: v4, v6 or any")
	fs.StringVarP(&opts.output, "output", "o", "", "write the body to a file")
	fs.BoolVar(&opts.metrics, "metrics", false, "print client metrics to stderr")
	fs.BoolVar(&opts.cache, "cache", false, "serve repeated GETs from the response cache")
	fs.Float64Var(&opts.rate, "rate", 0, "requests per second per host (0 disables)")

	root.AddCommand(
		newGetCmd(opts),
		newDeleteCmd(opts),
		newPostCmd(opts),
		newJSONCmd(opts),
		newUploadCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), Version)
			return err
		},
	}
}

// loadConfig reads the config file or the environment, then applies flags.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.cfgPath != "" {
		cfg, err = config.LoadFile(o.cfgPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if o.debug {
		cfg.Debug = true
	}
	if o.timeout > 0 {
		cfg.HTTP.Timeout = o.timeout
	}
	if o.insecure {
		cfg.HTTP.Verify = false
	}
	if o.ipResolve != "" {
		cfg.HTTP.IPResolve = o.ipResolve
	}
	return cfg, nil
}

// container builds the foundation container and installs the middleware the
// flags ask for. Request IDs and metrics are always on.
func (o *globalOptions) container() (*foundation.Container, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	c, err := foundation.New(cfg)
	if err != nil {
		return nil, err
	}

	exec := c.HTTP()
	exec.UseNamed("request-id", middleware.RequestID(""))
	exec.UseNamed("metrics", middleware.Metrics(c.Metrics()))

	for _, raw := range o.headers {
		name, value, err := parseHeader(raw)
		if err != nil {
			c.Close()
			return nil, err
		}
		exec.UseNamed("header:"+name, middleware.Header(name, value, true))
	}

	if o.rate > 0 {
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = o.rate
		rl.Metrics = c.Metrics()
		exec.UseNamed("rate-limit", middleware.RateLimit(rl))
	}

	if o.cache {
		exec.UseNamed("cache", middleware.Cache(middleware.CacheConfig{
			Store:   c.Cache(),
			TTL:     cfg.Cache.TTL,
			Metrics: c.Metrics(),
		}))
	}
	return c, nil
}

func parseHeader(raw string) (string, string, error) {
	name, value, ok := strings.Cut(raw, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid header %q, want \"Name: value\"", raw)
	}
	return name, strings.TrimSpace(value), nil
}

// parsePairs turns ["a=1", "b=2"] into a map.
func parsePairs(flag string, pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --%s value %q, want key=value", flag, p)
		}
		out[k] = v
	}
	return out, nil
}
