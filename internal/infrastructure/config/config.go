package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix namespaces every environment variable, e.g. FOUNDATION_LOG_LEVEL.
const Prefix = "FOUNDATION"

// Config holds all foundation configuration.
type Config struct {
	Debug bool `default:"false"`
	Log   LogConfig
	Cache CacheConfig
	HTTP  HTTPConfig

	// Values carries the raw settings of an optional config file.
	Values Values `ignored:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Name  string `default:"foundation"`
	File  string
	Level string `default:"warn"`
}

// CacheConfig holds response cache configuration.
type CacheConfig struct {
	Dir string        // empty selects a directory under os.TempDir()
	TTL time.Duration `default:"5m"`
}

// HTTPConfig holds the transport baseline.
type HTTPConfig struct {
	Timeout   time.Duration `default:"30s"`
	IPResolve string        `split_words:"true" default:"v4"`
	UserAgent string        `split_words:"true" default:"AgentOS-Foundation/1.0"`
	Verify    bool          `default:"true"`
	Proxy     string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Values = Values{}
	return &cfg, nil
}

// LoadFile loads the environment and then overlays a YAML or TOML file.
// Keys present in the file win over the environment.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	values, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(values); err != nil {
		return nil, fmt.Errorf("failed to apply %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Debug: false,
		Log: LogConfig{
			Name:  "foundation",
			Level: "warn",
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			IPResolve: "v4",
			UserAgent: "AgentOS-Foundation/1.0",
			Verify:    true,
		},
		Values: Values{},
	}
}

// Apply copies the recognised keys of v onto the typed fields and keeps v
// as the raw settings.
func (c *Config) Apply(v Values) error {
	var err error
	c.Debug = v.Bool("debug", c.Debug)
	c.Log.Name = v.String("log.name", c.Log.Name)
	c.Log.File = v.String("log.file", c.Log.File)
	c.Log.Level = v.String("log.level", c.Log.Level)
	c.Cache.Dir = v.String("cache.dir", c.Cache.Dir)
	if c.Cache.TTL, err = v.Duration("cache.ttl", c.Cache.TTL); err != nil {
		return err
	}
	if c.HTTP.Timeout, err = v.Duration("http.timeout", c.HTTP.Timeout); err != nil {
		return err
	}
	c.HTTP.IPResolve = v.String("http.ip_resolve", c.HTTP.IPResolve)
	c.HTTP.UserAgent = v.String("http.user_agent", c.HTTP.UserAgent)
	c.HTTP.Verify = v.Bool("http.verify", c.HTTP.Verify)
	c.HTTP.Proxy = v.String("http.proxy", c.HTTP.Proxy)
	c.Values = v
	return nil
}

// Get looks up a dotted key in the raw settings.
func (c *Config) Get(key string, def interface{}) interface{} {
	return c.Values.Get(key, def)
}
