// Package config provides 12-factor configuration for the foundation.
//
// Configuration is loaded from environment variables with sensible defaults.
// An optional YAML or TOML file can be overlaid; its keys win and its raw tree
// stays available through dotted-key lookup.
//
// Configuration Sections:
//   - Debug: enables the debug log sink
//   - Log: logger name, file sink and level
//   - Cache: response cache directory and TTL
//   - HTTP: transport baseline (timeout, IP family, user agent, TLS, proxy)
//
// Example Usage:
//
//	cfg, err := config.LoadFile("foundation.yaml")
//	level := cfg.Get("log.level", "warn")
//
// Environment Variables:
//   - FOUNDATION_DEBUG
//   - FOUNDATION_LOG_NAME, FOUNDATION_LOG_FILE, FOUNDATION_LOG_LEVEL
//   - FOUNDATION_CACHE_DIR, FOUNDATION_CACHE_TTL
//   - FOUNDATION_HTTP_TIMEOUT, FOUNDATION_HTTP_IP_RESOLVE,
//     FOUNDATION_HTTP_USER_AGENT, FOUNDATION_HTTP_VERIFY, FOUNDATION_HTTP_PROXY
package config
