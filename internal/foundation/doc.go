// Package foundation assembles the services an API client needs.
//
// A Container holds configuration, a byte cache, a zap logger, Prometheus
// client metrics and the HTTP request executor, each bound under a name in a
// service registry. Callers add their own services through providers:
//
//	c, err := foundation.New(cfg, foundation.WithProvider(myProvider))
//	resp, err := c.HTTP().Get(ctx, "https://api.example.com/ping", nil)
//	svc, err := foundation.Resolve[*MyService](c, "my-service")
package foundation
