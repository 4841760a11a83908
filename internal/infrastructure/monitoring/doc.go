/*
Package monitoring provides metrics for outbound client traffic.

# Overview

Metrics wraps Prometheus collectors for request counts, latency, response
size, transport failures, the response cache and the rate limiter. Each
Metrics owns its registry unless built with NewMetricsWith, so several
containers can coexist in one process.

# Usage

	metrics := monitoring.NewMetrics()

	timer := monitoring.NewTimer(metrics, "GET", "api.example.com")
	// ... perform request ...
	timer.Stop("200", 512)

	text, _ := monitoring.Exposition(metrics.Registry())
*/
package monitoring
