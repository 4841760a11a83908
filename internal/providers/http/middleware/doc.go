// Package middleware provides ready-made layers for the request executor.
//
// None are installed by default. Register them with Executor.Use or
// Executor.UseNamed; the first registered layer runs outermost.
//
//	exec.UseNamed("request-id", middleware.RequestID(""))
//	exec.UseNamed("metrics", middleware.Metrics(metrics))
//	exec.UseNamed("rate", middleware.RateLimit(middleware.DefaultRateLimitConfig()))
//
// Layers never mutate the options they receive; they pass a modified copy
// downstream.
package middleware
