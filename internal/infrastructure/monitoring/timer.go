package monitoring

import (
	"time"
)

// Timer measures one outbound request
type Timer struct {
	start   time.Time
	metrics *Metrics
	method  string
	host    string
}

// NewTimer starts a timer and marks the request in flight
func NewTimer(metrics *Metrics, method, host string) *Timer {
	metrics.InFlight.Inc()
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		method:  method,
		host:    host,
	}
}

// Stop records a completed request
func (t *Timer) Stop(status string, respSize int64) time.Duration {
	duration := time.Since(t.start)
	t.metrics.InFlight.Dec()
	t.metrics.RecordRequest(t.method, t.host, status, duration, respSize)
	return duration
}

// Fail records a request that produced no response
func (t *Timer) Fail(kind string) time.Duration {
	duration := time.Since(t.start)
	t.metrics.InFlight.Dec()
	t.metrics.RecordError(t.method, t.host, kind, duration)
	return duration
}
