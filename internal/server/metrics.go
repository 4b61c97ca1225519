package server

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the server's Prometheus collectors against a private
// registry (one per Server instance, so tests can spin up many servers in
// the same process without colliding on the global default registry).
type Metrics struct {
	registry           *prometheus.Registry
	chunkRequests      *prometheus.CounterVec
	bytesServed        prometheus.Counter
	verificationFailed prometheus.Counter
}

// NewMetrics registers and returns the server's collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		chunkRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subfile_chunk_requests_total",
			Help: "Chunk range requests served, by outcome.",
		}, []string{"status"}),
		bytesServed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subfile_bytes_served_total",
			Help: "Total bytes streamed to downloaders.",
		}),
		verificationFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subfile_local_verification_failures_total",
			Help: "Local chunk verification failures observed before a fatal startup abort.",
		}),
	}
	m.registry.MustRegister(m.chunkRequests, m.bytesServed, m.verificationFailed)
	return m
}

func (m *Metrics) recordRequest(status string) {
	if m == nil {
		return
	}
	m.chunkRequests.WithLabelValues(status).Inc()
}

func (m *Metrics) recordBytesServed(n int) {
	if m == nil {
		return
	}
	m.bytesServed.Add(float64(n))
}
