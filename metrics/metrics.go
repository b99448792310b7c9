// Package metrics exposes Prometheus metrics for the registry service.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer serves /metrics from its own registry on a dedicated address.
type MetricsServer struct {
	registry *prometheus.Registry
	srv      *http.Server

	Registry *RegistryMetrics
}

// New creates a metrics server with process/Go collectors and the registry
// operation metrics under namespace.
func New(namespace string, listenAddr string) (*MetricsServer, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, err
	}

	registryMetrics, err := NewRegistryMetrics(namespace, reg)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return &MetricsServer{
		registry: reg,
		srv: &http.Server{
			Addr:              listenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		Registry: registryMetrics,
	}, nil
}

func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}

// Gatherer exposes the underlying registry, mostly for tests.
func (m *MetricsServer) Gatherer() prometheus.Gatherer {
	return m.registry
}

// RegistryMetrics counts registry operations by outcome.
type RegistryMetrics struct {
	operations  *prometheus.CounterVec
	nextTokenID prometheus.Gauge
}

// NewRegistryMetrics registers the registry metrics on reg.
func NewRegistryMetrics(namespace string, reg prometheus.Registerer) (*RegistryMetrics, error) {
	m := &RegistryMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "number of registry operations by operation and result",
		}, []string{"operation", "result"}),
		nextTokenID: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "next_token_id",
			Help:      "token id the next mint will assign",
		}),
	}
	if err := reg.Register(m.operations); err != nil {
		return nil, err
	}
	if err := reg.Register(m.nextTokenID); err != nil {
		return nil, err
	}
	return m, nil
}

// ObserveOperation records one operation outcome. Safe on a nil receiver.
func (m *RegistryMetrics) ObserveOperation(operation string, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, result).Inc()
}

// SetNextTokenID records the counter after a mint. Safe on a nil receiver.
func (m *RegistryMetrics) SetNextTokenID(id uint64) {
	if m == nil {
		return
	}
	m.nextTokenID.Set(float64(id))
}
