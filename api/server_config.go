package api

import (
	"log/slog"
	"time"
)

// HTTPServerConfig configures the registry API server and its metrics
// listener.
type HTTPServerConfig struct {
	// ListenAddr serves the registry API (/api/v1/...) and the health routes.
	ListenAddr string

	// MetricsAddr serves /metrics with the registry operation counters.
	// Empty disables the metrics listener.
	MetricsAddr string

	// EnablePprof mounts /debug/pprof on the API listener.
	EnablePprof bool

	Log *slog.Logger

	// DrainDuration is how long Shutdown keeps serving registry requests
	// with /readyz reporting 503 before it stops the API listener.
	DrainDuration time.Duration

	// GracefulShutdownDuration bounds how long in-flight mints and
	// transfers get to finish once the listener stops.
	GracefulShutdownDuration time.Duration

	// ReadTimeout bounds reading a request including its signed body.
	ReadTimeout time.Duration

	WriteTimeout time.Duration
}
