// Package metrics exports diagnostic counts of watched transcripts to
// Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TimelordUK/texlog/internal/logger"
	"github.com/TimelordUK/texlog/pkg/texlog"
)

// Metrics holds the collectors on a private registry
type Metrics struct {
	registry    *prometheus.Registry
	diagnostics *prometheus.GaugeVec
	parses      *prometheus.CounterVec
	lastParse   *prometheus.GaugeVec
}

// New registers the collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		diagnostics: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "texlog_diagnostics",
				Help: "Diagnostics in the latest parse of a transcript by level",
			},
			[]string{"log", "level"},
		),
		parses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "texlog_parses_total",
				Help: "Total parses of a transcript",
			},
			[]string{"log"},
		),
		lastParse: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "texlog_last_parse_timestamp_seconds",
				Help: "Unix time of the latest parse of a transcript",
			},
			[]string{"log"},
		),
	}
}

// Record stores the result of one parse. Every level is set, so a level
// that disappears drops to zero.
func (m *Metrics) Record(path string, diags []texlog.Diagnostic) {
	for level, n := range texlog.Count(diags) {
		m.diagnostics.WithLabelValues(path, level.String()).Set(float64(n))
	}
	m.parses.WithLabelValues(path).Inc()
	m.lastParse.WithLabelValues(path).SetToCurrentTime()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Get(ctx).Infow("metrics server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
