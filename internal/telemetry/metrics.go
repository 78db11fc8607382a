// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jeranaias/chatfeed/internal/anchor"
	"github.com/jeranaias/chatfeed/internal/logging"
)

const namespace = "chatfeed"

// Metrics holds the feed collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	corrections *prometheus.CounterVec
	deltas      *prometheus.HistogramVec
	dropped     *prometheus.CounterVec
	pages       prometheus.Counter
	pageSize    prometheus.Histogram
	pageLatency prometheus.Histogram
	switches    prometheus.Counter
}

var _ anchor.Recorder = (*Metrics)(nil)

// New creates and registers the collectors. Go runtime and process
// collectors are included.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		corrections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scroll_corrections_total",
			Help:      "Scroll corrections applied after content growth, by anchor mode.",
		}, []string{"mode"}),
		deltas: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scroll_growth_lines",
			Help:      "Content height change per correction, in lines.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500},
		}, []string{"mode"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_events_dropped_total",
			Help:      "Timer and growth events discarded because their generation ended.",
		}, []string{"kind"}),
		pages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_pages_loaded_total",
			Help:      "Older history pages loaded into the feed.",
		}),
		pageSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "history_page_messages",
			Help:      "Messages per loaded history page.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
		pageLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "history_page_seconds",
			Help:      "Time to load a history page from the store.",
			Buckets:   prometheus.DefBuckets,
		}),
		switches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversation_switches_total",
			Help:      "Conversation changes handled by the feed.",
		}),
	}
	m.registry.MustRegister(
		m.corrections, m.deltas, m.dropped,
		m.pages, m.pageSize, m.pageLatency, m.switches,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Correction implements anchor.Recorder.
func (m *Metrics) Correction(mode anchor.Mode, delta int) {
	label := mode.String()
	m.corrections.WithLabelValues(label).Inc()
	if delta < 0 {
		delta = -delta
	}
	m.deltas.WithLabelValues(label).Observe(float64(delta))
}

// Dropped implements anchor.Recorder.
func (m *Metrics) Dropped(kind string) {
	m.dropped.WithLabelValues(kind).Inc()
}

// PageLoaded records one history page.
func (m *Metrics) PageLoaded(messages int, took time.Duration) {
	m.pages.Inc()
	m.pageSize.Observe(float64(messages))
	m.pageLatency.Observe(took.Seconds())
}

// Switched records a conversation change.
func (m *Metrics) Switched() {
	m.switches.Inc()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logging.For("telemetry").Info("metrics listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
