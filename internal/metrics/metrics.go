// Package metrics exposes Prometheus counters for content delivery, the
// membership gate, required chat maintenance and broadcasts.
//
// Labels are limited to small fixed sets ("result", "outcome") so series
// cardinality stays bounded. A nil *Metrics is valid and records nothing.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the bot collectors
type Metrics struct {
	deliveries     *prometheus.CounterVec
	gateChecks     *prometheus.CounterVec
	chatsPruned    prometheus.Counter
	requiredChats  prometheus.Gauge
	broadcastSends *prometheus.CounterVec
	broadcastRuns  *prometheus.CounterVec
	rateLimitWaits prometheus.Counter
	linksIssued    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsub_deliveries_total",
				Help: "Archive messages copied to users, by result.",
			},
			[]string{"result"},
		),
		gateChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsub_gate_checks_total",
				Help: "Membership gate evaluations, by outcome.",
			},
			[]string{"outcome"},
		),
		chatsPruned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fsub_required_chats_pruned_total",
				Help: "Required chats removed because they could not be resolved.",
			},
		),
		requiredChats: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "fsub_required_chats",
				Help: "Required chats in the current snapshot.",
			},
		),
		broadcastSends: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsub_broadcast_messages_total",
				Help: "Broadcast deliveries, by result.",
			},
			[]string{"result"},
		),
		broadcastRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsub_broadcast_runs_total",
				Help: "Completed broadcast runs, by outcome.",
			},
			[]string{"outcome"},
		),
		rateLimitWaits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fsub_rate_limit_waits_total",
				Help: "Times the bot slept on a Telegram flood wait.",
			},
		),
		linksIssued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsub_links_issued_total",
				Help: "Deep links generated, by kind.",
			},
			[]string{"kind"},
		),
	}

	reg.MustRegister(
		m.deliveries,
		m.gateChecks,
		m.chatsPruned,
		m.requiredChats,
		m.broadcastSends,
		m.broadcastRuns,
		m.rateLimitWaits,
		m.linksIssued,
	)
	return m
}

// Delivered records one archive message copy attempt
func (m *Metrics) Delivered(ok bool) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(result(ok)).Inc()
}

// GateChecked records a gate decision: "exempt", "passed" or "blocked"
func (m *Metrics) GateChecked(outcome string) {
	if m == nil {
		return
	}
	m.gateChecks.WithLabelValues(outcome).Inc()
}

// ChatPruned records a required chat removed during refresh
func (m *Metrics) ChatPruned() {
	if m == nil {
		return
	}
	m.chatsPruned.Inc()
}

// RequiredChats sets the size of the current snapshot
func (m *Metrics) RequiredChats(n int) {
	if m == nil {
		return
	}
	m.requiredChats.Set(float64(n))
}

// BroadcastSent records one broadcast delivery
func (m *Metrics) BroadcastSent(ok bool) {
	if m == nil {
		return
	}
	m.broadcastSends.WithLabelValues(result(ok)).Inc()
}

// BroadcastFinished records a run outcome: "finished" or "stopped"
func (m *Metrics) BroadcastFinished(outcome string) {
	if m == nil {
		return
	}
	m.broadcastRuns.WithLabelValues(outcome).Inc()
}

// RateLimited records a flood wait
func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimitWaits.Inc()
}

// LinkIssued records a generated link: "single" or "batch"
func (m *Metrics) LinkIssued(kind string) {
	if m == nil {
		return
	}
	m.linksIssued.WithLabelValues(kind).Inc()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// Serve exposes g on addr under /metrics until ctx is done
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
