package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scan rejection reasons used as label values.
const (
	ReasonCooldown        = "cooldown"
	ReasonUnknownDustbin  = "unknown_dustbin"
	ReasonUnknownIdentity = "unknown_identity"
	ReasonInvalid         = "invalid"
	ReasonStoreFailure    = "store_failure"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	ScansCredited  prometheus.Counter
	ScansRejected  *prometheus.CounterVec
	PointsAwarded  prometheus.Counter
	CreditLatency  prometheus.Histogram
	UsersCreated   prometheus.Counter
	Logins         *prometheus.CounterVec
	UsersDeleted   prometheus.Counter
	AuditPublishes *prometheus.CounterVec
}

// New creates and registers all metrics on a private registry, so tests can
// build as many instances as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ScansCredited: f.NewCounter(prometheus.CounterOpts{
			Name: "smartbin_scans_credited_total",
			Help: "Scans that awarded points",
		}),
		ScansRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "smartbin_scans_rejected_total",
			Help: "Scans that awarded nothing, by reason",
		}, []string{"reason"}),
		PointsAwarded: f.NewCounter(prometheus.CounterOpts{
			Name: "smartbin_points_awarded_total",
			Help: "Total reward points credited",
		}),
		CreditLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "smartbin_credit_duration_seconds",
			Help:    "Time spent inside the ledger critical section",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		UsersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "smartbin_users_created_total",
			Help: "Total number of identities created",
		}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "smartbin_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		UsersDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "smartbin_users_deleted_total",
			Help: "Identities removed by administrators",
		}),
		AuditPublishes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "smartbin_audit_publish_total",
			Help: "Audit emits by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementScanCredited(points int) {
	m.ScansCredited.Inc()
	m.PointsAwarded.Add(float64(points))
}

func (m *Metrics) IncrementScanRejected(reason string) {
	m.ScansRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveCreditLatency(seconds float64) {
	m.CreditLatency.Observe(seconds)
}

func (m *Metrics) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}

func (m *Metrics) IncrementLogin(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementUsersDeleted() {
	m.UsersDeleted.Inc()
}

func (m *Metrics) IncrementAuditPublish(ok bool) {
	outcome := "error"
	if ok {
		outcome = "ok"
	}
	m.AuditPublishes.WithLabelValues(outcome).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests that gather directly.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
