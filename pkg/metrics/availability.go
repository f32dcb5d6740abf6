package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	CheckResultAvailable   = "available"
	CheckResultUnavailable = "unavailable"
	CheckResultError       = "error"

	LockOutcomeCreated       = "created"
	LockOutcomeConflict      = "conflict"
	LockOutcomeReleased      = "released"
	LockOutcomeReleaseFailed = "release_failed"
	LockOutcomeExpired       = "expired"
)

// AvailabilityMetrics counts availability checks, lock transitions and
// per-date writes.
type AvailabilityMetrics struct {
	checks      *prometheus.CounterVec
	locks       *prometheus.CounterVec
	dateWrites  *prometheus.CounterVec
	syncedDates prometheus.Counter
}

// NewAvailabilityMetrics registers the availability metrics on the provided registerer.
func NewAvailabilityMetrics(reg prometheus.Registerer) *AvailabilityMetrics {
	if reg == nil {
		return &AvailabilityMetrics{}
	}
	checks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "availability_checks_total",
		Help: "Availability checks by verdict.",
	}, []string{"result"})
	locks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reservation_locks_total",
		Help: "Reservation lock transitions by outcome.",
	}, []string{"outcome"})
	dateWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "availability_date_writes_total",
		Help: "Per-date availability upserts by status.",
	}, []string{"status"})
	syncedDates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "availability_synced_dates_total",
		Help: "Dates marked reserved by the availability synchronizer.",
	})
	reg.MustRegister(checks, locks, dateWrites, syncedDates)
	return &AvailabilityMetrics{
		checks:      checks,
		locks:       locks,
		dateWrites:  dateWrites,
		syncedDates: syncedDates,
	}
}

func (m *AvailabilityMetrics) IncCheck(result string) {
	if m == nil || m.checks == nil {
		return
	}
	m.checks.WithLabelValues(label(result)).Inc()
}

func (m *AvailabilityMetrics) IncLock(outcome string) {
	if m == nil || m.locks == nil {
		return
	}
	m.locks.WithLabelValues(label(outcome)).Inc()
}

// AddLocks records n transitions at once, used by expiry sweeps.
func (m *AvailabilityMetrics) AddLocks(outcome string, n int64) {
	if m == nil || m.locks == nil || n <= 0 {
		return
	}
	m.locks.WithLabelValues(label(outcome)).Add(float64(n))
}

func (m *AvailabilityMetrics) IncDateWrite(ok bool) {
	if m == nil || m.dateWrites == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "failed"
	}
	m.dateWrites.WithLabelValues(status).Inc()
}

func (m *AvailabilityMetrics) AddSyncedDates(n int) {
	if m == nil || m.syncedDates == nil || n <= 0 {
		return
	}
	m.syncedDates.Add(float64(n))
}
