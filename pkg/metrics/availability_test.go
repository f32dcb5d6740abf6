package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample gathers reg and returns the series of family name whose labels
// include every pair in labels.
func sample(t *testing.T, reg prometheus.Gatherer, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if hasLabels(metric, labels) {
				return metric
			}
		}
	}
	require.Failf(t, "series not gathered", "%s%v", name, labels)
	return nil
}

func hasLabels(metric *dto.Metric, want map[string]string) bool {
	matched := 0
	for _, pair := range metric.GetLabel() {
		if value, ok := want[pair.GetName()]; ok && value == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}

func TestAvailabilityMetricsCountsByLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAvailabilityMetrics(reg)

	m.IncCheck(CheckResultAvailable)
	m.IncCheck(CheckResultAvailable)
	m.IncCheck(CheckResultUnavailable)
	m.IncLock(LockOutcomeCreated)
	m.AddLocks(LockOutcomeExpired, 3)
	m.AddLocks(LockOutcomeExpired, 0)
	m.IncDateWrite(true)
	m.IncDateWrite(false)
	m.AddSyncedDates(4)

	cases := []struct {
		family, label, value string
		want                 float64
	}{
		{"availability_checks_total", "result", CheckResultAvailable, 2},
		{"availability_checks_total", "result", CheckResultUnavailable, 1},
		{"reservation_locks_total", "outcome", LockOutcomeCreated, 1},
		{"reservation_locks_total", "outcome", LockOutcomeExpired, 3},
		{"availability_date_writes_total", "status", "ok", 1},
		{"availability_date_writes_total", "status", "failed", 1},
	}
	for _, tc := range cases {
		got := sample(t, reg, tc.family, map[string]string{tc.label: tc.value}).GetCounter().GetValue()
		assert.Equal(t, tc.want, got, "%s{%s=%q}", tc.family, tc.label, tc.value)
	}
	assert.Equal(t, 4.0, sample(t, reg, "availability_synced_dates_total", nil).GetCounter().GetValue())
}

func TestAvailabilityMetricsLabelBlankValuesUnknown(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAvailabilityMetrics(reg)

	m.IncCheck("")
	m.AddLocks("", 2)

	assert.Equal(t, 1.0, sample(t, reg, "availability_checks_total", map[string]string{"result": "unknown"}).GetCounter().GetValue())
	assert.Equal(t, 2.0, sample(t, reg, "reservation_locks_total", map[string]string{"outcome": "unknown"}).GetCounter().GetValue())
}

func TestAvailabilityMetricsNilSafe(t *testing.T) {
	var m *AvailabilityMetrics
	assert.NotPanics(t, func() {
		m.IncCheck(CheckResultError)
		m.IncLock(LockOutcomeConflict)
		m.AddSyncedDates(1)
	})

	unregistered := NewAvailabilityMetrics(nil)
	assert.NotPanics(t, func() {
		unregistered.IncCheck(CheckResultAvailable)
		unregistered.IncDateWrite(true)
	})
}
