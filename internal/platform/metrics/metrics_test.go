package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()

	m.IncrementScanCredited(10)
	m.IncrementScanCredited(10)
	m.IncrementScanRejected(ReasonCooldown)
	m.IncrementLogin(false)

	assert.InDelta(t, 2, testutil.ToFloat64(m.ScansCredited), 0)
	assert.InDelta(t, 20, testutil.ToFloat64(m.PointsAwarded), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ScansRejected.WithLabelValues(ReasonCooldown)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Logins.WithLabelValues("failure")), 0)
}

func TestIndependentInstances(t *testing.T) {
	a, b := New(), New()
	a.IncrementUsersCreated()
	assert.InDelta(t, 0, testutil.ToFloat64(b.UsersCreated), 0)
}

func TestHandler(t *testing.T) {
	m := New()
	m.IncrementScanCredited(10)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "smartbin_scans_credited_total 1")
}
