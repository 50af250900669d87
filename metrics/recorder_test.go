package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, r *Recorder) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecorderExposesCounters(t *testing.T) {
	r := New()
	r.Tick()
	r.Tick()
	r.Command("attack")
	r.GuardAbort("army-strong-enough")
	r.TreeStatus("army", "running")
	r.StateEntered("avoid injury")
	r.SetControllers(4)
	r.SetArmy(3, 29.1, 70)
	r.Event("first_contact")

	out := scrape(t, r)
	assert.Contains(t, out, "cohort_ticks_total 2")
	assert.Contains(t, out, `cohort_commands_total{kind="attack"} 1`)
	assert.Contains(t, out, `cohort_guard_aborts_total{guard="army-strong-enough"} 1`)
	assert.Contains(t, out, `cohort_tree_status_total{status="running",tree="army"} 1`)
	assert.Contains(t, out, `cohort_state_entries_total{state="avoid injury"} 1`)
	assert.Contains(t, out, "cohort_unit_controllers 4")
	assert.Contains(t, out, "cohort_army_members 3")
	assert.Contains(t, out, "cohort_enemy_strength 70")
	assert.Contains(t, out, `cohort_events_total{kind="first_contact"} 1`)
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Tick()
		r.Command("move")
		r.CommandError()
		r.Event("unit_lost")
		r.GuardAbort("g")
		r.TreeStatus("army", "success")
		r.StateEntered("x")
		r.SetControllers(1)
		r.SetArmy(1, 1, 1)
	})
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
