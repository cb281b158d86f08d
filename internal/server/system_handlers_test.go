package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sportclub/internal/api"
	"sportclub/internal/membership"
	"sportclub/internal/reminder"
	"sportclub/internal/scheduler"
	"sportclub/internal/sweeper"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth_NoChecks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", Health(nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealth_Degraded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", Health(map[string]Check{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp api.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "ok", resp.Checks["postgres"])
	assert.Equal(t, "connection refused", resp.Checks["redis"])
}

type stubSweepStore struct {
	asOf time.Time
}

func (s *stubSweepStore) ListExpiryCandidates(_ context.Context, asOf time.Time) ([]membership.Membership, error) {
	s.asOf = asOf
	return []membership.Membership{{
		ID:        1,
		StartDate: asOf.AddDate(0, 0, -31),
		EndDate:   asOf.AddDate(0, 0, -1),
		Status:    membership.StatusActive,
	}}, nil
}

func (s *stubSweepStore) Expire(context.Context, int, time.Time, string) (bool, error) {
	return true, nil
}

type stubReminderStore struct {
	asOf, endDate time.Time
}

func (s *stubReminderStore) ListReminderCandidates(_ context.Context, asOf, endDate time.Time) ([]membership.ReminderCandidate, error) {
	s.asOf, s.endDate = asOf, endDate
	return nil, nil
}

func (s *stubReminderStore) ClaimReminder(context.Context, int, time.Time) (bool, error) {
	return true, nil
}

func (s *stubReminderStore) ReleaseReminder(context.Context, int, time.Time, *time.Time) error {
	return nil
}

type nopMessenger struct{}

func (nopMessenger) SendTemplate(context.Context, string, string, string, map[string]interface{}) error {
	return nil
}

func setupJobsRouter(sw *stubSweepStore, rs *stubReminderStore) *gin.Engine {
	return setupJobsRouterWith(sw, rs, nil)
}

func setupJobsRouterWith(sw *stubSweepStore, rs *stubReminderStore, host *scheduler.Host) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &JobHandler{
		sweeper:     sweeper.New(sw),
		notifier:    reminder.NewNotifier(rs, nopMessenger{}),
		scheduler:   host,
		location:    time.UTC,
		horizonDays: 3,
	}
	r := gin.New()
	r.GET("/jobs", h.List)
	r.POST("/jobs/sweep", h.Sweep)
	r.POST("/jobs/reminders", h.Reminders)
	r.POST("/jobs/:name/run", h.Run)
	return r
}

func TestJobs_SweepAsOf(t *testing.T) {
	sw := &stubSweepStore{}
	router := setupJobsRouter(sw, &stubReminderStore{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/jobs/sweep?as_of=2025-02-01", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var report sweeper.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Deactivated)
	assert.Equal(t, "2025-02-01", membership.FormatDate(sw.asOf))
}

func TestJobs_SweepBadDate(t *testing.T) {
	router := setupJobsRouter(&stubSweepStore{}, &stubReminderStore{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/jobs/sweep?as_of=01.02.2025", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation failed")
}

func TestJobs_RemindersDefaultHorizon(t *testing.T) {
	rs := &stubReminderStore{}
	router := setupJobsRouter(&stubSweepStore{}, rs)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/jobs/reminders?as_of=2025-01-10", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-01-13", membership.FormatDate(rs.endDate))
}

func TestJobs_RemindersCustomHorizon(t *testing.T) {
	rs := &stubReminderStore{}
	router := setupJobsRouter(&stubSweepStore{}, rs)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/jobs/reminders?as_of=2025-01-10&horizon_days=7", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-01-17", membership.FormatDate(rs.endDate))
}

func TestJobs_RemindersInvalidHorizon(t *testing.T) {
	router := setupJobsRouter(&stubSweepStore{}, &stubReminderStore{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/jobs/reminders?horizon_days=-1", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJobs_ListWithoutScheduler(t *testing.T) {
	router := setupJobsRouter(&stubSweepStore{}, &stubReminderStore{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/jobs", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestJobs_RunScheduledTask(t *testing.T) {
	var runs int
	host, err := scheduler.New([]scheduler.Task{
		{Name: "deactivate-expired-memberships", Schedule: "0 1 * * *", Run: func(context.Context) error {
			runs++
			return nil
		}},
		{Name: "send-membership-expiry-reminders", Schedule: "0 9 * * *", Run: func(context.Context) error {
			return errors.New("smtp down")
		}},
	})
	require.NoError(t, err)
	router := setupJobsRouterWith(&stubSweepStore{}, &stubReminderStore{}, host)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/jobs/deactivate-expired-memberships/run", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp JobRunResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Result)
	assert.Equal(t, 1, runs)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/jobs/send-membership-expiry-reminders/run", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "smtp down")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/jobs/unknown/run", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/jobs", nil))
	assert.Contains(t, w.Body.String(), "deactivate-expired-memberships")
}

func TestJobs_RunWithoutScheduler(t *testing.T) {
	router := setupJobsRouter(&stubSweepStore{}, &stubReminderStore{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/jobs/deactivate-expired-memberships/run", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
