package server

import (
	"errors"
	"net/http"
	"time"

	"sportclub/internal/api"
	"sportclub/internal/logger"
	"sportclub/internal/membership"
	"sportclub/internal/reminder"
	"sportclub/internal/scheduler"
	"sportclub/internal/sweeper"

	"github.com/gin-gonic/gin"
)

// JobHandler exposes the lifecycle jobs for on-demand runs.
type JobHandler struct {
	sweeper     *sweeper.Sweeper
	notifier    *reminder.Notifier
	scheduler   *scheduler.Host
	location    *time.Location
	horizonDays int
}

type jobQuery struct {
	AsOf        string `form:"as_of" validate:"omitempty,datetime=2006-01-02"`
	HorizonDays int    `form:"horizon_days" validate:"omitempty,gte=1,lte=365"`
}

func (h *JobHandler) bind(c *gin.Context) (jobQuery, time.Time, bool) {
	var q jobQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return q, time.Time{}, false
	}
	if errs := ValidateStruct(q); len(errs) > 0 {
		RespondWithValidationErrors(c, errs)
		return q, time.Time{}, false
	}

	asOf := time.Now().In(h.location)
	if q.AsOf != "" {
		asOf, _ = membership.ParseDate(q.AsOf)
	}
	return q, asOf, true
}

// @Summary      Run the expiry sweep
// @Tags         admin,jobs
// @Produce      json
// @Param        as_of query string false "Day to evaluate (YYYY-MM-DD), default today"
// @Success      200 {object} sweeper.Report
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /api/admin/jobs/sweep [post]
func (h *JobHandler) Sweep(c *gin.Context) {
	_, asOf, ok := h.bind(c)
	if !ok {
		return
	}

	report, err := h.sweeper.Sweep(c.Request.Context(), asOf)
	if err != nil {
		logger.Error("Manual sweep failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Sweep failed"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// @Summary      Send expiry reminders
// @Tags         admin,jobs
// @Produce      json
// @Param        as_of query string false "Day to evaluate (YYYY-MM-DD), default today"
// @Param        horizon_days query int false "Days ahead of expiry"
// @Success      200 {object} reminder.Report
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /api/admin/jobs/reminders [post]
func (h *JobHandler) Reminders(c *gin.Context) {
	q, asOf, ok := h.bind(c)
	if !ok {
		return
	}

	horizon := h.horizonDays
	if q.HorizonDays > 0 {
		horizon = q.HorizonDays
	}

	report, err := h.notifier.NotifyExpiring(c.Request.Context(), asOf, horizon)
	if err != nil {
		if errors.Is(err, reminder.ErrInvalidHorizon) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Manual reminder run failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Reminder run failed"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// JobRunResponse reports a run triggered through the scheduler.
type JobRunResponse struct {
	Task       string `json:"task"`
	Result     string `json:"result"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// @Summary      Run a scheduled job now
// @Description  Runs the task from the schedule table with its timeout, run id logging and metrics.
// @Tags         admin,jobs
// @Produce      json
// @Param        name path string true "Task name"
// @Success      200 {object} JobRunResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} JobRunResponse
// @Router       /api/admin/jobs/{name}/run [post]
func (h *JobHandler) Run(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Scheduling is disabled"})
		return
	}

	name := c.Param("name")
	start := time.Now()
	err := h.scheduler.RunNow(name)
	resp := JobRunResponse{
		Task:       name,
		Result:     "success",
		DurationMs: time.Since(start).Milliseconds(),
	}

	switch {
	case errors.Is(err, scheduler.ErrUnknownTask):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Job not found"})
	case err != nil:
		resp.Result = "error"
		resp.Error = err.Error()
		c.JSON(http.StatusInternalServerError, resp)
	default:
		c.JSON(http.StatusOK, resp)
	}
}

// @Summary      List scheduled jobs
// @Tags         admin,jobs
// @Produce      json
// @Success      200 {array} scheduler.JobInfo
// @Router       /api/admin/jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusOK, []scheduler.JobInfo{})
		return
	}
	c.JSON(http.StatusOK, h.scheduler.Jobs())
}
