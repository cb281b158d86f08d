// Package scheduler runs the club's periodic jobs from an explicit task
// table on 5-field cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"sportclub/internal/logger"
	"sportclub/internal/metrics"
)

var (
	ErrNoTasks       = errors.New("scheduler: no tasks")
	ErrDuplicateTask = errors.New("scheduler: duplicate task name")
	ErrInvalidTask   = errors.New("scheduler: invalid task")
	ErrUnknownTask   = errors.New("scheduler: unknown task")
)

// Task is one row of the schedule table.
type Task struct {
	Name     string
	Schedule string
	// Timeout bounds a single run. Zero means no limit.
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

type Option func(*Host)

func WithLocation(loc *time.Location) Option {
	return func(h *Host) {
		if loc != nil {
			h.loc = loc
		}
	}
}

type Host struct {
	cron    *cron.Cron
	loc     *time.Location
	entries map[string]cron.EntryID
	tasks   map[string]Task

	ctx    context.Context
	cancel context.CancelFunc
}

type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...interface{}) {
	logger.Debug("cron: "+msg, kv...)
}

func (cronLogger) Error(err error, msg string, kv ...interface{}) {
	logger.WithError(err).Error("cron: "+msg, kv...)
}

// New validates every task and registers it. Nothing runs until Start.
func New(tasks []Task, opts ...Option) (*Host, error) {
	if len(tasks) == 0 {
		return nil, ErrNoTasks
	}

	h := &Host{
		loc:     time.UTC,
		entries: make(map[string]cron.EntryID, len(tasks)),
		tasks:   make(map[string]Task, len(tasks)),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.ctx, h.cancel = context.WithCancel(context.Background())

	l := cronLogger{}
	h.cron = cron.New(
		cron.WithLocation(h.loc),
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)

	for _, t := range tasks {
		if t.Name == "" || t.Run == nil {
			return nil, fmt.Errorf("%w: name and run func are required", ErrInvalidTask)
		}
		if _, dup := h.tasks[t.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTask, t.Name)
		}

		sched, err := cron.ParseStandard(t.Schedule)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: schedule %q: %v", ErrInvalidTask, t.Name, t.Schedule, err)
		}

		task := t
		h.tasks[t.Name] = task
		h.entries[t.Name] = h.cron.Schedule(sched, cron.FuncJob(func() { h.execute(task) }))
	}

	return h, nil
}

func (h *Host) Start() {
	h.cron.Start()
	for _, name := range h.names() {
		logger.Info("Job scheduled", "task", name, "schedule", h.tasks[name].Schedule, "next", h.cron.Entry(h.entries[name]).Next)
	}
}

// Stop halts scheduling and waits for running jobs. If ctx ends first the
// running jobs' contexts are cancelled.
func (h *Host) Stop(ctx context.Context) error {
	done := h.cron.Stop()
	select {
	case <-done.Done():
		h.cancel()
		logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		h.cancel()
		return ctx.Err()
	}
}

// RunNow executes a task synchronously with the same logging, metrics and
// recovery as a scheduled firing.
func (h *Host) RunNow(name string) error {
	t, ok := h.tasks[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return h.execute(t)
}

type JobInfo struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	Next     time.Time `json:"next,omitempty"`
	Prev     time.Time `json:"prev,omitempty"`
}

func (h *Host) Jobs() []JobInfo {
	out := make([]JobInfo, 0, len(h.tasks))
	for _, name := range h.names() {
		e := h.cron.Entry(h.entries[name])
		out = append(out, JobInfo{
			Name:     name,
			Schedule: h.tasks[name].Schedule,
			Next:     e.Next,
			Prev:     e.Prev,
		})
	}
	return out
}

func (h *Host) names() []string {
	names := make([]string, 0, len(h.tasks))
	for name := range h.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *Host) execute(t Task) error {
	runID := uuid.NewString()
	log := logger.With("task", t.Name, "run_id", runID)

	ctx := h.ctx
	var cancel context.CancelFunc = func() {}
	if t.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
	}
	defer cancel()

	start := time.Now()
	log.Info("Job started")

	err := safeRun(ctx, t.Run)
	elapsed := time.Since(start)

	result := "success"
	if err != nil {
		result = "error"
		log.Error("Job failed", "error", err, "duration_ms", elapsed.Milliseconds())
	} else {
		log.Info("Job finished", "duration_ms", elapsed.Milliseconds())
	}
	metrics.RecordJob(t.Name, result, elapsed.Seconds(), float64(time.Now().Unix()))
	return err
}

func safeRun(ctx context.Context, run func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return run(ctx)
}
