package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportclub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sportclub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	MembershipsPurchasedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportclub_memberships_purchased_total",
			Help: "Total number of memberships purchased",
		},
		[]string{"type"},
	)

	MembershipTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportclub_membership_transitions_total",
			Help: "Membership status transitions by target status and trigger",
		},
		[]string{"to", "trigger"},
	)

	VisitsRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportclub_visits_recorded_total",
			Help: "Visit checks by outcome",
		},
		[]string{"outcome"},
	)

	RemindersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportclub_expiry_reminders_total",
			Help: "Expiry reminder dispatch attempts by status",
		},
		[]string{"status"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportclub_emails_sent_total",
			Help: "Total number of emails delivered or failed by the worker",
		},
		[]string{"template", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sportclub_email_queue_length",
			Help: "Current length of email queue",
		},
	)

	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportclub_job_runs_total",
			Help: "Scheduled job runs by task and result",
		},
		[]string{"task", "result"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sportclub_job_duration_seconds",
			Help:    "Scheduled job duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"task"},
	)

	JobLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sportclub_job_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run per task",
		},
		[]string{"task"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordPurchase(typeName string) {
	MembershipsPurchasedTotal.WithLabelValues(typeName).Inc()
}

func RecordTransition(to, trigger string) {
	MembershipTransitionsTotal.WithLabelValues(to, trigger).Inc()
}

func RecordVisit(outcome string) {
	VisitsRecordedTotal.WithLabelValues(outcome).Inc()
}

func RecordReminder(status string) {
	RemindersTotal.WithLabelValues(status).Inc()
}

func RecordEmail(template, status string) {
	EmailsSentTotal.WithLabelValues(template, status).Inc()
}

func RecordJob(task, result string, seconds float64, finishedAt float64) {
	JobRunsTotal.WithLabelValues(task, result).Inc()
	JobDuration.WithLabelValues(task).Observe(seconds)
	if result == "success" {
		JobLastSuccess.WithLabelValues(task).Set(finishedAt)
	}
}
