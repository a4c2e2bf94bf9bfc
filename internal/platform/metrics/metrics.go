package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests and multiple apps in one
// process do not collide on the default registerer. A nil *Collector is a
// valid no-op.
type Collector struct {
	registry              *prometheus.Registry
	requestsTotal         *prometheus.CounterVec
	requestDuration       *prometheus.HistogramVec
	scheduleRuns          *prometheus.CounterVec
	reviewsScheduled      *prometheus.CounterVec
	participantsCreated   *prometheus.CounterVec
	participantsCompleted prometheus.Counter
	jobRuns               *prometheus.CounterVec
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hrperf_http_requests_total",
				Help: "HTTP requests by method and status code",
			},
			[]string{"method", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hrperf_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		scheduleRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hrperf_review_schedule_runs_total",
				Help: "Auto-schedule runs by tenant and outcome",
			},
			[]string{"tenant_id", "outcome"},
		),
		reviewsScheduled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hrperf_reviews_scheduled_total",
				Help: "Reviews created by auto-schedule runs",
			},
			[]string{"tenant_id"},
		),
		participantsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hrperf_review_participants_created_total",
				Help: "Review participants created by type",
			},
			[]string{"participant_type"},
		),
		participantsCompleted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "hrperf_review_participants_completed_total",
				Help: "Review participants completed by rating submission",
			},
		),
		jobRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hrperf_job_runs_total",
				Help: "Background job runs by type and status",
			},
			[]string{"job_type", "status"},
		),
	}
}

func (c *Collector) Record(method string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func (c *Collector) ScheduleRun(tenantID, outcome string, created int) {
	if c == nil {
		return
	}
	c.scheduleRuns.WithLabelValues(tenantID, outcome).Inc()
	if created > 0 {
		c.reviewsScheduled.WithLabelValues(tenantID).Add(float64(created))
	}
}

func (c *Collector) ParticipantsCreated(participantType string, count int) {
	if c == nil || count <= 0 {
		return
	}
	c.participantsCreated.WithLabelValues(participantType).Add(float64(count))
}

func (c *Collector) ParticipantCompleted() {
	if c == nil {
		return
	}
	c.participantsCompleted.Inc()
}

func (c *Collector) JobRun(jobType, status string) {
	if c == nil {
		return
	}
	c.jobRuns.WithLabelValues(jobType, status).Inc()
}

func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
