package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCounts(t *testing.T) {
	c := New()
	c.Record(http.MethodPost, http.StatusOK, 20*time.Millisecond)
	c.Record(http.MethodPost, http.StatusBadRequest, 5*time.Millisecond)
	c.Record(http.MethodPost, http.StatusOK, time.Millisecond)

	if got := testutil.ToFloat64(c.requestsTotal.WithLabelValues(http.MethodPost, "200")); got != 2 {
		t.Fatalf("expected 2 ok requests, got %v", got)
	}
	if got := testutil.ToFloat64(c.requestsTotal.WithLabelValues(http.MethodPost, "400")); got != 1 {
		t.Fatalf("expected 1 bad request, got %v", got)
	}

	c.ScheduleRun("t1", "created", 3)
	c.ScheduleRun("t1", "empty", 0)
	if got := testutil.ToFloat64(c.reviewsScheduled.WithLabelValues("t1")); got != 3 {
		t.Fatalf("expected 3 scheduled reviews, got %v", got)
	}
	if got := testutil.ToFloat64(c.scheduleRuns.WithLabelValues("t1", "empty")); got != 1 {
		t.Fatalf("expected 1 empty run, got %v", got)
	}

	c.ParticipantsCreated("self", 2)
	c.ParticipantsCreated("manager", 0)
	c.ParticipantCompleted()
	if got := testutil.ToFloat64(c.participantsCreated.WithLabelValues("self")); got != 2 {
		t.Fatalf("expected 2 self participants, got %v", got)
	}
	if got := testutil.ToFloat64(c.participantsCompleted); got != 1 {
		t.Fatalf("expected 1 completion, got %v", got)
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.Record(http.MethodGet, http.StatusOK, time.Millisecond)
	c.ScheduleRun("t1", "created", 1)
	c.ParticipantsCreated("self", 1)
	c.ParticipantCompleted()
	c.JobRun("review_auto_schedule", "completed")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 from nil collector, got %d", rec.Code)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := New()
	c.JobRun("review_auto_schedule", "completed")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `hrperf_job_runs_total{job_type="review_auto_schedule",status="completed"} 1`) {
		t.Fatalf("job run counter missing from exposition:\n%s", rec.Body.String())
	}
}
