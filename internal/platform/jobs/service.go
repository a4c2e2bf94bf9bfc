package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"hrperf/internal/domain/auth"
	"hrperf/internal/domain/performance"
)

const JobReviewAutoSchedule = "review_auto_schedule"

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type TenantLister interface {
	ListTenantIDs(ctx context.Context) ([]string, error)
}

type ReviewScheduler interface {
	RunAutoSchedule(ctx context.Context, actor auth.Actor) (performance.ScheduleResult, error)
}

// RunRecorder persists one row per job execution.
type RunRecorder interface {
	Start(ctx context.Context, tenantID, jobType string) (string, error)
	Finish(ctx context.Context, runID, status string, details []byte) error
}

type Metrics interface {
	JobRun(jobType, status string)
}

type Service struct {
	tenants   TenantLister
	scheduler ReviewScheduler
	runs      RunRecorder
	metrics   Metrics
	interval  time.Duration
	queue     chan job
	wg        sync.WaitGroup
}

type job struct {
	Type     string
	TenantID string
	Run      func(context.Context) (any, error)
}

// New builds the job service. runs and metrics may be nil. A non-positive
// interval disables the periodic auto-schedule ticker.
func New(tenants TenantLister, scheduler ReviewScheduler, runs RunRecorder, metrics Metrics, interval time.Duration) *Service {
	return &Service{
		tenants:   tenants,
		scheduler: scheduler,
		runs:      runs,
		metrics:   metrics,
		interval:  interval,
		queue:     make(chan job, 128),
	}
}

// Start launches the worker and, when enabled, the ticker. Both stop when ctx
// is cancelled; Wait blocks until they have.
func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.worker(ctx)
	}()
	if s.interval > 0 {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.scheduleReviews(ctx, s.interval)
		}()
	}
}

func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) Enqueue(jobType, tenantID string, run func(context.Context) (any, error)) bool {
	select {
	case s.queue <- job{Type: jobType, TenantID: tenantID, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType, "tenantId", tenantID)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType, tenantID string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, TenantID: tenantID, Run: run})
}

// EnqueueAutoSchedule queues one auto-schedule run per tenant and returns how
// many were accepted.
func (s *Service) EnqueueAutoSchedule(ctx context.Context) (int, error) {
	tenants, err := s.tenants.ListTenantIDs(ctx)
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, tenantID := range tenants {
		if s.Enqueue(JobReviewAutoSchedule, tenantID, s.autoScheduleRun(tenantID)) {
			queued++
		}
	}
	return queued, nil
}

func (s *Service) autoScheduleRun(tenantID string) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		result, err := s.scheduler.RunAutoSchedule(ctx, auth.SystemActor(tenantID))
		if err != nil {
			return map[string]any{"error": err.Error()}, err
		}
		ids := make([]string, 0, len(result.Created))
		for _, review := range result.Created {
			ids = append(ids, review.ID)
		}
		return map[string]any{"count": result.Count, "reviewIds": ids}, nil
	}
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "tenantId", j.TenantID, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if s.runs != nil {
		id, err := s.runs.Start(ctx, j.TenantID, j.Type)
		if err != nil {
			slog.Warn("job run insert failed", "jobType", j.Type, "err", err)
		}
		runID = id
	}

	details, err := j.Run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
	}
	if s.metrics != nil {
		s.metrics.JobRun(j.Type, status)
	}

	if runID != "" {
		detailsJSON, marshalErr := json.Marshal(details)
		if marshalErr != nil {
			slog.Warn("job details marshal failed", "err", marshalErr)
			detailsJSON = []byte("{}")
		}
		if updErr := s.runs.Finish(context.WithoutCancel(ctx), runID, status, detailsJSON); updErr != nil {
			slog.Warn("job run update failed", "runId", runID, "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleReviews(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.EnqueueAutoSchedule(ctx); err != nil {
				slog.Warn("auto-schedule tenant lookup failed", "err", err)
			}
		}
	}
}
