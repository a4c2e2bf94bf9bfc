package performance

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"hrperf/internal/domain/auth"
)

// AuditRecorder persists audit trail entries. Failures are logged and do not
// fail the command that produced them.
type AuditRecorder interface {
	Record(ctx context.Context, tenantID, actorID, action, entityType, entityID string) error
}

// RunLocker serialises scheduler runs per tenant. unlock is non-nil only when
// acquired is true.
type RunLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, acquired bool, err error)
}

type Metrics interface {
	ScheduleRun(tenantID, outcome string, created int)
	ParticipantsCreated(participantType string, count int)
	ParticipantCompleted()
}

type noopMetrics struct{}

func (noopMetrics) ScheduleRun(string, string, int) {}
func (noopMetrics) ParticipantsCreated(string, int) {}
func (noopMetrics) ParticipantCompleted()           {}

type Service struct {
	store   StoreAPI
	audit   AuditRecorder
	locker  RunLocker
	lockTTL time.Duration
	metrics Metrics
	now     func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithRunLocker(locker RunLocker, ttl time.Duration) Option {
	return func(s *Service) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

func NewService(store StoreAPI, audit AuditRecorder, opts ...Option) *Service {
	s := &Service{
		store:   store,
		audit:   audit,
		metrics: noopMetrics{},
		now:     time.Now,
		lockTTL: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) record(ctx context.Context, actor auth.Actor, action, entityType, entityID string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, actor.TenantID, actor.UserID, action, entityType, entityID); err != nil {
		slog.Warn("audit record failed", "action", action, "entityId", entityID, "err", err)
	}
}

func requireActor(actor auth.Actor) error {
	if actor.TenantID == "" {
		return ErrUnauthorized
	}
	return nil
}

func requirePermission(actor auth.Actor, permission string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.Can(permission) {
		return ErrUnauthorized
	}
	return nil
}

func requireManage(actor auth.Actor, what string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.Can(auth.PermPerformanceManage) {
		return unauthorized(what)
	}
	return nil
}

// visibility is the set of employees whose records an actor may see.
type visibility struct {
	all        bool
	employeeID string
}

func (s *Service) visibility(ctx context.Context, actor auth.Actor) (visibility, error) {
	if actor.Can(auth.PermPerformanceManage) {
		return visibility{all: true}, nil
	}
	if actor.UserID == "" {
		return visibility{}, nil
	}
	id, err := s.store.EmployeeIDByUserID(ctx, actor.TenantID, actor.UserID)
	if errors.Is(err, ErrNotFound) {
		return visibility{}, nil
	}
	if err != nil {
		return visibility{}, err
	}
	return visibility{employeeID: id}, nil
}

// narrow applies the visibility to a requested employee filter. ok is false
// when nothing can match.
func (v visibility) narrow(requested string) (string, bool) {
	if v.all {
		return requested, true
	}
	if v.employeeID == "" {
		return "", false
	}
	if requested != "" && requested != v.employeeID {
		return "", false
	}
	return v.employeeID, true
}

// actsFor reports whether the actor may write records owned by employeeID:
// their own, or those of employees reporting to them.
func (s *Service) actsFor(ctx context.Context, actor auth.Actor, v visibility, employeeID string) (bool, error) {
	if v.all {
		return true, nil
	}
	if v.employeeID == "" || employeeID == "" {
		return false, nil
	}
	if employeeID == v.employeeID {
		return true, nil
	}
	emp, err := s.store.GetEmployee(ctx, actor.TenantID, employeeID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return emp.ManagerID == v.employeeID, nil
}

// applyPatch overlays a JSON object onto a copy of current. Fields absent
// from the patch keep their stored values.
func applyPatch[T any](current T, patch json.RawMessage) (T, error) {
	var next T
	if len(patch) == 0 || string(patch) == "null" {
		return next, invalid("data", "update payload required")
	}
	base, err := json.Marshal(current)
	if err != nil {
		return next, err
	}
	if err := json.Unmarshal(base, &next); err != nil {
		return next, err
	}
	if err := json.Unmarshal(patch, &next); err != nil {
		return next, invalid("data", err.Error())
	}
	return next, nil
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func deleted() map[string]bool {
	return map[string]bool{"success": true}
}
