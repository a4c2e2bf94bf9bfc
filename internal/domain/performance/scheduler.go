package performance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hrperf/internal/domain/auth"
)

type scheduleWindow struct {
	PeriodStart Date
	PeriodEnd   Date
	DueDate     Date
}

// hireDateWindow returns the review window for an employee hired on hire,
// evaluated at now. Eligibility is the half-open range
// [offsetDays, offsetDays+eligibilityWindowDays) days since hire.
func hireDateWindow(hire Date, offsetDays, durationDays int, now time.Time) (scheduleWindow, bool) {
	days := daysBetween(hire.Time, now)
	if days < offsetDays || days >= offsetDays+eligibilityWindowDays {
		return scheduleWindow{}, false
	}
	end := hire.AddDays(offsetDays)
	return scheduleWindow{
		PeriodStart: hire,
		PeriodEnd:   end,
		DueDate:     end.AddDays(durationDays),
	}, true
}

// schedulable reports whether the scheduler knows how to window rt.
func schedulable(rt ReviewType) bool {
	switch rt.TriggerEvent {
	case TriggerHireDate:
		if rt.ScheduleOffsetDays == nil || rt.DurationDays == nil {
			slog.Warn("review type missing schedule offset or duration", "reviewTypeId", rt.ID, "name", rt.Name)
			return false
		}
		return true
	default:
		slog.Debug("review type trigger not scheduled", "reviewTypeId", rt.ID, "triggerEvent", rt.TriggerEvent)
		return false
	}
}

func eligibleWindow(rt ReviewType, emp Employee, now time.Time) (scheduleWindow, bool) {
	if rt.TriggerEvent != TriggerHireDate || emp.HireDate == nil || emp.HireDate.IsZero() {
		return scheduleWindow{}, false
	}
	return hireDateWindow(*emp.HireDate, *rt.ScheduleOffsetDays, *rt.DurationDays, now)
}

func scheduleLockKey(tenantID string) string {
	return "performance:auto_schedule:" + tenantID
}

// RunAutoSchedule creates the reviews, and their participants, that are due
// for the actor's tenant at the current time.
func (s *Service) RunAutoSchedule(ctx context.Context, actor auth.Actor) (ScheduleResult, error) {
	if err := requireManage(actor, "run auto scheduling"); err != nil {
		return ScheduleResult{}, err
	}

	if s.locker != nil {
		unlock, acquired, err := s.locker.TryLock(ctx, scheduleLockKey(actor.TenantID), s.lockTTL)
		if err != nil {
			s.metrics.ScheduleRun(actor.TenantID, "failed", 0)
			return ScheduleResult{}, fmt.Errorf("acquire schedule lock: %w", err)
		}
		if !acquired {
			s.metrics.ScheduleRun(actor.TenantID, "locked", 0)
			return ScheduleResult{}, ErrScheduleInProgress
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				slog.Warn("schedule lock release failed", "tenantId", actor.TenantID, "err", err)
			}
		}()
	}

	result, err := s.autoSchedule(ctx, actor)
	switch {
	case err != nil:
		s.metrics.ScheduleRun(actor.TenantID, "failed", 0)
		return ScheduleResult{}, err
	case result.Count == 0:
		s.metrics.ScheduleRun(actor.TenantID, "empty", 0)
	default:
		s.metrics.ScheduleRun(actor.TenantID, "created", result.Count)
		s.record(ctx, actor, ActionAutoScheduleReviews, auditEntityReviews, "")
	}
	return result, nil
}

func (s *Service) autoSchedule(ctx context.Context, actor auth.Actor) (ScheduleResult, error) {
	now := s.now()
	tenantID := actor.TenantID

	types, err := s.store.ListReviewTypes(ctx, tenantID, ReviewTypeFilter{ActiveOnly: true, AutoScheduleOnly: true})
	if err != nil {
		return ScheduleResult{}, fmt.Errorf("load review types: %w", err)
	}
	employees, err := s.store.ListActiveEmployees(ctx, tenantID)
	if err != nil {
		return ScheduleResult{}, fmt.Errorf("load employees: %w", err)
	}

	typesByID := make(map[string]ReviewType, len(types))
	employeesByID := make(map[string]Employee, len(employees))
	for _, emp := range employees {
		employeesByID[emp.ID] = emp
	}

	var staged []Review
	for _, rt := range types {
		if !schedulable(rt) {
			continue
		}
		typesByID[rt.ID] = rt
		for _, emp := range employees {
			window, ok := eligibleWindow(rt, emp, now)
			if !ok {
				continue
			}
			exists, err := s.store.ReviewExistsSince(ctx, tenantID, emp.ID, rt.ID, window.PeriodStart)
			if err != nil {
				return ScheduleResult{}, fmt.Errorf("check existing review: %w", err)
			}
			if exists {
				continue
			}
			staged = append(staged, Review{
				TenantID:          tenantID,
				ReviewTypeID:      rt.ID,
				EmployeeID:        emp.ID,
				ReviewPeriodStart: window.PeriodStart,
				ReviewPeriodEnd:   window.PeriodEnd,
				ReviewDueDate:     window.DueDate,
				Status:            ReviewStatusScheduled,
				IsAutoGenerated:   true,
				CreatedBy:         actor.UserID,
			})
		}
	}
	if len(staged) == 0 {
		return ScheduleResult{Count: 0, Created: []Review{}}, nil
	}

	var created []Review
	var participants []Participant
	err = s.store.WithinTx(ctx, func(tx StoreAPI) error {
		inserted, err := tx.InsertReviews(ctx, staged)
		if err != nil {
			return fmt.Errorf("insert reviews: %w", err)
		}
		var pending []Participant
		for _, review := range inserted {
			ps, err := stageParticipants(ctx, tx, typesByID[review.ReviewTypeID], employeesByID[review.EmployeeID], review)
			if err != nil {
				return err
			}
			pending = append(pending, ps...)
		}
		participants, err = tx.InsertParticipants(ctx, pending)
		if err != nil {
			return fmt.Errorf("insert participants: %w", err)
		}
		created = inserted
		return nil
	})
	if err != nil {
		return ScheduleResult{}, err
	}

	s.countParticipants(participants)
	return ScheduleResult{Count: len(created), Created: orEmpty(created)}, nil
}

// stageParticipants builds the self and manager participants rt requires for
// review. Peer participants are only ever added by hand.
func stageParticipants(ctx context.Context, store StoreAPI, rt ReviewType, emp Employee, review Review) ([]Participant, error) {
	var out []Participant
	if rt.RequiresSelfAssessment && emp.UserID != "" {
		out = append(out, newParticipant(review, emp.UserID, ParticipantTypeSelf))
	}
	if rt.RequiresManagerReview && emp.ManagerID != "" {
		manager, err := store.GetEmployee(ctx, review.TenantID, emp.ManagerID)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return nil, fmt.Errorf("load manager: %w", err)
		case manager.UserID != "":
			out = append(out, newParticipant(review, manager.UserID, ParticipantTypeManager))
		}
	}
	return out, nil
}

func newParticipant(review Review, userID, participantType string) Participant {
	return Participant{
		TenantID:        review.TenantID,
		ReviewID:        review.ID,
		ParticipantID:   userID,
		ParticipantType: participantType,
		Status:          ParticipantStatusPending,
	}
}

func (s *Service) countParticipants(participants []Participant) {
	counts := map[string]int{}
	for _, p := range participants {
		counts[p.ParticipantType]++
	}
	for participantType, n := range counts {
		s.metrics.ParticipantsCreated(participantType, n)
	}
}
