package performance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"hrperf/internal/domain/auth"
)

func validateReview(r Review) error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if r.ReviewPeriodEnd.Before(r.ReviewPeriodStart.Time) {
		return invalid("review_period_end", "must not be before review_period_start")
	}
	return nil
}

// CreateReview inserts a manually created review and the participants its
// review type requires, in one transaction.
func (s *Service) CreateReview(ctx context.Context, actor auth.Actor, in Review) (Review, error) {
	if err := requireManage(actor, "create reviews"); err != nil {
		return Review{}, err
	}
	if err := validateReview(in); err != nil {
		return Review{}, err
	}
	in.ID = ""
	in.TenantID = actor.TenantID
	in.CreatedBy = actor.UserID
	in.IsAutoGenerated = false
	if in.Status == "" {
		in.Status = ReviewStatusScheduled
	}

	var created Review
	var participants []Participant
	err := s.store.WithinTx(ctx, func(tx StoreAPI) error {
		inserted, err := tx.InsertReviews(ctx, []Review{in})
		if err != nil {
			return err
		}
		if len(inserted) != 1 {
			return fmt.Errorf("insert review: expected 1 row, got %d", len(inserted))
		}
		created = inserted[0]

		rt, err := tx.GetReviewType(ctx, actor.TenantID, created.ReviewTypeID)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load review type: %w", err)
		}
		emp, err := tx.GetEmployee(ctx, actor.TenantID, created.EmployeeID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("load employee: %w", err)
		}
		staged, err := stageParticipants(ctx, tx, rt, emp, created)
		if err != nil {
			return err
		}
		participants, err = tx.InsertParticipants(ctx, staged)
		if err != nil {
			return fmt.Errorf("insert participants: %w", err)
		}
		return nil
	})
	if err != nil {
		return Review{}, err
	}

	s.countParticipants(participants)
	s.record(ctx, actor, ActionCreateReview, auditEntityReviews, created.ID)
	return created, nil
}

func (s *Service) ListReviews(ctx context.Context, actor auth.Actor, filter ReviewFilter) ([]Review, error) {
	if err := requirePermission(actor, auth.PermPerformanceRead); err != nil {
		return nil, err
	}
	v, err := s.visibility(ctx, actor)
	if err != nil {
		return nil, err
	}
	employeeID, ok := v.narrow(filter.EmployeeID)
	if !ok {
		return []Review{}, nil
	}
	filter.EmployeeID = employeeID
	reviews, err := s.store.ListReviews(ctx, actor.TenantID, filter)
	if err != nil {
		return nil, err
	}
	return orEmpty(reviews), nil
}

// canViewReview allows managers of the performance module, the reviewed
// employee and any participant of the review.
func (s *Service) canViewReview(ctx context.Context, actor auth.Actor, review Review, participants []Participant) (bool, error) {
	v, err := s.visibility(ctx, actor)
	if err != nil {
		return false, err
	}
	if v.all || (v.employeeID != "" && v.employeeID == review.EmployeeID) {
		return true, nil
	}
	for _, p := range participants {
		if actor.UserID != "" && p.ParticipantID == actor.UserID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) GetReview(ctx context.Context, actor auth.Actor, id string) (ReviewDetail, error) {
	if err := requirePermission(actor, auth.PermPerformanceRead); err != nil {
		return ReviewDetail{}, err
	}
	review, err := s.store.GetReview(ctx, actor.TenantID, id)
	if err != nil {
		return ReviewDetail{}, err
	}
	participants, err := s.store.ListParticipants(ctx, actor.TenantID, review.ID)
	if err != nil {
		return ReviewDetail{}, err
	}
	allowed, err := s.canViewReview(ctx, actor, review, participants)
	if err != nil {
		return ReviewDetail{}, err
	}
	if !allowed {
		return ReviewDetail{}, ErrUnauthorized
	}

	detail := ReviewDetail{Review: review, Participants: orEmpty(participants)}
	if rt, err := s.store.GetReviewType(ctx, actor.TenantID, review.ReviewTypeID); err == nil {
		detail.ReviewType = &rt
	} else if !errors.Is(err, ErrNotFound) {
		return ReviewDetail{}, err
	}
	if emp, err := s.store.GetEmployee(ctx, actor.TenantID, review.EmployeeID); err == nil {
		detail.Employee = &emp
	} else if !errors.Is(err, ErrNotFound) {
		return ReviewDetail{}, err
	}
	ratings, err := s.store.ListRatings(ctx, actor.TenantID, RatingFilter{ReviewID: review.ID})
	if err != nil {
		return ReviewDetail{}, err
	}
	detail.Ratings = orEmpty(ratings)
	return detail, nil
}

// UpdateReview applies a partial update. Identity, tenant, creator and the
// auto-generated flag cannot be changed.
func (s *Service) UpdateReview(ctx context.Context, actor auth.Actor, id string, patch json.RawMessage) (Review, error) {
	if err := requirePermission(actor, auth.PermPerformanceWrite); err != nil {
		return Review{}, err
	}
	current, err := s.store.GetReview(ctx, actor.TenantID, id)
	if err != nil {
		return Review{}, err
	}
	participants, err := s.store.ListParticipants(ctx, actor.TenantID, current.ID)
	if err != nil {
		return Review{}, err
	}
	allowed, err := s.canViewReview(ctx, actor, current, participants)
	if err != nil {
		return Review{}, err
	}
	if !allowed {
		return Review{}, ErrUnauthorized
	}

	next, err := applyPatch(current, patch)
	if err != nil {
		return Review{}, err
	}
	next.ID = current.ID
	next.TenantID = current.TenantID
	next.CreatedBy = current.CreatedBy
	next.CreatedAt = current.CreatedAt
	next.IsAutoGenerated = current.IsAutoGenerated
	if !actor.Can(auth.PermPerformanceManage) {
		next.EmployeeID = current.EmployeeID
		next.ReviewTypeID = current.ReviewTypeID
	}
	if err := validateReview(next); err != nil {
		return Review{}, err
	}

	updated, err := s.store.UpdateReview(ctx, next)
	if err != nil {
		return Review{}, err
	}
	s.record(ctx, actor, ActionUpdateReview, auditEntityReviews, updated.ID)
	return updated, nil
}

func (s *Service) DeleteReview(ctx context.Context, actor auth.Actor, id string) error {
	if err := requireManage(actor, "delete reviews"); err != nil {
		return err
	}
	if err := s.store.DeleteReview(ctx, actor.TenantID, id); err != nil {
		return err
	}
	s.record(ctx, actor, ActionDeleteReview, auditEntityReviews, id)
	return nil
}
