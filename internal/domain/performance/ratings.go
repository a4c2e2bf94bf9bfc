package performance

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"hrperf/internal/domain/auth"
)

func validateRating(r Rating) error {
	return validateStruct(r)
}

// participantFor loads the participant row a rating is written against and
// checks that actor may rate on its behalf.
func (s *Service) participantFor(ctx context.Context, actor auth.Actor, participantID string) (Participant, error) {
	p, err := s.store.GetParticipant(ctx, actor.TenantID, participantID)
	if err != nil {
		return Participant{}, err
	}
	if actor.Can(auth.PermPerformanceManage) {
		return p, nil
	}
	if actor.UserID == "" || p.ParticipantID != actor.UserID {
		return Participant{}, ErrUnauthorized
	}
	return p, nil
}

// checkRatingTarget rejects ratings whose review or criterion does not match
// the participant's review.
func (s *Service) checkRatingTarget(ctx context.Context, tenantID string, participant Participant, in Rating) error {
	if in.ReviewID != participant.ReviewID {
		return invalid("review_id", "does not match the participant's review")
	}
	review, err := s.store.GetReview(ctx, tenantID, participant.ReviewID)
	if err != nil {
		return err
	}
	criterion, err := s.store.GetCriterion(ctx, tenantID, in.CriterionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return invalid("criterion_id", "not found")
		}
		return err
	}
	if criterion.ReviewTypeID != review.ReviewTypeID {
		return invalid("criterion_id", "does not belong to the review's type")
	}
	return nil
}

// SubmitRating stores a rating and completes the participant once they have
// rated at least as many criteria as the review type marks required.
func (s *Service) SubmitRating(ctx context.Context, actor auth.Actor, in Rating) (Rating, error) {
	if err := requirePermission(actor, auth.PermPerformanceWrite); err != nil {
		return Rating{}, err
	}
	if err := validateRating(in); err != nil {
		return Rating{}, err
	}
	participant, err := s.participantFor(ctx, actor, in.ParticipantID)
	if err != nil {
		return Rating{}, err
	}
	if err := s.checkRatingTarget(ctx, actor.TenantID, participant, in); err != nil {
		return Rating{}, err
	}

	in.ID = ""
	in.TenantID = actor.TenantID
	created, err := s.store.CreateRating(ctx, in)
	if err != nil {
		return Rating{}, err
	}
	s.record(ctx, actor, ActionCreateRating, auditEntityRatings, created.ID)
	s.completeIfRated(ctx, actor.TenantID, created.ParticipantID)
	return created, nil
}

// completeIfRated is best effort: the rating is already stored, so lookup
// failures are logged and leave the participant as it was.
func (s *Service) completeIfRated(ctx context.Context, tenantID, participantID string) {
	participant, err := s.store.GetParticipant(ctx, tenantID, participantID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("rating completion participant lookup failed", "participantId", participantID, "err", err)
		}
		return
	}
	if participant.Status == ParticipantStatusCompleted {
		return
	}
	review, err := s.store.GetReview(ctx, tenantID, participant.ReviewID)
	if err != nil {
		slog.Warn("rating completion review lookup failed", "reviewId", participant.ReviewID, "err", err)
		return
	}
	required, err := s.store.CountRequiredCriteria(ctx, tenantID, review.ReviewTypeID)
	if err != nil {
		slog.Warn("rating completion criteria count failed", "reviewTypeId", review.ReviewTypeID, "err", err)
		return
	}
	submitted, err := s.store.CountParticipantRatings(ctx, tenantID, participantID)
	if err != nil {
		slog.Warn("rating completion rating count failed", "participantId", participantID, "err", err)
		return
	}
	if submitted < required {
		return
	}
	if err := s.store.CompleteParticipant(ctx, tenantID, participantID, s.now().UTC()); err != nil {
		slog.Warn("participant completion failed", "participantId", participantID, "err", err)
		return
	}
	s.metrics.ParticipantCompleted()
}

func (s *Service) ListRatings(ctx context.Context, actor auth.Actor, filter RatingFilter) ([]Rating, error) {
	if err := requirePermission(actor, auth.PermPerformanceRead); err != nil {
		return nil, err
	}
	ratings, err := s.store.ListRatings(ctx, actor.TenantID, filter)
	if err != nil {
		return nil, err
	}
	return orEmpty(ratings), nil
}

// UpdateRating changes score, comments and examples. The rated review,
// participant and criterion are fixed.
func (s *Service) UpdateRating(ctx context.Context, actor auth.Actor, id string, patch json.RawMessage) (Rating, error) {
	if err := requirePermission(actor, auth.PermPerformanceWrite); err != nil {
		return Rating{}, err
	}
	current, err := s.store.GetRating(ctx, actor.TenantID, id)
	if err != nil {
		return Rating{}, err
	}
	if _, err := s.participantFor(ctx, actor, current.ParticipantID); err != nil {
		return Rating{}, err
	}
	next, err := applyPatch(current, patch)
	if err != nil {
		return Rating{}, err
	}
	next.ID = current.ID
	next.TenantID = current.TenantID
	next.ReviewID = current.ReviewID
	next.ParticipantID = current.ParticipantID
	next.CriterionID = current.CriterionID
	next.CreatedAt = current.CreatedAt
	if err := validateRating(next); err != nil {
		return Rating{}, err
	}

	updated, err := s.store.UpdateRating(ctx, next)
	if err != nil {
		return Rating{}, err
	}
	s.record(ctx, actor, ActionUpdateRating, auditEntityRatings, updated.ID)
	return updated, nil
}
