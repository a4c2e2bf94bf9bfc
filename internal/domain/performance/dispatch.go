package performance

import (
	"context"
	"fmt"

	"hrperf/internal/domain/auth"
)

// Execute runs cmd on behalf of actor and returns the value to encode as the
// response body.
func (s *Service) Execute(ctx context.Context, actor auth.Actor, cmd Command) (any, error) {
	switch c := cmd.(type) {
	case CreateReviewTypeCommand:
		return s.CreateReviewType(ctx, actor, c.Data)
	case ListReviewTypesCommand:
		return s.ListReviewTypes(ctx, actor)
	case UpdateReviewTypeCommand:
		return s.UpdateReviewType(ctx, actor, c.ID, c.Patch)
	case DeleteReviewTypeCommand:
		return deletedOr(s.DeleteReviewType(ctx, actor, c.ID))

	case AutoScheduleReviewsCommand:
		return s.RunAutoSchedule(ctx, actor)
	case CreateReviewCommand:
		return s.CreateReview(ctx, actor, c.Data)
	case ListReviewsCommand:
		return s.ListReviews(ctx, actor, c.Filter)
	case GetReviewCommand:
		return s.GetReview(ctx, actor, c.ID)
	case UpdateReviewCommand:
		return s.UpdateReview(ctx, actor, c.ID, c.Patch)
	case DeleteReviewCommand:
		return deletedOr(s.DeleteReview(ctx, actor, c.ID))

	case AddParticipantCommand:
		return s.AddParticipant(ctx, actor, c.Data)
	case ListParticipantsCommand:
		return s.ListParticipants(ctx, actor, c.ReviewID)
	case MyPendingParticipantsCommand:
		return s.MyPendingParticipants(ctx, actor)

	case CreateCriterionCommand:
		return s.CreateCriterion(ctx, actor, c.Data)
	case ListCriteriaCommand:
		return s.ListCriteria(ctx, actor, c.ReviewTypeID)
	case UpdateCriterionCommand:
		return s.UpdateCriterion(ctx, actor, c.ID, c.Patch)
	case DeleteCriterionCommand:
		return deletedOr(s.DeleteCriterion(ctx, actor, c.ID))

	case CreateRatingCommand:
		return s.SubmitRating(ctx, actor, c.Data)
	case ListRatingsCommand:
		return s.ListRatings(ctx, actor, c.Filter)
	case UpdateRatingCommand:
		return s.UpdateRating(ctx, actor, c.ID, c.Patch)

	case CreateGoalCommand:
		return s.CreateGoal(ctx, actor, c.Data)
	case ListGoalsCommand:
		return s.ListGoals(ctx, actor, c.Filter)
	case UpdateGoalCommand:
		return s.UpdateGoal(ctx, actor, c.ID, c.Patch)
	case DeleteGoalCommand:
		return deletedOr(s.DeleteGoal(ctx, actor, c.ID))

	case CreateKPIDefinitionCommand:
		return s.CreateKPIDefinition(ctx, actor, c.Data)
	case ListKPIDefinitionsCommand:
		return s.ListKPIDefinitions(ctx, actor)
	case UpdateKPIDefinitionCommand:
		return s.UpdateKPIDefinition(ctx, actor, c.ID, c.Patch)
	case DeleteKPIDefinitionCommand:
		return deletedOr(s.DeleteKPIDefinition(ctx, actor, c.ID))

	case CreateKPIValueCommand:
		return s.CreateKPIValue(ctx, actor, c.Data)
	case ListKPIValuesCommand:
		return s.ListKPIValues(ctx, actor, c.Filter)
	case UpdateKPIValueCommand:
		return s.UpdateKPIValue(ctx, actor, c.ID, c.Patch)
	case DeleteKPIValueCommand:
		return deletedOr(s.DeleteKPIValue(ctx, actor, c.ID))

	case GetReportsCommand:
		return s.GetReports(ctx, actor)
	}
	return nil, fmt.Errorf("%w: %T", ErrInvalidCommand, cmd)
}

func deletedOr(err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return deleted(), nil
}
