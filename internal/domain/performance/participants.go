package performance

import (
	"context"

	"hrperf/internal/domain/auth"
)

// AddParticipant attaches a participant by hand. This is the only way peer
// participants are created.
func (s *Service) AddParticipant(ctx context.Context, actor auth.Actor, in Participant) (Participant, error) {
	if err := requireManage(actor, "add participants"); err != nil {
		return Participant{}, err
	}
	if err := validateStruct(in); err != nil {
		return Participant{}, err
	}
	if _, err := s.store.GetReview(ctx, actor.TenantID, in.ReviewID); err != nil {
		return Participant{}, err
	}

	in.ID = ""
	in.TenantID = actor.TenantID
	in.SubmittedAt = nil
	if in.Status == "" {
		in.Status = ParticipantStatusPending
	}
	inserted, err := s.store.InsertParticipants(ctx, []Participant{in})
	if err != nil {
		return Participant{}, err
	}
	created := inserted[0]
	s.countParticipants(inserted)
	s.record(ctx, actor, ActionAddParticipant, auditEntityParticipants, created.ID)
	return created, nil
}

func (s *Service) ListParticipants(ctx context.Context, actor auth.Actor, reviewID string) ([]Participant, error) {
	if err := requirePermission(actor, auth.PermPerformanceRead); err != nil {
		return nil, err
	}
	participants, err := s.store.ListParticipants(ctx, actor.TenantID, reviewID)
	if err != nil {
		return nil, err
	}
	return orEmpty(participants), nil
}

// MyPendingParticipants lists the calling user's participations that are not
// yet completed.
func (s *Service) MyPendingParticipants(ctx context.Context, actor auth.Actor) ([]Participant, error) {
	if err := requirePermission(actor, auth.PermPerformanceRead); err != nil {
		return nil, err
	}
	if actor.UserID == "" {
		return []Participant{}, nil
	}
	participants, err := s.store.ListPendingParticipants(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		return nil, err
	}
	return orEmpty(participants), nil
}
