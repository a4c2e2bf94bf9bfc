package performance

import (
	"context"
	"encoding/json"

	"hrperf/internal/domain/auth"
)

func validateCriterion(c Criterion) error {
	return validateStruct(c)
}

func (s *Service) CreateCriterion(ctx context.Context, actor auth.Actor, in Criterion) (Criterion, error) {
	if err := requireManage(actor, "create criteria"); err != nil {
		return Criterion{}, err
	}
	if err := validateCriterion(in); err != nil {
		return Criterion{}, err
	}
	in.ID = ""
	in.TenantID = actor.TenantID
	in.CreatedBy = actor.UserID
	created, err := s.store.CreateCriterion(ctx, in)
	if err != nil {
		return Criterion{}, err
	}
	s.record(ctx, actor, ActionCreateCriteria, auditEntityCriteria, created.ID)
	return created, nil
}

func (s *Service) ListCriteria(ctx context.Context, actor auth.Actor, reviewTypeID string) ([]Criterion, error) {
	if err := requirePermission(actor, auth.PermPerformanceRead); err != nil {
		return nil, err
	}
	criteria, err := s.store.ListCriteria(ctx, actor.TenantID, reviewTypeID)
	if err != nil {
		return nil, err
	}
	return orEmpty(criteria), nil
}

func (s *Service) UpdateCriterion(ctx context.Context, actor auth.Actor, id string, patch json.RawMessage) (Criterion, error) {
	if err := requireManage(actor, "update criteria"); err != nil {
		return Criterion{}, err
	}
	current, err := s.store.GetCriterion(ctx, actor.TenantID, id)
	if err != nil {
		return Criterion{}, err
	}
	next, err := applyPatch(current, patch)
	if err != nil {
		return Criterion{}, err
	}
	next.ID = current.ID
	next.TenantID = current.TenantID
	next.CreatedBy = current.CreatedBy
	next.CreatedAt = current.CreatedAt
	if err := validateCriterion(next); err != nil {
		return Criterion{}, err
	}
	updated, err := s.store.UpdateCriterion(ctx, next)
	if err != nil {
		return Criterion{}, err
	}
	s.record(ctx, actor, ActionUpdateCriteria, auditEntityCriteria, updated.ID)
	return updated, nil
}

func (s *Service) DeleteCriterion(ctx context.Context, actor auth.Actor, id string) error {
	if err := requireManage(actor, "delete criteria"); err != nil {
		return err
	}
	if err := s.store.DeleteCriterion(ctx, actor.TenantID, id); err != nil {
		return err
	}
	s.record(ctx, actor, ActionDeleteCriteria, auditEntityCriteria, id)
	return nil
}
