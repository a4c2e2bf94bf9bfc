package performance

import (
	"context"
	"encoding/json"
	"errors"

	"hrperf/internal/domain/auth"
)

func validateGoal(g Goal) error {
	return validateStruct(g)
}

// CreateGoal defaults the employee to the caller's own record. Non-managing
// actors may only set goals for themselves or their direct reports.
func (s *Service) CreateGoal(ctx context.Context, actor auth.Actor, in Goal) (Goal, error) {
	if err := requirePermission(actor, auth.PermPerformanceWrite); err != nil {
		return Goal{}, err
	}
	v, err := s.visibility(ctx, actor)
	if err != nil {
		return Goal{}, err
	}
	if in.EmployeeID == "" && actor.UserID != "" {
		id, err := s.store.EmployeeIDByUserID(ctx, actor.TenantID, actor.UserID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return Goal{}, err
		}
		in.EmployeeID = id
	}
	if err := validateGoal(in); err != nil {
		return Goal{}, err
	}
	ok, err := s.actsFor(ctx, actor, v, in.EmployeeID)
	if err != nil {
		return Goal{}, err
	}
	if !ok {
		return Goal{}, ErrUnauthorized
	}

	in.ID = ""
	in.TenantID = actor.TenantID
	in.AssignedBy = actor.UserID
	if in.Status == "" {
		in.Status = GoalStatusActive
	}
	created, err := s.store.CreateGoal(ctx, in)
	if err != nil {
		return Goal{}, err
	}
	s.record(ctx, actor, ActionCreateGoal, auditEntityGoals, created.ID)
	return created, nil
}

func (s *Service) ListGoals(ctx context.Context, actor auth.Actor, filter GoalFilter) ([]Goal, error) {
	if err := requirePermission(actor, auth.PermPerformanceRead); err != nil {
		return nil, err
	}
	v, err := s.visibility(ctx, actor)
	if err != nil {
		return nil, err
	}
	employeeID, ok := v.narrow(filter.EmployeeID)
	if !ok {
		return []Goal{}, nil
	}
	filter.EmployeeID = employeeID
	goals, err := s.store.ListGoals(ctx, actor.TenantID, filter)
	if err != nil {
		return nil, err
	}
	return orEmpty(goals), nil
}

func (s *Service) goalForWrite(ctx context.Context, actor auth.Actor, id string) (Goal, visibility, error) {
	if err := requirePermission(actor, auth.PermPerformanceWrite); err != nil {
		return Goal{}, visibility{}, err
	}
	current, err := s.store.GetGoal(ctx, actor.TenantID, id)
	if err != nil {
		return Goal{}, visibility{}, err
	}
	v, err := s.visibility(ctx, actor)
	if err != nil {
		return Goal{}, visibility{}, err
	}
	ok, err := s.actsFor(ctx, actor, v, current.EmployeeID)
	if err != nil {
		return Goal{}, visibility{}, err
	}
	if !ok {
		return Goal{}, visibility{}, ErrUnauthorized
	}
	return current, v, nil
}

func (s *Service) UpdateGoal(ctx context.Context, actor auth.Actor, id string, patch json.RawMessage) (Goal, error) {
	current, v, err := s.goalForWrite(ctx, actor, id)
	if err != nil {
		return Goal{}, err
	}
	next, err := applyPatch(current, patch)
	if err != nil {
		return Goal{}, err
	}
	next.ID = current.ID
	next.TenantID = current.TenantID
	next.AssignedBy = current.AssignedBy
	next.CreatedAt = current.CreatedAt
	if next.EmployeeID != current.EmployeeID {
		ok, err := s.actsFor(ctx, actor, v, next.EmployeeID)
		if err != nil {
			return Goal{}, err
		}
		if !ok {
			return Goal{}, ErrUnauthorized
		}
	}
	if err := validateGoal(next); err != nil {
		return Goal{}, err
	}
	updated, err := s.store.UpdateGoal(ctx, next)
	if err != nil {
		return Goal{}, err
	}
	s.record(ctx, actor, ActionUpdateGoal, auditEntityGoals, updated.ID)
	return updated, nil
}

func (s *Service) DeleteGoal(ctx context.Context, actor auth.Actor, id string) error {
	if _, _, err := s.goalForWrite(ctx, actor, id); err != nil {
		return err
	}
	if err := s.store.DeleteGoal(ctx, actor.TenantID, id); err != nil {
		return err
	}
	s.record(ctx, actor, ActionDeleteGoal, auditEntityGoals, id)
	return nil
}
