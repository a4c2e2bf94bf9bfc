package performance

import (
	"context"
	"encoding/json"
	"errors"

	"hrperf/internal/domain/auth"
)

func validateKPIDefinition(d KPIDefinition) error {
	return validateStruct(d)
}

func (s *Service) CreateKPIDefinition(ctx context.Context, actor auth.Actor, in KPIDefinition) (KPIDefinition, error) {
	if err := requireManage(actor, "create KPI definitions"); err != nil {
		return KPIDefinition{}, err
	}
	if err := validateKPIDefinition(in); err != nil {
		return KPIDefinition{}, err
	}
	in.ID = ""
	in.TenantID = actor.TenantID
	in.CreatedBy = actor.UserID
	if in.ApplicableRoles == nil {
		in.ApplicableRoles = []string{}
	}
	created, err := s.store.CreateKPIDefinition(ctx, in)
	if err != nil {
		return KPIDefinition{}, err
	}
	s.record(ctx, actor, ActionCreateKPIDefinition, auditEntityKPIDefinitions, created.ID)
	return created, nil
}

func (s *Service) ListKPIDefinitions(ctx context.Context, actor auth.Actor) ([]KPIDefinition, error) {
	if err := requirePermission(actor, auth.PermPerformanceRead); err != nil {
		return nil, err
	}
	defs, err := s.store.ListKPIDefinitions(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	return orEmpty(defs), nil
}

func (s *Service) UpdateKPIDefinition(ctx context.Context, actor auth.Actor, id string, patch json.RawMessage) (KPIDefinition, error) {
	if err := requireManage(actor, "update KPI definitions"); err != nil {
		return KPIDefinition{}, err
	}
	current, err := s.store.GetKPIDefinition(ctx, actor.TenantID, id)
	if err != nil {
		return KPIDefinition{}, err
	}
	next, err := applyPatch(current, patch)
	if err != nil {
		return KPIDefinition{}, err
	}
	next.ID = current.ID
	next.TenantID = current.TenantID
	next.CreatedBy = current.CreatedBy
	next.CreatedAt = current.CreatedAt
	if next.ApplicableRoles == nil {
		next.ApplicableRoles = []string{}
	}
	if err := validateKPIDefinition(next); err != nil {
		return KPIDefinition{}, err
	}
	updated, err := s.store.UpdateKPIDefinition(ctx, next)
	if err != nil {
		return KPIDefinition{}, err
	}
	s.record(ctx, actor, ActionUpdateKPIDefinition, auditEntityKPIDefinitions, updated.ID)
	return updated, nil
}

func (s *Service) DeleteKPIDefinition(ctx context.Context, actor auth.Actor, id string) error {
	if err := requireManage(actor, "delete KPI definitions"); err != nil {
		return err
	}
	if err := s.store.DeleteKPIDefinition(ctx, actor.TenantID, id); err != nil {
		return err
	}
	s.record(ctx, actor, ActionDeleteKPIDefinition, auditEntityKPIDefinitions, id)
	return nil
}

func validateKPIValue(v KPIValue) error {
	if err := validateStruct(v); err != nil {
		return err
	}
	if v.PeriodEnd.Before(v.PeriodStart.Time) {
		return invalid("period_end", "must not be before period_start")
	}
	return nil
}

// CreateKPIValue records a measurement. Without an explicit employee the
// value is attributed to the caller's own employee record.
func (s *Service) CreateKPIValue(ctx context.Context, actor auth.Actor, in KPIValue) (KPIValue, error) {
	if err := requirePermission(actor, auth.PermPerformanceWrite); err != nil {
		return KPIValue{}, err
	}
	if err := validateKPIValue(in); err != nil {
		return KPIValue{}, err
	}
	if _, err := s.store.GetKPIDefinition(ctx, actor.TenantID, in.KPIDefinitionID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return KPIValue{}, invalid("kpi_definition_id", "unknown KPI definition")
		}
		return KPIValue{}, err
	}
	v, err := s.visibility(ctx, actor)
	if err != nil {
		return KPIValue{}, err
	}
	if in.EmployeeID == "" && !v.all {
		in.EmployeeID = v.employeeID
	}
	if in.EmployeeID != "" || !v.all {
		ok, err := s.actsFor(ctx, actor, v, in.EmployeeID)
		if err != nil {
			return KPIValue{}, err
		}
		if !ok {
			return KPIValue{}, ErrUnauthorized
		}
	}

	in.ID = ""
	in.TenantID = actor.TenantID
	in.CreatedBy = actor.UserID
	created, err := s.store.CreateKPIValue(ctx, in)
	if err != nil {
		return KPIValue{}, err
	}
	s.record(ctx, actor, ActionCreateKPIValue, auditEntityKPIValues, created.ID)
	return created, nil
}

func (s *Service) ListKPIValues(ctx context.Context, actor auth.Actor, filter KPIValueFilter) ([]KPIValue, error) {
	if err := requirePermission(actor, auth.PermPerformanceRead); err != nil {
		return nil, err
	}
	v, err := s.visibility(ctx, actor)
	if err != nil {
		return nil, err
	}
	employeeID, ok := v.narrow(filter.EmployeeID)
	if !ok {
		return []KPIValue{}, nil
	}
	filter.EmployeeID = employeeID
	values, err := s.store.ListKPIValues(ctx, actor.TenantID, filter)
	if err != nil {
		return nil, err
	}
	return orEmpty(values), nil
}

func (s *Service) kpiValueForWrite(ctx context.Context, actor auth.Actor, id string) (KPIValue, visibility, error) {
	if err := requirePermission(actor, auth.PermPerformanceWrite); err != nil {
		return KPIValue{}, visibility{}, err
	}
	current, err := s.store.GetKPIValue(ctx, actor.TenantID, id)
	if err != nil {
		return KPIValue{}, visibility{}, err
	}
	v, err := s.visibility(ctx, actor)
	if err != nil {
		return KPIValue{}, visibility{}, err
	}
	if !v.all {
		ok, err := s.actsFor(ctx, actor, v, current.EmployeeID)
		if err != nil {
			return KPIValue{}, visibility{}, err
		}
		if !ok {
			return KPIValue{}, visibility{}, ErrUnauthorized
		}
	}
	return current, v, nil
}

func (s *Service) UpdateKPIValue(ctx context.Context, actor auth.Actor, id string, patch json.RawMessage) (KPIValue, error) {
	current, v, err := s.kpiValueForWrite(ctx, actor, id)
	if err != nil {
		return KPIValue{}, err
	}
	next, err := applyPatch(current, patch)
	if err != nil {
		return KPIValue{}, err
	}
	next.ID = current.ID
	next.TenantID = current.TenantID
	next.KPIDefinitionID = current.KPIDefinitionID
	next.CreatedBy = current.CreatedBy
	next.CreatedAt = current.CreatedAt
	if !v.all && next.EmployeeID != current.EmployeeID {
		return KPIValue{}, ErrUnauthorized
	}
	if err := validateKPIValue(next); err != nil {
		return KPIValue{}, err
	}
	updated, err := s.store.UpdateKPIValue(ctx, next)
	if err != nil {
		return KPIValue{}, err
	}
	s.record(ctx, actor, ActionUpdateKPIValue, auditEntityKPIValues, updated.ID)
	return updated, nil
}

func (s *Service) DeleteKPIValue(ctx context.Context, actor auth.Actor, id string) error {
	if _, _, err := s.kpiValueForWrite(ctx, actor, id); err != nil {
		return err
	}
	if err := s.store.DeleteKPIValue(ctx, actor.TenantID, id); err != nil {
		return err
	}
	s.record(ctx, actor, ActionDeleteKPIValue, auditEntityKPIValues, id)
	return nil
}
