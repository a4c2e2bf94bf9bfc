package performance

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const criterionColumns = `id, tenant_id, review_type_id, category, criterion_name, description, weight,
	is_required, display_order, COALESCE(created_by::text, ''), created_at`

func scanCriterion(row pgx.Row) (Criterion, error) {
	var c Criterion
	err := row.Scan(&c.ID, &c.TenantID, &c.ReviewTypeID, &c.Category, &c.CriterionName, &c.Description, &c.Weight,
		&c.IsRequired, &c.DisplayOrder, &c.CreatedBy, &c.CreatedAt)
	return c, err
}

func (s *Store) ListCriteria(ctx context.Context, tenantID, reviewTypeID string) ([]Criterion, error) {
	query := `SELECT ` + criterionColumns + ` FROM performance_criteria WHERE tenant_id = $1`
	args := []any{tenantID}
	if reviewTypeID != "" {
		query += " AND review_type_id = $2"
		args = append(args, reviewTypeID)
	}
	query += " ORDER BY display_order"

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Criterion, error) { return scanCriterion(row) })
}

func (s *Store) GetCriterion(ctx context.Context, tenantID, id string) (Criterion, error) {
	c, err := scanCriterion(s.q.QueryRow(ctx, `
		SELECT `+criterionColumns+`
		FROM performance_criteria
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id))
	return c, notFound(err)
}

func (s *Store) CreateCriterion(ctx context.Context, c Criterion) (Criterion, error) {
	return scanCriterion(s.q.QueryRow(ctx, `
		INSERT INTO performance_criteria (tenant_id, review_type_id, category, criterion_name, description,
			weight, is_required, display_order, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING `+criterionColumns,
		c.TenantID, c.ReviewTypeID, c.Category, c.CriterionName, c.Description,
		c.Weight, c.IsRequired, c.DisplayOrder, nullIfEmpty(c.CreatedBy)))
}

func (s *Store) UpdateCriterion(ctx context.Context, c Criterion) (Criterion, error) {
	updated, err := scanCriterion(s.q.QueryRow(ctx, `
		UPDATE performance_criteria
		SET review_type_id = $3, category = $4, criterion_name = $5, description = $6,
			weight = $7, is_required = $8, display_order = $9
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+criterionColumns,
		c.TenantID, c.ID, c.ReviewTypeID, c.Category, c.CriterionName, c.Description,
		c.Weight, c.IsRequired, c.DisplayOrder))
	return updated, notFound(err)
}

func (s *Store) DeleteCriterion(ctx context.Context, tenantID, id string) error {
	return affected(s.q.Exec(ctx, "DELETE FROM performance_criteria WHERE tenant_id = $1 AND id = $2", tenantID, id))
}

func (s *Store) CountRequiredCriteria(ctx context.Context, tenantID, reviewTypeID string) (int, error) {
	var count int
	err := s.q.QueryRow(ctx, `
		SELECT COUNT(1)
		FROM performance_criteria
		WHERE tenant_id = $1 AND review_type_id = $2 AND is_required = true
	`, tenantID, reviewTypeID).Scan(&count)
	return count, err
}

const ratingColumns = `id, tenant_id, review_id, participant_id, criterion_id, rating, comments, examples, created_at`

func scanRating(row pgx.Row) (Rating, error) {
	var r Rating
	err := row.Scan(&r.ID, &r.TenantID, &r.ReviewID, &r.ParticipantID, &r.CriterionID, &r.Rating, &r.Comments, &r.Examples, &r.CreatedAt)
	return r, err
}

func (s *Store) CreateRating(ctx context.Context, r Rating) (Rating, error) {
	return scanRating(s.q.QueryRow(ctx, `
		INSERT INTO performance_ratings (tenant_id, review_id, participant_id, criterion_id, rating, comments, examples)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+ratingColumns,
		r.TenantID, r.ReviewID, r.ParticipantID, r.CriterionID, r.Rating, r.Comments, r.Examples))
}

func (s *Store) ListRatings(ctx context.Context, tenantID string, filter RatingFilter) ([]Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM performance_ratings WHERE tenant_id = $1`
	args := []any{tenantID}
	if filter.ReviewID != "" {
		args = append(args, filter.ReviewID)
		query += fmt.Sprintf(" AND review_id = $%d", len(args))
	}
	if filter.ParticipantID != "" {
		args = append(args, filter.ParticipantID)
		query += fmt.Sprintf(" AND participant_id = $%d", len(args))
	}
	query += " ORDER BY created_at"

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Rating, error) { return scanRating(row) })
}

func (s *Store) GetRating(ctx context.Context, tenantID, id string) (Rating, error) {
	r, err := scanRating(s.q.QueryRow(ctx, `
		SELECT `+ratingColumns+`
		FROM performance_ratings
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id))
	return r, notFound(err)
}

func (s *Store) UpdateRating(ctx context.Context, r Rating) (Rating, error) {
	updated, err := scanRating(s.q.QueryRow(ctx, `
		UPDATE performance_ratings
		SET rating = $3, comments = $4, examples = $5
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+ratingColumns,
		r.TenantID, r.ID, r.Rating, r.Comments, r.Examples))
	return updated, notFound(err)
}

func (s *Store) CountParticipantRatings(ctx context.Context, tenantID, participantID string) (int, error) {
	var count int
	err := s.q.QueryRow(ctx, `
		SELECT COUNT(1)
		FROM performance_ratings
		WHERE tenant_id = $1 AND participant_id = $2
	`, tenantID, participantID).Scan(&count)
	return count, err
}

const goalColumns = `id, tenant_id, employee_id, title, description, goal_type, category, target_date, status,
	progress_percentage, measurement_criteria, target_value, current_value, priority,
	COALESCE(linked_review_id::text, ''), COALESCE(parent_goal_id::text, ''), COALESCE(assigned_by::text, ''), created_at`

func scanGoal(row pgx.Row) (Goal, error) {
	var g Goal
	var target *time.Time
	if err := row.Scan(&g.ID, &g.TenantID, &g.EmployeeID, &g.Title, &g.Description, &g.GoalType, &g.Category, &target, &g.Status,
		&g.ProgressPercentage, &g.MeasurementCriteria, &g.TargetValue, &g.CurrentValue, &g.Priority,
		&g.LinkedReviewID, &g.ParentGoalID, &g.AssignedBy, &g.CreatedAt); err != nil {
		return Goal{}, err
	}
	g.TargetDate = datePtr(target)
	return g, nil
}

func (s *Store) ListGoals(ctx context.Context, tenantID string, filter GoalFilter) ([]Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM performance_goals WHERE tenant_id = $1`
	args := []any{tenantID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Goal, error) { return scanGoal(row) })
}

func (s *Store) GetGoal(ctx context.Context, tenantID, id string) (Goal, error) {
	g, err := scanGoal(s.q.QueryRow(ctx, `
		SELECT `+goalColumns+`
		FROM performance_goals
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id))
	return g, notFound(err)
}

func (s *Store) CreateGoal(ctx context.Context, g Goal) (Goal, error) {
	return scanGoal(s.q.QueryRow(ctx, `
		INSERT INTO performance_goals (tenant_id, employee_id, title, description, goal_type, category, target_date,
			status, progress_percentage, measurement_criteria, target_value, current_value, priority,
			linked_review_id, parent_goal_id, assigned_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING `+goalColumns,
		g.TenantID, g.EmployeeID, g.Title, g.Description, g.GoalType, g.Category, dateArg(g.TargetDate),
		g.Status, g.ProgressPercentage, g.MeasurementCriteria, g.TargetValue, g.CurrentValue, g.Priority,
		nullIfEmpty(g.LinkedReviewID), nullIfEmpty(g.ParentGoalID), nullIfEmpty(g.AssignedBy)))
}

func (s *Store) UpdateGoal(ctx context.Context, g Goal) (Goal, error) {
	updated, err := scanGoal(s.q.QueryRow(ctx, `
		UPDATE performance_goals
		SET employee_id = $3, title = $4, description = $5, goal_type = $6, category = $7, target_date = $8,
			status = $9, progress_percentage = $10, measurement_criteria = $11, target_value = $12,
			current_value = $13, priority = $14, linked_review_id = $15, parent_goal_id = $16
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+goalColumns,
		g.TenantID, g.ID, g.EmployeeID, g.Title, g.Description, g.GoalType, g.Category, dateArg(g.TargetDate),
		g.Status, g.ProgressPercentage, g.MeasurementCriteria, g.TargetValue,
		g.CurrentValue, g.Priority, nullIfEmpty(g.LinkedReviewID), nullIfEmpty(g.ParentGoalID)))
	return updated, notFound(err)
}

func (s *Store) DeleteGoal(ctx context.Context, tenantID, id string) error {
	return affected(s.q.Exec(ctx, "DELETE FROM performance_goals WHERE tenant_id = $1 AND id = $2", tenantID, id))
}

const kpiDefinitionColumns = `id, tenant_id, name, description, category, measurement_unit, target_type,
	calculation_method, data_source, frequency, applicable_roles, is_active, COALESCE(created_by::text, ''), created_at`

func scanKPIDefinition(row pgx.Row) (KPIDefinition, error) {
	var d KPIDefinition
	err := row.Scan(&d.ID, &d.TenantID, &d.Name, &d.Description, &d.Category, &d.MeasurementUnit, &d.TargetType,
		&d.CalculationMethod, &d.DataSource, &d.Frequency, &d.ApplicableRoles, &d.IsActive, &d.CreatedBy, &d.CreatedAt)
	return d, err
}

func (s *Store) ListKPIDefinitions(ctx context.Context, tenantID string) ([]KPIDefinition, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+kpiDefinitionColumns+`
		FROM kpi_definitions
		WHERE tenant_id = $1
		ORDER BY category, name
	`, tenantID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (KPIDefinition, error) { return scanKPIDefinition(row) })
}

func (s *Store) GetKPIDefinition(ctx context.Context, tenantID, id string) (KPIDefinition, error) {
	d, err := scanKPIDefinition(s.q.QueryRow(ctx, `
		SELECT `+kpiDefinitionColumns+`
		FROM kpi_definitions
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id))
	return d, notFound(err)
}

func (s *Store) CreateKPIDefinition(ctx context.Context, d KPIDefinition) (KPIDefinition, error) {
	return scanKPIDefinition(s.q.QueryRow(ctx, `
		INSERT INTO kpi_definitions (tenant_id, name, description, category, measurement_unit, target_type,
			calculation_method, data_source, frequency, applicable_roles, is_active, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING `+kpiDefinitionColumns,
		d.TenantID, d.Name, d.Description, d.Category, d.MeasurementUnit, d.TargetType,
		d.CalculationMethod, d.DataSource, d.Frequency, roles(d.ApplicableRoles), d.IsActive, nullIfEmpty(d.CreatedBy)))
}

func (s *Store) UpdateKPIDefinition(ctx context.Context, d KPIDefinition) (KPIDefinition, error) {
	updated, err := scanKPIDefinition(s.q.QueryRow(ctx, `
		UPDATE kpi_definitions
		SET name = $3, description = $4, category = $5, measurement_unit = $6, target_type = $7,
			calculation_method = $8, data_source = $9, frequency = $10, applicable_roles = $11, is_active = $12
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+kpiDefinitionColumns,
		d.TenantID, d.ID, d.Name, d.Description, d.Category, d.MeasurementUnit, d.TargetType,
		d.CalculationMethod, d.DataSource, d.Frequency, roles(d.ApplicableRoles), d.IsActive))
	return updated, notFound(err)
}

func (s *Store) DeleteKPIDefinition(ctx context.Context, tenantID, id string) error {
	return affected(s.q.Exec(ctx, "DELETE FROM kpi_definitions WHERE tenant_id = $1 AND id = $2", tenantID, id))
}

func roles(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

const kpiValueColumns = `id, tenant_id, kpi_definition_id, COALESCE(employee_id::text, ''), department,
	period_start, period_end, target_value, actual_value, notes, COALESCE(created_by::text, ''), created_at`

func scanKPIValue(row pgx.Row) (KPIValue, error) {
	var v KPIValue
	var start, end time.Time
	if err := row.Scan(&v.ID, &v.TenantID, &v.KPIDefinitionID, &v.EmployeeID, &v.Department,
		&start, &end, &v.TargetValue, &v.ActualValue, &v.Notes, &v.CreatedBy, &v.CreatedAt); err != nil {
		return KPIValue{}, err
	}
	v.PeriodStart = DateOf(start)
	v.PeriodEnd = DateOf(end)
	return v, nil
}

func (s *Store) ListKPIValues(ctx context.Context, tenantID string, filter KPIValueFilter) ([]KPIValue, error) {
	query := `SELECT ` + kpiValueColumns + ` FROM kpi_values WHERE tenant_id = $1`
	args := []any{tenantID}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if filter.KPIDefinitionID != "" {
		args = append(args, filter.KPIDefinitionID)
		query += fmt.Sprintf(" AND kpi_definition_id = $%d", len(args))
	}
	query += " ORDER BY period_start DESC"

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (KPIValue, error) { return scanKPIValue(row) })
}

func (s *Store) GetKPIValue(ctx context.Context, tenantID, id string) (KPIValue, error) {
	v, err := scanKPIValue(s.q.QueryRow(ctx, `
		SELECT `+kpiValueColumns+`
		FROM kpi_values
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id))
	return v, notFound(err)
}

func (s *Store) CreateKPIValue(ctx context.Context, v KPIValue) (KPIValue, error) {
	return scanKPIValue(s.q.QueryRow(ctx, `
		INSERT INTO kpi_values (tenant_id, kpi_definition_id, employee_id, department, period_start, period_end,
			target_value, actual_value, notes, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING `+kpiValueColumns,
		v.TenantID, v.KPIDefinitionID, nullIfEmpty(v.EmployeeID), v.Department, v.PeriodStart.Time, v.PeriodEnd.Time,
		v.TargetValue, v.ActualValue, v.Notes, nullIfEmpty(v.CreatedBy)))
}

func (s *Store) UpdateKPIValue(ctx context.Context, v KPIValue) (KPIValue, error) {
	updated, err := scanKPIValue(s.q.QueryRow(ctx, `
		UPDATE kpi_values
		SET kpi_definition_id = $3, employee_id = $4, department = $5, period_start = $6, period_end = $7,
			target_value = $8, actual_value = $9, notes = $10
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+kpiValueColumns,
		v.TenantID, v.ID, v.KPIDefinitionID, nullIfEmpty(v.EmployeeID), v.Department, v.PeriodStart.Time, v.PeriodEnd.Time,
		v.TargetValue, v.ActualValue, v.Notes))
	return updated, notFound(err)
}

func (s *Store) DeleteKPIValue(ctx context.Context, tenantID, id string) error {
	return affected(s.q.Exec(ctx, "DELETE FROM kpi_values WHERE tenant_id = $1 AND id = $2", tenantID, id))
}
