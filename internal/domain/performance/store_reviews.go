package performance

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const reviewTypeColumns = `id, tenant_id, name, description, frequency, auto_schedule, trigger_event,
	schedule_offset_days, duration_days, requires_self_assessment, requires_manager_review,
	requires_peer_review, peer_review_count, allow_skip_level_review, rating_scale_type,
	passing_threshold, notification_template, is_active, COALESCE(created_by::text, ''), created_at`

func scanReviewType(row pgx.Row) (ReviewType, error) {
	var rt ReviewType
	err := row.Scan(&rt.ID, &rt.TenantID, &rt.Name, &rt.Description, &rt.Frequency, &rt.AutoSchedule, &rt.TriggerEvent,
		&rt.ScheduleOffsetDays, &rt.DurationDays, &rt.RequiresSelfAssessment, &rt.RequiresManagerReview,
		&rt.RequiresPeerReview, &rt.PeerReviewCount, &rt.AllowSkipLevelReview, &rt.RatingScaleType,
		&rt.PassingThreshold, &rt.NotificationTemplate, &rt.IsActive, &rt.CreatedBy, &rt.CreatedAt)
	return rt, err
}

func (s *Store) ListReviewTypes(ctx context.Context, tenantID string, filter ReviewTypeFilter) ([]ReviewType, error) {
	query := `SELECT ` + reviewTypeColumns + ` FROM performance_review_types WHERE tenant_id = $1`
	if filter.ActiveOnly {
		query += " AND is_active = true"
	}
	if filter.AutoScheduleOnly {
		query += " AND auto_schedule = true"
	}
	query += " ORDER BY name"

	rows, err := s.q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (ReviewType, error) { return scanReviewType(row) })
}

func (s *Store) GetReviewType(ctx context.Context, tenantID, id string) (ReviewType, error) {
	rt, err := scanReviewType(s.q.QueryRow(ctx, `
		SELECT `+reviewTypeColumns+`
		FROM performance_review_types
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id))
	return rt, notFound(err)
}

func (s *Store) CreateReviewType(ctx context.Context, rt ReviewType) (ReviewType, error) {
	return scanReviewType(s.q.QueryRow(ctx, `
		INSERT INTO performance_review_types (tenant_id, name, description, frequency, auto_schedule, trigger_event,
			schedule_offset_days, duration_days, requires_self_assessment, requires_manager_review,
			requires_peer_review, peer_review_count, allow_skip_level_review, rating_scale_type,
			passing_threshold, notification_template, is_active, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING `+reviewTypeColumns,
		rt.TenantID, rt.Name, rt.Description, rt.Frequency, rt.AutoSchedule, rt.TriggerEvent,
		rt.ScheduleOffsetDays, rt.DurationDays, rt.RequiresSelfAssessment, rt.RequiresManagerReview,
		rt.RequiresPeerReview, rt.PeerReviewCount, rt.AllowSkipLevelReview, rt.RatingScaleType,
		rt.PassingThreshold, rt.NotificationTemplate, rt.IsActive, nullIfEmpty(rt.CreatedBy)))
}

func (s *Store) UpdateReviewType(ctx context.Context, rt ReviewType) (ReviewType, error) {
	updated, err := scanReviewType(s.q.QueryRow(ctx, `
		UPDATE performance_review_types
		SET name = $3, description = $4, frequency = $5, auto_schedule = $6, trigger_event = $7,
			schedule_offset_days = $8, duration_days = $9, requires_self_assessment = $10,
			requires_manager_review = $11, requires_peer_review = $12, peer_review_count = $13,
			allow_skip_level_review = $14, rating_scale_type = $15, passing_threshold = $16,
			notification_template = $17, is_active = $18
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+reviewTypeColumns,
		rt.TenantID, rt.ID, rt.Name, rt.Description, rt.Frequency, rt.AutoSchedule, rt.TriggerEvent,
		rt.ScheduleOffsetDays, rt.DurationDays, rt.RequiresSelfAssessment, rt.RequiresManagerReview,
		rt.RequiresPeerReview, rt.PeerReviewCount, rt.AllowSkipLevelReview, rt.RatingScaleType,
		rt.PassingThreshold, rt.NotificationTemplate, rt.IsActive))
	return updated, notFound(err)
}

func (s *Store) DeleteReviewType(ctx context.Context, tenantID, id string) error {
	return affected(s.q.Exec(ctx, "DELETE FROM performance_review_types WHERE tenant_id = $1 AND id = $2", tenantID, id))
}

const reviewColumns = `id, tenant_id, review_type_id, employee_id, review_period_start, review_period_end,
	review_due_date, status, overall_rating, overall_comments, strengths, areas_for_improvement,
	action_items, next_review_date, is_auto_generated, COALESCE(created_by::text, ''), created_at`

func scanReview(row pgx.Row) (Review, error) {
	var r Review
	var start, end, due time.Time
	var next *time.Time
	if err := row.Scan(&r.ID, &r.TenantID, &r.ReviewTypeID, &r.EmployeeID, &start, &end,
		&due, &r.Status, &r.OverallRating, &r.OverallComments, &r.Strengths, &r.AreasForImprovement,
		&r.ActionItems, &next, &r.IsAutoGenerated, &r.CreatedBy, &r.CreatedAt); err != nil {
		return Review{}, err
	}
	r.ReviewPeriodStart = DateOf(start)
	r.ReviewPeriodEnd = DateOf(end)
	r.ReviewDueDate = DateOf(due)
	r.NextReviewDate = datePtr(next)
	return r, nil
}

func (s *Store) ReviewExistsSince(ctx context.Context, tenantID, employeeID, reviewTypeID string, periodStart Date) (bool, error) {
	var exists bool
	err := s.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM performance_reviews
			WHERE tenant_id = $1 AND employee_id = $2 AND review_type_id = $3 AND review_period_start >= $4
		)
	`, tenantID, employeeID, reviewTypeID, periodStart.Time).Scan(&exists)
	return exists, err
}

func (s *Store) InsertReviews(ctx context.Context, reviews []Review) ([]Review, error) {
	if len(reviews) == 0 {
		return []Review{}, nil
	}
	const cols = 15
	args := make([]any, 0, len(reviews)*cols)
	for _, r := range reviews {
		args = append(args, r.TenantID, r.ReviewTypeID, r.EmployeeID, r.ReviewPeriodStart.Time, r.ReviewPeriodEnd.Time,
			r.ReviewDueDate.Time, r.Status, r.OverallRating, r.OverallComments, r.Strengths, r.AreasForImprovement,
			r.ActionItems, dateArg(r.NextReviewDate), r.IsAutoGenerated, nullIfEmpty(r.CreatedBy))
	}
	rows, err := s.q.Query(ctx, `
		INSERT INTO performance_reviews (tenant_id, review_type_id, employee_id, review_period_start,
			review_period_end, review_due_date, status, overall_rating, overall_comments, strengths,
			areas_for_improvement, action_items, next_review_date, is_auto_generated, created_by)
		VALUES `+valuesList(len(reviews), cols)+`
		RETURNING `+reviewColumns, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Review, error) { return scanReview(row) })
}

func (s *Store) ListReviews(ctx context.Context, tenantID string, filter ReviewFilter) ([]Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM performance_reviews WHERE tenant_id = $1`
	args := []any{tenantID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	query += " ORDER BY review_due_date"

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Review, error) { return scanReview(row) })
}

func (s *Store) GetReview(ctx context.Context, tenantID, id string) (Review, error) {
	r, err := scanReview(s.q.QueryRow(ctx, `
		SELECT `+reviewColumns+`
		FROM performance_reviews
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id))
	return r, notFound(err)
}

func (s *Store) UpdateReview(ctx context.Context, r Review) (Review, error) {
	updated, err := scanReview(s.q.QueryRow(ctx, `
		UPDATE performance_reviews
		SET review_type_id = $3, employee_id = $4, review_period_start = $5, review_period_end = $6,
			review_due_date = $7, status = $8, overall_rating = $9, overall_comments = $10,
			strengths = $11, areas_for_improvement = $12, action_items = $13, next_review_date = $14
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+reviewColumns,
		r.TenantID, r.ID, r.ReviewTypeID, r.EmployeeID, r.ReviewPeriodStart.Time, r.ReviewPeriodEnd.Time,
		r.ReviewDueDate.Time, r.Status, r.OverallRating, r.OverallComments,
		r.Strengths, r.AreasForImprovement, r.ActionItems, dateArg(r.NextReviewDate)))
	return updated, notFound(err)
}

func (s *Store) DeleteReview(ctx context.Context, tenantID, id string) error {
	return affected(s.q.Exec(ctx, "DELETE FROM performance_reviews WHERE tenant_id = $1 AND id = $2", tenantID, id))
}

const participantColumns = `id, tenant_id, review_id, participant_id, participant_type, status, submitted_at, created_at`

func scanParticipant(row pgx.Row) (Participant, error) {
	var p Participant
	err := row.Scan(&p.ID, &p.TenantID, &p.ReviewID, &p.ParticipantID, &p.ParticipantType, &p.Status, &p.SubmittedAt, &p.CreatedAt)
	return p, err
}

func (s *Store) InsertParticipants(ctx context.Context, participants []Participant) ([]Participant, error) {
	if len(participants) == 0 {
		return []Participant{}, nil
	}
	const cols = 5
	args := make([]any, 0, len(participants)*cols)
	for _, p := range participants {
		args = append(args, p.TenantID, p.ReviewID, p.ParticipantID, p.ParticipantType, p.Status)
	}
	rows, err := s.q.Query(ctx, `
		INSERT INTO review_participants (tenant_id, review_id, participant_id, participant_type, status)
		VALUES `+valuesList(len(participants), cols)+`
		RETURNING `+participantColumns, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Participant, error) { return scanParticipant(row) })
}

func (s *Store) ListParticipants(ctx context.Context, tenantID, reviewID string) ([]Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM review_participants WHERE tenant_id = $1`
	args := []any{tenantID}
	if reviewID != "" {
		query += " AND review_id = $2"
		args = append(args, reviewID)
	}
	query += " ORDER BY created_at"

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Participant, error) { return scanParticipant(row) })
}

func (s *Store) GetParticipant(ctx context.Context, tenantID, id string) (Participant, error) {
	p, err := scanParticipant(s.q.QueryRow(ctx, `
		SELECT `+participantColumns+`
		FROM review_participants
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id))
	return p, notFound(err)
}

func (s *Store) CompleteParticipant(ctx context.Context, tenantID, id string, submittedAt time.Time) error {
	return affected(s.q.Exec(ctx, `
		UPDATE review_participants
		SET status = $3, submitted_at = $4
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id, ParticipantStatusCompleted, submittedAt))
}

func (s *Store) ListPendingParticipants(ctx context.Context, tenantID, userID string) ([]Participant, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+participantColumns+`
		FROM review_participants
		WHERE tenant_id = $1 AND participant_id = $2 AND status IN ($3, $4)
		ORDER BY created_at
	`, tenantID, userID, ParticipantStatusPending, ParticipantStatusInProgress)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Participant, error) { return scanParticipant(row) })
}
