package performance

import (
	"context"
	"time"
)

// StoreAPI is the tenant-scoped data store the service runs against. Get*,
// Update* and Delete* return ErrNotFound when no row matches.
type StoreAPI interface {
	// WithinTx runs fn against a store bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(StoreAPI) error) error

	ListTenantIDs(ctx context.Context) ([]string, error)

	ListReviewTypes(ctx context.Context, tenantID string, filter ReviewTypeFilter) ([]ReviewType, error)
	GetReviewType(ctx context.Context, tenantID, id string) (ReviewType, error)
	CreateReviewType(ctx context.Context, rt ReviewType) (ReviewType, error)
	UpdateReviewType(ctx context.Context, rt ReviewType) (ReviewType, error)
	DeleteReviewType(ctx context.Context, tenantID, id string) error

	ListActiveEmployees(ctx context.Context, tenantID string) ([]Employee, error)
	GetEmployee(ctx context.Context, tenantID, id string) (Employee, error)
	EmployeeIDByUserID(ctx context.Context, tenantID, userID string) (string, error)

	// ReviewExistsSince reports whether the employee already has a review of
	// the type whose period starts on or after periodStart.
	ReviewExistsSince(ctx context.Context, tenantID, employeeID, reviewTypeID string, periodStart Date) (bool, error)
	// InsertReviews inserts all rows in one statement and returns them in input order.
	InsertReviews(ctx context.Context, reviews []Review) ([]Review, error)
	ListReviews(ctx context.Context, tenantID string, filter ReviewFilter) ([]Review, error)
	GetReview(ctx context.Context, tenantID, id string) (Review, error)
	UpdateReview(ctx context.Context, r Review) (Review, error)
	DeleteReview(ctx context.Context, tenantID, id string) error

	InsertParticipants(ctx context.Context, participants []Participant) ([]Participant, error)
	ListParticipants(ctx context.Context, tenantID, reviewID string) ([]Participant, error)
	GetParticipant(ctx context.Context, tenantID, id string) (Participant, error)
	CompleteParticipant(ctx context.Context, tenantID, id string, submittedAt time.Time) error
	ListPendingParticipants(ctx context.Context, tenantID, userID string) ([]Participant, error)

	ListCriteria(ctx context.Context, tenantID, reviewTypeID string) ([]Criterion, error)
	GetCriterion(ctx context.Context, tenantID, id string) (Criterion, error)
	CreateCriterion(ctx context.Context, c Criterion) (Criterion, error)
	UpdateCriterion(ctx context.Context, c Criterion) (Criterion, error)
	DeleteCriterion(ctx context.Context, tenantID, id string) error
	CountRequiredCriteria(ctx context.Context, tenantID, reviewTypeID string) (int, error)

	CreateRating(ctx context.Context, r Rating) (Rating, error)
	ListRatings(ctx context.Context, tenantID string, filter RatingFilter) ([]Rating, error)
	GetRating(ctx context.Context, tenantID, id string) (Rating, error)
	UpdateRating(ctx context.Context, r Rating) (Rating, error)
	CountParticipantRatings(ctx context.Context, tenantID, participantID string) (int, error)

	ListGoals(ctx context.Context, tenantID string, filter GoalFilter) ([]Goal, error)
	GetGoal(ctx context.Context, tenantID, id string) (Goal, error)
	CreateGoal(ctx context.Context, g Goal) (Goal, error)
	UpdateGoal(ctx context.Context, g Goal) (Goal, error)
	DeleteGoal(ctx context.Context, tenantID, id string) error

	ListKPIDefinitions(ctx context.Context, tenantID string) ([]KPIDefinition, error)
	GetKPIDefinition(ctx context.Context, tenantID, id string) (KPIDefinition, error)
	CreateKPIDefinition(ctx context.Context, d KPIDefinition) (KPIDefinition, error)
	UpdateKPIDefinition(ctx context.Context, d KPIDefinition) (KPIDefinition, error)
	DeleteKPIDefinition(ctx context.Context, tenantID, id string) error

	ListKPIValues(ctx context.Context, tenantID string, filter KPIValueFilter) ([]KPIValue, error)
	GetKPIValue(ctx context.Context, tenantID, id string) (KPIValue, error)
	CreateKPIValue(ctx context.Context, v KPIValue) (KPIValue, error)
	UpdateKPIValue(ctx context.Context, v KPIValue) (KPIValue, error)
	DeleteKPIValue(ctx context.Context, tenantID, id string) error
}
