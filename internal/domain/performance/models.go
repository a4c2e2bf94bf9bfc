package performance

import "time"

type ReviewType struct {
	ID                     string    `json:"id"`
	TenantID               string    `json:"tenant_id"`
	Name                   string    `json:"name" validate:"notblank"`
	Description            string    `json:"description"`
	Frequency              string    `json:"frequency"`
	AutoSchedule           bool      `json:"auto_schedule"`
	TriggerEvent           string    `json:"trigger_event"`
	ScheduleOffsetDays     *int      `json:"schedule_offset_days" validate:"omitempty,gte=0"`
	DurationDays           *int      `json:"duration_days" validate:"omitempty,gte=0"`
	RequiresSelfAssessment bool      `json:"requires_self_assessment"`
	RequiresManagerReview  bool      `json:"requires_manager_review"`
	RequiresPeerReview     bool      `json:"requires_peer_review"`
	PeerReviewCount        *int      `json:"peer_review_count" validate:"omitempty,gte=0"`
	AllowSkipLevelReview   bool      `json:"allow_skip_level_review"`
	RatingScaleType        string    `json:"rating_scale_type"`
	PassingThreshold       *float64  `json:"passing_threshold"`
	NotificationTemplate   string    `json:"notification_template"`
	IsActive               bool      `json:"is_active"`
	CreatedBy              string    `json:"created_by"`
	CreatedAt              time.Time `json:"created_at"`
}

type Employee struct {
	ID         string `json:"id"`
	TenantID   string `json:"tenant_id"`
	UserID     string `json:"user_id"`
	ManagerID  string `json:"manager_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Status     string `json:"status"`
	HireDate   *Date  `json:"hire_date"`
}

func (e Employee) FullName() string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	default:
		return e.FirstName + " " + e.LastName
	}
}

type Review struct {
	ID                  string    `json:"id"`
	TenantID            string    `json:"tenant_id"`
	ReviewTypeID        string    `json:"review_type_id" validate:"required"`
	EmployeeID          string    `json:"employee_id" validate:"required"`
	ReviewPeriodStart   Date      `json:"review_period_start" validate:"required"`
	ReviewPeriodEnd     Date      `json:"review_period_end" validate:"required"`
	ReviewDueDate       Date      `json:"review_due_date" validate:"required"`
	Status              string    `json:"status"`
	OverallRating       *float64  `json:"overall_rating" validate:"omitempty,gte=0"`
	OverallComments     string    `json:"overall_comments"`
	Strengths           string    `json:"strengths"`
	AreasForImprovement string    `json:"areas_for_improvement"`
	ActionItems         string    `json:"action_items"`
	NextReviewDate      *Date     `json:"next_review_date"`
	IsAutoGenerated     bool      `json:"is_auto_generated"`
	CreatedBy           string    `json:"created_by"`
	CreatedAt           time.Time `json:"created_at"`
}

// ReviewDetail is a review with its type, employee, participants and ratings.
type ReviewDetail struct {
	Review
	ReviewType   *ReviewType   `json:"review_type"`
	Employee     *Employee     `json:"employee"`
	Participants []Participant `json:"participants"`
	Ratings      []Rating      `json:"ratings"`
}

type Participant struct {
	ID              string     `json:"id"`
	TenantID        string     `json:"tenant_id"`
	ReviewID        string     `json:"review_id" validate:"required"`
	ParticipantID   string     `json:"participant_id" validate:"required"`
	ParticipantType string     `json:"participant_type" validate:"oneof=self manager peer"`
	Status          string     `json:"status"`
	SubmittedAt     *time.Time `json:"submitted_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

type Criterion struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenant_id"`
	ReviewTypeID  string    `json:"review_type_id" validate:"required"`
	Category      string    `json:"category"`
	CriterionName string    `json:"criterion_name" validate:"notblank"`
	Description   string    `json:"description"`
	Weight        *float64  `json:"weight" validate:"omitempty,gte=0"`
	IsRequired    bool      `json:"is_required"`
	DisplayOrder  int       `json:"display_order"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// Rating.ParticipantID references the review_participants row, not a user.
type Rating struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenant_id"`
	ReviewID      string    `json:"review_id" validate:"required"`
	ParticipantID string    `json:"participant_id" validate:"required"`
	CriterionID   string    `json:"criterion_id" validate:"required"`
	Rating        float64   `json:"rating" validate:"gte=0"`
	Comments      string    `json:"comments"`
	Examples      string    `json:"examples"`
	CreatedAt     time.Time `json:"created_at"`
}

type Goal struct {
	ID                  string    `json:"id"`
	TenantID            string    `json:"tenant_id"`
	EmployeeID          string    `json:"employee_id" validate:"required"`
	Title               string    `json:"title" validate:"notblank"`
	Description         string    `json:"description"`
	GoalType            string    `json:"goal_type"`
	Category            string    `json:"category"`
	TargetDate          *Date     `json:"target_date"`
	Status              string    `json:"status"`
	ProgressPercentage  float64   `json:"progress_percentage" validate:"gte=0,lte=100"`
	MeasurementCriteria string    `json:"measurement_criteria"`
	TargetValue         *float64  `json:"target_value"`
	CurrentValue        *float64  `json:"current_value"`
	Priority            string    `json:"priority"`
	LinkedReviewID      string    `json:"linked_review_id"`
	ParentGoalID        string    `json:"parent_goal_id"`
	AssignedBy          string    `json:"assigned_by"`
	CreatedAt           time.Time `json:"created_at"`
}

type KPIDefinition struct {
	ID                string    `json:"id"`
	TenantID          string    `json:"tenant_id"`
	Name              string    `json:"name" validate:"notblank"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	MeasurementUnit   string    `json:"measurement_unit"`
	TargetType        string    `json:"target_type"`
	CalculationMethod string    `json:"calculation_method"`
	DataSource        string    `json:"data_source"`
	Frequency         string    `json:"frequency"`
	ApplicableRoles   []string  `json:"applicable_roles"`
	IsActive          bool      `json:"is_active"`
	CreatedBy         string    `json:"created_by"`
	CreatedAt         time.Time `json:"created_at"`
}

type KPIValue struct {
	ID              string    `json:"id"`
	TenantID        string    `json:"tenant_id"`
	KPIDefinitionID string    `json:"kpi_definition_id" validate:"required"`
	EmployeeID      string    `json:"employee_id"`
	Department      string    `json:"department"`
	PeriodStart     Date      `json:"period_start" validate:"required"`
	PeriodEnd       Date      `json:"period_end" validate:"required"`
	TargetValue     *float64  `json:"target_value"`
	ActualValue     float64   `json:"actual_value"`
	Notes           string    `json:"notes"`
	CreatedBy       string    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
}

// ScheduleResult is the response of an auto-schedule run.
type ScheduleResult struct {
	Count   int      `json:"count"`
	Created []Review `json:"created"`
}

type ReviewTypeFilter struct {
	ActiveOnly       bool
	AutoScheduleOnly bool
}

type ReviewFilter struct {
	Status     string `json:"status"`
	EmployeeID string `json:"employee_id"`
}

type GoalFilter struct {
	Status     string `json:"status"`
	EmployeeID string `json:"employee_id"`
}

type KPIValueFilter struct {
	EmployeeID      string `json:"employee_id"`
	KPIDefinitionID string `json:"kpi_definition_id"`
}

type RatingFilter struct {
	ReviewID      string `json:"review_id"`
	ParticipantID string `json:"participant_id"`
}
