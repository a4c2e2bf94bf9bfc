package performance

const (
	TriggerHireDate = "hire_date"

	ReviewStatusScheduled  = "scheduled"
	ReviewStatusInProgress = "in_progress"
	ReviewStatusCompleted  = "completed"

	ParticipantTypeSelf    = "self"
	ParticipantTypeManager = "manager"
	ParticipantTypePeer    = "peer"

	ParticipantStatusPending    = "pending"
	ParticipantStatusInProgress = "in_progress"
	ParticipantStatusCompleted  = "completed"

	EmployeeStatusActive = "active"

	GoalStatusActive      = "active"
	GoalStatusCompleted   = "completed"
	GoalStatusAchieved    = "achieved"
	GoalStatusAtRisk      = "at_risk"
	GoalStatusNotAchieved = "not_achieved"
)

// eligibilityWindowDays bounds how long after the offset a hire-date review
// can still be scheduled. It is not configurable per review type.
const eligibilityWindowDays = 30

const (
	EntityReviewTypes    = "review_types"
	EntityReviews        = "reviews"
	EntityGoals          = "goals"
	EntityKPIDefinitions = "kpi_definitions"
	EntityKPIValues      = "kpi_values"
	EntityCriteria       = "criteria"
	EntityRatings        = "ratings"
	EntityParticipants   = "participants"
)

const (
	auditEntityReviewTypes    = "performance_review_types"
	auditEntityReviews        = "performance_reviews"
	auditEntityGoals          = "performance_goals"
	auditEntityKPIDefinitions = "kpi_definitions"
	auditEntityKPIValues      = "kpi_values"
	auditEntityCriteria       = "performance_criteria"
	auditEntityRatings        = "performance_ratings"
	auditEntityParticipants   = "review_participants"
)

const (
	ActionCreateReviewType    = "CREATE_REVIEW_TYPE"
	ActionUpdateReviewType    = "UPDATE_REVIEW_TYPE"
	ActionDeleteReviewType    = "DELETE_REVIEW_TYPE"
	ActionCreateReview        = "CREATE_REVIEW"
	ActionUpdateReview        = "UPDATE_REVIEW"
	ActionDeleteReview        = "DELETE_REVIEW"
	ActionAutoScheduleReviews = "AUTO_SCHEDULE_REVIEWS"
	ActionCreateGoal          = "CREATE_GOAL"
	ActionUpdateGoal          = "UPDATE_GOAL"
	ActionDeleteGoal          = "DELETE_GOAL"
	ActionCreateKPIDefinition = "CREATE_KPI_DEFINITION"
	ActionUpdateKPIDefinition = "UPDATE_KPI_DEFINITION"
	ActionDeleteKPIDefinition = "DELETE_KPI_DEFINITION"
	ActionCreateKPIValue      = "CREATE_KPI_VALUE"
	ActionUpdateKPIValue      = "UPDATE_KPI_VALUE"
	ActionDeleteKPIValue      = "DELETE_KPI_VALUE"
	ActionCreateCriteria      = "CREATE_CRITERIA"
	ActionUpdateCriteria      = "UPDATE_CRITERIA"
	ActionDeleteCriteria      = "DELETE_CRITERIA"
	ActionCreateRating        = "CREATE_RATING"
	ActionUpdateRating        = "UPDATE_RATING"
	ActionAddParticipant      = "ADD_PARTICIPANT"
)
