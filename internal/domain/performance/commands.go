package performance

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Command is one typed request against the performance module. The set of
// implementations is closed; ParseCommand is the only constructor for
// untrusted input.
type Command interface {
	command()
}

type (
	CreateReviewTypeCommand struct{ Data ReviewType }
	ListReviewTypesCommand  struct{}
	UpdateReviewTypeCommand struct {
		ID    string
		Patch json.RawMessage
	}
	DeleteReviewTypeCommand struct{ ID string }

	AutoScheduleReviewsCommand struct{}
	CreateReviewCommand        struct{ Data Review }
	ListReviewsCommand         struct{ Filter ReviewFilter }
	GetReviewCommand           struct{ ID string }
	UpdateReviewCommand        struct {
		ID    string
		Patch json.RawMessage
	}
	DeleteReviewCommand struct{ ID string }

	AddParticipantCommand         struct{ Data Participant }
	ListParticipantsCommand       struct{ ReviewID string }
	MyPendingParticipantsCommand  struct{}
	CreateCriterionCommand        struct{ Data Criterion }
	ListCriteriaCommand           struct{ ReviewTypeID string }
	UpdateCriterionCommand        struct {
		ID    string
		Patch json.RawMessage
	}
	DeleteCriterionCommand struct{ ID string }

	CreateRatingCommand struct{ Data Rating }
	ListRatingsCommand  struct{ Filter RatingFilter }
	UpdateRatingCommand struct {
		ID    string
		Patch json.RawMessage
	}

	CreateGoalCommand struct{ Data Goal }
	ListGoalsCommand  struct{ Filter GoalFilter }
	UpdateGoalCommand struct {
		ID    string
		Patch json.RawMessage
	}
	DeleteGoalCommand struct{ ID string }

	CreateKPIDefinitionCommand struct{ Data KPIDefinition }
	ListKPIDefinitionsCommand  struct{}
	UpdateKPIDefinitionCommand struct {
		ID    string
		Patch json.RawMessage
	}
	DeleteKPIDefinitionCommand struct{ ID string }

	CreateKPIValueCommand struct{ Data KPIValue }
	ListKPIValuesCommand  struct{ Filter KPIValueFilter }
	UpdateKPIValueCommand struct {
		ID    string
		Patch json.RawMessage
	}
	DeleteKPIValueCommand struct{ ID string }

	GetReportsCommand struct{}
)

func (CreateReviewTypeCommand) command()      {}
func (ListReviewTypesCommand) command()       {}
func (UpdateReviewTypeCommand) command()      {}
func (DeleteReviewTypeCommand) command()      {}
func (AutoScheduleReviewsCommand) command()   {}
func (CreateReviewCommand) command()          {}
func (ListReviewsCommand) command()           {}
func (GetReviewCommand) command()             {}
func (UpdateReviewCommand) command()          {}
func (DeleteReviewCommand) command()          {}
func (AddParticipantCommand) command()        {}
func (ListParticipantsCommand) command()      {}
func (MyPendingParticipantsCommand) command() {}
func (CreateCriterionCommand) command()       {}
func (ListCriteriaCommand) command()          {}
func (UpdateCriterionCommand) command()       {}
func (DeleteCriterionCommand) command()       {}
func (CreateRatingCommand) command()          {}
func (ListRatingsCommand) command()           {}
func (UpdateRatingCommand) command()          {}
func (CreateGoalCommand) command()            {}
func (ListGoalsCommand) command()             {}
func (UpdateGoalCommand) command()            {}
func (DeleteGoalCommand) command()            {}
func (CreateKPIDefinitionCommand) command()   {}
func (ListKPIDefinitionsCommand) command()    {}
func (UpdateKPIDefinitionCommand) command()   {}
func (DeleteKPIDefinitionCommand) command()   {}
func (CreateKPIValueCommand) command()        {}
func (ListKPIValuesCommand) command()         {}
func (UpdateKPIValueCommand) command()        {}
func (DeleteKPIValueCommand) command()        {}
func (GetReportsCommand) command()            {}

const (
	ActionList         = "list"
	ActionGet          = "get"
	ActionCreate       = "create"
	ActionUpdate       = "update"
	ActionDelete       = "delete"
	ActionAdd          = "add"
	ActionAutoSchedule = "auto_schedule"
	ActionMyPending    = "my_pending"
	ActionGetReports   = "get_reports"
)

// Envelope is the wire shape of a command request.
type Envelope struct {
	Action  string          `json:"action"`
	Entity  string          `json:"entity"`
	Data    json.RawMessage `json:"data,omitempty"`
	ID      string          `json:"id,omitempty"`
	Filters json.RawMessage `json:"filters,omitempty"`
}

type commandKey struct {
	entity string
	action string
}

type commandParser func(Envelope) (Command, error)

var commandParsers = map[commandKey]commandParser{
	{EntityReviewTypes, ActionList}: func(Envelope) (Command, error) { return ListReviewTypesCommand{}, nil },
	{EntityReviewTypes, ActionCreate}: func(e Envelope) (Command, error) {
		data := ReviewType{IsActive: true}
		if err := decodeData(e.Data, &data); err != nil {
			return nil, err
		}
		return CreateReviewTypeCommand{Data: data}, nil
	},
	{EntityReviewTypes, ActionUpdate}: func(e Envelope) (Command, error) {
		id, patch, err := updateArgs(e)
		return UpdateReviewTypeCommand{ID: id, Patch: patch}, err
	},
	{EntityReviewTypes, ActionDelete}: func(e Envelope) (Command, error) {
		id, err := requireID(e)
		return DeleteReviewTypeCommand{ID: id}, err
	},

	{EntityReviews, ActionAutoSchedule}: func(Envelope) (Command, error) { return AutoScheduleReviewsCommand{}, nil },
	{EntityReviews, ActionCreate}: func(e Envelope) (Command, error) {
		var data Review
		if err := decodeData(e.Data, &data); err != nil {
			return nil, err
		}
		return CreateReviewCommand{Data: data}, nil
	},
	{EntityReviews, ActionList}: func(e Envelope) (Command, error) {
		var filter ReviewFilter
		if err := decodeFilters(e.Filters, &filter); err != nil {
			return nil, err
		}
		return ListReviewsCommand{Filter: filter}, nil
	},
	{EntityReviews, ActionGet}: func(e Envelope) (Command, error) {
		id, err := requireID(e)
		return GetReviewCommand{ID: id}, err
	},
	{EntityReviews, ActionUpdate}: func(e Envelope) (Command, error) {
		id, patch, err := updateArgs(e)
		return UpdateReviewCommand{ID: id, Patch: patch}, err
	},
	{EntityReviews, ActionDelete}: func(e Envelope) (Command, error) {
		id, err := requireID(e)
		return DeleteReviewCommand{ID: id}, err
	},

	{EntityParticipants, ActionAdd}: func(e Envelope) (Command, error) {
		var data Participant
		if err := decodeData(e.Data, &data); err != nil {
			return nil, err
		}
		return AddParticipantCommand{Data: data}, nil
	},
	{EntityParticipants, ActionList}: func(e Envelope) (Command, error) {
		var filter struct {
			ReviewID string `json:"review_id"`
		}
		if err := decodeFilters(e.Filters, &filter); err != nil {
			return nil, err
		}
		return ListParticipantsCommand{ReviewID: filter.ReviewID}, nil
	},
	{EntityParticipants, ActionMyPending}: func(Envelope) (Command, error) { return MyPendingParticipantsCommand{}, nil },

	{EntityCriteria, ActionCreate}: func(e Envelope) (Command, error) {
		data := Criterion{IsRequired: true}
		if err := decodeData(e.Data, &data); err != nil {
			return nil, err
		}
		return CreateCriterionCommand{Data: data}, nil
	},
	{EntityCriteria, ActionList}: func(e Envelope) (Command, error) {
		var filter struct {
			ReviewTypeID string `json:"review_type_id"`
		}
		if err := decodeFilters(e.Filters, &filter); err != nil {
			return nil, err
		}
		return ListCriteriaCommand{ReviewTypeID: filter.ReviewTypeID}, nil
	},
	{EntityCriteria, ActionUpdate}: func(e Envelope) (Command, error) {
		id, patch, err := updateArgs(e)
		return UpdateCriterionCommand{ID: id, Patch: patch}, err
	},
	{EntityCriteria, ActionDelete}: func(e Envelope) (Command, error) {
		id, err := requireID(e)
		return DeleteCriterionCommand{ID: id}, err
	},

	{EntityRatings, ActionCreate}: func(e Envelope) (Command, error) {
		var data Rating
		if err := decodeData(e.Data, &data); err != nil {
			return nil, err
		}
		return CreateRatingCommand{Data: data}, nil
	},
	{EntityRatings, ActionList}: func(e Envelope) (Command, error) {
		var filter RatingFilter
		if err := decodeFilters(e.Filters, &filter); err != nil {
			return nil, err
		}
		return ListRatingsCommand{Filter: filter}, nil
	},
	{EntityRatings, ActionUpdate}: func(e Envelope) (Command, error) {
		id, patch, err := updateArgs(e)
		return UpdateRatingCommand{ID: id, Patch: patch}, err
	},

	{EntityGoals, ActionCreate}: func(e Envelope) (Command, error) {
		var data Goal
		if err := decodeData(e.Data, &data); err != nil {
			return nil, err
		}
		return CreateGoalCommand{Data: data}, nil
	},
	{EntityGoals, ActionList}: func(e Envelope) (Command, error) {
		var filter GoalFilter
		if err := decodeFilters(e.Filters, &filter); err != nil {
			return nil, err
		}
		return ListGoalsCommand{Filter: filter}, nil
	},
	{EntityGoals, ActionUpdate}: func(e Envelope) (Command, error) {
		id, patch, err := updateArgs(e)
		return UpdateGoalCommand{ID: id, Patch: patch}, err
	},
	{EntityGoals, ActionDelete}: func(e Envelope) (Command, error) {
		id, err := requireID(e)
		return DeleteGoalCommand{ID: id}, err
	},

	{EntityKPIDefinitions, ActionList}: func(Envelope) (Command, error) { return ListKPIDefinitionsCommand{}, nil },
	{EntityKPIDefinitions, ActionCreate}: func(e Envelope) (Command, error) {
		data := KPIDefinition{IsActive: true}
		if err := decodeData(e.Data, &data); err != nil {
			return nil, err
		}
		return CreateKPIDefinitionCommand{Data: data}, nil
	},
	{EntityKPIDefinitions, ActionUpdate}: func(e Envelope) (Command, error) {
		id, patch, err := updateArgs(e)
		return UpdateKPIDefinitionCommand{ID: id, Patch: patch}, err
	},
	{EntityKPIDefinitions, ActionDelete}: func(e Envelope) (Command, error) {
		id, err := requireID(e)
		return DeleteKPIDefinitionCommand{ID: id}, err
	},

	{EntityKPIValues, ActionCreate}: func(e Envelope) (Command, error) {
		var data KPIValue
		if err := decodeData(e.Data, &data); err != nil {
			return nil, err
		}
		return CreateKPIValueCommand{Data: data}, nil
	},
	{EntityKPIValues, ActionList}: func(e Envelope) (Command, error) {
		var filter KPIValueFilter
		if err := decodeFilters(e.Filters, &filter); err != nil {
			return nil, err
		}
		return ListKPIValuesCommand{Filter: filter}, nil
	},
	{EntityKPIValues, ActionUpdate}: func(e Envelope) (Command, error) {
		id, patch, err := updateArgs(e)
		return UpdateKPIValueCommand{ID: id, Patch: patch}, err
	},
	{EntityKPIValues, ActionDelete}: func(e Envelope) (Command, error) {
		id, err := requireID(e)
		return DeleteKPIValueCommand{ID: id}, err
	},
}

// ParseCommand decodes a request body into a Command. get_reports is
// accepted for any entity.
func ParseCommand(raw []byte) (Command, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, invalid("request", err.Error())
	}
	return env.Command()
}

func (e Envelope) Command() (Command, error) {
	if e.Action == ActionGetReports {
		return GetReportsCommand{}, nil
	}
	parse, ok := commandParsers[commandKey{entity: e.Entity, action: e.Action}]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrInvalidCommand, e.Action, e.Entity)
	}
	cmd, err := parse(e)
	if err != nil {
		return nil, err
	}
	return cmd, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeData(raw json.RawMessage, into any) error {
	if isNull(raw) {
		return invalid("data", "required")
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return invalid("data", err.Error())
	}
	return nil
}

func decodeFilters(raw json.RawMessage, into any) error {
	if isNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return invalid("filters", err.Error())
	}
	return nil
}

func requireID(e Envelope) (string, error) {
	if e.ID == "" {
		return "", invalid("id", "required")
	}
	return e.ID, nil
}

func updateArgs(e Envelope) (string, json.RawMessage, error) {
	id, err := requireID(e)
	if err != nil {
		return "", nil, err
	}
	if isNull(e.Data) {
		return "", nil, invalid("data", "update payload required")
	}
	return id, e.Data, nil
}
