package performance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	cases := []struct {
		name   string
		in     any
		field  string
		reason string
	}{
		{
			name:   "missing id",
			in:     Rating{ParticipantID: "p-1", CriterionID: "c-1"},
			field:  "review_id",
			reason: "required",
		},
		{
			name:   "blank name",
			in:     KPIDefinition{Name: "   "},
			field:  "name",
			reason: "required",
		},
		{
			name:   "zero date",
			in:     KPIValue{KPIDefinitionID: "k-1", PeriodStart: MustParseDate("2024-01-01")},
			field:  "period_end",
			reason: "required",
		},
		{
			name:   "negative pointer",
			in:     ReviewType{Name: "Annual", DurationDays: ptr(-1)},
			field:  "duration_days",
			reason: "must not be negative",
		},
		{
			name:   "progress above range",
			in:     Goal{EmployeeID: "e-1", Title: "Ship", ProgressPercentage: 120},
			field:  "progress_percentage",
			reason: "must be at most 100",
		},
		{
			name:   "unknown participant type",
			in:     Participant{ReviewID: "r-1", ParticipantID: "u-1", ParticipantType: "skip_level"},
			field:  "participant_type",
			reason: "must be one of self, manager, peer",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateStruct(tc.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, tc.reason, verr.Reason)
		})
	}
}

func TestValidateStructAcceptsValidInput(t *testing.T) {
	assert.NoError(t, validateStruct(Review{
		ReviewTypeID:      "rt-1",
		EmployeeID:        "e-1",
		ReviewPeriodStart: MustParseDate("2024-01-01"),
		ReviewPeriodEnd:   MustParseDate("2024-03-31"),
		ReviewDueDate:     MustParseDate("2024-04-14"),
	}))
	assert.NoError(t, validateStruct(ReviewType{Name: "Annual"}))
}

func TestValidateReviewRejectsInvertedPeriod(t *testing.T) {
	err := validateReview(Review{
		ReviewTypeID:      "rt-1",
		EmployeeID:        "e-1",
		ReviewPeriodStart: MustParseDate("2024-03-31"),
		ReviewPeriodEnd:   MustParseDate("2024-01-01"),
		ReviewDueDate:     MustParseDate("2024-04-14"),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "review_period_end", verr.Field)
}
