package performance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHireDateWindowExampleScenario(t *testing.T) {
	hire := MustParseDate("2024-01-01")
	now := time.Date(2024, 4, 1, 9, 30, 0, 0, time.UTC)

	window, ok := hireDateWindow(hire, 90, 14, now)
	require.True(t, ok)
	assert.Equal(t, "2024-01-01", window.PeriodStart.String())
	assert.Equal(t, "2024-03-31", window.PeriodEnd.String())
	assert.Equal(t, "2024-04-14", window.DueDate.String())
}

func TestHireDateWindowBoundaries(t *testing.T) {
	hire := MustParseDate("2024-01-01")
	at := func(days int) time.Time { return hire.AddDays(days).Add(12 * time.Hour) }

	cases := []struct {
		name string
		days int
		want bool
	}{
		{"day before offset", 89, false},
		{"offset day", 90, true},
		{"day after offset", 91, true},
		{"last day of window", 119, true},
		{"window end is exclusive", 120, false},
		{"long after", 121, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := hireDateWindow(hire, 90, 14, at(tc.days))
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestHireDateWindowFutureHire(t *testing.T) {
	hire := MustParseDate("2030-01-01")
	_, ok := hireDateWindow(hire, 0, 7, time.Date(2029, 12, 31, 23, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestDaysBetweenFloors(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, daysBetween(from, from.Add(23*time.Hour)))
	assert.Equal(t, 1, daysBetween(from, from.Add(24*time.Hour)))
	assert.Equal(t, -1, daysBetween(from, from.Add(-time.Hour)))
}

func TestSchedulableRequiresHireDateTriggerAndNumbers(t *testing.T) {
	offset, duration := 90, 14
	assert.True(t, schedulable(ReviewType{TriggerEvent: TriggerHireDate, ScheduleOffsetDays: &offset, DurationDays: &duration}))
	assert.False(t, schedulable(ReviewType{TriggerEvent: TriggerHireDate, DurationDays: &duration}))
	assert.False(t, schedulable(ReviewType{TriggerEvent: TriggerHireDate, ScheduleOffsetDays: &offset}))
	assert.False(t, schedulable(ReviewType{TriggerEvent: "anniversary", ScheduleOffsetDays: &offset, DurationDays: &duration}))
}

func TestEligibleWindowSkipsEmployeesWithoutHireDate(t *testing.T) {
	offset, duration := 0, 7
	rt := ReviewType{TriggerEvent: TriggerHireDate, ScheduleOffsetDays: &offset, DurationDays: &duration}
	_, ok := eligibleWindow(rt, Employee{}, time.Now())
	assert.False(t, ok)
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalJSON([]byte(`"2024-02-29T15:04:05Z"`)))
	assert.Equal(t, "2024-02-29", d.String())

	out, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2024-02-29"`, string(out))

	require.NoError(t, d.UnmarshalJSON([]byte(`null`)))
	assert.True(t, d.IsZero())
	out, err = d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	assert.Error(t, d.UnmarshalJSON([]byte(`"yesterday"`)))
}
