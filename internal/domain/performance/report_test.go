package performance

import "testing"

func ptr[T any](v T) *T { return &v }

func TestBuildReportBuckets(t *testing.T) {
	reviews := []Review{
		{OverallRating: ptr(1.5)},
		{OverallRating: ptr(2.0)},
		{OverallRating: ptr(2.5)},
		{OverallRating: ptr(3.7)},
		{OverallRating: ptr(4.9)},
		{OverallRating: ptr(0.0)},
		{},
	}
	goals := []Goal{
		{Status: GoalStatusActive},
		{Status: GoalStatusCompleted},
		{Status: GoalStatusAchieved},
		{Status: GoalStatusAtRisk},
		{Status: GoalStatusNotAchieved},
		{Status: "cancelled"},
	}
	values := []KPIValue{
		{TargetValue: ptr(100.0), ActualValue: 80},
		{TargetValue: ptr(50.0), ActualValue: 60},
		{TargetValue: ptr(0.0), ActualValue: 10},
		{ActualValue: 10},
	}

	report := buildReport(reviews, goals, values)
	if report.TotalReviews != 7 || report.TotalGoals != 6 {
		t.Fatalf("unexpected totals: %+v", report)
	}
	want := map[string]int{"1.0-2.0": 2, "2.1-3.0": 1, "3.1-4.0": 1, "4.1-5.0": 1}
	for bucket, n := range want {
		if report.RatingDistribution[bucket] != n {
			t.Fatalf("bucket %s: expected %d, got %d", bucket, n, report.RatingDistribution[bucket])
		}
	}
	if report.GoalStatus["Active"] != 1 || report.GoalStatus["Completed"] != 2 || report.GoalStatus["At Risk"] != 2 {
		t.Fatalf("unexpected goal status: %+v", report.GoalStatus)
	}
	if report.AvgKPI != 100 {
		t.Fatalf("expected avg KPI 100, got %v", report.AvgKPI)
	}
}

func TestBuildReportEmpty(t *testing.T) {
	report := buildReport(nil, nil, nil)
	if report.AvgKPI != 0 || report.TotalReviews != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(report.RatingDistribution) != 4 || len(report.GoalStatus) != 3 {
		t.Fatalf("expected zeroed buckets, got %+v", report)
	}
}
