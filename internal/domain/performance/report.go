package performance

import (
	"context"

	"hrperf/internal/domain/auth"
)

type Report struct {
	RatingDistribution map[string]int `json:"ratingDistribution"`
	GoalStatus         map[string]int `json:"goalStatus"`
	TotalReviews       int            `json:"totalReviews"`
	TotalGoals         int            `json:"totalGoals"`
	AvgKPI             float64        `json:"avgKPI"`
}

// GetReports summarises the reviews, goals and KPI values visible to actor.
func (s *Service) GetReports(ctx context.Context, actor auth.Actor) (Report, error) {
	reviews, err := s.ListReviews(ctx, actor, ReviewFilter{})
	if err != nil {
		return Report{}, err
	}
	goals, err := s.ListGoals(ctx, actor, GoalFilter{})
	if err != nil {
		return Report{}, err
	}
	values, err := s.ListKPIValues(ctx, actor, KPIValueFilter{})
	if err != nil {
		return Report{}, err
	}
	return buildReport(reviews, goals, values), nil
}

func ratingBucket(rating float64) string {
	switch {
	case rating <= 2:
		return "1.0-2.0"
	case rating <= 3:
		return "2.1-3.0"
	case rating <= 4:
		return "3.1-4.0"
	default:
		return "4.1-5.0"
	}
}

func buildReport(reviews []Review, goals []Goal, values []KPIValue) Report {
	report := Report{
		RatingDistribution: map[string]int{"1.0-2.0": 0, "2.1-3.0": 0, "3.1-4.0": 0, "4.1-5.0": 0},
		GoalStatus:         map[string]int{"Active": 0, "Completed": 0, "At Risk": 0},
		TotalReviews:       len(reviews),
		TotalGoals:         len(goals),
	}
	for _, r := range reviews {
		if r.OverallRating == nil || *r.OverallRating == 0 {
			continue
		}
		report.RatingDistribution[ratingBucket(*r.OverallRating)]++
	}
	for _, g := range goals {
		switch g.Status {
		case GoalStatusActive:
			report.GoalStatus["Active"]++
		case GoalStatusCompleted, GoalStatusAchieved:
			report.GoalStatus["Completed"]++
		case GoalStatusAtRisk, GoalStatusNotAchieved:
			report.GoalStatus["At Risk"]++
		}
	}

	var sum float64
	var n int
	for _, v := range values {
		if v.TargetValue == nil || *v.TargetValue <= 0 {
			continue
		}
		sum += v.ActualValue / *v.TargetValue * 100
		n++
	}
	if n > 0 {
		report.AvgKPI = sum / float64(n)
	}
	return report
}
