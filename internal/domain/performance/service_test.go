package performance_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrperf/internal/domain/auth"
	"hrperf/internal/domain/performance"
	"hrperf/internal/domain/performance/memstore"
)

const tenantID = "tenant-1"

var (
	admin    = auth.Actor{UserID: "user-admin", TenantID: tenantID, Role: auth.RoleAdmin}
	hr       = auth.Actor{UserID: "user-hr", TenantID: tenantID, Role: auth.RoleHRManager}
	employee = auth.Actor{UserID: "user-emp", TenantID: tenantID, Role: auth.RoleEmployee}
	boss     = auth.Actor{UserID: "user-boss", TenantID: tenantID, Role: auth.RoleManager}
)

type fixture struct {
	store   *memstore.Store
	audit   *memstore.AuditLog
	svc     *performance.Service
	now     time.Time
	manager performance.Employee
	worker  performance.Employee
}

func newFixture(t *testing.T, opts ...performance.Option) *fixture {
	t.Helper()
	f := &fixture{
		store: memstore.New(),
		audit: &memstore.AuditLog{},
		now:   time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC),
	}
	f.store.AddTenant(tenantID)
	f.manager = f.store.AddEmployee(performance.Employee{
		TenantID:  tenantID,
		UserID:    boss.UserID,
		FirstName: "Grace",
		LastName:  "Hopper",
		HireDate:  hireDate("2020-06-01"),
	})
	f.worker = f.store.AddEmployee(performance.Employee{
		TenantID:  tenantID,
		UserID:    employee.UserID,
		ManagerID: f.manager.ID,
		FirstName: "Ada",
		LastName:  "Lovelace",
		HireDate:  hireDate("2024-01-01"),
	})
	opts = append([]performance.Option{performance.WithClock(func() time.Time { return f.now })}, opts...)
	f.svc = performance.NewService(f.store, f.audit, opts...)
	return f
}

func hireDate(s string) *performance.Date {
	d := performance.MustParseDate(s)
	return &d
}

func intPtr(v int) *int { return &v }

func (f *fixture) reviewType(t *testing.T, rt performance.ReviewType) performance.ReviewType {
	t.Helper()
	if rt.Name == "" {
		rt.Name = "90-Day Probation Review"
	}
	rt.IsActive = true
	created, err := f.svc.CreateReviewType(context.Background(), admin, rt)
	require.NoError(t, err)
	return created
}

func (f *fixture) probationType(t *testing.T) performance.ReviewType {
	return f.reviewType(t, performance.ReviewType{
		AutoSchedule:           true,
		TriggerEvent:           performance.TriggerHireDate,
		ScheduleOffsetDays:     intPtr(90),
		DurationDays:           intPtr(14),
		RequiresSelfAssessment: true,
		RequiresManagerReview:  true,
	})
}

func (f *fixture) reviews(t *testing.T) []performance.Review {
	t.Helper()
	reviews, err := f.svc.ListReviews(context.Background(), admin, performance.ReviewFilter{})
	require.NoError(t, err)
	return reviews
}

func (f *fixture) participants(t *testing.T, reviewID string) []performance.Participant {
	t.Helper()
	ps, err := f.svc.ListParticipants(context.Background(), admin, reviewID)
	require.NoError(t, err)
	return ps
}

func TestAutoScheduleExampleScenario(t *testing.T) {
	f := newFixture(t)
	rt := f.probationType(t)

	result, err := f.svc.RunAutoSchedule(context.Background(), admin)
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	require.Len(t, result.Created, 1)

	review := result.Created[0]
	assert.Equal(t, rt.ID, review.ReviewTypeID)
	assert.Equal(t, f.worker.ID, review.EmployeeID)
	assert.Equal(t, "2024-01-01", review.ReviewPeriodStart.String())
	assert.Equal(t, "2024-03-31", review.ReviewPeriodEnd.String())
	assert.Equal(t, "2024-04-14", review.ReviewDueDate.String())
	assert.True(t, review.IsAutoGenerated)
	assert.Equal(t, admin.UserID, review.CreatedBy)
	assert.Equal(t, performance.ReviewStatusScheduled, review.Status)

	ps := f.participants(t, review.ID)
	require.Len(t, ps, 2)
	assert.Contains(t, f.audit.Actions(), performance.ActionAutoScheduleReviews)
}

func TestAutoScheduleIsIdempotentWithinWindow(t *testing.T) {
	f := newFixture(t)
	f.probationType(t)
	f.now = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	first, err := f.svc.RunAutoSchedule(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Count)

	second, err := f.svc.RunAutoSchedule(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Count)
	assert.NotNil(t, second.Created)
	assert.Len(t, f.reviews(t), 1)
}

func TestAutoScheduleWindowBoundaries(t *testing.T) {
	hire := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for name, now := range map[string]time.Time{
		"before offset":  hire.AddDate(0, 0, 89),
		"window expired": hire.AddDate(0, 0, 90+31),
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.probationType(t)
			f.now = now

			result, err := f.svc.RunAutoSchedule(context.Background(), admin)
			require.NoError(t, err)
			assert.Equal(t, 0, result.Count)
			assert.Empty(t, f.reviews(t))
			assert.NotContains(t, f.audit.Actions(), performance.ActionAutoScheduleReviews)
		})
	}
}

func TestAutoScheduleSkipsInactiveTypesAndEmployees(t *testing.T) {
	f := newFixture(t)
	rt := f.probationType(t)
	_, err := f.svc.UpdateReviewType(context.Background(), admin, rt.ID, json.RawMessage(`{"is_active":false}`))
	require.NoError(t, err)

	result, err := f.svc.RunAutoSchedule(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)

	f2 := newFixture(t)
	f2.probationType(t)
	f2.store.AddEmployee(performance.Employee{
		TenantID: tenantID,
		Status:   "terminated",
		HireDate: hireDate("2024-01-01"),
	})
	result, err = f2.svc.RunAutoSchedule(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
}

func TestAutoScheduleIgnoresOtherTriggers(t *testing.T) {
	f := newFixture(t)
	f.reviewType(t, performance.ReviewType{
		Name:               "Anniversary",
		AutoSchedule:       true,
		TriggerEvent:       "work_anniversary",
		ScheduleOffsetDays: intPtr(0),
		DurationDays:       intPtr(7),
	})
	result, err := f.svc.RunAutoSchedule(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)
}

func TestAutoScheduleRequiresManage(t *testing.T) {
	f := newFixture(t)
	f.probationType(t)

	for _, actor := range []auth.Actor{employee, boss} {
		_, err := f.svc.RunAutoSchedule(context.Background(), actor)
		require.ErrorIs(t, err, performance.ErrUnauthorized)
	}
	assert.Empty(t, f.reviews(t))
	assert.Equal(t, 0, f.store.Calls("InsertReviews"))

	_, err := f.svc.RunAutoSchedule(context.Background(), hr)
	require.NoError(t, err)
}

func TestAutoScheduleRollsBackOnParticipantFailure(t *testing.T) {
	f := newFixture(t)
	f.probationType(t)
	f.store.FailOn("InsertParticipants", errors.New("boom"))

	_, err := f.svc.RunAutoSchedule(context.Background(), admin)
	require.Error(t, err)
	assert.Empty(t, f.reviews(t))
}

func TestAutoScheduleFailsWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	f.probationType(t)
	f.store.FailOn("InsertReviews", errors.New("insert failed"))

	_, err := f.svc.RunAutoSchedule(context.Background(), admin)
	require.ErrorContains(t, err, "insert failed")
}

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	released int
}

func (l *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		l.released++
		return nil
	}, true, nil
}

func TestAutoScheduleRunLock(t *testing.T) {
	locker := &fakeLocker{held: map[string]bool{}}
	f := newFixture(t, performance.WithRunLocker(locker, time.Minute))
	f.probationType(t)

	locker.held["performance:auto_schedule:"+tenantID] = true
	_, err := f.svc.RunAutoSchedule(context.Background(), admin)
	require.ErrorIs(t, err, performance.ErrScheduleInProgress)
	assert.Empty(t, f.reviews(t))

	delete(locker.held, "performance:auto_schedule:"+tenantID)
	result, err := f.svc.RunAutoSchedule(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, 1, locker.released)
	assert.Empty(t, locker.held)
}

type recordingMetrics struct {
	runs         []string
	participants map[string]int
	completed    int
}

func (m *recordingMetrics) ScheduleRun(tenantID, outcome string, created int) {
	m.runs = append(m.runs, outcome)
}

func (m *recordingMetrics) ParticipantsCreated(participantType string, count int) {
	m.participants[participantType] += count
}

func (m *recordingMetrics) ParticipantCompleted() { m.completed++ }

func TestAutoScheduleReportsMetrics(t *testing.T) {
	metrics := &recordingMetrics{participants: map[string]int{}}
	f := newFixture(t, performance.WithMetrics(metrics))
	f.probationType(t)

	_, err := f.svc.RunAutoSchedule(context.Background(), admin)
	require.NoError(t, err)
	_, err = f.svc.RunAutoSchedule(context.Background(), admin)
	require.NoError(t, err)

	assert.Equal(t, []string{"created", "empty"}, metrics.runs)
	assert.Equal(t, map[string]int{"self": 1, "manager": 1}, metrics.participants)
}

func manualReview(rt performance.ReviewType, emp performance.Employee) performance.Review {
	return performance.Review{
		ReviewTypeID:      rt.ID,
		EmployeeID:        emp.ID,
		ReviewPeriodStart: performance.MustParseDate("2024-01-01"),
		ReviewPeriodEnd:   performance.MustParseDate("2024-06-30"),
		ReviewDueDate:     performance.MustParseDate("2024-07-14"),
	}
}

func TestCreateReviewFansOutSelfAndManager(t *testing.T) {
	f := newFixture(t)
	rt := f.probationType(t)

	review, err := f.svc.CreateReview(context.Background(), hr, manualReview(rt, f.worker))
	require.NoError(t, err)
	assert.False(t, review.IsAutoGenerated)

	ps := f.participants(t, review.ID)
	require.Len(t, ps, 2)
	byType := map[string]string{}
	for _, p := range ps {
		byType[p.ParticipantType] = p.ParticipantID
		assert.Equal(t, performance.ParticipantStatusPending, p.Status)
	}
	assert.Equal(t, employee.UserID, byType["self"])
	assert.Equal(t, boss.UserID, byType["manager"])

	entries := f.audit.Entries()
	last := entries[len(entries)-1]
	assert.Equal(t, performance.ActionCreateReview, last.Action)
	assert.Equal(t, "performance_reviews", last.EntityType)
	assert.Equal(t, review.ID, last.EntityID)
	assert.Equal(t, hr.UserID, last.ActorID)
}

func TestCreateReviewConditionalFanOut(t *testing.T) {
	f := newFixture(t)
	selfOnly := f.reviewType(t, performance.ReviewType{Name: "Self only", RequiresSelfAssessment: true})
	review, err := f.svc.CreateReview(context.Background(), admin, manualReview(selfOnly, f.worker))
	require.NoError(t, err)
	ps := f.participants(t, review.ID)
	require.Len(t, ps, 1)
	assert.Equal(t, performance.ParticipantTypeSelf, ps[0].ParticipantType)

	both := f.reviewType(t, performance.ReviewType{Name: "Both", RequiresSelfAssessment: true, RequiresManagerReview: true})
	review, err = f.svc.CreateReview(context.Background(), admin, manualReview(both, f.manager))
	require.NoError(t, err)
	for _, p := range f.participants(t, review.ID) {
		assert.NotEqual(t, performance.ParticipantTypeManager, p.ParticipantType)
	}

	noUser := f.store.AddEmployee(performance.Employee{TenantID: tenantID, ManagerID: f.manager.ID})
	review, err = f.svc.CreateReview(context.Background(), admin, manualReview(both, noUser))
	require.NoError(t, err)
	ps = f.participants(t, review.ID)
	require.Len(t, ps, 1)
	assert.Equal(t, performance.ParticipantTypeManager, ps[0].ParticipantType)
}

func TestCreateReviewRequiresManage(t *testing.T) {
	f := newFixture(t)
	rt := f.probationType(t)

	_, err := f.svc.CreateReview(context.Background(), employee, manualReview(rt, f.worker))
	require.ErrorIs(t, err, performance.ErrUnauthorized)
	assert.Empty(t, f.reviews(t))
	assert.NotContains(t, f.audit.Actions(), performance.ActionCreateReview)
}

func TestCreateReviewValidation(t *testing.T) {
	f := newFixture(t)
	rt := f.probationType(t)
	in := manualReview(rt, f.worker)
	in.ReviewPeriodEnd = performance.MustParseDate("2023-12-31")

	_, err := f.svc.CreateReview(context.Background(), admin, in)
	var verr *performance.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "review_period_end", verr.Field)
}

func TestCreateReviewRollsBackOnParticipantFailure(t *testing.T) {
	f := newFixture(t)
	rt := f.probationType(t)
	f.store.FailOn("InsertParticipants", errors.New("participants down"))

	_, err := f.svc.CreateReview(context.Background(), admin, manualReview(rt, f.worker))
	require.Error(t, err)
	assert.Empty(t, f.reviews(t))
}

func TestCreateReviewWithUnknownTypeHasNoParticipants(t *testing.T) {
	f := newFixture(t)
	review, err := f.svc.CreateReview(context.Background(), admin, manualReview(performance.ReviewType{ID: "missing"}, f.worker))
	require.NoError(t, err)
	assert.Empty(t, f.participants(t, review.ID))
}

func (f *fixture) criteria(t *testing.T, rt performance.ReviewType, required, optional int) []performance.Criterion {
	t.Helper()
	var out []performance.Criterion
	for i := 0; i < required+optional; i++ {
		c, err := f.svc.CreateCriterion(context.Background(), admin, performance.Criterion{
			ReviewTypeID:  rt.ID,
			CriterionName: "criterion",
			IsRequired:    i < required,
			DisplayOrder:  i,
		})
		require.NoError(t, err)
		out = append(out, c)
	}
	return out
}

func TestRatingCompletesParticipantOnLastRequiredCriterion(t *testing.T) {
	f := newFixture(t)
	rt := f.probationType(t)
	criteria := f.criteria(t, rt, 3, 1)
	review, err := f.svc.CreateReview(context.Background(), admin, manualReview(rt, f.worker))
	require.NoError(t, err)

	var self performance.Participant
	for _, p := range f.participants(t, review.ID) {
		if p.ParticipantType == performance.ParticipantTypeSelf {
			self = p
		}
	}
	require.NotEmpty(t, self.ID)

	status := func() performance.Participant {
		pending, err := f.svc.MyPendingParticipants(context.Background(), employee)
		require.NoError(t, err)
		for _, p := range pending {
			if p.ID == self.ID {
				return p
			}
		}
		ps := f.participants(t, review.ID)
		for _, p := range ps {
			if p.ID == self.ID {
				return p
			}
		}
		t.Fatalf("participant %s disappeared", self.ID)
		return performance.Participant{}
	}

	for i := 0; i < 3; i++ {
		_, err := f.svc.SubmitRating(context.Background(), employee, performance.Rating{
			ReviewID:      review.ID,
			ParticipantID: self.ID,
			CriterionID:   criteria[i].ID,
			Rating:        4,
		})
		require.NoError(t, err)

		p := status()
		if i < 2 {
			assert.Equal(t, performance.ParticipantStatusPending, p.Status, "after rating %d", i+1)
			assert.Nil(t, p.SubmittedAt)
		} else {
			assert.Equal(t, performance.ParticipantStatusCompleted, p.Status)
			require.NotNil(t, p.SubmittedAt)
			assert.Equal(t, f.now, *p.SubmittedAt)
		}
	}
}

func TestRatingCannotBeSubmittedForSomeoneElse(t *testing.T) {
	f := newFixture(t)
	rt := f.probationType(t)
	criteria := f.criteria(t, rt, 1, 0)
	review, err := f.svc.CreateReview(context.Background(), admin, manualReview(rt, f.worker))
	require.NoError(t, err)

	var managerRow performance.Participant
	for _, p := range f.participants(t, review.ID) {
		if p.ParticipantType == performance.ParticipantTypeManager {
			managerRow = p
		}
	}
	_, err = f.svc.SubmitRating(context.Background(), employee, performance.Rating{
		ReviewID:      review.ID,
		ParticipantID: managerRow.ID,
		CriterionID:   criteria[0].ID,
		Rating:        5,
	})
	require.ErrorIs(t, err, performance.ErrUnauthorized)
}

func TestRatingMustTargetParticipantsReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rt := f.probationType(t)
	criteria := f.criteria(t, rt, 1, 0)
	own, err := f.svc.CreateReview(ctx, admin, manualReview(rt, f.worker))
	require.NoError(t, err)
	other, err := f.svc.CreateReview(ctx, admin, manualReview(rt, f.manager))
	require.NoError(t, err)

	var self performance.Participant
	for _, p := range f.participants(t, own.ID) {
		if p.ParticipantType == performance.ParticipantTypeSelf {
			self = p
		}
	}
	require.NotEmpty(t, self.ID)

	var verr *performance.ValidationError
	_, err = f.svc.SubmitRating(ctx, employee, performance.Rating{
		ReviewID:      other.ID,
		ParticipantID: self.ID,
		CriterionID:   criteria[0].ID,
		Rating:        5,
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "review_id", verr.Field)

	annual := f.reviewType(t, performance.ReviewType{Name: "Annual Performance Review"})
	foreign := f.criteria(t, annual, 1, 0)
	_, err = f.svc.SubmitRating(ctx, employee, performance.Rating{
		ReviewID:      own.ID,
		ParticipantID: self.ID,
		CriterionID:   foreign[0].ID,
		Rating:        5,
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "criterion_id", verr.Field)

	ratings, err := f.svc.ListRatings(ctx, admin, performance.RatingFilter{})
	require.NoError(t, err)
	assert.Empty(t, ratings)
	for _, p := range f.participants(t, own.ID) {
		assert.Equal(t, performance.ParticipantStatusPending, p.Status)
	}
}

func TestRatingCompletionFailureKeepsRating(t *testing.T) {
	f := newFixture(t)
	rt := f.probationType(t)
	criteria := f.criteria(t, rt, 1, 0)
	review, err := f.svc.CreateReview(context.Background(), admin, manualReview(rt, f.worker))
	require.NoError(t, err)
	participant := f.participants(t, review.ID)[0]
	f.store.FailOn("CountRequiredCriteria", errors.New("db down"))

	rating, err := f.svc.SubmitRating(context.Background(), admin, performance.Rating{
		ReviewID:      review.ID,
		ParticipantID: participant.ID,
		CriterionID:   criteria[0].ID,
		Rating:        3,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rating.ID)
	assert.Equal(t, performance.ParticipantStatusPending, f.participants(t, review.ID)[0].Status)
}

func TestEmployeeSeesOnlyOwnReviews(t *testing.T) {
	f := newFixture(t)
	rt := f.probationType(t)
	_, err := f.svc.CreateReview(context.Background(), admin, manualReview(rt, f.worker))
	require.NoError(t, err)
	other, err := f.svc.CreateReview(context.Background(), admin, manualReview(rt, f.manager))
	require.NoError(t, err)

	own, err := f.svc.ListReviews(context.Background(), employee, performance.ReviewFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, f.worker.ID, own[0].EmployeeID)

	none, err := f.svc.ListReviews(context.Background(), employee, performance.ReviewFilter{EmployeeID: f.manager.ID})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.svc.GetReview(context.Background(), employee, other.ID)
	require.ErrorIs(t, err, performance.ErrUnauthorized)

	stranger := auth.Actor{UserID: "nobody", TenantID: tenantID, Role: auth.RoleEmployee}
	empty, err := f.svc.ListReviews(context.Background(), stranger, performance.ReviewFilter{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetReviewIncludesDetail(t *testing.T) {
	f := newFixture(t)
	rt := f.probationType(t)
	review, err := f.svc.CreateReview(context.Background(), admin, manualReview(rt, f.worker))
	require.NoError(t, err)

	detail, err := f.svc.GetReview(context.Background(), boss, review.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.ReviewType)
	require.NotNil(t, detail.Employee)
	assert.Equal(t, rt.Name, detail.ReviewType.Name)
	assert.Len(t, detail.Participants, 2)
	assert.NotNil(t, detail.Ratings)

	_, err = f.svc.GetReview(context.Background(), admin, "missing")
	require.ErrorIs(t, err, performance.ErrNotFound)
}

func TestUpdateReviewMergesPatch(t *testing.T) {
	f := newFixture(t)
	rt := f.probationType(t)
	review, err := f.svc.CreateReview(context.Background(), admin, manualReview(rt, f.worker))
	require.NoError(t, err)

	updated, err := f.svc.UpdateReview(context.Background(), admin, review.ID,
		json.RawMessage(`{"status":"completed","overall_rating":4.5,"is_auto_generated":true,"created_by":"someone"}`))
	require.NoError(t, err)
	assert.Equal(t, performance.ReviewStatusCompleted, updated.Status)
	require.NotNil(t, updated.OverallRating)
	assert.Equal(t, 4.5, *updated.OverallRating)
	assert.False(t, updated.IsAutoGenerated)
	assert.Equal(t, admin.UserID, updated.CreatedBy)
	assert.Equal(t, review.ReviewDueDate, updated.ReviewDueDate)

	moved, err := f.svc.UpdateReview(context.Background(), employee, review.ID, json.RawMessage(`{"employee_id":"elsewhere","strengths":"curious"}`))
	require.NoError(t, err)
	assert.Equal(t, f.worker.ID, moved.EmployeeID)
	assert.Equal(t, "curious", moved.Strengths)
}

func TestDeleteReview(t *testing.T) {
	f := newFixture(t)
	rt := f.probationType(t)
	review, err := f.svc.CreateReview(context.Background(), admin, manualReview(rt, f.worker))
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.DeleteReview(context.Background(), employee, review.ID), performance.ErrUnauthorized)
	require.NoError(t, f.svc.DeleteReview(context.Background(), admin, review.ID))
	require.ErrorIs(t, f.svc.DeleteReview(context.Background(), admin, review.ID), performance.ErrNotFound)
	assert.Empty(t, f.reviews(t))
}

func TestAddPeerParticipant(t *testing.T) {
	f := newFixture(t)
	rt := f.probationType(t)
	review, err := f.svc.CreateReview(context.Background(), admin, manualReview(rt, f.worker))
	require.NoError(t, err)

	peer, err := f.svc.AddParticipant(context.Background(), hr, performance.Participant{
		ReviewID:        review.ID,
		ParticipantID:   "user-peer",
		ParticipantType: performance.ParticipantTypePeer,
	})
	require.NoError(t, err)
	assert.Equal(t, performance.ParticipantStatusPending, peer.Status)
	assert.Len(t, f.participants(t, review.ID), 3)

	_, err = f.svc.AddParticipant(context.Background(), hr, performance.Participant{
		ReviewID:        review.ID,
		ParticipantID:   "user-peer",
		ParticipantType: "skip_level",
	})
	var verr *performance.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = f.svc.AddParticipant(context.Background(), employee, peer)
	require.ErrorIs(t, err, performance.ErrUnauthorized)
}

func TestReviewTypeValidationAndGate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateReviewType(context.Background(), admin, performance.ReviewType{
		Name:         "Broken",
		AutoSchedule: true,
		TriggerEvent: performance.TriggerHireDate,
		DurationDays: intPtr(10),
	})
	var verr *performance.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "schedule_offset_days", verr.Field)

	_, err = f.svc.CreateReviewType(context.Background(), employee, performance.ReviewType{Name: "x"})
	require.ErrorIs(t, err, performance.ErrUnauthorized)
	assert.Contains(t, err.Error(), "only admin and hr managers")

	rt := f.probationType(t)
	_, err = f.svc.UpdateReviewType(context.Background(), admin, rt.ID, json.RawMessage(`{"schedule_offset_days":null}`))
	require.ErrorAs(t, err, &verr)

	require.NoError(t, f.svc.DeleteReviewType(context.Background(), admin, rt.ID))
	types, err := f.svc.ListReviewTypes(context.Background(), employee)
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestCriteriaUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rt := f.probationType(t)
	criteria := f.criteria(t, rt, 1, 0)

	_, err := f.svc.UpdateCriterion(ctx, employee, criteria[0].ID, json.RawMessage(`{"criterion_name":"Quality"}`))
	require.ErrorIs(t, err, performance.ErrUnauthorized)

	updated, err := f.svc.UpdateCriterion(ctx, hr, criteria[0].ID, json.RawMessage(`{"criterion_name":"Quality","display_order":5}`))
	require.NoError(t, err)
	assert.Equal(t, "Quality", updated.CriterionName)
	assert.Equal(t, 5, updated.DisplayOrder)
	assert.Equal(t, rt.ID, updated.ReviewTypeID)

	require.NoError(t, f.svc.DeleteCriterion(ctx, admin, criteria[0].ID))
	require.ErrorIs(t, f.svc.DeleteCriterion(ctx, admin, criteria[0].ID), performance.ErrNotFound)

	left, err := f.svc.ListCriteria(ctx, employee, rt.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.Contains(t, f.audit.Actions(), performance.ActionUpdateCriteria)
	assert.Contains(t, f.audit.Actions(), performance.ActionDeleteCriteria)
}

func TestRatingsListAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rt := f.probationType(t)
	criteria := f.criteria(t, rt, 2, 0)
	review, err := f.svc.CreateReview(ctx, admin, manualReview(rt, f.worker))
	require.NoError(t, err)

	var self performance.Participant
	for _, p := range f.participants(t, review.ID) {
		if p.ParticipantType == performance.ParticipantTypeSelf {
			self = p
		}
	}
	require.NotEmpty(t, self.ID)

	rating, err := f.svc.SubmitRating(ctx, employee, performance.Rating{
		ReviewID:      review.ID,
		ParticipantID: self.ID,
		CriterionID:   criteria[0].ID,
		Rating:        3,
	})
	require.NoError(t, err)

	listed, err := f.svc.ListRatings(ctx, employee, performance.RatingFilter{ParticipantID: self.ID})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, rating.ID, listed[0].ID)

	none, err := f.svc.ListRatings(ctx, employee, performance.RatingFilter{ReviewID: "other"})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.svc.UpdateRating(ctx, boss, rating.ID, json.RawMessage(`{"rating":5}`))
	require.ErrorIs(t, err, performance.ErrUnauthorized)

	updated, err := f.svc.UpdateRating(ctx, employee, rating.ID, json.RawMessage(`{"rating":5,"comments":"better","criterion_id":"moved"}`))
	require.NoError(t, err)
	assert.Equal(t, 5.0, updated.Rating)
	assert.Equal(t, "better", updated.Comments)
	assert.Equal(t, criteria[0].ID, updated.CriterionID)
	assert.Contains(t, f.audit.Actions(), performance.ActionUpdateRating)
}

func TestGoalsScopedToOwnerAndManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	own, err := f.svc.CreateGoal(ctx, employee, performance.Goal{Title: "Ship v2"})
	require.NoError(t, err)
	assert.Equal(t, f.worker.ID, own.EmployeeID)
	assert.Equal(t, employee.UserID, own.AssignedBy)
	assert.Equal(t, performance.GoalStatusActive, own.Status)

	assigned, err := f.svc.CreateGoal(ctx, boss, performance.Goal{EmployeeID: f.worker.ID, Title: "Mentor intern"})
	require.NoError(t, err)
	assert.Equal(t, boss.UserID, assigned.AssignedBy)

	_, err = f.svc.CreateGoal(ctx, employee, performance.Goal{EmployeeID: f.manager.ID, Title: "Nope"})
	require.ErrorIs(t, err, performance.ErrUnauthorized)

	_, err = f.svc.CreateGoal(ctx, employee, performance.Goal{})
	var verr *performance.ValidationError
	require.ErrorAs(t, err, &verr)

	mine, err := f.svc.ListGoals(ctx, employee, performance.GoalFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	updated, err := f.svc.UpdateGoal(ctx, employee, own.ID, json.RawMessage(`{"progress_percentage":50,"status":"at_risk"}`))
	require.NoError(t, err)
	assert.Equal(t, 50.0, updated.ProgressPercentage)

	_, err = f.svc.UpdateGoal(ctx, employee, own.ID, json.RawMessage(`{"progress_percentage":150}`))
	require.ErrorAs(t, err, &verr)

	bossGoal, err := f.svc.CreateGoal(ctx, boss, performance.Goal{Title: "Hire two engineers"})
	require.NoError(t, err)
	require.ErrorIs(t, f.svc.DeleteGoal(ctx, employee, bossGoal.ID), performance.ErrUnauthorized)
	require.NoError(t, f.svc.DeleteGoal(ctx, boss, own.ID))
}

func TestKPIDefinitionsAndValues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateKPIDefinition(ctx, employee, performance.KPIDefinition{Name: "NPS"})
	require.ErrorIs(t, err, performance.ErrUnauthorized)

	def, err := f.svc.CreateKPIDefinition(ctx, admin, performance.KPIDefinition{Name: "Tickets closed", Category: "Support", IsActive: true})
	require.NoError(t, err)
	assert.NotNil(t, def.ApplicableRoles)

	target := 40.0
	value, err := f.svc.CreateKPIValue(ctx, employee, performance.KPIValue{
		KPIDefinitionID: def.ID,
		PeriodStart:     performance.MustParseDate("2024-03-01"),
		PeriodEnd:       performance.MustParseDate("2024-03-31"),
		TargetValue:     &target,
		ActualValue:     30,
	})
	require.NoError(t, err)
	assert.Equal(t, f.worker.ID, value.EmployeeID)

	_, err = f.svc.CreateKPIValue(ctx, employee, performance.KPIValue{
		KPIDefinitionID: def.ID,
		PeriodStart:     performance.MustParseDate("2024-03-31"),
		PeriodEnd:       performance.MustParseDate("2024-03-01"),
	})
	var verr *performance.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "period_end", verr.Field)

	_, err = f.svc.CreateKPIValue(ctx, employee, performance.KPIValue{
		KPIDefinitionID: "missing",
		PeriodStart:     performance.MustParseDate("2024-03-01"),
		PeriodEnd:       performance.MustParseDate("2024-03-31"),
	})
	require.ErrorAs(t, err, &verr)

	bossValues, err := f.svc.ListKPIValues(ctx, boss, performance.KPIValueFilter{})
	require.NoError(t, err)
	assert.Empty(t, bossValues)

	all, err := f.svc.ListKPIValues(ctx, hr, performance.KPIValueFilter{KPIDefinitionID: def.ID})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	updated, err := f.svc.UpdateKPIValue(ctx, boss, value.ID, json.RawMessage(`{"actual_value":20}`))
	require.NoError(t, err)
	assert.Equal(t, 20.0, updated.ActualValue)

	report, err := f.svc.GetReports(ctx, employee)
	require.NoError(t, err)
	assert.Equal(t, 50.0, report.AvgKPI)

	require.NoError(t, f.svc.DeleteKPIValue(ctx, employee, value.ID))
	require.NoError(t, f.svc.DeleteKPIDefinition(ctx, hr, def.ID))
}

func TestExecuteDispatchesCommands(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.probationType(t)

	cmd, err := performance.ParseCommand([]byte(`{"action":"auto_schedule","entity":"reviews"}`))
	require.NoError(t, err)
	out, err := f.svc.Execute(ctx, admin, cmd)
	require.NoError(t, err)
	result, ok := out.(performance.ScheduleResult)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, 1, result.Count)

	body, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"count":1`)

	cmd, err = performance.ParseCommand([]byte(`{"action":"delete","entity":"reviews","id":"` + result.Created[0].ID + `"}`))
	require.NoError(t, err)
	out, err = f.svc.Execute(ctx, admin, cmd)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"success": true}, out)

	cmd, err = performance.ParseCommand([]byte(`{"action":"get_reports","entity":"anything"}`))
	require.NoError(t, err)
	out, err = f.svc.Execute(ctx, employee, cmd)
	require.NoError(t, err)
	assert.IsType(t, performance.Report{}, out)
}

func TestExecuteRejectsMissingTenant(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Execute(context.Background(), auth.Actor{Role: auth.RoleAdmin}, performance.ListReviewsCommand{})
	require.ErrorIs(t, err, performance.ErrUnauthorized)
}

func TestSeedCatalogCreatesMissingTypes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing := f.probationType(t)

	active := false
	cat := performance.Catalog{ReviewTypes: []performance.CatalogEntry{
		{Name: existing.Name},
		{Name: "Annual Review", Frequency: "annual", Active: &active, Criteria: []performance.CatalogCriterion{
			{Name: "Impact", Required: true},
			{Name: "Growth"},
		}},
	}}
	created, err := f.svc.SeedCatalog(ctx, tenantID, cat)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	types, err := f.svc.ListReviewTypes(ctx, admin)
	require.NoError(t, err)
	require.Len(t, types, 2)
	var annual performance.ReviewType
	for _, rt := range types {
		if rt.Name == "Annual Review" {
			annual = rt
		}
	}
	assert.False(t, annual.IsActive)

	criteria, err := f.svc.ListCriteria(ctx, admin, annual.ID)
	require.NoError(t, err)
	require.Len(t, criteria, 2)
	assert.Equal(t, "Impact", criteria[0].CriterionName)
	assert.True(t, criteria[0].IsRequired)

	again, err := f.svc.SeedCatalog(ctx, tenantID, cat)
	require.NoError(t, err)
	assert.Equal(t, 0, again)
}

func TestSeedCatalogRollsBackPartialType(t *testing.T) {
	f := newFixture(t)
	f.store.FailOn("CreateCriterion", errors.New("nope"))

	_, err := f.svc.SeedCatalog(context.Background(), tenantID, performance.Catalog{ReviewTypes: []performance.CatalogEntry{
		{Name: "Annual Review", Criteria: []performance.CatalogCriterion{{Name: "Impact"}}},
	}})
	require.Error(t, err)

	types, err := f.svc.ListReviewTypes(context.Background(), admin)
	require.NoError(t, err)
	assert.Empty(t, types)
}
