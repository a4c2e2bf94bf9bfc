// Package memstore is an in-memory performance.StoreAPI for tests and local
// runs without Postgres. Transactions are emulated with snapshots and are not
// isolated from concurrent writers.
package memstore

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hrperf/internal/domain/performance"
)

type dataset struct {
	tenants      []string
	employees    []performance.Employee
	reviewTypes  []performance.ReviewType
	reviews      []performance.Review
	participants []performance.Participant
	criteria     []performance.Criterion
	ratings      []performance.Rating
	goals        []performance.Goal
	kpiDefs      []performance.KPIDefinition
	kpiValues    []performance.KPIValue
}

func (d *dataset) clone() *dataset {
	return &dataset{
		tenants:      slices.Clone(d.tenants),
		employees:    slices.Clone(d.employees),
		reviewTypes:  slices.Clone(d.reviewTypes),
		reviews:      slices.Clone(d.reviews),
		participants: slices.Clone(d.participants),
		criteria:     slices.Clone(d.criteria),
		ratings:      slices.Clone(d.ratings),
		goals:        slices.Clone(d.goals),
		kpiDefs:      slices.Clone(d.kpiDefs),
		kpiValues:    slices.Clone(d.kpiValues),
	}
}

type state struct {
	mu       sync.Mutex
	data     *dataset
	failures map[string]error
	calls    map[string]int
	now      func() time.Time
}

var (
	_ performance.StoreAPI      = (*Store)(nil)
	_ performance.AuditRecorder = (*AuditLog)(nil)
)

type Store struct {
	st   *state
	inTx bool
}

func New() *Store {
	return &Store{st: &state{
		data:     &dataset{},
		failures: map[string]error{},
		calls:    map[string]int{},
		now:      time.Now,
	}}
}

// SetClock sets the clock used for created_at timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.now = now
}

// FailOn makes every later call to the named StoreAPI method return err.
// A nil err clears the failure.
func (s *Store) FailOn(method string, err error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err == nil {
		delete(s.st.failures, method)
		return
	}
	s.st.failures[method] = err
}

// Calls returns how many times the named method was invoked.
func (s *Store) Calls(method string) int {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return s.st.calls[method]
}

// fail counts a call to method and returns its injected failure, if any.
// The caller holds s.st.mu.
func (s *Store) fail(method string) error {
	s.st.calls[method]++
	return s.st.failures[method]
}

func (s *Store) stamp() time.Time {
	return s.st.now().UTC()
}

func newID() string {
	return uuid.NewString()
}

func (s *Store) WithinTx(ctx context.Context, fn func(performance.StoreAPI) error) error {
	if s.inTx {
		return fn(s)
	}
	s.st.mu.Lock()
	err := s.fail("WithinTx")
	snapshot := s.st.data.clone()
	s.st.mu.Unlock()
	if err != nil {
		return err
	}

	if err := fn(&Store{st: s.st, inTx: true}); err != nil {
		s.st.mu.Lock()
		s.st.data = snapshot
		s.st.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) AddTenant(id string) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.data.tenants = append(s.st.data.tenants, id)
}

// AddEmployee stores emp, assigning an id when it has none.
func (s *Store) AddEmployee(emp performance.Employee) performance.Employee {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if emp.ID == "" {
		emp.ID = newID()
	}
	if emp.Status == "" {
		emp.Status = performance.EmployeeStatusActive
	}
	s.st.data.employees = append(s.st.data.employees, emp)
	return emp
}

func (s *Store) ListTenantIDs(ctx context.Context) ([]string, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("ListTenantIDs"); err != nil {
		return nil, err
	}
	return slices.Clone(s.st.data.tenants), nil
}

func (s *Store) ListActiveEmployees(ctx context.Context, tenantID string) ([]performance.Employee, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("ListActiveEmployees"); err != nil {
		return nil, err
	}
	out := []performance.Employee{}
	for _, e := range s.st.data.employees {
		if e.TenantID == tenantID && e.Status == performance.EmployeeStatusActive {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}

func (s *Store) GetEmployee(ctx context.Context, tenantID, id string) (performance.Employee, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("GetEmployee"); err != nil {
		return performance.Employee{}, err
	}
	for _, e := range s.st.data.employees {
		if e.TenantID == tenantID && e.ID == id {
			return e, nil
		}
	}
	return performance.Employee{}, performance.ErrNotFound
}

func (s *Store) EmployeeIDByUserID(ctx context.Context, tenantID, userID string) (string, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("EmployeeIDByUserID"); err != nil {
		return "", err
	}
	for _, e := range s.st.data.employees {
		if e.TenantID == tenantID && userID != "" && e.UserID == userID {
			return e.ID, nil
		}
	}
	return "", performance.ErrNotFound
}

func (s *Store) ListReviewTypes(ctx context.Context, tenantID string, filter performance.ReviewTypeFilter) ([]performance.ReviewType, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("ListReviewTypes"); err != nil {
		return nil, err
	}
	out := []performance.ReviewType{}
	for _, rt := range s.st.data.reviewTypes {
		if rt.TenantID != tenantID {
			continue
		}
		if filter.ActiveOnly && !rt.IsActive {
			continue
		}
		if filter.AutoScheduleOnly && !rt.AutoSchedule {
			continue
		}
		out = append(out, rt)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetReviewType(ctx context.Context, tenantID, id string) (performance.ReviewType, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("GetReviewType"); err != nil {
		return performance.ReviewType{}, err
	}
	i := index(s.st.data.reviewTypes, func(rt performance.ReviewType) bool { return rt.TenantID == tenantID && rt.ID == id })
	if i < 0 {
		return performance.ReviewType{}, performance.ErrNotFound
	}
	return s.st.data.reviewTypes[i], nil
}

func (s *Store) CreateReviewType(ctx context.Context, rt performance.ReviewType) (performance.ReviewType, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("CreateReviewType"); err != nil {
		return performance.ReviewType{}, err
	}
	rt.ID = newID()
	rt.CreatedAt = s.stamp()
	s.st.data.reviewTypes = append(s.st.data.reviewTypes, rt)
	return rt, nil
}

func (s *Store) UpdateReviewType(ctx context.Context, rt performance.ReviewType) (performance.ReviewType, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("UpdateReviewType"); err != nil {
		return performance.ReviewType{}, err
	}
	return replace(s.st.data.reviewTypes, rt, func(x performance.ReviewType) bool { return x.TenantID == rt.TenantID && x.ID == rt.ID })
}

func (s *Store) DeleteReviewType(ctx context.Context, tenantID, id string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("DeleteReviewType"); err != nil {
		return err
	}
	var err error
	s.st.data.reviewTypes, err = remove(s.st.data.reviewTypes, func(x performance.ReviewType) bool { return x.TenantID == tenantID && x.ID == id })
	return err
}

func (s *Store) ReviewExistsSince(ctx context.Context, tenantID, employeeID, reviewTypeID string, periodStart performance.Date) (bool, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("ReviewExistsSince"); err != nil {
		return false, err
	}
	for _, r := range s.st.data.reviews {
		if r.TenantID == tenantID && r.EmployeeID == employeeID && r.ReviewTypeID == reviewTypeID &&
			!r.ReviewPeriodStart.Before(periodStart.Time) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) InsertReviews(ctx context.Context, reviews []performance.Review) ([]performance.Review, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("InsertReviews"); err != nil {
		return nil, err
	}
	out := make([]performance.Review, 0, len(reviews))
	for _, r := range reviews {
		r.ID = newID()
		r.CreatedAt = s.stamp()
		out = append(out, r)
	}
	s.st.data.reviews = append(s.st.data.reviews, out...)
	return out, nil
}

func (s *Store) ListReviews(ctx context.Context, tenantID string, filter performance.ReviewFilter) ([]performance.Review, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("ListReviews"); err != nil {
		return nil, err
	}
	out := []performance.Review{}
	for _, r := range s.st.data.reviews {
		if r.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.EmployeeID != "" && r.EmployeeID != filter.EmployeeID {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReviewDueDate.Before(out[j].ReviewDueDate.Time) })
	return out, nil
}

func (s *Store) GetReview(ctx context.Context, tenantID, id string) (performance.Review, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("GetReview"); err != nil {
		return performance.Review{}, err
	}
	i := index(s.st.data.reviews, func(r performance.Review) bool { return r.TenantID == tenantID && r.ID == id })
	if i < 0 {
		return performance.Review{}, performance.ErrNotFound
	}
	return s.st.data.reviews[i], nil
}

func (s *Store) UpdateReview(ctx context.Context, r performance.Review) (performance.Review, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("UpdateReview"); err != nil {
		return performance.Review{}, err
	}
	return replace(s.st.data.reviews, r, func(x performance.Review) bool { return x.TenantID == r.TenantID && x.ID == r.ID })
}

func (s *Store) DeleteReview(ctx context.Context, tenantID, id string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("DeleteReview"); err != nil {
		return err
	}
	var err error
	s.st.data.reviews, err = remove(s.st.data.reviews, func(x performance.Review) bool { return x.TenantID == tenantID && x.ID == id })
	if err != nil {
		return err
	}
	s.st.data.participants = slices.DeleteFunc(s.st.data.participants, func(p performance.Participant) bool {
		return p.TenantID == tenantID && p.ReviewID == id
	})
	s.st.data.ratings = slices.DeleteFunc(s.st.data.ratings, func(r performance.Rating) bool {
		return r.TenantID == tenantID && r.ReviewID == id
	})
	return nil
}

func (s *Store) InsertParticipants(ctx context.Context, participants []performance.Participant) ([]performance.Participant, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("InsertParticipants"); err != nil {
		return nil, err
	}
	out := make([]performance.Participant, 0, len(participants))
	for _, p := range participants {
		p.ID = newID()
		p.CreatedAt = s.stamp()
		out = append(out, p)
	}
	s.st.data.participants = append(s.st.data.participants, out...)
	return out, nil
}

func (s *Store) ListParticipants(ctx context.Context, tenantID, reviewID string) ([]performance.Participant, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("ListParticipants"); err != nil {
		return nil, err
	}
	out := []performance.Participant{}
	for _, p := range s.st.data.participants {
		if p.TenantID == tenantID && (reviewID == "" || p.ReviewID == reviewID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) GetParticipant(ctx context.Context, tenantID, id string) (performance.Participant, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("GetParticipant"); err != nil {
		return performance.Participant{}, err
	}
	i := index(s.st.data.participants, func(p performance.Participant) bool { return p.TenantID == tenantID && p.ID == id })
	if i < 0 {
		return performance.Participant{}, performance.ErrNotFound
	}
	return s.st.data.participants[i], nil
}

func (s *Store) CompleteParticipant(ctx context.Context, tenantID, id string, submittedAt time.Time) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("CompleteParticipant"); err != nil {
		return err
	}
	i := index(s.st.data.participants, func(p performance.Participant) bool { return p.TenantID == tenantID && p.ID == id })
	if i < 0 {
		return performance.ErrNotFound
	}
	s.st.data.participants[i].Status = performance.ParticipantStatusCompleted
	s.st.data.participants[i].SubmittedAt = &submittedAt
	return nil
}

func (s *Store) ListPendingParticipants(ctx context.Context, tenantID, userID string) ([]performance.Participant, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("ListPendingParticipants"); err != nil {
		return nil, err
	}
	out := []performance.Participant{}
	for _, p := range s.st.data.participants {
		if p.TenantID != tenantID || p.ParticipantID != userID {
			continue
		}
		if p.Status == performance.ParticipantStatusPending || p.Status == performance.ParticipantStatusInProgress {
			out = append(out, p)
		}
	}
	return out, nil
}

func index[T any](items []T, match func(T) bool) int {
	return slices.IndexFunc(items, match)
}

func replace[T any](items []T, item T, match func(T) bool) (T, error) {
	i := slices.IndexFunc(items, match)
	if i < 0 {
		var zero T
		return zero, performance.ErrNotFound
	}
	items[i] = item
	return item, nil
}

func remove[T any](items []T, match func(T) bool) ([]T, error) {
	i := slices.IndexFunc(items, match)
	if i < 0 {
		return items, performance.ErrNotFound
	}
	return slices.Delete(items, i, i+1), nil
}
