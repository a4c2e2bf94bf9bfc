package memstore

import (
	"context"
	"slices"
	"sort"
	"sync"

	"hrperf/internal/domain/performance"
)

func (s *Store) ListCriteria(ctx context.Context, tenantID, reviewTypeID string) ([]performance.Criterion, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("ListCriteria"); err != nil {
		return nil, err
	}
	out := []performance.Criterion{}
	for _, c := range s.st.data.criteria {
		if c.TenantID == tenantID && (reviewTypeID == "" || c.ReviewTypeID == reviewTypeID) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (s *Store) GetCriterion(ctx context.Context, tenantID, id string) (performance.Criterion, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("GetCriterion"); err != nil {
		return performance.Criterion{}, err
	}
	i := index(s.st.data.criteria, func(c performance.Criterion) bool { return c.TenantID == tenantID && c.ID == id })
	if i < 0 {
		return performance.Criterion{}, performance.ErrNotFound
	}
	return s.st.data.criteria[i], nil
}

func (s *Store) CreateCriterion(ctx context.Context, c performance.Criterion) (performance.Criterion, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("CreateCriterion"); err != nil {
		return performance.Criterion{}, err
	}
	c.ID = newID()
	c.CreatedAt = s.stamp()
	s.st.data.criteria = append(s.st.data.criteria, c)
	return c, nil
}

func (s *Store) UpdateCriterion(ctx context.Context, c performance.Criterion) (performance.Criterion, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("UpdateCriterion"); err != nil {
		return performance.Criterion{}, err
	}
	return replace(s.st.data.criteria, c, func(x performance.Criterion) bool { return x.TenantID == c.TenantID && x.ID == c.ID })
}

func (s *Store) DeleteCriterion(ctx context.Context, tenantID, id string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("DeleteCriterion"); err != nil {
		return err
	}
	var err error
	s.st.data.criteria, err = remove(s.st.data.criteria, func(x performance.Criterion) bool { return x.TenantID == tenantID && x.ID == id })
	return err
}

func (s *Store) CountRequiredCriteria(ctx context.Context, tenantID, reviewTypeID string) (int, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("CountRequiredCriteria"); err != nil {
		return 0, err
	}
	n := 0
	for _, c := range s.st.data.criteria {
		if c.TenantID == tenantID && c.ReviewTypeID == reviewTypeID && c.IsRequired {
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateRating(ctx context.Context, r performance.Rating) (performance.Rating, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("CreateRating"); err != nil {
		return performance.Rating{}, err
	}
	r.ID = newID()
	r.CreatedAt = s.stamp()
	s.st.data.ratings = append(s.st.data.ratings, r)
	return r, nil
}

func (s *Store) ListRatings(ctx context.Context, tenantID string, filter performance.RatingFilter) ([]performance.Rating, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("ListRatings"); err != nil {
		return nil, err
	}
	out := []performance.Rating{}
	for _, r := range s.st.data.ratings {
		if r.TenantID != tenantID {
			continue
		}
		if filter.ReviewID != "" && r.ReviewID != filter.ReviewID {
			continue
		}
		if filter.ParticipantID != "" && r.ParticipantID != filter.ParticipantID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) GetRating(ctx context.Context, tenantID, id string) (performance.Rating, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("GetRating"); err != nil {
		return performance.Rating{}, err
	}
	i := index(s.st.data.ratings, func(r performance.Rating) bool { return r.TenantID == tenantID && r.ID == id })
	if i < 0 {
		return performance.Rating{}, performance.ErrNotFound
	}
	return s.st.data.ratings[i], nil
}

func (s *Store) UpdateRating(ctx context.Context, r performance.Rating) (performance.Rating, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("UpdateRating"); err != nil {
		return performance.Rating{}, err
	}
	return replace(s.st.data.ratings, r, func(x performance.Rating) bool { return x.TenantID == r.TenantID && x.ID == r.ID })
}

func (s *Store) CountParticipantRatings(ctx context.Context, tenantID, participantID string) (int, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("CountParticipantRatings"); err != nil {
		return 0, err
	}
	n := 0
	for _, r := range s.st.data.ratings {
		if r.TenantID == tenantID && r.ParticipantID == participantID {
			n++
		}
	}
	return n, nil
}

func (s *Store) ListGoals(ctx context.Context, tenantID string, filter performance.GoalFilter) ([]performance.Goal, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("ListGoals"); err != nil {
		return nil, err
	}
	out := []performance.Goal{}
	for _, g := range s.st.data.goals {
		if g.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && g.Status != filter.Status {
			continue
		}
		if filter.EmployeeID != "" && g.EmployeeID != filter.EmployeeID {
			continue
		}
		out = append(out, g)
	}
	slices.Reverse(out)
	return out, nil
}

func (s *Store) GetGoal(ctx context.Context, tenantID, id string) (performance.Goal, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("GetGoal"); err != nil {
		return performance.Goal{}, err
	}
	i := index(s.st.data.goals, func(g performance.Goal) bool { return g.TenantID == tenantID && g.ID == id })
	if i < 0 {
		return performance.Goal{}, performance.ErrNotFound
	}
	return s.st.data.goals[i], nil
}

func (s *Store) CreateGoal(ctx context.Context, g performance.Goal) (performance.Goal, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("CreateGoal"); err != nil {
		return performance.Goal{}, err
	}
	g.ID = newID()
	g.CreatedAt = s.stamp()
	s.st.data.goals = append(s.st.data.goals, g)
	return g, nil
}

func (s *Store) UpdateGoal(ctx context.Context, g performance.Goal) (performance.Goal, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("UpdateGoal"); err != nil {
		return performance.Goal{}, err
	}
	return replace(s.st.data.goals, g, func(x performance.Goal) bool { return x.TenantID == g.TenantID && x.ID == g.ID })
}

func (s *Store) DeleteGoal(ctx context.Context, tenantID, id string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("DeleteGoal"); err != nil {
		return err
	}
	var err error
	s.st.data.goals, err = remove(s.st.data.goals, func(x performance.Goal) bool { return x.TenantID == tenantID && x.ID == id })
	return err
}

func (s *Store) ListKPIDefinitions(ctx context.Context, tenantID string) ([]performance.KPIDefinition, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("ListKPIDefinitions"); err != nil {
		return nil, err
	}
	out := []performance.KPIDefinition{}
	for _, d := range s.st.data.kpiDefs {
		if d.TenantID == tenantID {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) GetKPIDefinition(ctx context.Context, tenantID, id string) (performance.KPIDefinition, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("GetKPIDefinition"); err != nil {
		return performance.KPIDefinition{}, err
	}
	i := index(s.st.data.kpiDefs, func(d performance.KPIDefinition) bool { return d.TenantID == tenantID && d.ID == id })
	if i < 0 {
		return performance.KPIDefinition{}, performance.ErrNotFound
	}
	return s.st.data.kpiDefs[i], nil
}

func (s *Store) CreateKPIDefinition(ctx context.Context, d performance.KPIDefinition) (performance.KPIDefinition, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("CreateKPIDefinition"); err != nil {
		return performance.KPIDefinition{}, err
	}
	d.ID = newID()
	d.CreatedAt = s.stamp()
	s.st.data.kpiDefs = append(s.st.data.kpiDefs, d)
	return d, nil
}

func (s *Store) UpdateKPIDefinition(ctx context.Context, d performance.KPIDefinition) (performance.KPIDefinition, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("UpdateKPIDefinition"); err != nil {
		return performance.KPIDefinition{}, err
	}
	return replace(s.st.data.kpiDefs, d, func(x performance.KPIDefinition) bool { return x.TenantID == d.TenantID && x.ID == d.ID })
}

func (s *Store) DeleteKPIDefinition(ctx context.Context, tenantID, id string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("DeleteKPIDefinition"); err != nil {
		return err
	}
	var err error
	s.st.data.kpiDefs, err = remove(s.st.data.kpiDefs, func(x performance.KPIDefinition) bool { return x.TenantID == tenantID && x.ID == id })
	return err
}

func (s *Store) ListKPIValues(ctx context.Context, tenantID string, filter performance.KPIValueFilter) ([]performance.KPIValue, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("ListKPIValues"); err != nil {
		return nil, err
	}
	out := []performance.KPIValue{}
	for _, v := range s.st.data.kpiValues {
		if v.TenantID != tenantID {
			continue
		}
		if filter.EmployeeID != "" && v.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.KPIDefinitionID != "" && v.KPIDefinitionID != filter.KPIDefinitionID {
			continue
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PeriodStart.After(out[j].PeriodStart.Time) })
	return out, nil
}

func (s *Store) GetKPIValue(ctx context.Context, tenantID, id string) (performance.KPIValue, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("GetKPIValue"); err != nil {
		return performance.KPIValue{}, err
	}
	i := index(s.st.data.kpiValues, func(v performance.KPIValue) bool { return v.TenantID == tenantID && v.ID == id })
	if i < 0 {
		return performance.KPIValue{}, performance.ErrNotFound
	}
	return s.st.data.kpiValues[i], nil
}

func (s *Store) CreateKPIValue(ctx context.Context, v performance.KPIValue) (performance.KPIValue, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("CreateKPIValue"); err != nil {
		return performance.KPIValue{}, err
	}
	v.ID = newID()
	v.CreatedAt = s.stamp()
	s.st.data.kpiValues = append(s.st.data.kpiValues, v)
	return v, nil
}

func (s *Store) UpdateKPIValue(ctx context.Context, v performance.KPIValue) (performance.KPIValue, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("UpdateKPIValue"); err != nil {
		return performance.KPIValue{}, err
	}
	return replace(s.st.data.kpiValues, v, func(x performance.KPIValue) bool { return x.TenantID == v.TenantID && x.ID == v.ID })
}

func (s *Store) DeleteKPIValue(ctx context.Context, tenantID, id string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := s.fail("DeleteKPIValue"); err != nil {
		return err
	}
	var err error
	s.st.data.kpiValues, err = remove(s.st.data.kpiValues, func(x performance.KPIValue) bool { return x.TenantID == tenantID && x.ID == id })
	return err
}

// AuditEntry is one recorded audit call.
type AuditEntry struct {
	TenantID   string
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
}

// AuditLog is an in-memory performance.AuditRecorder.
type AuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
	Err     error
}

func (a *AuditLog) Record(ctx context.Context, tenantID, actorID, action, entityType, entityID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return a.Err
	}
	a.entries = append(a.entries, AuditEntry{
		TenantID:   tenantID,
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	})
	return nil
}

func (a *AuditLog) Entries() []AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.entries)
}

// Actions returns the recorded action names in order.
func (a *AuditLog) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}
