package performance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"hrperf/internal/domain/auth"
)

func validateReviewType(rt ReviewType) error {
	if err := validateStruct(rt); err != nil {
		return err
	}
	if rt.AutoSchedule {
		switch {
		case rt.TriggerEvent == "":
			return invalid("trigger_event", "required when auto_schedule is set")
		case rt.ScheduleOffsetDays == nil:
			return invalid("schedule_offset_days", "required when auto_schedule is set")
		case rt.DurationDays == nil:
			return invalid("duration_days", "required when auto_schedule is set")
		}
	}
	return nil
}

func (s *Service) CreateReviewType(ctx context.Context, actor auth.Actor, in ReviewType) (ReviewType, error) {
	if err := requireManage(actor, "create review types"); err != nil {
		return ReviewType{}, err
	}
	if err := validateReviewType(in); err != nil {
		return ReviewType{}, err
	}
	in.ID = ""
	in.TenantID = actor.TenantID
	in.CreatedBy = actor.UserID
	created, err := s.store.CreateReviewType(ctx, in)
	if err != nil {
		return ReviewType{}, err
	}
	s.record(ctx, actor, ActionCreateReviewType, auditEntityReviewTypes, created.ID)
	return created, nil
}

func (s *Service) ListReviewTypes(ctx context.Context, actor auth.Actor) ([]ReviewType, error) {
	if err := requirePermission(actor, auth.PermPerformanceRead); err != nil {
		return nil, err
	}
	types, err := s.store.ListReviewTypes(ctx, actor.TenantID, ReviewTypeFilter{})
	if err != nil {
		return nil, err
	}
	return orEmpty(types), nil
}

func (s *Service) UpdateReviewType(ctx context.Context, actor auth.Actor, id string, patch json.RawMessage) (ReviewType, error) {
	if err := requireManage(actor, "update review types"); err != nil {
		return ReviewType{}, err
	}
	current, err := s.store.GetReviewType(ctx, actor.TenantID, id)
	if err != nil {
		return ReviewType{}, err
	}
	next, err := applyPatch(current, patch)
	if err != nil {
		return ReviewType{}, err
	}
	next.ID = current.ID
	next.TenantID = current.TenantID
	next.CreatedBy = current.CreatedBy
	next.CreatedAt = current.CreatedAt
	if err := validateReviewType(next); err != nil {
		return ReviewType{}, err
	}
	updated, err := s.store.UpdateReviewType(ctx, next)
	if err != nil {
		return ReviewType{}, err
	}
	s.record(ctx, actor, ActionUpdateReviewType, auditEntityReviewTypes, updated.ID)
	return updated, nil
}

func (s *Service) DeleteReviewType(ctx context.Context, actor auth.Actor, id string) error {
	if err := requireManage(actor, "delete review types"); err != nil {
		return err
	}
	if err := s.store.DeleteReviewType(ctx, actor.TenantID, id); err != nil {
		return err
	}
	s.record(ctx, actor, ActionDeleteReviewType, auditEntityReviewTypes, id)
	return nil
}

// Catalog is a file of review type definitions seeded into every tenant.
type Catalog struct {
	ReviewTypes []CatalogEntry `yaml:"review_types"`
}

type CatalogEntry struct {
	Name                   string             `yaml:"name"`
	Description            string             `yaml:"description"`
	Frequency              string             `yaml:"frequency"`
	AutoSchedule           bool               `yaml:"auto_schedule"`
	TriggerEvent           string             `yaml:"trigger_event"`
	ScheduleOffsetDays     *int               `yaml:"schedule_offset_days"`
	DurationDays           *int               `yaml:"duration_days"`
	RequiresSelfAssessment bool               `yaml:"requires_self_assessment"`
	RequiresManagerReview  bool               `yaml:"requires_manager_review"`
	RequiresPeerReview     bool               `yaml:"requires_peer_review"`
	PeerReviewCount        *int               `yaml:"peer_review_count"`
	AllowSkipLevelReview   bool               `yaml:"allow_skip_level_review"`
	RatingScaleType        string             `yaml:"rating_scale_type"`
	PassingThreshold       *float64           `yaml:"passing_threshold"`
	NotificationTemplate   string             `yaml:"notification_template"`
	Active                 *bool              `yaml:"active"`
	Criteria               []CatalogCriterion `yaml:"criteria"`
}

type CatalogCriterion struct {
	Category    string   `yaml:"category"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Weight      *float64 `yaml:"weight"`
	Required    bool     `yaml:"required"`
}

func (e CatalogEntry) reviewType() ReviewType {
	active := true
	if e.Active != nil {
		active = *e.Active
	}
	return ReviewType{
		Name:                   e.Name,
		Description:            e.Description,
		Frequency:              e.Frequency,
		AutoSchedule:           e.AutoSchedule,
		TriggerEvent:           e.TriggerEvent,
		ScheduleOffsetDays:     e.ScheduleOffsetDays,
		DurationDays:           e.DurationDays,
		RequiresSelfAssessment: e.RequiresSelfAssessment,
		RequiresManagerReview:  e.RequiresManagerReview,
		RequiresPeerReview:     e.RequiresPeerReview,
		PeerReviewCount:        e.PeerReviewCount,
		AllowSkipLevelReview:   e.AllowSkipLevelReview,
		RatingScaleType:        e.RatingScaleType,
		PassingThreshold:       e.PassingThreshold,
		NotificationTemplate:   e.NotificationTemplate,
		IsActive:               active,
	}
}

func LoadCatalog(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, err
	}
	defer f.Close()
	return ParseCatalog(f)
}

// ParseCatalog decodes and validates a catalog. Unknown keys are rejected.
func ParseCatalog(r io.Reader) (Catalog, error) {
	var cat Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil && err != io.EOF {
		return Catalog{}, fmt.Errorf("decode review catalog: %w", err)
	}
	seen := map[string]bool{}
	for i, entry := range cat.ReviewTypes {
		if err := validateReviewType(entry.reviewType()); err != nil {
			return Catalog{}, fmt.Errorf("review catalog entry %d: %w", i, err)
		}
		key := strings.ToLower(strings.TrimSpace(entry.Name))
		if seen[key] {
			return Catalog{}, fmt.Errorf("review catalog entry %d: duplicate name %q", i, entry.Name)
		}
		seen[key] = true
		for j, c := range entry.Criteria {
			if strings.TrimSpace(c.Name) == "" {
				return Catalog{}, fmt.Errorf("review catalog entry %d criterion %d: name required", i, j)
			}
		}
	}
	return cat, nil
}

// SeedCatalog creates the catalog's review types, with their criteria, that
// the tenant does not have yet. Existing types are matched by name and left
// untouched. It returns the number of types created.
func (s *Service) SeedCatalog(ctx context.Context, tenantID string, cat Catalog) (int, error) {
	existing, err := s.store.ListReviewTypes(ctx, tenantID, ReviewTypeFilter{})
	if err != nil {
		return 0, err
	}
	names := make(map[string]bool, len(existing))
	for _, rt := range existing {
		names[strings.ToLower(strings.TrimSpace(rt.Name))] = true
	}

	created := 0
	for _, entry := range cat.ReviewTypes {
		if names[strings.ToLower(strings.TrimSpace(entry.Name))] {
			continue
		}
		err := s.store.WithinTx(ctx, func(tx StoreAPI) error {
			rt := entry.reviewType()
			rt.TenantID = tenantID
			inserted, err := tx.CreateReviewType(ctx, rt)
			if err != nil {
				return err
			}
			for i, c := range entry.Criteria {
				if _, err := tx.CreateCriterion(ctx, Criterion{
					TenantID:      tenantID,
					ReviewTypeID:  inserted.ID,
					Category:      c.Category,
					CriterionName: c.Name,
					Description:   c.Description,
					Weight:        c.Weight,
					IsRequired:    c.Required,
					DisplayOrder:  i + 1,
				}); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return created, fmt.Errorf("seed review type %q: %w", entry.Name, err)
		}
		created++
	}
	return created, nil
}
