package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrperf/internal/requestctx"
)

// Entry is one row of the audit trail written after a mutating performance command.
type Entry struct {
	TenantID   string    `json:"tenantId"`
	ActorID    string    `json:"actorId"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	RequestID  string    `json:"requestId"`
	IP         string    `json:"ip"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// Record stores an entry. Request id and client ip are taken from ctx when present.
func (s *Service) Record(ctx context.Context, tenantID, actorID, action, entityType, entityID string) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO audit_logs (tenant_id, user_id, action, entity_type, entity_id, request_id, ip)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, NULLIF($5, ''), $6, $7)
	`, tenantID, actorID, action, entityType, entityID, requestctx.GetRequestID(ctx), requestctx.GetClientIP(ctx))
	return err
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Action     string
	EntityType string
}

// List returns a page of a tenant's entries, newest first.
func (s *Service) List(ctx context.Context, tenantID string, filter Filter, limit, offset int) ([]Entry, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT tenant_id::text, COALESCE(user_id::text, ''), action, entity_type, COALESCE(entity_id, ''),
		       request_id, ip, created_at
		FROM audit_logs
		WHERE tenant_id = $1
		  AND ($2 = '' OR action = $2)
		  AND ($3 = '' OR entity_type = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`, tenantID, filter.Action, filter.EntityType, limit, offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		err := row.Scan(&e.TenantID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID, &e.RequestID, &e.IP, &e.CreatedAt)
		return e, err
	})
}
