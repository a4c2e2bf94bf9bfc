package audithandler

import (
	"context"
	"encoding/csv"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrperf/internal/domain/audit"
	"hrperf/internal/domain/auth"
	"hrperf/internal/transport/http/api"
	"hrperf/internal/transport/http/middleware"
	"hrperf/internal/transport/http/shared"
)

type EntryLister interface {
	List(ctx context.Context, tenantID string, filter audit.Filter, limit, offset int) ([]audit.Entry, error)
}

type Handler struct {
	Entries EntryLister
}

func NewHandler(entries EntryLister) *Handler {
	return &Handler{Entries: entries}
}

// RegisterRoutes exposes the performance audit trail to managing roles.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermPerformanceManage))
		r.Get("/events", h.handleListEvents)
		r.Get("/events/export", h.handleExportEvents)
	})
}

func (h *Handler) list(r *http.Request, maxLimit int) ([]audit.Entry, error) {
	actor, _ := middleware.GetActor(r.Context())
	q := r.URL.Query()
	page := shared.ParsePage(q, 100, maxLimit)
	filter := audit.Filter{Action: q.Get("action"), EntityType: q.Get("entityType")}
	entries, err := h.Entries.List(r.Context(), actor.TenantID, filter, page.Limit, page.Offset)
	if entries == nil {
		entries = []audit.Entry{}
	}
	return entries, err
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	entries, err := h.list(r, 500)
	if err != nil {
		slog.Warn("audit list failed", "requestId", middleware.GetRequestID(r.Context()), "err", err)
		api.Fail(w, http.StatusInternalServerError, "failed to list audit events")
		return
	}
	api.Success(w, entries)
}

func (h *Handler) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	entries, err := h.list(r, 10000)
	if err != nil {
		slog.Warn("audit export failed", "requestId", middleware.GetRequestID(r.Context()), "err", err)
		api.Fail(w, http.StatusInternalServerError, "failed to export audit events")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=audit-events.csv")
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"actor_user_id", "action", "entity_type", "entity_id", "request_id", "ip", "created_at"}); err != nil {
		slog.Warn("audit export header failed", "err", err)
	}
	for _, e := range entries {
		if err := writer.Write([]string{e.ActorID, e.Action, e.EntityType, e.EntityID, e.RequestID, e.IP, e.CreatedAt.UTC().Format(time.RFC3339)}); err != nil {
			slog.Warn("audit export row failed", "err", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.Warn("audit export flush failed", "err", err)
	}
}
