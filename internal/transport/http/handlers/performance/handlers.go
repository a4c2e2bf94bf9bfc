package performancehandler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrperf/internal/domain/auth"
	"hrperf/internal/domain/performance"
	"hrperf/internal/transport/http/api"
	"hrperf/internal/transport/http/middleware"
)

type Handler struct {
	Service *performance.Service
}

func NewHandler(service *performance.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/performance", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermPerformanceRead))
		r.Post("/", h.handleCommand)
		r.Get("/reviews/{reviewID}/pdf", h.handleReviewPDF)
	})
}

// handleCommand accepts the {action, entity, data, id, filters} envelope and
// replies with the operation's result or {"error": message}.
func (h *Handler) handleCommand(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		api.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cmd, err := performance.ParseCommand(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.Service.Execute(r.Context(), actor, cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, result)
}

func (h *Handler) handleReviewPDF(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r.Context())
	reviewID := chi.URLParam(r, "reviewID")

	var buf bytes.Buffer
	if err := h.Service.ExportReviewPDF(r.Context(), actor, reviewID, &buf); err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="review-`+reviewID+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("review pdf write failed", "reviewId", reviewID, "err", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	slog.Warn("performance request failed",
		"status", status,
		"requestId", middleware.GetRequestID(r.Context()),
		"err", err,
	)
	api.Fail(w, status, err.Error())
}

// statusFor keeps every command failure in the 4xx range.
func statusFor(err error) int {
	switch {
	case errors.Is(err, performance.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, performance.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, performance.ErrScheduleInProgress):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
