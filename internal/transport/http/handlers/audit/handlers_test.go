package audithandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrperf/internal/domain/audit"
	"hrperf/internal/domain/auth"
	"hrperf/internal/transport/http/middleware"
)

type fakeLister struct {
	entries  []audit.Entry
	err      error
	tenantID string
	filter   audit.Filter
	limit    int
	offset   int
}

func (f *fakeLister) List(_ context.Context, tenantID string, filter audit.Filter, limit, offset int) ([]audit.Entry, error) {
	f.tenantID, f.filter, f.limit, f.offset = tenantID, filter, limit, offset
	return f.entries, f.err
}

func serve(t *testing.T, lister *fakeLister, actor *auth.Actor, path string) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	NewHandler(lister).RegisterRoutes(router)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if actor != nil {
		req = req.WithContext(middleware.WithActor(req.Context(), *actor))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

var hr = auth.Actor{UserID: "u-hr", TenantID: "t1", Role: auth.RoleHRManager}

func TestListEventsPassesFilterAndPage(t *testing.T) {
	lister := &fakeLister{entries: []audit.Entry{{Action: "CREATE_REVIEW", EntityType: "performance_reviews", EntityID: "r1"}}}
	rec := serve(t, lister, &hr, "/audit/events?action=CREATE_REVIEW&entityType=performance_reviews&limit=1000&offset=5")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "t1", lister.tenantID)
	assert.Equal(t, audit.Filter{Action: "CREATE_REVIEW", EntityType: "performance_reviews"}, lister.filter)
	assert.Equal(t, 500, lister.limit)
	assert.Equal(t, 5, lister.offset)

	var got []audit.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].EntityID)
}

func TestListEventsEmptyIsArray(t *testing.T) {
	rec := serve(t, &fakeLister{}, &hr, "/audit/events")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListEventsRequiresManage(t *testing.T) {
	employee := auth.Actor{UserID: "u1", TenantID: "t1", Role: auth.RoleEmployee}
	assert.Equal(t, http.StatusForbidden, serve(t, &fakeLister{}, &employee, "/audit/events").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, &fakeLister{}, nil, "/audit/events").Code)
}

func TestListEventsStoreFailure(t *testing.T) {
	rec := serve(t, &fakeLister{err: errors.New("db down")}, &hr, "/audit/events")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestExportEventsCSV(t *testing.T) {
	at := time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)
	lister := &fakeLister{entries: []audit.Entry{{ActorID: "u-hr", Action: "AUTO_SCHEDULE_REVIEWS", EntityType: "performance_reviews", CreatedAt: at}}}
	rec := serve(t, lister, &hr, "/audit/events/export")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "u-hr,AUTO_SCHEDULE_REVIEWS,performance_reviews,,,,2024-04-01T08:00:00Z", lines[1])
}
