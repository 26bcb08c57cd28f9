package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealerdesk/lead-agent-platform/internal/middleware"
	"github.com/dealerdesk/lead-agent-platform/internal/model"
	"github.com/dealerdesk/lead-agent-platform/internal/service"
	"github.com/dealerdesk/lead-agent-platform/pkg/logger"
)

func newLeadRouter(svc *service.LeadService, dealershipID string) *chi.Mux {
	h := NewLeadHandler(svc, logger.NewNop())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), middleware.DealershipIDKey, dealershipID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/leads", h.Create)
	r.Get("/leads", h.List)
	r.Get("/leads/{id}", h.Get)
	r.Put("/leads/{id}", h.Update)
	r.Delete("/leads/{id}", h.Delete)

	return r
}

func createLead(t *testing.T, r http.Handler, name string) model.Lead {
	t.Helper()

	body, _ := json.Marshal(model.CreateLeadRequest{Name: name, Phone: "+15555550100"})
	req := httptest.NewRequest(http.MethodPost, "/leads", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var lead model.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))
	return lead
}

func TestCreateAndGetLead(t *testing.T) {
	r := newLeadRouter(service.NewLeadService(logger.NewNop()), "d1")

	lead := createLead(t, r, "Jordan Lee")
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, "d1", lead.DealershipID)

	req := httptest.NewRequest(http.MethodGet, "/leads/"+lead.ID, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Jordan Lee", got.Name)
}

func TestCreateLeadRejectsEmptyName(t *testing.T) {
	r := newLeadRouter(service.NewLeadService(logger.NewNop()), "d1")

	req := httptest.NewRequest(http.MethodPost, "/leads", bytes.NewReader([]byte(`{"name":""}`)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLeadScopedToDealership(t *testing.T) {
	svc := service.NewLeadService(logger.NewNop())
	r1 := newLeadRouter(svc, "d1")
	r2 := newLeadRouter(svc, "d2")

	lead := createLead(t, r1, "Jordan Lee")

	// Another dealership's token must not see the lead.
	req := httptest.NewRequest(http.MethodGet, "/leads/"+lead.ID, nil)
	rec := httptest.NewRecorder()
	r2.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateLead(t *testing.T) {
	r := newLeadRouter(service.NewLeadService(logger.NewNop()), "d1")
	lead := createLead(t, r, "Jordan Lee")

	body := []byte(`{"phone":"+15555550199"}`)
	req := httptest.NewRequest(http.MethodPut, "/leads/"+lead.ID, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "+15555550199", got.Phone)
	assert.Equal(t, "Jordan Lee", got.Name)
}

func TestDeleteLeadIsSoft(t *testing.T) {
	r := newLeadRouter(service.NewLeadService(logger.NewNop()), "d1")
	lead := createLead(t, r, "Jordan Lee")

	req := httptest.NewRequest(http.MethodDelete, "/leads/"+lead.ID, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/leads/"+lead.ID, nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListLeadsPagination(t *testing.T) {
	r := newLeadRouter(service.NewLeadService(logger.NewNop()), "d1")
	for i := 0; i < 3; i++ {
		createLead(t, r, "Jordan Lee")
	}

	req := httptest.NewRequest(http.MethodGet, "/leads?limit=2", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.ListLeadsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Leads, 2)
	assert.Equal(t, 3, resp.Total)
	assert.True(t, resp.HasMore)
}
