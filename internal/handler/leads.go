// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dealerdesk/lead-agent-platform/internal/middleware"
	"github.com/dealerdesk/lead-agent-platform/internal/model"
	"github.com/dealerdesk/lead-agent-platform/internal/service"
	"github.com/dealerdesk/lead-agent-platform/pkg/logger"
)

// LeadHandler handles lead registry endpoints.
type LeadHandler struct {
	service *service.LeadService
	logger  *logger.Logger
}

// NewLeadHandler creates a new lead handler.
func NewLeadHandler(svc *service.LeadService, log *logger.Logger) *LeadHandler {
	return &LeadHandler{
		service: svc,
		logger:  log,
	}
}

// Create handles POST /api/v1/leads
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dealershipID := middleware.GetDealershipID(ctx)

	var req model.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateLeadName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lead, err := h.service.Create(ctx, dealershipID, &req)
	if err != nil {
		h.logger.Error("failed to create lead")
		writeError(w, http.StatusInternalServerError, "failed to create lead")
		return
	}

	writeJSON(w, http.StatusCreated, lead)
}

// List handles GET /api/v1/leads
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dealershipID := middleware.GetDealershipID(ctx)

	limit := 20
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	resp, err := h.service.List(ctx, dealershipID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list leads")
		writeError(w, http.StatusInternalServerError, "failed to list leads")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/leads/:id
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dealershipID := middleware.GetDealershipID(ctx)
	leadID := chi.URLParam(r, "id")

	if err := middleware.ValidateLeadID(leadID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lead, err := h.service.Get(ctx, dealershipID, leadID)
	if err != nil {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

// Update handles PUT /api/v1/leads/:id
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dealershipID := middleware.GetDealershipID(ctx)
	leadID := chi.URLParam(r, "id")

	if err := middleware.ValidateLeadID(leadID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req model.UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name != "" {
		if err := middleware.ValidateLeadName(req.Name); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	lead, err := h.service.Update(ctx, dealershipID, leadID, &req)
	if err != nil {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

// Delete handles DELETE /api/v1/leads/:id
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dealershipID := middleware.GetDealershipID(ctx)
	leadID := chi.URLParam(r, "id")

	if err := middleware.ValidateLeadID(leadID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Delete(ctx, dealershipID, leadID); err != nil {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
