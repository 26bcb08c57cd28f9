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

// MessageHandler handles inbound-message and turn-history endpoints.
type MessageHandler struct {
	messageService *service.MessageService
	leadService    *service.LeadService
	logger         *logger.Logger
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(
	msgSvc *service.MessageService,
	leadSvc *service.LeadService,
	log *logger.Logger,
) *MessageHandler {
	return &MessageHandler{
		messageService: msgSvc,
		leadService:    leadSvc,
		logger:         log,
	}
}

// Send handles POST /api/v1/leads/:id/messages
// Runs the agent pipeline and returns the action, prompt payload, and
// enriched context.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dealershipID := middleware.GetDealershipID(ctx)
	leadID := chi.URLParam(r, "id")

	if err := middleware.ValidateLeadID(leadID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Verify lead exists and belongs to dealership
	if _, err := h.leadService.Get(ctx, dealershipID, leadID); err != nil {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}

	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageText(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Stream {
		// Streaming replies live on the stream endpoint
		w.Header().Set("X-Stream-URL", "/api/v1/leads/"+leadID+"/stream")
		w.WriteHeader(http.StatusAccepted)
		return
	}

	result, err := h.messageService.Handle(ctx, dealershipID, middleware.GetDealershipName(ctx), leadID, req.Text)
	if err != nil {
		h.logger.Error("failed to handle message")
		writeError(w, http.StatusInternalServerError, "failed to handle message")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ListTurns handles GET /api/v1/leads/:id/turns
func (h *MessageHandler) ListTurns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dealershipID := middleware.GetDealershipID(ctx)
	leadID := chi.URLParam(r, "id")

	if err := middleware.ValidateLeadID(leadID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.leadService.Get(ctx, dealershipID, leadID); err != nil {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}

	afterSequence := uint64(0)
	limit := 50

	if seq := r.URL.Query().Get("after_sequence"); seq != "" {
		if parsed, err := strconv.ParseUint(seq, 10, 64); err == nil {
			afterSequence = parsed
		}
	}

	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	resp, err := h.messageService.GetTurns(ctx, dealershipID, leadID, afterSequence, limit)
	if err != nil {
		h.logger.Error("failed to get turns")
		writeError(w, http.StatusInternalServerError, "failed to get turns")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
