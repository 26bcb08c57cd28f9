package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dealerdesk/lead-agent-platform/internal/middleware"
	"github.com/dealerdesk/lead-agent-platform/internal/model"
	"github.com/dealerdesk/lead-agent-platform/internal/service"
	"github.com/dealerdesk/lead-agent-platform/pkg/logger"
	"github.com/dealerdesk/lead-agent-platform/pkg/metrics"
)

// StreamHandler handles SSE streaming endpoints.
type StreamHandler struct {
	messageService *service.MessageService
	leadService    *service.LeadService
	logger         *logger.Logger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(
	msgSvc *service.MessageService,
	leadSvc *service.LeadService,
	log *logger.Logger,
) *StreamHandler {
	return &StreamHandler{
		messageService: msgSvc,
		leadService:    leadSvc,
		logger:         log,
	}
}

// ReplayCompleteEvent represents the completion of turn replay.
type ReplayCompleteEvent struct {
	LastSequence uint64 `json:"last_sequence"`
	TurnCount    int    `json:"turn_count"`
}

// Stream handles GET /api/v1/leads/:id/stream
// Supports ?after_sequence=N for resuming from a specific point
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
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

	var afterSequence uint64
	if seqStr := r.URL.Query().Get("after_sequence"); seqStr != "" {
		seq, err := strconv.ParseUint(seqStr, 10, 64)
		if err == nil {
			afterSequence = seq
		}
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	done := ctx.Done()

	sendSSEEvent(w, flusher, "connected", map[string]string{
		"lead_id": leadID,
	})

	// Replay recorded turns, batched, starting after the cursor.
	var lastSequence uint64
	var totalReplayed int

	for {
		resp, err := h.messageService.GetTurns(ctx, dealershipID, leadID, afterSequence, 50)
		if err != nil {
			h.logger.Error("failed to replay turns", zap.Error(err), zap.String("lead_id", leadID))
			sendSSEEvent(w, flusher, "error", &model.ErrorEvent{
				Code:    "replay_error",
				Message: "Failed to replay turns",
			})
			break
		}

		for _, turn := range resp.Turns {
			select {
			case <-done:
				return
			default:
			}

			sendSSEEvent(w, flusher, "turn", turn)
			lastSequence = turn.Sequence
			totalReplayed++
		}

		if resp.HasMore {
			afterSequence = lastSequence
		} else {
			break
		}
	}

	sendSSEEvent(w, flusher, "replay_complete", &ReplayCompleteEvent{
		LastSequence: lastSequence,
		TurnCount:    totalReplayed,
	})

	h.logger.Info("turn replay complete",
		zap.String("lead_id", leadID),
		zap.Int("turns_replayed", totalReplayed),
		zap.Uint64("last_sequence", lastSequence),
	)

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-done:
			h.logger.Info("SSE client disconnected", zap.String("lead_id", leadID))
			return

		case <-heartbeat.C:
			sendSSEEvent(w, flusher, "heartbeat", &model.HeartbeatEvent{
				Timestamp: time.Now(),
			})
		}
	}
}

// StreamWithMessage handles POST /api/v1/leads/:id/stream
// Accepts a customer message and streams the synthesized reply.
func (h *StreamHandler) StreamWithMessage(w http.ResponseWriter, r *http.Request) {
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

	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageText(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	result, err := h.messageService.HandleStream(
		ctx,
		dealershipID,
		middleware.GetDealershipName(ctx),
		leadID,
		req.Text,
		func(token string, index int) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			return sendSSEEvent(w, flusher, "token", &model.TokenEvent{
				Token: token,
				Index: index,
			})
		},
	)

	if err != nil {
		sendSSEEvent(w, flusher, "error", &model.ErrorEvent{
			Code:    "stream_error",
			Message: err.Error(),
		})
		return
	}

	// Final action after post-processing; handoffs carry no reply text.
	sendSSEEvent(w, flusher, "action", result.Action)

	sendSSEEvent(w, flusher, "done", map[string]bool{"success": true})
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()

	return nil
}
