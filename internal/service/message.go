package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dealerdesk/lead-agent-platform/internal/agent"
	"github.com/dealerdesk/lead-agent-platform/internal/llm"
	"github.com/dealerdesk/lead-agent-platform/internal/model"
	natsclient "github.com/dealerdesk/lead-agent-platform/internal/nats"
	"github.com/dealerdesk/lead-agent-platform/pkg/logger"
	"github.com/dealerdesk/lead-agent-platform/pkg/metrics"
)

// MessageService drives the agent for inbound messages and records the
// resulting turns in the JetStream audit log.
type MessageService struct {
	orchestrator  *agent.Orchestrator
	streamManager *natsclient.StreamManager
	leadService   *LeadService
	dealership    string
	logger        *logger.Logger
}

// NewMessageService creates a new message service. dealershipName is the
// default persona name used when the caller's token carries none.
func NewMessageService(
	orchestrator *agent.Orchestrator,
	streamManager *natsclient.StreamManager,
	leadService *LeadService,
	dealershipName string,
	log *logger.Logger,
) *MessageService {
	return &MessageService{
		orchestrator:  orchestrator,
		streamManager: streamManager,
		leadService:   leadService,
		dealership:    dealershipName,
		logger:        log,
	}
}

// Handle runs the agent pipeline for one inbound customer message and
// records the customer turn (and, for replies, the agent turn) in the
// audit stream.
func (s *MessageService) Handle(ctx context.Context, dealershipID, dealershipName, leadID, text string) (*model.AgentResult, error) {
	return s.handle(ctx, dealershipID, dealershipName, leadID, text, nil)
}

// HandleStream is Handle with reply tokens delivered through onToken.
func (s *MessageService) HandleStream(ctx context.Context, dealershipID, dealershipName, leadID, text string, onToken llm.StreamCallback) (*model.AgentResult, error) {
	return s.handle(ctx, dealershipID, dealershipName, leadID, text, onToken)
}

func (s *MessageService) handle(ctx context.Context, dealershipID, dealershipName, leadID, text string, onToken llm.StreamCallback) (*model.AgentResult, error) {
	if dealershipName == "" {
		dealershipName = s.dealership
	}

	req := agent.Request{
		LeadID:         leadID,
		Text:           text,
		DealershipName: dealershipName,
	}

	var result *model.AgentResult
	var err error
	if onToken != nil {
		result, err = s.orchestrator.HandleMessageStream(ctx, req, onToken)
	} else {
		result, err = s.orchestrator.HandleMessage(ctx, req)
	}
	if err != nil {
		return nil, fmt.Errorf("agent pipeline: %w", err)
	}

	// Audit the customer turn. The orchestrator already persisted it to
	// conversation memory.
	customerTurn := &model.Turn{
		ID:           uuid.Must(uuid.NewV7()).String(),
		LeadID:       leadID,
		DealershipID: dealershipID,
		Sender:       model.SenderCustomer,
		Message:      text,
		Timestamp:    time.Now(),
	}
	if _, err := s.streamManager.PublishTurn(ctx, customerTurn); err != nil {
		return nil, fmt.Errorf("failed to publish customer turn: %w", err)
	}
	if err := s.leadService.RecordTurn(ctx, dealershipID, leadID, customerTurn); err != nil {
		s.logger.Warn("failed to record turn on lead",
			zap.String("lead_id", leadID),
			zap.Error(err),
		)
	}
	metrics.TurnsTotal.WithLabelValues(dealershipID, string(model.SenderCustomer)).Inc()

	switch result.Action.Type {
	case model.ActionHandoff:
		event := &model.LeadEvent{
			ID:           uuid.Must(uuid.NewV7()).String(),
			LeadID:       leadID,
			DealershipID: dealershipID,
			Type:         model.EventTypeHandoff,
			Reason:       result.Action.Reason,
			CreatedAt:    time.Now(),
		}
		if result.Action.Note != "" {
			event.Metadata = map[string]any{"note": result.Action.Note}
		}
		if _, err := s.streamManager.PublishEvent(ctx, event); err != nil {
			s.logger.Error("failed to publish handoff event",
				zap.String("lead_id", leadID),
				zap.Error(err),
			)
		}

	case model.ActionReply:
		// The reply returned to the caller counts as sent, so record the
		// agent turn now.
		agentTurn := &model.Turn{
			ID:           uuid.Must(uuid.NewV7()).String(),
			LeadID:       leadID,
			DealershipID: dealershipID,
			Sender:       model.SenderAgent,
			Message:      result.Action.Text,
			Timestamp:    time.Now(),
		}
		if err := s.orchestrator.RecordAgentTurn(ctx, leadID, result.Action.Text); err != nil {
			return nil, fmt.Errorf("failed to persist agent turn: %w", err)
		}
		if _, err := s.streamManager.PublishTurn(ctx, agentTurn); err != nil {
			return nil, fmt.Errorf("failed to publish agent turn: %w", err)
		}
		if err := s.leadService.RecordTurn(ctx, dealershipID, leadID, agentTurn); err != nil {
			s.logger.Warn("failed to record turn on lead",
				zap.String("lead_id", leadID),
				zap.Error(err),
			)
		}
		metrics.TurnsTotal.WithLabelValues(dealershipID, string(model.SenderAgent)).Inc()
	}

	return result, nil
}

// GetTurns retrieves recorded turns for a lead.
func (s *MessageService) GetTurns(ctx context.Context, dealershipID, leadID string, afterSequence uint64, limit int) (*model.ListTurnsResponse, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	turns, lastSeq, hasMore, err := s.streamManager.GetTurns(ctx, dealershipID, leadID, afterSequence, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get turns: %w", err)
	}

	return &model.ListTurnsResponse{
		Turns:        turns,
		HasMore:      hasMore,
		LastSequence: lastSeq,
	}, nil
}
