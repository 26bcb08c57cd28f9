// Package service provides business logic for the lead conversation
// platform.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dealerdesk/lead-agent-platform/internal/model"
	"github.com/dealerdesk/lead-agent-platform/pkg/logger"
	"github.com/dealerdesk/lead-agent-platform/pkg/metrics"
)

// LeadService handles the dealership-scoped lead registry.
type LeadService struct {
	logger *logger.Logger

	// In-memory registry (would be replaced with a database in production)
	leads map[string]*model.Lead
	mu    sync.RWMutex
}

// NewLeadService creates a new lead service.
func NewLeadService(log *logger.Logger) *LeadService {
	return &LeadService{
		logger: log,
		leads:  make(map[string]*model.Lead),
	}
}

// Create registers a new lead.
func (s *LeadService) Create(ctx context.Context, dealershipID string, req *model.CreateLeadRequest) (*model.Lead, error) {
	now := time.Now()

	lead := &model.Lead{
		ID:           uuid.Must(uuid.NewV7()).String(),
		DealershipID: dealershipID,
		Name:         req.Name,
		Phone:        req.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
		Metadata:     req.Metadata,
	}

	s.mu.Lock()
	s.leads[lead.ID] = lead
	s.mu.Unlock()

	metrics.LeadsTotal.WithLabelValues(dealershipID).Inc()
	s.logger.Info("lead created",
		zap.String("lead_id", lead.ID),
		zap.String("dealership_id", dealershipID),
	)

	return lead, nil
}

// Get retrieves a lead by ID.
func (s *LeadService) Get(ctx context.Context, dealershipID, leadID string) (*model.Lead, error) {
	s.mu.RLock()
	lead, exists := s.leads[leadID]
	s.mu.RUnlock()

	if !exists || lead.DealershipID != dealershipID || lead.Deleted {
		return nil, fmt.Errorf("lead not found")
	}

	return lead, nil
}

// List retrieves leads for a dealership.
func (s *LeadService) List(ctx context.Context, dealershipID string, limit, offset int) (*model.ListLeadsResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var leads []model.Lead
	for _, lead := range s.leads {
		if lead.DealershipID == dealershipID && !lead.Deleted {
			leads = append(leads, *lead)
		}
	}

	// Simple pagination
	total := len(leads)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &model.ListLeadsResponse{
		Leads:   leads[start:end],
		Total:   total,
		HasMore: end < total,
	}, nil
}

// Update updates a lead.
func (s *LeadService) Update(ctx context.Context, dealershipID, leadID string, req *model.UpdateLeadRequest) (*model.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, exists := s.leads[leadID]
	if !exists || lead.DealershipID != dealershipID {
		return nil, fmt.Errorf("lead not found")
	}

	if req.Name != "" {
		lead.Name = req.Name
	}
	if req.Phone != "" {
		lead.Phone = req.Phone
	}
	if req.Metadata != nil {
		lead.Metadata = req.Metadata
	}
	lead.UpdatedAt = time.Now()

	return lead, nil
}

// Delete soft deletes a lead.
func (s *LeadService) Delete(ctx context.Context, dealershipID, leadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, exists := s.leads[leadID]
	if !exists || lead.DealershipID != dealershipID {
		return fmt.Errorf("lead not found")
	}

	lead.Deleted = true
	lead.UpdatedAt = time.Now()

	return nil
}

// RecordTurn updates the lead's last-turn summary fields.
func (s *LeadService) RecordTurn(ctx context.Context, dealershipID, leadID string, turn *model.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, exists := s.leads[leadID]
	if !exists || lead.DealershipID != dealershipID {
		return fmt.Errorf("lead not found")
	}

	lead.LastTurn = turn
	lead.TurnCount++
	lead.UpdatedAt = time.Now()

	return nil
}
