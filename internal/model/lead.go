// Package model defines data structures for the lead conversation platform.
package model

import (
	"time"
)

// Lead represents a sales lead and its conversation thread.
type Lead struct {
	ID           string            `json:"id"`
	DealershipID string            `json:"dealership_id"`
	Name         string            `json:"name"`
	Phone        string            `json:"phone,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	TurnCount    int               `json:"turn_count,omitempty"`
	LastTurn     *Turn             `json:"last_turn,omitempty"`
	Deleted      bool              `json:"deleted,omitempty"`
}

// CreateLeadRequest is the request to register a new lead.
type CreateLeadRequest struct {
	Name     string            `json:"name"`
	Phone    string            `json:"phone,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// UpdateLeadRequest is the request to update a lead.
type UpdateLeadRequest struct {
	Name     string            `json:"name,omitempty"`
	Phone    string            `json:"phone,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ListLeadsResponse is the response for listing leads.
type ListLeadsResponse struct {
	Leads      []Lead `json:"leads"`
	Total      int    `json:"total"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor,omitempty"`
}
