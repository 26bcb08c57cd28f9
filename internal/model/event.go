package model

import (
	"time"
)

// EventType represents the type of lead conversation event.
type EventType string

const (
	EventTypeHandoff EventType = "handoff"
	EventTypeError   EventType = "error"
	EventTypeReset   EventType = "reset"
)

// LeadEvent represents an event in a lead conversation.
type LeadEvent struct {
	ID           string         `json:"id"`
	LeadID       string         `json:"lead_id"`
	DealershipID string         `json:"dealership_id"`
	Type         EventType      `json:"type"`
	Reason       string         `json:"reason"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	Sequence     uint64         `json:"sequence,omitempty"`
}
