package model

import (
	"time"
)

// Sender identifies who produced a conversation turn.
type Sender string

const (
	SenderCustomer Sender = "customer"
	SenderAgent    Sender = "agent"
)

// Turn is a single recorded message in a lead conversation. Turns are
// append-only: once recorded they are never mutated or deleted.
type Turn struct {
	ID           string    `json:"id,omitempty"`
	LeadID       string    `json:"lead_id,omitempty"`
	DealershipID string    `json:"dealership_id,omitempty"`
	Sender       Sender    `json:"sender"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`

	// JetStream metadata, populated on replay.
	Sequence uint64 `json:"sequence,omitempty"`
}

// StyleState tracks greeting-opener rotation for a lead. NextOpener is the
// index of the opener the style engine will use next; a zero value starts
// the rotation at the first phrase.
type StyleState struct {
	NextOpener int `json:"next_opener"`
}

// LeadContext is the per-lead conversation aggregate the agent works from.
type LeadContext struct {
	LeadID string         `json:"lead_id"`
	Facts  map[string]any `json:"facts"`
	Turns  []Turn         `json:"turns"`
	Style  StyleState     `json:"style"`
}

// SendMessageRequest is the request to run the agent on an inbound message.
type SendMessageRequest struct {
	Text   string `json:"text"`
	Stream bool   `json:"stream,omitempty"`
}

// ListTurnsResponse is the response for listing conversation turns.
type ListTurnsResponse struct {
	Turns        []Turn `json:"turns"`
	HasMore      bool   `json:"has_more"`
	LastSequence uint64 `json:"last_sequence"`
}

// TokenEvent represents a streaming token event.
type TokenEvent struct {
	Token string `json:"token"`
	Index int    `json:"index"`
}

// ErrorEvent represents an error event.
type ErrorEvent struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

// HeartbeatEvent represents a heartbeat event.
type HeartbeatEvent struct {
	Timestamp time.Time `json:"timestamp"`
}
