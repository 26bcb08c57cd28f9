package model

// Intent is the closed-set classification label for an inbound message.
type Intent string

const (
	IntentGreeting          Intent = "greeting"
	IntentAvailability      Intent = "availability"
	IntentDetails           Intent = "details"
	IntentPricing           Intent = "pricing"
	IntentFinancing         Intent = "financing"
	IntentTradeIn           Intent = "trade_in"
	IntentLegal             Intent = "legal"
	IntentScheduleTestDrive Intent = "schedule_test_drive"
	IntentPostAppointment   Intent = "post_appointment"
	IntentOutOfScope        Intent = "out_of_scope"
	IntentGeneric           Intent = "generic"
)

// HandoffDecision is the outcome of the handoff policy for one message.
type HandoffDecision struct {
	Should bool   `json:"should"`
	Reason string `json:"reason,omitempty"`
	Note   string `json:"note,omitempty"`
}

// ActionType tags the agent's terminal action for a message.
type ActionType string

const (
	ActionReply   ActionType = "reply"
	ActionHandoff ActionType = "handoff"
)

// AgentAction is the tagged union returned by the orchestrator: a reply
// carries text, a handoff carries the reason and an optional note.
type AgentAction struct {
	Type   ActionType `json:"type"`
	Text   string     `json:"text,omitempty"`
	Reason string     `json:"reason,omitempty"`
	Note   string     `json:"note,omitempty"`
}

// AgentResult is the full outcome of one orchestrator cycle, carrying the
// prompt payload and enriched context for caller introspection and audit.
type AgentResult struct {
	Action  AgentAction    `json:"action"`
	Intent  Intent         `json:"intent"`
	Prompt  *PromptPayload `json:"prompt,omitempty"`
	Context *LeadContext   `json:"context,omitempty"`
}
