// Package agent implements the sales-conversation pipeline: intent
// classification, handoff policy, style shaping, prompt composition, and
// the orchestrator tying them together.
package agent

import (
	"regexp"
	"strings"

	"github.com/dealerdesk/lead-agent-platform/internal/model"
)

// Classification is an ordered cascade: each rule is tried in sequence and
// the first match wins. The order is part of the behavioral contract.
type intentRule struct {
	intent model.Intent
	match  func(text string) bool
}

var greetingPattern = regexp.MustCompile(`^(hi|hello|hey|howdy|good (morning|afternoon|evening))\b`)

var intentRules = []intentRule{
	{model.IntentGreeting, func(t string) bool {
		return greetingPattern.MatchString(t)
	}},
	{model.IntentAvailability, containsAny(
		"in stock", "availability", "available", "do you have", "on the lot", "still have",
	)},
	{model.IntentDetails, containsAny(
		"details", "specs", "mileage", "tell me more", "what color", "features", "trim",
	)},
	{model.IntentPricing, containsAny(
		"price", "cost", "how much", "$", "out the door", "otd", "best offer", "discount", "msrp",
	)},
	{model.IntentFinancing, containsAny(
		"financ", "loan", "apr", "monthly payment", "credit", "lease", "down payment",
	)},
	{model.IntentTradeIn, containsAny(
		"trade-in", "trade in", "tradein", "my current car", "trade my",
	)},
	{model.IntentLegal, containsAny(
		"warranty", "contract", "legal", "lemon law", "return policy", "lawyer", "liability",
	)},
	{model.IntentScheduleTestDrive, containsAny(
		"test drive", "test-drive", "come in", "schedule", "appointment", "stop by", "visit",
	)},
	{model.IntentPostAppointment, containsAny(
		"after my appointment", "came in yesterday", "after the test drive", "since my visit", "following up after",
	)},
	{model.IntentOutOfScope, containsAny(
		"weather", "sports", "joke", "politics", "crypto", "recipe",
	)},
}

// ClassifyIntent maps free text to exactly one intent. Input is lower-cased
// and trimmed before matching; empty text and anything no rule claims fall
// through to generic.
func ClassifyIntent(text string) model.Intent {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return model.IntentGeneric
	}
	for _, rule := range intentRules {
		if rule.match(t) {
			return rule.intent
		}
	}
	return model.IntentGeneric
}

func containsAny(phrases ...string) func(string) bool {
	return func(t string) bool {
		for _, p := range phrases {
			if strings.Contains(t, p) {
				return true
			}
		}
		return false
	}
}

// handoffReasons is the fixed table of intents that route to a human.
var handoffReasons = map[model.Intent]string{
	model.IntentFinancing:       "financing",
	model.IntentTradeIn:         "trade_in",
	model.IntentPricing:         "pricing",
	model.IntentLegal:           "legal",
	model.IntentOutOfScope:      "out_of_scope",
	model.IntentPostAppointment: "appointment_scheduled",
}

// DecideHandoff derives the handoff decision for an intent. Pure lookup,
// deterministic, no side effects. The context argument is accepted for
// future policies that weigh conversation state; it does not influence the
// current decision.
func DecideHandoff(intent model.Intent, _ *model.LeadContext) model.HandoffDecision {
	reason, ok := handoffReasons[intent]
	if !ok {
		return model.HandoffDecision{Should: false}
	}

	decision := model.HandoffDecision{Should: true, Reason: reason}
	if intent == model.IntentPostAppointment {
		decision.Note = "appointment already booked; route to the assigned sales rep"
	}
	return decision
}
