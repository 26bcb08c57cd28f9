package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dealerdesk/lead-agent-platform/internal/model"
)

// historyTurns is how many recent turns are rendered into the prompt.
const historyTurns = 12

const systemTemplate = `You are a friendly, low-pressure sales assistant for %s, a car dealership.

Tone rules:
- Warm and conversational, never pushy.
- Short replies: four sentences at most.
- Ask at most one question per reply.
- Never invite the customer to a test drive in your first reply.

Hard rules:
- If the customer asks about financing, trade-in value, final pricing, or anything legal, say a teammate will follow up with exact figures and do not improvise an answer.
- Never invent prices, payments, or inventory numbers. Only use numbers present in the provided facts.`

// SystemPrompt renders the fixed persona template for a dealership.
func SystemPrompt(dealershipName string) string {
	return fmt.Sprintf(systemTemplate, dealershipName)
}

// FewShotExamples is the fixed exemplar list supplied verbatim on every
// request, always all five, always in this order.
var FewShotExamples = []model.Exemplar{
	{
		Input:  "Hi, is the blue Civic still available?",
		Output: "Thanks for reaching out! The blue Civic was on the lot this morning. Want me to double-check it's still there for you?",
	},
	{
		Input:  "What's your best price on the Camry?",
		Output: "Great question! Pricing specifics come from one of our teammates, and I've flagged this so someone follows up with exact numbers shortly.",
	},
	{
		Input:  "Does the CR-V have heated seats?",
		Output: "Good question! The CR-V trims we carry do offer heated seats on EX and above. Would heated seats be a must-have for you?",
	},
	{
		Input:  "Can I finance with bad credit?",
		Output: "Happy to help. Our finance team works with a wide range of credit situations, and a teammate will reach out with options that fit.",
	},
	{
		Input:  "Thanks, that's all I needed!",
		Output: "Glad you asked. We're here whenever you need anything else!",
	},
}

// BuildUserMessage concatenates, in fixed order: the opener line, the
// quoted customer text, JSON-encoded lead facts, JSON-encoded retrieved
// facts, the most recent turns as Customer:/Agent: lines, and a trailing
// instruction. Customer text is interpolated as-is; structured fields go
// through JSON encoding.
func BuildUserMessage(opener, customerText string, leadFacts, retrieved map[string]any, turns []model.Turn) string {
	var b strings.Builder

	b.WriteString("Opener: " + opener + "\n")
	b.WriteString("Customer says: \"" + customerText + "\"\n")
	b.WriteString("Known lead facts: " + encodeFacts(leadFacts) + "\n")
	b.WriteString("Retrieved facts: " + encodeFacts(retrieved) + "\n")
	b.WriteString("Recent conversation:\n")

	recent := turns
	if len(recent) > historyTurns {
		recent = recent[len(recent)-historyTurns:]
	}
	for _, t := range recent {
		label := "Customer"
		if t.Sender == model.SenderAgent {
			label = "Agent"
		}
		b.WriteString(label + ": " + t.Message + "\n")
	}

	b.WriteString("Reply to the customer following the tone and hard rules.")
	return b.String()
}

// BuildPrompt assembles the full ephemeral payload: system text, the fixed
// few-shot list, and the ordered message list.
func BuildPrompt(dealershipName, userMessage string) *model.PromptPayload {
	return &model.PromptPayload{
		System:  SystemPrompt(dealershipName),
		FewShot: FewShotExamples,
		Messages: []model.PromptMessage{
			{Role: "system", Content: SystemPrompt(dealershipName)},
			{Role: "user", Content: userMessage},
		},
	}
}

func encodeFacts(facts map[string]any) string {
	if len(facts) == 0 {
		return "{}"
	}
	data, err := json.Marshal(facts)
	if err != nil {
		return "{}"
	}
	return string(data)
}
