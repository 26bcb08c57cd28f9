// Package facts retrieves inventory and policy facts to ground agent
// replies.
package facts

import (
	"context"
	"strings"

	"github.com/dealerdesk/lead-agent-platform/internal/model"
)

// Retriever looks up facts relevant to an inbound message. The static
// implementation below is a stub; production deployments back this with
// inventory and policy lookups.
type Retriever interface {
	FactsForIntent(ctx context.Context, intent model.Intent, text string, lc *model.LeadContext) (map[string]any, error)
}

// modelKeywords is the fixed vocabulary of vehicle names that triggers an
// inventory hint even when the classifier did not land on availability.
var modelKeywords = []string{
	"civic",
	"accord",
	"cr-v",
	"corolla",
	"camry",
	"rav4",
	"f-150",
	"silverado",
	"suv",
	"sedan",
	"truck",
}

// detailFields enumerates the vehicle attributes the agent may speak to
// when a customer asks for details.
var detailFields = []string{
	"mileage",
	"color",
	"trim",
	"transmission",
	"fuel_type",
	"features",
}

// StaticRetriever returns canned facts without touching any backend.
type StaticRetriever struct{}

func NewStaticRetriever() *StaticRetriever {
	return &StaticRetriever{}
}

func (r *StaticRetriever) FactsForIntent(_ context.Context, intent model.Intent, text string, _ *model.LeadContext) (map[string]any, error) {
	lowered := strings.ToLower(text)

	if intent == model.IntentAvailability || mentionsModel(lowered) {
		return map[string]any{
			"inventoryHint": "several matching vehicles arrived this week; exact stock confirmed on request",
		}, nil
	}

	if intent == model.IntentDetails {
		return map[string]any{
			"detailFields": detailFields,
		}, nil
	}

	return map[string]any{}, nil
}

func mentionsModel(lowered string) bool {
	for _, kw := range modelKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
