package facts

import (
	"context"
	"testing"

	"github.com/dealerdesk/lead-agent-platform/internal/model"
)

func TestFactsForAvailabilityIntent(t *testing.T) {
	r := NewStaticRetriever()

	got, err := r.FactsForIntent(context.Background(), model.IntentAvailability, "is it in stock", nil)
	if err != nil {
		t.Fatalf("FactsForIntent: %v", err)
	}
	if _, ok := got["inventoryHint"]; !ok {
		t.Fatalf("expected inventoryHint, got %v", got)
	}
}

func TestFactsForModelKeyword(t *testing.T) {
	r := NewStaticRetriever()

	// Model names trigger the inventory hint even when the classifier landed
	// on a different intent.
	got, err := r.FactsForIntent(context.Background(), model.IntentGeneric, "thinking about a Civic", nil)
	if err != nil {
		t.Fatalf("FactsForIntent: %v", err)
	}
	if _, ok := got["inventoryHint"]; !ok {
		t.Fatalf("expected inventoryHint for model mention, got %v", got)
	}
}

func TestFactsForDetailsIntent(t *testing.T) {
	r := NewStaticRetriever()

	got, err := r.FactsForIntent(context.Background(), model.IntentDetails, "tell me more about it", nil)
	if err != nil {
		t.Fatalf("FactsForIntent: %v", err)
	}
	fields, ok := got["detailFields"].([]string)
	if !ok || len(fields) == 0 {
		t.Fatalf("expected detailFields, got %v", got)
	}
}

func TestFactsForUnrelatedText(t *testing.T) {
	r := NewStaticRetriever()

	got, err := r.FactsForIntent(context.Background(), model.IntentGreeting, "good morning", nil)
	if err != nil {
		t.Fatalf("FactsForIntent: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty facts, got %v", got)
	}
}
