package agent

import (
	"strings"
	"testing"

	"github.com/dealerdesk/lead-agent-platform/internal/model"
)

func TestSystemPromptNamesDealership(t *testing.T) {
	got := SystemPrompt("Acme Motors")
	if !strings.Contains(got, "Acme Motors") {
		t.Fatalf("system prompt does not mention dealership: %q", got)
	}
	if !strings.Contains(got, "at most one question") {
		t.Fatal("system prompt missing one-question rule")
	}
	if !strings.Contains(got, "Never invent prices") {
		t.Fatal("system prompt missing no-invented-numbers rule")
	}
}

func TestFewShotExamplesFixed(t *testing.T) {
	if len(FewShotExamples) != 5 {
		t.Fatalf("got %d few-shot examples, want 5", len(FewShotExamples))
	}
	for i, ex := range FewShotExamples {
		if ex.Input == "" || ex.Output == "" {
			t.Fatalf("example %d has empty input or output", i)
		}
	}
}

func TestBuildUserMessageOrderAndContent(t *testing.T) {
	turns := []model.Turn{
		{Sender: model.SenderCustomer, Message: "is the Civic in stock"},
		{Sender: model.SenderAgent, Message: "Yes, two on the lot."},
	}
	leadFacts := map[string]any{"preferred_color": "blue"}
	retrieved := map[string]any{"inventoryHint": "two in stock"}

	got := BuildUserMessage("Good question!", "what colors do you have?", leadFacts, retrieved, turns)

	wantInOrder := []string{
		"Opener: Good question!",
		`Customer says: "what colors do you have?"`,
		`"preferred_color":"blue"`,
		`"inventoryHint":"two in stock"`,
		"Customer: is the Civic in stock",
		"Agent: Yes, two on the lot.",
		"Reply to the customer",
	}

	last := -1
	for _, want := range wantInOrder {
		idx := strings.Index(got, want)
		if idx < 0 {
			t.Fatalf("missing %q in:\n%s", want, got)
		}
		if idx < last {
			t.Fatalf("%q appears out of order in:\n%s", want, got)
		}
		last = idx
	}
}

func TestBuildUserMessageTruncatesHistory(t *testing.T) {
	turns := make([]model.Turn, 20)
	for i := range turns {
		turns[i] = model.Turn{Sender: model.SenderCustomer, Message: "msg"}
	}

	got := BuildUserMessage("Hi!", "text", nil, nil, turns)
	if n := strings.Count(got, "Customer: msg"); n != historyTurns {
		t.Fatalf("rendered %d turns, want %d", n, historyTurns)
	}
}

func TestBuildPromptMessageList(t *testing.T) {
	payload := BuildPrompt("Acme Motors", "user text")

	if len(payload.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(payload.Messages))
	}
	if payload.Messages[0].Role != "system" || payload.Messages[1].Role != "user" {
		t.Fatalf("unexpected roles: %v", payload.Messages)
	}
	if !strings.Contains(payload.Messages[0].Content, "Acme Motors") {
		t.Fatal("system message does not mention dealership")
	}
	if payload.Messages[1].Content != "user text" {
		t.Fatalf("user message = %q", payload.Messages[1].Content)
	}
	if len(payload.FewShot) != 5 {
		t.Fatalf("payload carries %d few-shots, want 5", len(payload.FewShot))
	}
}

func TestChatMessagesFlattening(t *testing.T) {
	payload := BuildPrompt("Acme Motors", "user text")
	msgs := ChatMessages(payload)

	// system + 5 exemplar pairs + user
	if len(msgs) != 1+2*5+1 {
		t.Fatalf("got %d chat messages, want %d", len(msgs), 12)
	}
	if msgs[0].Role != "system" {
		t.Fatalf("first role = %q, want system", msgs[0].Role)
	}
	if msgs[len(msgs)-1].Role != "user" || msgs[len(msgs)-1].Content != "user text" {
		t.Fatalf("last message = %+v", msgs[len(msgs)-1])
	}
}
