package memory

import (
	"context"
	"testing"

	"github.com/dealerdesk/lead-agent-platform/internal/model"
)

func TestConversationContextDefaultsForUnknownLead(t *testing.T) {
	s := NewInMemoryStore(0)

	lc, err := s.ConversationContext(context.Background(), "L1", 12)
	if err != nil {
		t.Fatalf("ConversationContext: %v", err)
	}
	if len(lc.Facts) != 0 || len(lc.Turns) != 0 || lc.Style.NextOpener != 0 {
		t.Fatalf("expected empty default context, got %+v", lc)
	}
}

func TestAppendTurnAssignsTimestampAndID(t *testing.T) {
	s := NewInMemoryStore(0)
	ctx := context.Background()

	if err := s.AppendTurn(ctx, "L1", model.Turn{Sender: model.SenderCustomer, Message: "hi"}); err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}

	lc, err := s.ConversationContext(ctx, "L1", 12)
	if err != nil {
		t.Fatalf("ConversationContext: %v", err)
	}
	if len(lc.Turns) != 1 {
		t.Fatalf("got %d turns, want 1", len(lc.Turns))
	}
	if lc.Turns[0].Timestamp.IsZero() {
		t.Fatal("expected server-assigned timestamp")
	}
	if lc.Turns[0].ID == "" {
		t.Fatal("expected assigned turn ID")
	}
}

func TestConversationContextTruncatesToLastN(t *testing.T) {
	s := NewInMemoryStore(0)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		msg := "old"
		if i >= 15 {
			msg = "recent"
		}
		if err := s.AppendTurn(ctx, "L1", model.Turn{Sender: model.SenderCustomer, Message: msg}); err != nil {
			t.Fatalf("AppendTurn: %v", err)
		}
	}

	lc, err := s.ConversationContext(ctx, "L1", 5)
	if err != nil {
		t.Fatalf("ConversationContext: %v", err)
	}
	if len(lc.Turns) != 5 {
		t.Fatalf("got %d turns, want 5", len(lc.Turns))
	}
	for _, turn := range lc.Turns {
		if turn.Message != "recent" {
			t.Fatalf("truncation kept an old turn: %+v", turn)
		}
	}
}

func TestMergeFactsOverwritesOnCollision(t *testing.T) {
	s := NewInMemoryStore(0)
	ctx := context.Background()

	if err := s.MergeFacts(ctx, "L1", map[string]any{"color": "red", "budget": "20000"}); err != nil {
		t.Fatalf("MergeFacts: %v", err)
	}
	if err := s.MergeFacts(ctx, "L1", map[string]any{"color": "blue"}); err != nil {
		t.Fatalf("MergeFacts: %v", err)
	}

	lc, _ := s.ConversationContext(ctx, "L1", 12)
	if lc.Facts["color"] != "blue" {
		t.Fatalf("color = %v, want blue", lc.Facts["color"])
	}
	if lc.Facts["budget"] != "20000" {
		t.Fatalf("budget = %v, want preserved", lc.Facts["budget"])
	}
}

func TestConversationContextReturnsDefensiveCopies(t *testing.T) {
	s := NewInMemoryStore(0)
	ctx := context.Background()

	s.MergeFacts(ctx, "L1", map[string]any{"color": "red"})
	s.AppendTurn(ctx, "L1", model.Turn{Sender: model.SenderCustomer, Message: "hi"})

	lc, _ := s.ConversationContext(ctx, "L1", 12)
	lc.Facts["color"] = "green"
	lc.Turns[0].Message = "mutated"

	fresh, _ := s.ConversationContext(ctx, "L1", 12)
	if fresh.Facts["color"] != "red" {
		t.Fatal("facts copy leaked store state")
	}
	if fresh.Turns[0].Message != "hi" {
		t.Fatal("turns copy leaked store state")
	}
}

func TestSetStylePersistsRotation(t *testing.T) {
	s := NewInMemoryStore(0)
	ctx := context.Background()

	if err := s.SetStyle(ctx, "L1", model.StyleState{NextOpener: 3}); err != nil {
		t.Fatalf("SetStyle: %v", err)
	}

	lc, _ := s.ConversationContext(ctx, "L1", 12)
	if lc.Style.NextOpener != 3 {
		t.Fatalf("NextOpener = %d, want 3", lc.Style.NextOpener)
	}
}

func TestMaxTurnsTrimsOldest(t *testing.T) {
	s := NewInMemoryStore(3)
	ctx := context.Background()

	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		s.AppendTurn(ctx, "L1", model.Turn{Sender: model.SenderCustomer, Message: msg})
	}

	lc, _ := s.ConversationContext(ctx, "L1", 0)
	if len(lc.Turns) != 3 {
		t.Fatalf("got %d turns, want 3", len(lc.Turns))
	}
	if lc.Turns[0].Message != "c" || lc.Turns[2].Message != "e" {
		t.Fatalf("unexpected retained turns: %+v", lc.Turns)
	}
}
