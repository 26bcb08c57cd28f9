package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dealerdesk/lead-agent-platform/internal/model"
)

// InMemoryStore is a simple in-process store for local/dev use.
type InMemoryStore struct {
	mu       sync.RWMutex
	leads    map[string]*leadState
	maxTurns int
}

type leadState struct {
	facts map[string]any
	turns []model.Turn
	style model.StyleState
}

// NewInMemoryStore creates an in-memory store. maxTurns caps retained
// history per lead; once exceeded the oldest turns are trimmed. Zero
// disables trimming.
func NewInMemoryStore(maxTurns int) *InMemoryStore {
	return &InMemoryStore{
		leads:    make(map[string]*leadState),
		maxTurns: maxTurns,
	}
}

func (s *InMemoryStore) ConversationContext(_ context.Context, leadID string, lastN int) (*model.LeadContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lc := &model.LeadContext{
		LeadID: leadID,
		Facts:  map[string]any{},
		Turns:  []model.Turn{},
	}

	state, ok := s.leads[leadID]
	if !ok {
		return lc, nil
	}

	for k, v := range state.facts {
		lc.Facts[k] = v
	}
	lc.Style = state.style

	turns := state.turns
	if lastN > 0 && len(turns) > lastN {
		turns = turns[len(turns)-lastN:]
	}
	lc.Turns = append(lc.Turns, turns...)

	return lc, nil
}

func (s *InMemoryStore) AppendTurn(_ context.Context, leadID string, turn model.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}
	turn.LeadID = leadID

	state := s.state(leadID)
	state.turns = append(state.turns, turn)
	if s.maxTurns > 0 && len(state.turns) > s.maxTurns {
		state.turns = state.turns[len(state.turns)-s.maxTurns:]
	}
	return nil
}

func (s *InMemoryStore) MergeFacts(_ context.Context, leadID string, facts map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state(leadID)
	for k, v := range facts {
		state.facts[k] = v
	}
	return nil
}

func (s *InMemoryStore) SetStyle(_ context.Context, leadID string, style model.StyleState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state(leadID).style = style
	return nil
}

func (s *InMemoryStore) Close() error { return nil }

// state returns the lead's mutable state, creating it lazily. Callers must
// hold the write lock.
func (s *InMemoryStore) state(leadID string) *leadState {
	state, ok := s.leads[leadID]
	if !ok {
		state = &leadState{facts: make(map[string]any)}
		s.leads[leadID] = state
	}
	return state
}
