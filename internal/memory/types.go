// Package memory provides per-lead conversation memory: recent turns,
// accumulated facts, and style state.
package memory

import (
	"context"

	"github.com/dealerdesk/lead-agent-platform/internal/model"
)

// Store persists and retrieves per-lead conversation memory. All methods
// take a context and return errors so a networked implementation can slot
// in without changing call sites.
type Store interface {
	// ConversationContext returns a defensive copy of the lead's context
	// with turns truncated to the most recent lastN entries. A lead with no
	// recorded state yields an empty default context; nothing is persisted
	// until a write occurs.
	ConversationContext(ctx context.Context, leadID string, lastN int) (*model.LeadContext, error)

	// AppendTurn appends a turn to the lead's full history, assigning an ID
	// and timestamp when absent.
	AppendTurn(ctx context.Context, leadID string, turn model.Turn) error

	// MergeFacts shallow-merges facts into the lead's accumulated facts;
	// later keys overwrite earlier same-named keys.
	MergeFacts(ctx context.Context, leadID string, facts map[string]any) error

	// SetStyle persists the lead's opener rotation state.
	SetStyle(ctx context.Context, leadID string, style model.StyleState) error

	Close() error
}
