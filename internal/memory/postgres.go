package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealerdesk/lead-agent-platform/internal/model"
)

// PostgresStore persists lead conversation memory in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS lead_turns (
			id TEXT PRIMARY KEY,
			lead_id TEXT NOT NULL,
			sender TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_lead_turns_lead_created ON lead_turns (lead_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS lead_facts (
			lead_id TEXT PRIMARY KEY,
			facts JSONB NOT NULL DEFAULT '{}'::jsonb
		);`,
		`CREATE TABLE IF NOT EXISTS lead_style (
			lead_id TEXT PRIMARY KEY,
			next_opener INT NOT NULL DEFAULT 0
		);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) ConversationContext(ctx context.Context, leadID string, lastN int) (*model.LeadContext, error) {
	if lastN <= 0 {
		lastN = 12
	}

	lc := &model.LeadContext{
		LeadID: leadID,
		Facts:  map[string]any{},
		Turns:  []model.Turn{},
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, lead_id, sender, message, created_at
		 FROM lead_turns WHERE lead_id=$1 ORDER BY created_at DESC LIMIT $2`,
		leadID,
		lastN,
	)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t model.Turn
		if err := rows.Scan(&t.ID, &t.LeadID, &t.Sender, &t.Message, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}
		lc.Turns = append(lc.Turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turn rows: %w", err)
	}

	// Reverse into chronological order for prompt coherence.
	for i, j := 0, len(lc.Turns)-1; i < j; i, j = i+1, j-1 {
		lc.Turns[i], lc.Turns[j] = lc.Turns[j], lc.Turns[i]
	}

	var factsJSON []byte
	err = s.pool.QueryRow(ctx,
		`SELECT facts FROM lead_facts WHERE lead_id=$1`, leadID,
	).Scan(&factsJSON)
	switch {
	case err == pgx.ErrNoRows:
		// No facts recorded yet.
	case err != nil:
		return nil, fmt.Errorf("query facts: %w", err)
	default:
		if err := json.Unmarshal(factsJSON, &lc.Facts); err != nil {
			return nil, fmt.Errorf("decode facts: %w", err)
		}
	}

	err = s.pool.QueryRow(ctx,
		`SELECT next_opener FROM lead_style WHERE lead_id=$1`, leadID,
	).Scan(&lc.Style.NextOpener)
	if err != nil && err != pgx.ErrNoRows {
		return nil, fmt.Errorf("query style: %w", err)
	}

	return lc, nil
}

func (s *PostgresStore) AppendTurn(ctx context.Context, leadID string, turn model.Turn) error {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO lead_turns (id, lead_id, sender, message, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		turn.ID,
		leadID,
		turn.Sender,
		turn.Message,
		turn.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

func (s *PostgresStore) MergeFacts(ctx context.Context, leadID string, facts map[string]any) error {
	data, err := json.Marshal(facts)
	if err != nil {
		return fmt.Errorf("encode facts: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO lead_facts (lead_id, facts) VALUES ($1, $2)
		 ON CONFLICT (lead_id) DO UPDATE SET facts = lead_facts.facts || EXCLUDED.facts`,
		leadID,
		data,
	)
	if err != nil {
		return fmt.Errorf("merge facts: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetStyle(ctx context.Context, leadID string, style model.StyleState) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO lead_style (lead_id, next_opener) VALUES ($1, $2)
		 ON CONFLICT (lead_id) DO UPDATE SET next_opener = EXCLUDED.next_opener`,
		leadID,
		style.NextOpener,
	)
	if err != nil {
		return fmt.Errorf("set style: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
