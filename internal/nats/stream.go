package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/dealerdesk/lead-agent-platform/internal/model"
)

const (
	// StreamName is the name of the lead conversations stream.
	StreamName = "LEADS"

	// SubjectPrefix is the prefix for all lead conversation subjects.
	SubjectPrefix = "lead"
)

// StreamManager handles JetStream stream operations. The stream is the
// durable audit log of every turn and handoff event; the memory store
// remains the agent's working context.
type StreamManager struct {
	client *Client
}

// NewStreamManager creates a new stream manager.
func NewStreamManager(client *Client) *StreamManager {
	return &StreamManager{client: client}
}

// EnsureStream ensures the leads stream exists with proper configuration.
func (m *StreamManager) EnsureStream(ctx context.Context) error {
	js := m.client.JetStream()

	// Check if stream exists
	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil // Stream already exists
	}

	// Create stream
	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      365 * 24 * time.Hour,
		MaxBytes:    100 * 1024 * 1024 * 1024,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		DenyDelete:  true,
		DenyPurge:   true,
		Description: "All lead conversation turns and events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// TurnSubject returns the subject for a conversation turn.
func TurnSubject(dealershipID, leadID string, sender model.Sender) string {
	return fmt.Sprintf("%s.%s.%s.turn.%s", SubjectPrefix, dealershipID, leadID, sender)
}

// EventSubject returns the subject for a lead event.
func EventSubject(dealershipID, leadID string, eventType model.EventType) string {
	return fmt.Sprintf("%s.%s.%s.event.%s", SubjectPrefix, dealershipID, leadID, eventType)
}

// LeadFilter returns the filter subject for everything recorded for a lead.
func LeadFilter(dealershipID, leadID string) string {
	return fmt.Sprintf("%s.%s.%s.>", SubjectPrefix, dealershipID, leadID)
}

// PublishTurn publishes a conversation turn to JetStream.
func (m *StreamManager) PublishTurn(ctx context.Context, turn *model.Turn) (uint64, error) {
	subject := TurnSubject(turn.DealershipID, turn.LeadID, turn.Sender)

	data, err := json.Marshal(turn)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal turn: %w", err)
	}

	ack, err := m.client.JetStream().Publish(ctx, subject, data)
	if err != nil {
		return 0, fmt.Errorf("failed to publish turn: %w", err)
	}

	return ack.Sequence, nil
}

// PublishEvent publishes a lead event to JetStream.
func (m *StreamManager) PublishEvent(ctx context.Context, event *model.LeadEvent) (uint64, error) {
	subject := EventSubject(event.DealershipID, event.LeadID, event.Type)

	data, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal event: %w", err)
	}

	ack, err := m.client.JetStream().Publish(ctx, subject, data)
	if err != nil {
		return 0, fmt.Errorf("failed to publish event: %w", err)
	}

	return ack.Sequence, nil
}

// GetTurns retrieves recorded turns for a lead starting after a sequence.
func (m *StreamManager) GetTurns(ctx context.Context, dealershipID, leadID string, afterSequence uint64, limit int) ([]model.Turn, uint64, bool, error) {
	js := m.client.JetStream()

	// Ephemeral consumer filtered to this lead's turns
	filterSubject := fmt.Sprintf("%s.%s.%s.turn.>", SubjectPrefix, dealershipID, leadID)

	consumerConfig := jetstream.ConsumerConfig{
		FilterSubject: filterSubject,
		AckPolicy:     jetstream.AckNonePolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	}

	if afterSequence > 0 {
		consumerConfig.DeliverPolicy = jetstream.DeliverByStartSequencePolicy
		consumerConfig.OptStartSeq = afterSequence + 1
	}

	consumer, err := js.CreateConsumer(ctx, StreamName, consumerConfig)
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to create consumer: %w", err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	batch, err := consumer.Fetch(limit, jetstream.FetchMaxWait(2*time.Second))
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to fetch turns: %w", err)
	}

	turns, lastSequence := drainTurns(fetchCtx, batch.Messages())

	if batch.Error() != nil && batch.Error() != context.DeadlineExceeded {
		return nil, 0, false, fmt.Errorf("batch error: %w", batch.Error())
	}

	hasMore := len(turns) == limit

	return turns, lastSequence, hasMore, nil
}

// turnMessage is the slice of jetstream.Msg that turn decoding needs.
type turnMessage interface {
	Data() []byte
	Metadata() (*jetstream.MsgMetadata, error)
}

// drainTurns decodes turns from a fetched batch until the channel is
// exhausted or ctx expires. Undecodable payloads are skipped.
func drainTurns[M turnMessage](ctx context.Context, msgs <-chan M) ([]model.Turn, uint64) {
	var turns []model.Turn
	var lastSequence uint64

	for msg := range msgs {
		if ctx.Err() != nil {
			break
		}

		var turn model.Turn
		if err := json.Unmarshal(msg.Data(), &turn); err != nil {
			continue
		}

		if meta, err := msg.Metadata(); err == nil {
			turn.Sequence = meta.Sequence.Stream
			lastSequence = meta.Sequence.Stream
		}

		turns = append(turns, turn)
	}

	return turns, lastSequence
}
