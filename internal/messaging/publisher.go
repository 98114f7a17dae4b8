package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Event is the envelope of every published event
type Event struct {
	// ID is also used as the JetStream message id for de-duplication
	ID         string          `json:"id"`
	Subject    string          `json:"subject"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// NewEvent wraps data into an event envelope with a fresh ULID
func NewEvent(subject string, occurredAt time.Time, data interface{}) (*Event, error) {
	return NewEventWithID(ulid.MustNewDefault(occurredAt).String(), subject, occurredAt, data)
}

// NewEventWithID wraps data into an event envelope with a caller-chosen id.
// Republishing the same id within the stream's duplicate window is dropped by the broker.
func NewEventWithID(id, subject string, occurredAt time.Time, data interface{}) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	return &Event{
		ID:         id,
		Subject:    subject,
		OccurredAt: occurredAt.UTC(),
		Data:       raw,
	}, nil
}

// SubmissionApproved is published after a submission is approved and archived
type SubmissionApproved struct {
	SubmissionID  uint64    `json:"submission_id"`
	WalletAddress string    `json:"wallet_address"`
	Referrer      string    `json:"referrer"`
	ApprovedBy    string    `json:"approved_by"`
	ApprovedAt    time.Time `json:"approved_at"`
}

// TransferRecorded is published after a disbursement lands in the ledger
type TransferRecorded struct {
	RecordID         uint64 `json:"record_id"`
	ReviewerAddress  string `json:"reviewer_address"`
	RecipientAddress string `json:"recipient_address"`
	AssetKind        string `json:"asset_kind"`
	Amount           string `json:"amount"`
	TxHash           string `json:"tx_hash,omitempty"`
	ChainID          string `json:"chain_id,omitempty"`
}

// Publisher defines the interface for publishing events to message queue
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// Publish publishes an event on its subject
	Publish(ctx context.Context, event *Event) error
	// Close closes the connection
	Close()
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event, used when no broker is configured
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, *Event) error { return nil }

func (noopPublisher) Close() {}
