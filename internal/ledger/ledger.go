package ledger

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bonesdao/onboarding/internal/adapter"
	"github.com/bonesdao/onboarding/internal/domain"
	"github.com/bonesdao/onboarding/internal/logger"
	"github.com/bonesdao/onboarding/internal/messaging"
	"github.com/bonesdao/onboarding/internal/metrics"
	"github.com/bonesdao/onboarding/internal/store"
	"github.com/bonesdao/onboarding/internal/store/schema"
)

var txHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// RecordInput describes a completed or dispatched disbursement
type RecordInput struct {
	ReviewerAddress  string           `json:"reviewer_address"`
	RecipientAddress string           `json:"recipient_address"`
	RecipientForum   string           `json:"recipient_forum"`
	AssetKind        domain.AssetKind `json:"asset_kind"`
	Amount           decimal.Decimal  `json:"amount"`
	TxHash           string           `json:"tx_hash,omitempty"`
	ChainID          domain.Chain     `json:"chain_id,omitempty"`
}

// ListFilter narrows List
type ListFilter struct {
	RecipientAddress string
	AssetKind        domain.AssetKind
	Limit            int
	Offset           int
}

// Ledger is the append-only record of disbursements
//
//go:generate mockgen -source=ledger.go -destination=../mocks/ledger.go -package=mocks -mock_names=Ledger=MockLedger
type Ledger interface {
	// Record appends a confirmed disbursement. The same tx hash twice returns the existing row.
	Record(ctx context.Context, input RecordInput) (*schema.TransactionRecord, error)
	// List lists disbursements newest first
	List(ctx context.Context, filter ListFilter) ([]schema.TransactionRecord, error)
	// Stats aggregates disbursements transferred in [from, to)
	Stats(ctx context.Context, from, to *time.Time) (*Stats, error)
	// TrackPending keeps a dispatched transfer whose confirmation was not observed
	TrackPending(ctx context.Context, input RecordInput) (*schema.PendingTransfer, error)
	// ListPending returns unresolved transfers, least recently checked first
	ListPending(ctx context.Context, limit int) ([]schema.PendingTransfer, error)
	// MarkChecked stamps a pending transfer whose receipt is still missing
	MarkChecked(ctx context.Context, id uint64) error
	// ConfirmPending moves a pending transfer into the ledger atomically
	ConfirmPending(ctx context.Context, id uint64) (*schema.TransactionRecord, error)
	// FailPending marks a pending transfer as reverted
	FailPending(ctx context.Context, id uint64) error
}

type ledger struct {
	store     store.Store
	publisher messaging.Publisher
	clock     adapter.Clock
	metrics   *metrics.Metrics
}

// New creates the transaction ledger
func New(st store.Store, publisher messaging.Publisher, clock adapter.Clock, m *metrics.Metrics) Ledger {
	if publisher == nil {
		publisher = messaging.NewNoopPublisher()
	}
	return &ledger{
		store:     st,
		publisher: publisher,
		clock:     clock,
		metrics:   m,
	}
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}

// Validate checks a record input before it reaches the store
func (in RecordInput) Validate() error {
	if !domain.IsValidAddress(in.ReviewerAddress) {
		return validationError("reviewer address %q is not a valid address", in.ReviewerAddress)
	}
	if !domain.IsValidAddress(in.RecipientAddress) {
		return validationError("recipient address %q is not a valid address", in.RecipientAddress)
	}
	if !in.AssetKind.Valid() {
		return validationError("asset kind %q is not supported", in.AssetKind)
	}
	if !in.Amount.IsPositive() {
		return validationError("amount must be greater than zero")
	}
	if in.TxHash != "" && !txHashPattern.MatchString(in.TxHash) {
		return validationError("tx hash %q is malformed", in.TxHash)
	}
	if in.ChainID != "" && !domain.IsValidChain(in.ChainID) {
		return validationError("chain %q is not supported", in.ChainID)
	}
	return nil
}

func (in RecordInput) txHash() *string {
	if in.TxHash == "" {
		return nil
	}
	h := strings.ToLower(in.TxHash)
	return &h
}

// Record appends a confirmed disbursement
func (l *ledger) Record(ctx context.Context, input RecordInput) (*schema.TransactionRecord, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	record, created, err := l.store.CreateTransactionRecord(ctx, store.CreateTransactionRecordInput{
		ReviewerAddress:  input.ReviewerAddress,
		RecipientAddress: input.RecipientAddress,
		RecipientForum:   strings.TrimSpace(input.RecipientForum),
		AssetKind:        input.AssetKind,
		Amount:           input.Amount,
		TxHash:           input.txHash(),
		ChainID:          input.ChainID,
	})
	if err != nil {
		return nil, err
	}

	if !created {
		logger.InfoCtx(ctx, "Transfer already recorded", zap.Uint64("record_id", record.ID))
		return record, nil
	}
	l.recorded(ctx, record)
	return record, nil
}

// recordedEventID is stable per ledger row so a republished event is deduplicated
func recordedEventID(recordID uint64) string {
	return fmt.Sprintf("transfer-recorded-%d", recordID)
}

// recorded counts and announces a ledger row
func (l *ledger) recorded(ctx context.Context, record *schema.TransactionRecord) {
	l.metrics.IncLedgerRecord(string(record.AssetKind))
	logger.InfoCtx(ctx, "Transfer recorded",
		zap.Uint64("record_id", record.ID),
		zap.String("recipient", record.RecipientAddress),
		zap.String("asset", string(record.AssetKind)),
		zap.String("amount", record.Amount.String()))

	payload := messaging.TransferRecorded{
		RecordID:         record.ID,
		ReviewerAddress:  record.ReviewerAddress,
		RecipientAddress: record.RecipientAddress,
		AssetKind:        string(record.AssetKind),
		Amount:           record.Amount.String(),
		ChainID:          string(record.ChainID),
	}
	if record.TxHash != nil {
		payload.TxHash = *record.TxHash
	}

	event, err := messaging.NewEventWithID(recordedEventID(record.ID), domain.SubjectTransferRecorded, record.TransferredAt, payload)
	if err == nil {
		err = l.publisher.Publish(ctx, event)
	}
	if err != nil {
		logger.WarnCtx(ctx, "Failed to publish transfer event", zap.Uint64("record_id", record.ID), zap.Error(err))
	}
}

// List lists disbursements newest first
func (l *ledger) List(ctx context.Context, filter ListFilter) ([]schema.TransactionRecord, error) {
	if filter.RecipientAddress != "" && !domain.IsValidAddress(filter.RecipientAddress) {
		return nil, validationError("recipient address %q is not a valid address", filter.RecipientAddress)
	}
	if filter.AssetKind != "" && !filter.AssetKind.Valid() {
		return nil, validationError("asset kind %q is not supported", filter.AssetKind)
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, validationError("limit and offset must not be negative")
	}

	return l.store.ListTransactionRecords(ctx, store.TransactionRecordFilter{
		RecipientAddress: filter.RecipientAddress,
		AssetKind:        filter.AssetKind,
		Limit:            filter.Limit,
		Offset:           filter.Offset,
	})
}

// TrackPending keeps a dispatched transfer for the sweeper to resolve
func (l *ledger) TrackPending(ctx context.Context, input RecordInput) (*schema.PendingTransfer, error) {
	if input.TxHash == "" {
		return nil, validationError("tx hash is required for a pending transfer")
	}
	if input.ChainID == "" {
		return nil, validationError("chain is required for a pending transfer")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	pending, err := l.store.CreatePendingTransfer(ctx, store.CreatePendingTransferInput{
		TxHash:           *input.txHash(),
		ChainID:          input.ChainID,
		ReviewerAddress:  input.ReviewerAddress,
		RecipientAddress: input.RecipientAddress,
		RecipientForum:   strings.TrimSpace(input.RecipientForum),
		AssetKind:        input.AssetKind,
		Amount:           input.Amount,
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Tracking unconfirmed transfer",
		zap.Uint64("pending_id", pending.ID),
		zap.String("tx_hash", pending.TxHash))
	return pending, nil
}

// ListPending returns unresolved transfers, least recently checked first
func (l *ledger) ListPending(ctx context.Context, limit int) ([]schema.PendingTransfer, error) {
	if limit <= 0 {
		return nil, validationError("limit must be positive")
	}
	return l.store.GetPendingTransfersForChecking(ctx, limit)
}

// MarkChecked stamps a pending transfer whose receipt is still missing
func (l *ledger) MarkChecked(ctx context.Context, id uint64) error {
	return l.store.TouchPendingTransfer(ctx, id)
}

// ConfirmPending moves a pending transfer into the ledger atomically.
// Returns nil when the transfer was already resolved.
func (l *ledger) ConfirmPending(ctx context.Context, id uint64) (*schema.TransactionRecord, error) {
	record, err := l.store.ConfirmPendingTransfer(ctx, id)
	if err != nil {
		return nil, err
	}
	if record != nil {
		l.recorded(ctx, record)
	}
	return record, nil
}

// FailPending marks a pending transfer as reverted
func (l *ledger) FailPending(ctx context.Context, id uint64) error {
	if err := l.store.FailPendingTransfer(ctx, id); err != nil {
		return err
	}
	logger.WarnCtx(ctx, "Pending transfer reverted on the ledger", zap.Uint64("pending_id", id))
	return nil
}
