package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bonesdao/onboarding/internal/domain"
	"github.com/bonesdao/onboarding/internal/store/schema"
)

// CreateSubmissionInput holds the fields of a new onboarding submission
type CreateSubmissionInput struct {
	WalletAddress string
	Contacts      domain.Contacts
	Referrer      string
}

// SubmissionFilter narrows ListSubmissions. An empty Status means all statuses.
type SubmissionFilter struct {
	Status domain.SubmissionStatus
	Search string
	// Limit of 0 returns the full result set
	Limit  int
	Offset int
}

// TransitionSubmissionInput moves a submission along one review edge
type TransitionSubmissionInput struct {
	ID       uint64
	To       domain.SubmissionStatus
	Reviewer string
}

// UpsertAdminInput creates an admin or replaces its credentials
type UpsertAdminInput struct {
	Username      string
	PasswordHash  string
	WalletAddress *string
}

// CreateTransactionRecordInput holds the fields of a confirmed disbursement
type CreateTransactionRecordInput struct {
	ReviewerAddress  string
	RecipientAddress string
	RecipientForum   string
	AssetKind        domain.AssetKind
	Amount           decimal.Decimal
	TxHash           *string
	ChainID          domain.Chain
}

// TransactionRecordFilter narrows ListTransactionRecords
type TransactionRecordFilter struct {
	RecipientAddress string
	AssetKind        domain.AssetKind
	// Since and Until bound transferred_at as [Since, Until)
	Since *time.Time
	Until *time.Time
	// Limit of 0 returns the full result set
	Limit  int
	Offset int
}

// CreatePendingTransferInput holds a dispatched transfer whose confirmation was not observed
type CreatePendingTransferInput struct {
	TxHash           string
	ChainID          domain.Chain
	ReviewerAddress  string
	RecipientAddress string
	RecipientForum   string
	AssetKind        domain.AssetKind
	Amount           decimal.Decimal
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// Ping checks the database connection
	Ping(ctx context.Context) error

	// GetSubmissionByAddress retrieves the active submission of a wallet address, nil if none
	GetSubmissionByAddress(ctx context.Context, walletAddress string) (*schema.Submission, error)
	// CreateSubmission inserts a pending submission, replacing a rejected one.
	// Returns domain.ErrAlreadyPending or domain.ErrAlreadyApproved when an active row blocks it.
	CreateSubmission(ctx context.Context, input CreateSubmissionInput) (*schema.Submission, error)
	// ListSubmissions lists submissions newest first
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]schema.Submission, error)
	// TransitionSubmission applies a review edge and, on approval, archives the row
	// within the same transaction
	TransitionSubmission(ctx context.Context, input TransitionSubmissionInput) (*schema.Submission, error)
	// ListOnboardedIdentities lists the approval archive newest first
	ListOnboardedIdentities(ctx context.Context, limit, offset int) ([]schema.OnboardedIdentity, error)

	// GetAdminByUsername retrieves an admin by username, nil if none
	GetAdminByUsername(ctx context.Context, username string) (*schema.Admin, error)
	// GetAdminByAddress retrieves an admin by linked wallet address, nil if none
	GetAdminByAddress(ctx context.Context, walletAddress string) (*schema.Admin, error)
	// UpsertAdmin creates or updates an admin by username
	UpsertAdmin(ctx context.Context, input UpsertAdminInput) (*schema.Admin, error)

	// CreateTransactionRecord inserts a ledger row. A row with the same tx hash is returned as is
	// with created set to false.
	CreateTransactionRecord(ctx context.Context, input CreateTransactionRecordInput) (*schema.TransactionRecord, bool, error)
	// ListTransactionRecords lists ledger rows newest first
	ListTransactionRecords(ctx context.Context, filter TransactionRecordFilter) ([]schema.TransactionRecord, error)

	// CreatePendingTransfer tracks an unconfirmed transfer. A row with the same tx hash is returned as is.
	CreatePendingTransfer(ctx context.Context, input CreatePendingTransferInput) (*schema.PendingTransfer, error)
	// GetPendingTransfersForChecking returns unresolved transfers, least recently checked first
	GetPendingTransfersForChecking(ctx context.Context, limit int) ([]schema.PendingTransfer, error)
	// TouchPendingTransfer stamps the last check time of a pending transfer
	TouchPendingTransfer(ctx context.Context, id uint64) error
	// ConfirmPendingTransfer moves a pending transfer into the ledger in one transaction.
	// Returns nil when the pending row no longer exists or its tx hash was already recorded.
	ConfirmPendingTransfer(ctx context.Context, id uint64) (*schema.TransactionRecord, error)
	// FailPendingTransfer marks a pending transfer as reverted on the ledger
	FailPendingTransfer(ctx context.Context, id uint64) error
}
