package disbursement

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/bonesdao/onboarding/internal/domain"
	"github.com/bonesdao/onboarding/internal/ledger"
)

// ErrChainNotAdded is returned by a signer that does not know the requested chain (EIP-1193 code 4902)
var ErrChainNotAdded = errors.New("chain not added to signer")

// State is the observable state of a disbursement session
type State string

const (
	StateIdle               State = "idle"
	StatePending            State = "pending"
	StateSuccess            State = "success"
	StateError              State = "error"
	StatePendingUnconfirmed State = "pending_unconfirmed"
	StateStale              State = "stale"
)

// ChainParams describes a network so a signer can add it
type ChainParams struct {
	ChainID      *big.Int
	Name         string
	Symbol       string
	Decimals     uint8
	RPCURLs      []string
	ExplorerURLs []string
}

// TxRequest is an unsigned transaction handed to the signer
type TxRequest struct {
	From  common.Address
	To    common.Address
	Value *big.Int
	Data  []byte
	Gas   uint64
}

// Request is a payout to an approved submission
type Request struct {
	Recipient      string
	RecipientForum string
	Asset          domain.AssetKind
	// Amount is the human-entered decimal amount of the asset
	Amount string
}

// Result describes a dispatched transfer
type Result struct {
	TxHash   common.Hash
	Reviewer common.Address
	RecordID uint64
	State    State
}

// Signer is the operator's external wallet. It holds the keys; the engine never does.
//
//go:generate mockgen -source=types.go -destination=../mocks/disbursement.go -package=mocks -mock_names=Signer=MockSigner,ChainReader=MockChainReader,Recorder=MockRecorder,PendingTracker=MockPendingTracker
type Signer interface {
	// ChainID returns the network the signer is connected to
	ChainID(ctx context.Context) (*big.Int, error)
	// SwitchChain asks the signer to move to chainID, ErrChainNotAdded if it does not know it
	SwitchChain(ctx context.Context, chainID *big.Int) error
	// AddChain registers a network with the signer
	AddChain(ctx context.Context, params ChainParams) error
	// Account returns the active account
	Account(ctx context.Context) (common.Address, error)
	// SendTransaction signs and broadcasts a transaction
	SendTransaction(ctx context.Context, tx TxRequest) (common.Hash, error)
}

// ChainReader reads balances and receipts from the ledger
type ChainReader interface {
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	TokenDecimals(ctx context.Context, token common.Address) (uint8, error)
	TokenBalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error)
	// TransactionReceipt returns ethereum.NotFound while the transaction is pending
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Recorder persists confirmed transfers
type Recorder interface {
	Record(ctx context.Context, input ledger.RecordInput) (uint64, error)
}

// PendingTracker keeps transfers whose confirmation was not observed in time
type PendingTracker interface {
	TrackPending(ctx context.Context, input ledger.RecordInput) error
}
