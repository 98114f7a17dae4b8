package disbursement

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bonesdao/onboarding/internal/domain"
	"github.com/bonesdao/onboarding/internal/ledger"
	"github.com/bonesdao/onboarding/internal/logger"
)

const erc20TransferABI = `[{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"payable":false,"stateMutability":"nonpayable","type":"function"}]`

var erc20ABI = mustParseABI(erc20TransferABI)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("failed to parse ABI: %v", err))
	}
	return parsed
}

// Config holds the network and timing of an engine
type Config struct {
	Chain        ChainParams
	TokenAddress common.Address
	// ConfirmationTimeout bounds the wait for a receipt after dispatch
	ConfirmationTimeout time.Duration
	PollInterval        time.Duration
}

// session is the account and network the engine was authenticated against
type session struct {
	account common.Address
	chainID *big.Int
}

// Engine disburses funds from the operator's signer and records the result
type Engine struct {
	cfg      Config
	signer   Signer
	reader   ChainReader
	recorder Recorder
	tracker  PendingTracker

	mu      sync.Mutex
	state   State
	session *session
}

// NewEngine creates a disbursement engine. signer may be nil when no wallet is connected.
func NewEngine(cfg Config, signer Signer, reader ChainReader, recorder Recorder, tracker PendingTracker) *Engine {
	if cfg.ConfirmationTimeout <= 0 {
		cfg.ConfirmationTimeout = 2 * time.Minute
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	return &Engine{
		cfg:      cfg,
		signer:   signer,
		reader:   reader,
		recorder: recorder,
		tracker:  tracker,
		state:    StateIdle,
	}
}

// State returns the current state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(state State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	// a stale session stays stale until Reauthenticate
	if e.state == StateStale && state != StateIdle {
		return
	}
	e.state = state
}

// Session returns the account and chain the engine was last authenticated against
func (e *Engine) Session() (common.Address, *big.Int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return common.Address{}, nil, false
	}
	return e.session.account, new(big.Int).Set(e.session.chainID), true
}

// MarkStale refuses further disbursements until Reauthenticate succeeds
func (e *Engine) MarkStale(reason string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateStale
	e.session = nil
	logger.Warn("Disbursement session marked stale", zap.String("reason", reason))
}

// Reauthenticate reruns the network check and resets a stale session
func (e *Engine) Reauthenticate(ctx context.Context) error {
	s, err := e.ensureNetwork(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = s
	e.state = StateIdle
	return nil
}

func (e *Engine) begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateStale {
		return domain.ErrStaleSession
	}
	e.state = StatePending
	return nil
}

// Disburse runs one transfer: network check, amount, balance, dispatch, confirmation, persistence.
// No step is retried automatically; a new call reruns the network check.
func (e *Engine) Disburse(ctx context.Context, req Request) (*Result, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}

	result, err := e.disburse(ctx, req)
	switch {
	case err == nil:
		e.setState(StateSuccess)
	case errors.Is(err, domain.ErrPendingUnconfirmed):
		e.setState(StatePendingUnconfirmed)
	default:
		e.setState(StateError)
	}
	if result != nil {
		result.State = e.State()
	}
	return result, err
}

func (e *Engine) disburse(ctx context.Context, req Request) (*Result, error) {
	// 1. network
	s, err := e.ensureNetwork(ctx)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	if e.session == nil {
		e.session = s
	} else if e.session.account != s.account {
		e.state = StateStale
		e.session = nil
		e.mu.Unlock()
		return nil, domain.ErrStaleSession
	}
	e.mu.Unlock()

	if !domain.IsValidAddress(req.Recipient) {
		return nil, fmt.Errorf("%w: recipient %q is not a valid address", domain.ErrValidation, req.Recipient)
	}
	if !req.Asset.Valid() {
		return nil, fmt.Errorf("%w: asset %q is not supported", domain.ErrValidation, req.Asset)
	}
	recipient := common.HexToAddress(req.Recipient)

	// 2. amount
	amount, err := ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	// 3. balance
	units, err := e.checkBalance(ctx, s.account, req.Asset, amount)
	if err != nil {
		return nil, err
	}

	// 4. dispatch
	tx, err := e.buildTransaction(s.account, recipient, req.Asset, units)
	if err != nil {
		return nil, err
	}
	hash, err := e.signer.SendTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}
	logger.InfoCtx(ctx, "Transfer dispatched",
		zap.String("tx_hash", hash.Hex()),
		zap.String("recipient", recipient.Hex()),
		zap.String("asset", string(req.Asset)),
		zap.String("amount", amount.String()))

	result := &Result{TxHash: hash, Reviewer: s.account}
	record := ledger.RecordInput{
		ReviewerAddress:  domain.NormalizeAddress(s.account.Hex()),
		RecipientAddress: domain.NormalizeAddress(recipient.Hex()),
		RecipientForum:   strings.TrimSpace(req.RecipientForum),
		AssetKind:        req.Asset,
		Amount:           amount,
		TxHash:           strings.ToLower(hash.Hex()),
		ChainID:          domain.ChainFromID(s.chainID),
	}

	// 5. confirmation
	receipt, err := e.waitMined(ctx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrPendingUnconfirmed) {
			e.handOff(ctx, record)
		}
		return result, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return result, fmt.Errorf("%w: %s", domain.ErrTransferReverted, hash.Hex())
	}

	// 6. persistence
	id, err := e.recorder.Record(ctx, record)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("confirmed transfer %s was not recorded: %w", hash.Hex(), err))
		e.handOff(ctx, record)
		return result, fmt.Errorf("transfer %s confirmed but not recorded: %w", hash.Hex(), err)
	}
	result.RecordID = id

	logger.InfoCtx(ctx, "Transfer recorded", zap.String("tx_hash", hash.Hex()), zap.Uint64("record_id", id))
	return result, nil
}

// ensureNetwork moves the signer to the configured chain, adding the chain when the signer lacks it
func (e *Engine) ensureNetwork(ctx context.Context) (*session, error) {
	if e.signer == nil {
		return nil, domain.ErrSignerUnavailable
	}

	want := e.cfg.Chain.ChainID
	current, err := e.signer.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSignerUnavailable, err)
	}

	if current.Cmp(want) != 0 {
		logger.InfoCtx(ctx, "Switching signer network",
			zap.String("from", current.String()),
			zap.String("to", want.String()))

		err = e.signer.SwitchChain(ctx, want)
		if errors.Is(err, ErrChainNotAdded) {
			if err = e.signer.AddChain(ctx, e.cfg.Chain); err == nil {
				err = e.signer.SwitchChain(ctx, want)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrChainMismatch, err)
		}

		current, err = e.signer.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrChainMismatch, err)
		}
		if current.Cmp(want) != 0 {
			return nil, fmt.Errorf("%w: signer reports chain %s", domain.ErrChainMismatch, current.String())
		}
	}

	account, err := e.signer.Account(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSignerUnavailable, err)
	}

	return &session{account: account, chainID: new(big.Int).Set(current)}, nil
}

// checkBalance returns the amount in base units when the signer can cover it
func (e *Engine) checkBalance(ctx context.Context, account common.Address, asset domain.AssetKind, amount decimal.Decimal) (*big.Int, error) {
	var (
		decimals uint8
		balance  *big.Int
		err      error
	)

	switch asset {
	case domain.AssetNative:
		decimals = domain.NativeDecimals
		balance, err = e.reader.BalanceAt(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("failed to read balance: %w", err)
		}
	case domain.AssetToken:
		decimals, err = e.reader.TokenDecimals(ctx, e.cfg.TokenAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to read token decimals: %w", err)
		}
		balance, err = e.reader.TokenBalanceOf(ctx, e.cfg.TokenAddress, account)
		if err != nil {
			return nil, fmt.Errorf("failed to read token balance: %w", err)
		}
	}

	units, err := ToBaseUnits(amount, decimals)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(units) < 0 {
		return nil, fmt.Errorf("%w: balance %s, requested %s",
			domain.ErrInsufficientFunds, FromBaseUnits(balance, decimals).String(), amount.String())
	}
	return units, nil
}

func (e *Engine) buildTransaction(from, recipient common.Address, asset domain.AssetKind, units *big.Int) (TxRequest, error) {
	if asset == domain.AssetNative {
		return TxRequest{
			From:  from,
			To:    recipient,
			Value: units,
			Gas:   domain.NativeTransferGasLimit,
		}, nil
	}

	data, err := erc20ABI.Pack("transfer", recipient, units)
	if err != nil {
		return TxRequest{}, fmt.Errorf("failed to pack transfer call: %w", err)
	}
	return TxRequest{
		From:  from,
		To:    e.cfg.TokenAddress,
		Value: big.NewInt(0),
		Data:  data,
		Gas:   domain.TokenTransferGasLimit,
	}, nil
}

// waitMined polls for the receipt until the confirmation timeout
func (e *Engine) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, e.cfg.ConfirmationTimeout)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.cfg.PollInterval
	b.MaxInterval = 4 * e.cfg.PollInterval
	b.MaxElapsedTime = 0

	operation := func() (*types.Receipt, error) {
		receipt, err := e.reader.TransactionReceipt(waitCtx, hash)
		if err != nil {
			if !errors.Is(err, ethereum.NotFound) {
				logger.WarnCtx(ctx, "Failed to fetch receipt", zap.String("tx_hash", hash.Hex()), zap.Error(err))
			}
			return nil, err
		}
		return receipt, nil
	}

	receipt, err := backoff.RetryWithData(operation, backoff.WithContext(b, waitCtx))
	if err != nil {
		if waitCtx.Err() != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrPendingUnconfirmed, hash.Hex())
		}
		return nil, fmt.Errorf("failed to wait for receipt: %w", err)
	}
	return receipt, nil
}

// handOff gives an unrecorded transfer to the pending tracker. It outlives the caller's context.
func (e *Engine) handOff(ctx context.Context, record ledger.RecordInput) {
	if e.tracker == nil {
		logger.WarnCtx(ctx, "No pending tracker, transfer must be reconciled manually", zap.String("tx_hash", record.TxHash))
		return
	}

	trackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if err := e.tracker.TrackPending(trackCtx, record); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to track pending transfer %s: %w", record.TxHash, err))
		return
	}
	logger.InfoCtx(ctx, "Transfer handed to the confirmation sweeper", zap.String("tx_hash", record.TxHash))
}
