package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/bonesdao/onboarding/internal/adapter"
	"github.com/bonesdao/onboarding/internal/domain"
	"github.com/bonesdao/onboarding/internal/ledger"
	"github.com/bonesdao/onboarding/internal/logger"
	"github.com/bonesdao/onboarding/internal/metrics"
	"github.com/bonesdao/onboarding/internal/store/schema"
)

// Outcomes of a pending transfer check
const (
	OutcomeConfirmed = "confirmed"
	OutcomeReverted  = "reverted"
	OutcomeDropped   = "dropped"
	OutcomePending   = "pending"
)

// ReceiptFetcher reads transaction receipts from the ledger
type ReceiptFetcher interface {
	// TransactionReceipt returns ethereum.NotFound while the transaction is pending
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// PendingTransferSweeperConfig holds configuration for the pending transfer sweeper
type PendingTransferSweeperConfig struct {
	BatchSize      int           // Pending transfers to check per cycle
	WorkerPoolSize int           // Concurrent receipt lookups
	Interval       time.Duration // Sleep between cycles
	GiveUpAfter    time.Duration // Transfers without a receipt after this are dropped
	Chain          domain.Chain  // Only transfers on this chain are checked
}

type pendingTransferSweeper struct {
	config    *PendingTransferSweeperConfig
	ledger    ledger.Ledger
	receipts  ReceiptFetcher
	clock     adapter.Clock
	metrics   *metrics.Metrics
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewPendingTransferSweeper creates a sweeper that moves confirmed transfers into the ledger
func NewPendingTransferSweeper(
	config *PendingTransferSweeperConfig,
	l ledger.Ledger,
	receipts ReceiptFetcher,
	clock adapter.Clock,
	m *metrics.Metrics,
) Sweeper {
	return &pendingTransferSweeper{
		config:    config,
		ledger:    l,
		receipts:  receipts,
		clock:     clock,
		metrics:   m,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *pendingTransferSweeper) Name() string {
	return "pending-transfer-sweeper"
}

// Start runs sweep cycles until ctx is canceled or Stop is called
func (s *pendingTransferSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting pending transfer sweeper",
		zap.Int("batch_size", s.config.BatchSize),
		zap.Int("worker_pool_size", s.config.WorkerPoolSize),
		zap.Duration("interval", s.config.Interval),
		zap.Duration("give_up_after", s.config.GiveUpAfter),
		zap.String("chain", string(s.config.Chain)),
	)

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Pending transfer sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
			return nil
		case <-s.stopChan:
			logger.InfoCtx(ctx, "Pending transfer sweeper stop requested")
			return nil
		default:
			if err := s.runSweepCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.ErrorCtx(ctx, err)
			}
			if !s.sleep(ctx, s.config.Interval) {
				return nil
			}
		}
	}
}

// Stop waits for the in-flight cycle to finish, bounded by ctx
func (s *pendingTransferSweeper) Stop(ctx context.Context) error {
	if !s.running.Load() {
		return nil
	}

	logger.InfoCtx(ctx, "Stopping pending transfer sweeper")
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Pending transfer sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Pending transfer sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// sleep returns false when interrupted by ctx or Stop
func (s *pendingTransferSweeper) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-s.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-s.stopChan:
		return false
	}
}

// runSweepCycle checks one batch of pending transfers
func (s *pendingTransferSweeper) runSweepCycle(ctx context.Context) error {
	startTime := s.clock.Now()

	pending, err := s.ledger.ListPending(ctx, s.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending transfers: %w", err)
	}
	if len(pending) == 0 {
		logger.DebugCtx(ctx, "No pending transfers")
		return nil
	}

	var confirmed, reverted, dropped, stillPending atomic.Int32

	pool := pond.NewPool(
		s.config.WorkerPoolSize,
		pond.WithQueueSize(s.config.BatchSize),
		pond.WithContext(ctx),
	)
	for _, transfer := range pending {
		pool.Submit(func() {
			switch s.resolve(ctx, transfer) {
			case OutcomeConfirmed:
				confirmed.Add(1)
			case OutcomeReverted:
				reverted.Add(1)
			case OutcomeDropped:
				dropped.Add(1)
			default:
				stillPending.Add(1)
			}
		})
	}
	pool.StopAndWait()

	logger.InfoCtx(ctx, "Sweep cycle completed",
		zap.Duration("duration", s.clock.Since(startTime)),
		zap.Int("total_checked", len(pending)),
		zap.Int32("confirmed", confirmed.Load()),
		zap.Int32("reverted", reverted.Load()),
		zap.Int32("dropped", dropped.Load()),
		zap.Int32("pending", stillPending.Load()),
	)
	return nil
}

// resolve checks one transfer and moves it to its final state when the ledger has decided
func (s *pendingTransferSweeper) resolve(ctx context.Context, transfer schema.PendingTransfer) string {
	ctx = logger.WithFields(ctx,
		zap.Uint64("pending_id", transfer.ID),
		zap.String("tx_hash", transfer.TxHash))

	if transfer.ChainID != s.config.Chain {
		logger.DebugCtx(ctx, "Skipping transfer on another chain", zap.String("chain", string(transfer.ChainID)))
		return OutcomePending
	}

	receipt, err := s.receipts.TransactionReceipt(ctx, common.HexToHash(transfer.TxHash))
	switch {
	case errors.Is(err, ethereum.NotFound):
		if s.clock.Since(transfer.CreatedAt) > s.config.GiveUpAfter {
			return s.finish(ctx, transfer, OutcomeDropped, func(ctx context.Context) error {
				return s.ledger.FailPending(ctx, transfer.ID)
			})
		}
		s.touch(ctx, transfer)
		return OutcomePending
	case err != nil:
		logger.WarnCtx(ctx, "Failed to fetch receipt, will retry next cycle", zap.Error(err))
		s.touch(ctx, transfer)
		return OutcomePending
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return s.finish(ctx, transfer, OutcomeReverted, func(ctx context.Context) error {
			return s.ledger.FailPending(ctx, transfer.ID)
		})
	}
	return s.finish(ctx, transfer, OutcomeConfirmed, func(ctx context.Context) error {
		_, err := s.ledger.ConfirmPending(ctx, transfer.ID)
		return err
	})
}

func (s *pendingTransferSweeper) touch(ctx context.Context, transfer schema.PendingTransfer) {
	s.metrics.IncPendingResolved(OutcomePending)
	if err := s.ledger.MarkChecked(ctx, transfer.ID); err != nil {
		logger.ErrorCtx(ctx, err)
	}
}

// finish applies the final ledger write with retry; a failed write leaves the transfer pending
func (s *pendingTransferSweeper) finish(ctx context.Context, transfer schema.PendingTransfer, outcome string, write func(context.Context) error) string {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = time.Minute

	var attemptCount int
	notifyOnError := func(err error, duration time.Duration) {
		attemptCount++
		logger.WarnCtx(ctx, "Ledger write failed, retrying",
			zap.String("outcome", outcome),
			zap.Error(err),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", duration),
		)
	}

	operation := func() error {
		return write(ctx)
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notifyOnError); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to resolve pending transfer as %s: %w", outcome, err))
		return OutcomePending
	}

	s.metrics.IncPendingResolved(outcome)
	logger.InfoCtx(ctx, "Pending transfer resolved",
		zap.String("outcome", outcome),
		zap.String("amount", transfer.Amount.String()),
		zap.String("asset", string(transfer.AssetKind)))
	return outcome
}
