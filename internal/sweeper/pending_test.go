package sweeper_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonesdao/onboarding/internal/domain"
	"github.com/bonesdao/onboarding/internal/metrics"
	"github.com/bonesdao/onboarding/internal/mocks"
	"github.com/bonesdao/onboarding/internal/store/schema"
	"github.com/bonesdao/onboarding/internal/sweeper"
)

// testSweeperMocks contains all the mocks needed for testing the sweeper
type testSweeperMocks struct {
	ctrl     *gomock.Controller
	ledger   *mocks.MockLedger
	receipts *mocks.MockChainReader
	clock    *mocks.MockClock
	metrics  *metrics.Metrics
	sweeper  sweeper.Sweeper
	now      time.Time
}

func setupTestSweeper(t *testing.T) *testSweeperMocks {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	tm := &testSweeperMocks{
		ctrl:     ctrl,
		ledger:   mocks.NewMockLedger(ctrl),
		receipts: mocks.NewMockChainReader(ctrl),
		clock:    mocks.NewMockClock(ctrl),
		metrics:  metrics.New(),
		now:      time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	}

	tm.clock.EXPECT().Now().Return(tm.now).AnyTimes()
	tm.clock.EXPECT().Since(gomock.Any()).DoAndReturn(func(from time.Time) time.Duration {
		return tm.now.Sub(from)
	}).AnyTimes()
	// After fires shortly so the loop keeps cycling until Stop
	tm.clock.EXPECT().After(gomock.Any()).DoAndReturn(func(d time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		go func() {
			time.Sleep(20 * time.Millisecond)
			ch <- time.Now()
		}()
		return ch
	}).AnyTimes()

	tm.sweeper = sweeper.NewPendingTransferSweeper(&sweeper.PendingTransferSweeperConfig{
		BatchSize:      10,
		WorkerPoolSize: 2,
		Interval:       time.Second,
		GiveUpAfter:    24 * time.Hour,
		Chain:          domain.ChainPlatONMainnet,
	}, tm.ledger, tm.receipts, tm.clock, tm.metrics)

	return tm
}

func pendingTransfer(id uint64, hash string, age time.Duration, now time.Time) schema.PendingTransfer {
	return schema.PendingTransfer{
		ID:        id,
		TxHash:    hash,
		ChainID:   domain.ChainPlatONMainnet,
		AssetKind: domain.AssetNative,
		Status:    schema.PendingTransferStatusPending,
		CreatedAt: now.Add(-age),
	}
}

// runUntilStopped starts the sweeper and stops it after d
func runUntilStopped(t *testing.T, s sweeper.Sweeper, d time.Duration) {
	go func() {
		time.Sleep(d)
		_ = s.Stop(context.Background())
	}()
	require.NoError(t, s.Start(context.Background()))
}

func TestPendingTransferSweeper_Name(t *testing.T) {
	tm := setupTestSweeper(t)
	assert.Equal(t, "pending-transfer-sweeper", tm.sweeper.Name())
}

func TestPendingTransferSweeper_ResolvesBatch(t *testing.T) {
	tm := setupTestSweeper(t)

	const (
		confirmedHash = "0x0000000000000000000000000000000000000000000000000000000000000001"
		revertedHash  = "0x0000000000000000000000000000000000000000000000000000000000000002"
		youngHash     = "0x0000000000000000000000000000000000000000000000000000000000000003"
		oldHash       = "0x0000000000000000000000000000000000000000000000000000000000000004"
		otherHash     = "0x0000000000000000000000000000000000000000000000000000000000000005"
	)
	other := pendingTransfer(5, otherHash, time.Hour, tm.now)
	other.ChainID = domain.ChainEthereumMainnet

	batch := []schema.PendingTransfer{
		pendingTransfer(1, confirmedHash, time.Minute, tm.now),
		pendingTransfer(2, revertedHash, time.Minute, tm.now),
		pendingTransfer(3, youngHash, time.Minute, tm.now),
		pendingTransfer(4, oldHash, 48*time.Hour, tm.now),
		other,
	}

	gomock.InOrder(
		tm.ledger.EXPECT().ListPending(gomock.Any(), 10).Return(batch, nil).Times(1),
		tm.ledger.EXPECT().ListPending(gomock.Any(), 10).Return(nil, nil).MinTimes(1),
	)

	tm.receipts.EXPECT().TransactionReceipt(gomock.Any(), common.HexToHash(confirmedHash)).
		Return(&types.Receipt{Status: types.ReceiptStatusSuccessful}, nil)
	tm.receipts.EXPECT().TransactionReceipt(gomock.Any(), common.HexToHash(revertedHash)).
		Return(&types.Receipt{Status: types.ReceiptStatusFailed}, nil)
	tm.receipts.EXPECT().TransactionReceipt(gomock.Any(), common.HexToHash(youngHash)).
		Return(nil, ethereum.NotFound)
	tm.receipts.EXPECT().TransactionReceipt(gomock.Any(), common.HexToHash(oldHash)).
		Return(nil, ethereum.NotFound)

	tm.ledger.EXPECT().ConfirmPending(gomock.Any(), uint64(1)).Return(&schema.TransactionRecord{ID: 10}, nil)
	tm.ledger.EXPECT().FailPending(gomock.Any(), uint64(2)).Return(nil)
	tm.ledger.EXPECT().MarkChecked(gomock.Any(), uint64(3)).Return(nil)
	tm.ledger.EXPECT().FailPending(gomock.Any(), uint64(4)).Return(nil)

	runUntilStopped(t, tm.sweeper, 150*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(tm.metrics.PendingResolved.WithLabelValues(sweeper.OutcomeConfirmed)))
	assert.Equal(t, float64(1), testutil.ToFloat64(tm.metrics.PendingResolved.WithLabelValues(sweeper.OutcomeReverted)))
	assert.Equal(t, float64(1), testutil.ToFloat64(tm.metrics.PendingResolved.WithLabelValues(sweeper.OutcomeDropped)))
	assert.Equal(t, float64(1), testutil.ToFloat64(tm.metrics.PendingResolved.WithLabelValues(sweeper.OutcomePending)))
}

func TestPendingTransferSweeper_ReceiptErrorKeepsPending(t *testing.T) {
	tm := setupTestSweeper(t)
	hash := "0x0000000000000000000000000000000000000000000000000000000000000009"

	gomock.InOrder(
		tm.ledger.EXPECT().ListPending(gomock.Any(), 10).
			Return([]schema.PendingTransfer{pendingTransfer(9, hash, time.Minute, tm.now)}, nil).Times(1),
		tm.ledger.EXPECT().ListPending(gomock.Any(), 10).Return(nil, nil).AnyTimes(),
	)
	tm.receipts.EXPECT().TransactionReceipt(gomock.Any(), common.HexToHash(hash)).
		Return(nil, errors.New("rpc unavailable"))
	tm.ledger.EXPECT().MarkChecked(gomock.Any(), uint64(9)).Return(nil)

	runUntilStopped(t, tm.sweeper, 100*time.Millisecond)
}

func TestPendingTransferSweeper_ListFailureContinues(t *testing.T) {
	tm := setupTestSweeper(t)

	gomock.InOrder(
		tm.ledger.EXPECT().ListPending(gomock.Any(), 10).Return(nil, domain.ErrPersistence).Times(1),
		tm.ledger.EXPECT().ListPending(gomock.Any(), 10).Return(nil, nil).MinTimes(1),
	)

	runUntilStopped(t, tm.sweeper, 100*time.Millisecond)
}

func TestPendingTransferSweeper_StartTwice(t *testing.T) {
	tm := setupTestSweeper(t)
	tm.ledger.EXPECT().ListPending(gomock.Any(), 10).Return(nil, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tm.sweeper.Start(ctx) }()

	time.Sleep(30 * time.Millisecond)
	assert.Error(t, tm.sweeper.Start(ctx))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancellation")
	}
}
