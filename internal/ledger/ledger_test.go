package ledger_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonesdao/onboarding/internal/domain"
	"github.com/bonesdao/onboarding/internal/ledger"
	"github.com/bonesdao/onboarding/internal/messaging"
	"github.com/bonesdao/onboarding/internal/metrics"
	"github.com/bonesdao/onboarding/internal/mocks"
	"github.com/bonesdao/onboarding/internal/store"
	"github.com/bonesdao/onboarding/internal/store/schema"
)

const (
	reviewer  = "0x1111111111111111111111111111111111111111"
	recipient = "0x2222222222222222222222222222222222222222"
	txHash    = "0xABCDEF0000000000000000000000000000000000000000000000000000000001"
)

type testLedger struct {
	ledger    ledger.Ledger
	store     *mocks.MockStore
	publisher *mocks.MockPublisher
	metrics   *metrics.Metrics
}

func newTestLedger(t *testing.T) *testLedger {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)).AnyTimes()

	tl := &testLedger{
		store:     mocks.NewMockStore(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
		metrics:   metrics.New(),
	}
	tl.ledger = ledger.New(tl.store, tl.publisher, clock, tl.metrics)
	return tl
}

func validRecord() ledger.RecordInput {
	return ledger.RecordInput{
		ReviewerAddress:  reviewer,
		RecipientAddress: recipient,
		RecipientForum:   " alice ",
		AssetKind:        domain.AssetToken,
		Amount:           decimal.RequireFromString("12.5"),
		TxHash:           txHash,
		ChainID:          domain.ChainPlatONMainnet,
	}
}

func storedRecord(id uint64, asset domain.AssetKind, amount string, at time.Time) schema.TransactionRecord {
	hash := strings.ToLower(txHash)
	return schema.TransactionRecord{
		ID:               id,
		ReviewerAddress:  reviewer,
		RecipientAddress: recipient,
		AssetKind:        asset,
		Amount:           decimal.RequireFromString(amount),
		TxHash:           &hash,
		ChainID:          domain.ChainPlatONMainnet,
		TransferredAt:    at,
	}
}

func TestRecord(t *testing.T) {
	t.Run("stores and announces", func(t *testing.T) {
		tl := newTestLedger(t)
		at := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
		row := storedRecord(7, domain.AssetToken, "12.5", at)

		tl.store.EXPECT().CreateTransactionRecord(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in store.CreateTransactionRecordInput) (*schema.TransactionRecord, bool, error) {
				assert.Equal(t, "alice", in.RecipientForum)
				require.NotNil(t, in.TxHash)
				assert.Equal(t, strings.ToLower(txHash), *in.TxHash)
				assert.True(t, in.Amount.Equal(decimal.RequireFromString("12.5")))
				return &row, true, nil
			})
		tl.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, event *messaging.Event) error {
				assert.Equal(t, "transfer-recorded-7", event.ID)
				assert.Equal(t, domain.SubjectTransferRecorded, event.Subject)
				assert.Equal(t, at, event.OccurredAt)
				var payload messaging.TransferRecorded
				require.NoError(t, json.Unmarshal(event.Data, &payload))
				assert.Equal(t, uint64(7), payload.RecordID)
				assert.Equal(t, "12.5", payload.Amount)
				assert.Equal(t, strings.ToLower(txHash), payload.TxHash)
				return nil
			})

		record, err := tl.ledger.Record(context.Background(), validRecord())
		require.NoError(t, err)
		assert.Equal(t, uint64(7), record.ID)
		assert.Equal(t, float64(1), testutil.ToFloat64(tl.metrics.LedgerRecords.WithLabelValues("token")))
	})

	t.Run("without tx hash", func(t *testing.T) {
		tl := newTestLedger(t)
		input := validRecord()
		input.TxHash = ""
		row := storedRecord(8, domain.AssetToken, "12.5", time.Now())
		row.TxHash = nil

		tl.store.EXPECT().CreateTransactionRecord(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in store.CreateTransactionRecordInput) (*schema.TransactionRecord, bool, error) {
				assert.Nil(t, in.TxHash)
				return &row, true, nil
			})
		tl.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

		_, err := tl.ledger.Record(context.Background(), input)
		require.NoError(t, err)
	})

	t.Run("publish failure is tolerated", func(t *testing.T) {
		tl := newTestLedger(t)
		row := storedRecord(9, domain.AssetNative, "1", time.Now())
		tl.store.EXPECT().CreateTransactionRecord(gomock.Any(), gomock.Any()).Return(&row, true, nil)
		tl.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("nats down"))

		record, err := tl.ledger.Record(context.Background(), validRecord())
		require.NoError(t, err)
		assert.Equal(t, uint64(9), record.ID)
	})

	t.Run("replayed tx hash is announced once", func(t *testing.T) {
		tl := newTestLedger(t)
		row := storedRecord(11, domain.AssetToken, "12.5", time.Now())
		gomock.InOrder(
			tl.store.EXPECT().CreateTransactionRecord(gomock.Any(), gomock.Any()).Return(&row, true, nil),
			tl.store.EXPECT().CreateTransactionRecord(gomock.Any(), gomock.Any()).Return(&row, false, nil),
		)
		tl.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(1)

		first, err := tl.ledger.Record(context.Background(), validRecord())
		require.NoError(t, err)
		second, err := tl.ledger.Record(context.Background(), validRecord())
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, float64(1), testutil.ToFloat64(tl.metrics.LedgerRecords.WithLabelValues("token")))
	})

	tests := []struct {
		name   string
		mutate func(*ledger.RecordInput)
	}{
		{"bad reviewer", func(in *ledger.RecordInput) { in.ReviewerAddress = "0x12" }},
		{"bad recipient", func(in *ledger.RecordInput) { in.RecipientAddress = "alice" }},
		{"unknown asset", func(in *ledger.RecordInput) { in.AssetKind = "nft" }},
		{"zero amount", func(in *ledger.RecordInput) { in.Amount = decimal.Zero }},
		{"negative amount", func(in *ledger.RecordInput) { in.Amount = decimal.RequireFromString("-1") }},
		{"short tx hash", func(in *ledger.RecordInput) { in.TxHash = "0xabc" }},
		{"bad chain", func(in *ledger.RecordInput) { in.ChainID = "tezos:mainnet" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := newTestLedger(t)
			input := validRecord()
			tt.mutate(&input)

			_, err := tl.ledger.Record(context.Background(), input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	t.Run("store failure", func(t *testing.T) {
		tl := newTestLedger(t)
		tl.store.EXPECT().CreateTransactionRecord(gomock.Any(), gomock.Any()).Return(nil, false, domain.ErrPersistence)

		_, err := tl.ledger.Record(context.Background(), validRecord())
		assert.ErrorIs(t, err, domain.ErrPersistence)
	})
}

func TestList(t *testing.T) {
	tl := newTestLedger(t)
	tl.store.EXPECT().ListTransactionRecords(gomock.Any(), store.TransactionRecordFilter{
		RecipientAddress: recipient,
		AssetKind:        domain.AssetNative,
		Limit:            20,
		Offset:           40,
	}).Return([]schema.TransactionRecord{{ID: 1}}, nil)

	records, err := tl.ledger.List(context.Background(), ledger.ListFilter{
		RecipientAddress: recipient,
		AssetKind:        domain.AssetNative,
		Limit:            20,
		Offset:           40,
	})
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = tl.ledger.List(context.Background(), ledger.ListFilter{AssetKind: "nft"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = tl.ledger.List(context.Background(), ledger.ListFilter{Limit: -1})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStats(t *testing.T) {
	t.Run("aggregates per asset and day", func(t *testing.T) {
		tl := newTestLedger(t)
		from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)

		tl.store.EXPECT().ListTransactionRecords(gomock.Any(), store.TransactionRecordFilter{Since: &from, Until: &to}).
			Return([]schema.TransactionRecord{
				storedRecord(4, domain.AssetToken, "0.1", time.Date(2025, 6, 3, 23, 0, 0, 0, time.UTC)),
				storedRecord(3, domain.AssetToken, "0.2", time.Date(2025, 6, 3, 1, 0, 0, 0, time.UTC)),
				storedRecord(2, domain.AssetNative, "1.5", time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)),
				storedRecord(1, domain.AssetNative, "2", time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)),
			}, nil)

		stats, err := tl.ledger.Stats(context.Background(), &from, &to)
		require.NoError(t, err)
		assert.Equal(t, 4, stats.Count)
		assert.Equal(t, "3.5", stats.NativeTotal.String())
		assert.Equal(t, "0.3", stats.TokenTotal.String())

		require.Len(t, stats.Daily, 2)
		assert.Equal(t, "2025-06-02", stats.Daily[0].Date)
		assert.Equal(t, "1.5", stats.Daily[0].Native.String())
		assert.True(t, stats.Daily[0].Token.IsZero())
		assert.Equal(t, "2025-06-03", stats.Daily[1].Date)
		assert.Equal(t, "2", stats.Daily[1].Native.String())
		assert.Equal(t, "0.3", stats.Daily[1].Token.String())
	})

	t.Run("empty ledger", func(t *testing.T) {
		tl := newTestLedger(t)
		tl.store.EXPECT().ListTransactionRecords(gomock.Any(), store.TransactionRecordFilter{}).Return(nil, nil)

		stats, err := tl.ledger.Stats(context.Background(), nil, nil)
		require.NoError(t, err)
		assert.Zero(t, stats.Count)
		assert.True(t, stats.NativeTotal.IsZero())
		assert.Empty(t, stats.Daily)
	})

	t.Run("inverted range", func(t *testing.T) {
		tl := newTestLedger(t)
		from := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
		to := from.Add(-time.Hour)

		_, err := tl.ledger.Stats(context.Background(), &from, &to)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestPendingTransfers(t *testing.T) {
	t.Run("track", func(t *testing.T) {
		tl := newTestLedger(t)
		tl.store.EXPECT().CreatePendingTransfer(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in store.CreatePendingTransferInput) (*schema.PendingTransfer, error) {
				assert.Equal(t, strings.ToLower(txHash), in.TxHash)
				assert.Equal(t, domain.ChainPlatONMainnet, in.ChainID)
				return &schema.PendingTransfer{ID: 3, TxHash: in.TxHash}, nil
			})

		pending, err := tl.ledger.TrackPending(context.Background(), validRecord())
		require.NoError(t, err)
		assert.Equal(t, uint64(3), pending.ID)
	})

	t.Run("track requires hash and chain", func(t *testing.T) {
		tl := newTestLedger(t)
		input := validRecord()
		input.TxHash = ""
		_, err := tl.ledger.TrackPending(context.Background(), input)
		assert.ErrorIs(t, err, domain.ErrValidation)

		input = validRecord()
		input.ChainID = ""
		_, err = tl.ledger.TrackPending(context.Background(), input)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("list pending", func(t *testing.T) {
		tl := newTestLedger(t)
		tl.store.EXPECT().GetPendingTransfersForChecking(gomock.Any(), 25).
			Return([]schema.PendingTransfer{{ID: 1}, {ID: 2}}, nil)

		pending, err := tl.ledger.ListPending(context.Background(), 25)
		require.NoError(t, err)
		assert.Len(t, pending, 2)

		_, err = tl.ledger.ListPending(context.Background(), 0)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("mark checked", func(t *testing.T) {
		tl := newTestLedger(t)
		tl.store.EXPECT().TouchPendingTransfer(gomock.Any(), uint64(4)).Return(nil)
		require.NoError(t, tl.ledger.MarkChecked(context.Background(), 4))
	})

	t.Run("confirm announces the record", func(t *testing.T) {
		tl := newTestLedger(t)
		row := storedRecord(11, domain.AssetNative, "3", time.Now())
		tl.store.EXPECT().ConfirmPendingTransfer(gomock.Any(), uint64(5)).Return(&row, nil)
		tl.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

		record, err := tl.ledger.ConfirmPending(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, uint64(11), record.ID)
	})

	t.Run("confirm already resolved", func(t *testing.T) {
		tl := newTestLedger(t)
		tl.store.EXPECT().ConfirmPendingTransfer(gomock.Any(), uint64(5)).Return(nil, nil)

		record, err := tl.ledger.ConfirmPending(context.Background(), 5)
		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("fail", func(t *testing.T) {
		tl := newTestLedger(t)
		tl.store.EXPECT().FailPendingTransfer(gomock.Any(), uint64(6)).Return(nil)
		require.NoError(t, tl.ledger.FailPending(context.Background(), 6))

		tl.store.EXPECT().FailPendingTransfer(gomock.Any(), uint64(7)).Return(domain.ErrPersistence)
		assert.ErrorIs(t, tl.ledger.FailPending(context.Background(), 7), domain.ErrPersistence)
	})
}
