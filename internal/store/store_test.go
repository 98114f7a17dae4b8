package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonesdao/onboarding/internal/domain"
	"github.com/bonesdao/onboarding/internal/store/schema"
)

// =============================================================================
// Test Data Builders
// =============================================================================

const (
	testReviewer  = "0x9999999999999999999999999999999999999999"
	testRecipient = "0x1111111111111111111111111111111111111111"
)

func buildTestSubmission(address string) CreateSubmissionInput {
	return CreateSubmissionInput{
		WalletAddress: address,
		Contacts: domain.Contacts{
			Discord: "alice#0001",
			Forum:   "alice",
		},
		Referrer: "momonga",
	}
}

func buildTestRecord(recipient string, kind domain.AssetKind, amount string, txHash *string) CreateTransactionRecordInput {
	return CreateTransactionRecordInput{
		ReviewerAddress:  testReviewer,
		RecipientAddress: recipient,
		RecipientForum:   "alice",
		AssetKind:        kind,
		Amount:           decimal.RequireFromString(amount),
		TxHash:           txHash,
		ChainID:          domain.ChainPlatONMainnet,
	}
}

func strPtr(s string) *string {
	return &s
}

// =============================================================================
// Test: Submissions
// =============================================================================

func testCreateSubmission(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("creates pending submission with normalized address", func(t *testing.T) {
		submission, err := store.CreateSubmission(ctx, buildTestSubmission("0xAAAAaaaaAAAAaaaaAAAAaaaaAAAAaaaaAAAAaaaa"))
		require.NoError(t, err)
		require.NotZero(t, submission.ID)
		assert.Equal(t, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", submission.WalletAddress)
		assert.Equal(t, domain.SubmissionStatusPending, submission.Status)

		got, err := store.GetSubmissionByAddress(ctx, "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, submission.ID, got.ID)
		assert.Equal(t, "alice#0001", got.Discord)
		assert.Equal(t, "momonga", got.Referrer)
	})

	t.Run("missing address returns nil", func(t *testing.T) {
		got, err := store.GetSubmissionByAddress(ctx, "0x2222222222222222222222222222222222222222")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("pending submission blocks a second one", func(t *testing.T) {
		address := "0x3333333333333333333333333333333333333333"
		_, err := store.CreateSubmission(ctx, buildTestSubmission(address))
		require.NoError(t, err)

		_, err = store.CreateSubmission(ctx, buildTestSubmission(address))
		assert.ErrorIs(t, err, domain.ErrAlreadyPending)
	})

	t.Run("approved submission blocks a second one", func(t *testing.T) {
		address := "0x4444444444444444444444444444444444444444"
		created, err := store.CreateSubmission(ctx, buildTestSubmission(address))
		require.NoError(t, err)
		_, err = store.TransitionSubmission(ctx, TransitionSubmissionInput{
			ID: created.ID, To: domain.SubmissionStatusApproved, Reviewer: "admin",
		})
		require.NoError(t, err)

		_, err = store.CreateSubmission(ctx, buildTestSubmission(address))
		assert.ErrorIs(t, err, domain.ErrAlreadyApproved)
	})

	t.Run("rejected submission is replaced", func(t *testing.T) {
		address := "0x5555555555555555555555555555555555555555"
		created, err := store.CreateSubmission(ctx, buildTestSubmission(address))
		require.NoError(t, err)
		_, err = store.TransitionSubmission(ctx, TransitionSubmissionInput{
			ID: created.ID, To: domain.SubmissionStatusRejected, Reviewer: "admin",
		})
		require.NoError(t, err)

		input := buildTestSubmission(address)
		input.Contacts = domain.Contacts{Telegram: "@alice"}
		resubmitted, err := store.CreateSubmission(ctx, input)
		require.NoError(t, err)
		assert.NotEqual(t, created.ID, resubmitted.ID)
		assert.Equal(t, domain.SubmissionStatusPending, resubmitted.Status)

		got, err := store.GetSubmissionByAddress(ctx, address)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, resubmitted.ID, got.ID)
		assert.Equal(t, "@alice", got.Telegram)
		assert.Empty(t, got.Discord)
		assert.Nil(t, got.ReviewedBy)
	})
}

func testListSubmissions(t *testing.T, store Store) {
	ctx := context.Background()

	first, err := store.CreateSubmission(ctx, buildTestSubmission("0x1000000000000000000000000000000000000001"))
	require.NoError(t, err)

	input := buildTestSubmission("0x1000000000000000000000000000000000000002")
	input.Contacts = domain.Contacts{WeChat: "bob_100%"}
	input.Referrer = "carol"
	second, err := store.CreateSubmission(ctx, input)
	require.NoError(t, err)

	third, err := store.CreateSubmission(ctx, buildTestSubmission("0x1000000000000000000000000000000000000003"))
	require.NoError(t, err)
	_, err = store.TransitionSubmission(ctx, TransitionSubmissionInput{
		ID: third.ID, To: domain.SubmissionStatusApproved, Reviewer: "admin",
	})
	require.NoError(t, err)

	t.Run("all statuses newest first", func(t *testing.T) {
		submissions, err := store.ListSubmissions(ctx, SubmissionFilter{})
		require.NoError(t, err)
		require.Len(t, submissions, 3)
		assert.Equal(t, third.ID, submissions[0].ID)
		assert.Equal(t, second.ID, submissions[1].ID)
		assert.Equal(t, first.ID, submissions[2].ID)
	})

	t.Run("status filter", func(t *testing.T) {
		submissions, err := store.ListSubmissions(ctx, SubmissionFilter{Status: domain.SubmissionStatusPending})
		require.NoError(t, err)
		require.Len(t, submissions, 2)
		for _, s := range submissions {
			assert.Equal(t, domain.SubmissionStatusPending, s.Status)
		}
	})

	t.Run("search matches contacts and referrer case-insensitively", func(t *testing.T) {
		submissions, err := store.ListSubmissions(ctx, SubmissionFilter{Search: "CAROL"})
		require.NoError(t, err)
		require.Len(t, submissions, 1)
		assert.Equal(t, second.ID, submissions[0].ID)

		submissions, err = store.ListSubmissions(ctx, SubmissionFilter{Search: "0x1000000000000000000000000000000000000001"})
		require.NoError(t, err)
		require.Len(t, submissions, 1)
		assert.Equal(t, first.ID, submissions[0].ID)
	})

	t.Run("search treats wildcards literally", func(t *testing.T) {
		submissions, err := store.ListSubmissions(ctx, SubmissionFilter{Search: "100%"})
		require.NoError(t, err)
		require.Len(t, submissions, 1)
		assert.Equal(t, second.ID, submissions[0].ID)

		submissions, err = store.ListSubmissions(ctx, SubmissionFilter{Search: "%"})
		require.NoError(t, err)
		require.Len(t, submissions, 1)
	})

	t.Run("pagination", func(t *testing.T) {
		submissions, err := store.ListSubmissions(ctx, SubmissionFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, submissions, 1)
		assert.Equal(t, second.ID, submissions[0].ID)
	})
}

func testTransitionSubmission(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("unknown id", func(t *testing.T) {
		_, err := store.TransitionSubmission(ctx, TransitionSubmissionInput{
			ID: 987654321, To: domain.SubmissionStatusApproved, Reviewer: "admin",
		})
		assert.ErrorIs(t, err, domain.ErrSubmissionNotFound)
	})

	t.Run("approval archives the submission", func(t *testing.T) {
		created, err := store.CreateSubmission(ctx, buildTestSubmission("0x2000000000000000000000000000000000000001"))
		require.NoError(t, err)

		approved, err := store.TransitionSubmission(ctx, TransitionSubmissionInput{
			ID: created.ID, To: domain.SubmissionStatusApproved, Reviewer: "admin",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.SubmissionStatusApproved, approved.Status)
		require.NotNil(t, approved.ReviewedBy)
		assert.Equal(t, "admin", *approved.ReviewedBy)
		assert.NotNil(t, approved.ReviewedAt)
		assert.Equal(t, created.CreatedAt.Unix(), approved.CreatedAt.Unix())

		identities, err := store.ListOnboardedIdentities(ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, identities, 1)
		assert.Equal(t, created.ID, identities[0].SubmissionID)
		assert.Equal(t, created.WalletAddress, identities[0].WalletAddress)
		assert.Equal(t, "admin", identities[0].ApprovedBy)

		var snapshot schema.Submission
		require.NoError(t, json.Unmarshal(identities[0].Snapshot, &snapshot))
		assert.Equal(t, domain.SubmissionStatusApproved, snapshot.Status)
		assert.Equal(t, created.ID, snapshot.ID)
	})

	t.Run("approved submission cannot change again", func(t *testing.T) {
		created, err := store.CreateSubmission(ctx, buildTestSubmission("0x2000000000000000000000000000000000000002"))
		require.NoError(t, err)
		_, err = store.TransitionSubmission(ctx, TransitionSubmissionInput{
			ID: created.ID, To: domain.SubmissionStatusApproved, Reviewer: "admin",
		})
		require.NoError(t, err)

		for _, to := range []domain.SubmissionStatus{
			domain.SubmissionStatusApproved,
			domain.SubmissionStatusRejected,
			domain.SubmissionStatusPending,
		} {
			_, err = store.TransitionSubmission(ctx, TransitionSubmissionInput{
				ID: created.ID, To: to, Reviewer: "admin",
			})
			assert.ErrorIs(t, err, domain.ErrInvalidTransition, "approved -> %s", to)
		}

		identities, err := store.ListOnboardedIdentities(ctx, 0, 0)
		require.NoError(t, err)
		count := 0
		for _, identity := range identities {
			if identity.SubmissionID == created.ID {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("rejected submission cannot be approved directly", func(t *testing.T) {
		created, err := store.CreateSubmission(ctx, buildTestSubmission("0x2000000000000000000000000000000000000003"))
		require.NoError(t, err)
		_, err = store.TransitionSubmission(ctx, TransitionSubmissionInput{
			ID: created.ID, To: domain.SubmissionStatusRejected, Reviewer: "admin",
		})
		require.NoError(t, err)

		_, err = store.TransitionSubmission(ctx, TransitionSubmissionInput{
			ID: created.ID, To: domain.SubmissionStatusApproved, Reviewer: "admin",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)

		got, err := store.GetSubmissionByAddress(ctx, created.WalletAddress)
		require.NoError(t, err)
		assert.Equal(t, domain.SubmissionStatusRejected, got.Status)
	})

	t.Run("reopened submission can be approved", func(t *testing.T) {
		created, err := store.CreateSubmission(ctx, buildTestSubmission("0x2000000000000000000000000000000000000004"))
		require.NoError(t, err)

		for _, to := range []domain.SubmissionStatus{
			domain.SubmissionStatusRejected,
			domain.SubmissionStatusPending,
			domain.SubmissionStatusApproved,
		} {
			updated, err := store.TransitionSubmission(ctx, TransitionSubmissionInput{
				ID: created.ID, To: to, Reviewer: "admin",
			})
			require.NoError(t, err, "-> %s", to)
			assert.Equal(t, to, updated.Status)
		}

		identities, err := store.ListOnboardedIdentities(ctx, 0, 0)
		require.NoError(t, err)
		count := 0
		for _, identity := range identities {
			if identity.SubmissionID == created.ID {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})
}

// =============================================================================
// Test: Admins
// =============================================================================

func testAdmins(t *testing.T, store Store) {
	ctx := context.Background()

	admin, err := store.UpsertAdmin(ctx, UpsertAdminInput{
		Username:     "admin",
		PasswordHash: "hash-1",
	})
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, "hash-1", admin.PasswordHash)
	assert.Nil(t, admin.WalletAddress)

	updated, err := store.UpsertAdmin(ctx, UpsertAdminInput{
		Username:      "admin",
		PasswordHash:  "hash-2",
		WalletAddress: strPtr("0xABCDEFabcdefABCDEFabcdefABCDEFabcdefABCD"),
	})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, updated.ID)
	assert.Equal(t, "hash-2", updated.PasswordHash)

	byAddress, err := store.GetAdminByAddress(ctx, "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd")
	require.NoError(t, err)
	require.NotNil(t, byAddress)
	assert.Equal(t, "admin", byAddress.Username)

	missing, err := store.GetAdminByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// =============================================================================
// Test: Transaction records
// =============================================================================

func testTransactionRecords(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("creates record with database timestamp", func(t *testing.T) {
		record, created, err := store.CreateTransactionRecord(ctx, buildTestRecord(testRecipient, domain.AssetNative, "1.5", strPtr("0xaaa1")))
		require.NoError(t, err)
		assert.True(t, created)
		require.NotZero(t, record.ID)
		assert.False(t, record.TransferredAt.IsZero())
		assert.True(t, decimal.RequireFromString("1.5").Equal(record.Amount))
	})

	t.Run("same tx hash returns the existing record", func(t *testing.T) {
		first, created, err := store.CreateTransactionRecord(ctx, buildTestRecord(testRecipient, domain.AssetToken, "10", strPtr("0xaaa2")))
		require.NoError(t, err)
		assert.True(t, created)

		second, created, err := store.CreateTransactionRecord(ctx, buildTestRecord(testRecipient, domain.AssetToken, "10", strPtr("0xaaa2")))
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("records without a hash are not deduplicated", func(t *testing.T) {
		first, _, err := store.CreateTransactionRecord(ctx, buildTestRecord(testRecipient, domain.AssetNative, "0.1", nil))
		require.NoError(t, err)
		second, created, err := store.CreateTransactionRecord(ctx, buildTestRecord(testRecipient, domain.AssetNative, "0.1", nil))
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("list filters and orders newest first", func(t *testing.T) {
		other := "0x7777777777777777777777777777777777777777"
		latest, _, err := store.CreateTransactionRecord(ctx, buildTestRecord(other, domain.AssetToken, "3", strPtr("0xaaa3")))
		require.NoError(t, err)

		records, err := store.ListTransactionRecords(ctx, TransactionRecordFilter{})
		require.NoError(t, err)
		require.Len(t, records, 5)
		assert.Equal(t, latest.ID, records[0].ID)

		records, err = store.ListTransactionRecords(ctx, TransactionRecordFilter{RecipientAddress: "0x7777777777777777777777777777777777777777"})
		require.NoError(t, err)
		require.Len(t, records, 1)

		records, err = store.ListTransactionRecords(ctx, TransactionRecordFilter{AssetKind: domain.AssetToken})
		require.NoError(t, err)
		require.Len(t, records, 2)

		future := time.Now().Add(time.Hour)
		records, err = store.ListTransactionRecords(ctx, TransactionRecordFilter{Since: &future})
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

// =============================================================================
// Test: Pending transfers
// =============================================================================

func testPendingTransfers(t *testing.T, store Store) {
	ctx := context.Background()

	input := CreatePendingTransferInput{
		TxHash:           "0xBEEF01",
		ChainID:          domain.ChainPlatONMainnet,
		ReviewerAddress:  testReviewer,
		RecipientAddress: testRecipient,
		RecipientForum:   "alice",
		AssetKind:        domain.AssetNative,
		Amount:           decimal.RequireFromString("2"),
	}

	pending, err := store.CreatePendingTransfer(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "0xbeef01", pending.TxHash)
	assert.Equal(t, schema.PendingTransferStatusPending, pending.Status)

	again, err := store.CreatePendingTransfer(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, pending.ID, again.ID)

	input.TxHash = "0xbeef02"
	failing, err := store.CreatePendingTransfer(ctx, input)
	require.NoError(t, err)

	t.Run("checking order", func(t *testing.T) {
		require.NoError(t, store.TouchPendingTransfer(ctx, pending.ID))

		list, err := store.GetPendingTransfersForChecking(ctx, 10)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, failing.ID, list[0].ID)
		assert.Equal(t, pending.ID, list[1].ID)
	})

	t.Run("fail removes from checking", func(t *testing.T) {
		require.NoError(t, store.FailPendingTransfer(ctx, failing.ID))

		list, err := store.GetPendingTransfersForChecking(ctx, 10)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, pending.ID, list[0].ID)
	})

	t.Run("confirm of an already recorded hash resolves without a new row", func(t *testing.T) {
		input.TxHash = "0xbeef03"
		recorded, err := store.CreatePendingTransfer(ctx, input)
		require.NoError(t, err)
		_, created, err := store.CreateTransactionRecord(ctx, buildTestRecord(testRecipient, domain.AssetNative, "2", strPtr("0xbeef03")))
		require.NoError(t, err)
		require.True(t, created)

		record, err := store.ConfirmPendingTransfer(ctx, recorded.ID)
		require.NoError(t, err)
		assert.Nil(t, record)

		records, err := store.ListTransactionRecords(ctx, TransactionRecordFilter{})
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("confirm moves into the ledger", func(t *testing.T) {
		record, err := store.ConfirmPendingTransfer(ctx, pending.ID)
		require.NoError(t, err)
		require.NotNil(t, record)
		require.NotNil(t, record.TxHash)
		assert.Equal(t, "0xbeef01", *record.TxHash)
		assert.Equal(t, testReviewer, record.ReviewerAddress)

		list, err := store.GetPendingTransfersForChecking(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, list)

		again, err := store.ConfirmPendingTransfer(ctx, pending.ID)
		require.NoError(t, err)
		assert.Nil(t, again)
	})
}

func testPing(t *testing.T, store Store) {
	require.NoError(t, store.Ping(context.Background()))
}

// RunStoreTests runs all store tests with the given store initializer
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"Ping", testPing},
		{"CreateSubmission", testCreateSubmission},
		{"ListSubmissions", testListSubmissions},
		{"TransitionSubmission", testTransitionSubmission},
		{"Admins", testAdmins},
		{"TransactionRecords", testTransactionRecords},
		{"PendingTransfers", testPendingTransfers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			tt.fn(t, store)
		})
	}
}
