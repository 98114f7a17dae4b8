package onboarding_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonesdao/onboarding/internal/domain"
	"github.com/bonesdao/onboarding/internal/messaging"
	"github.com/bonesdao/onboarding/internal/metrics"
	"github.com/bonesdao/onboarding/internal/mocks"
	"github.com/bonesdao/onboarding/internal/onboarding"
	"github.com/bonesdao/onboarding/internal/store"
	"github.com/bonesdao/onboarding/internal/store/schema"
)

const testAddress = "0xAbCdEf0123456789aBcDeF0123456789AbCdEf01"

type testService struct {
	service   onboarding.Service
	store     *mocks.MockStore
	publisher *mocks.MockPublisher
	clock     *mocks.MockClock
}

func newTestService(t *testing.T, cfg onboarding.Config) *testService {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	ts := &testService{
		store:     mocks.NewMockStore(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
		clock:     mocks.NewMockClock(ctrl),
	}
	ts.clock.EXPECT().Now().Return(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)).AnyTimes()
	ts.service = onboarding.NewService(cfg, ts.store, ts.publisher, ts.clock, metrics.New())
	return ts
}

func validInput() onboarding.SubmitInput {
	return onboarding.SubmitInput{
		WalletAddress: testAddress,
		Contacts:      domain.Contacts{Discord: " alice#0001 "},
		Referrer:      "momonga",
	}
}

func TestSubmit(t *testing.T) {
	t.Run("normalizes and stores", func(t *testing.T) {
		ts := newTestService(t, onboarding.Config{Referrers: []string{"Momonga"}})
		ts.store.EXPECT().CreateSubmission(gomock.Any(), store.CreateSubmissionInput{
			WalletAddress: strings.ToLower(testAddress),
			Contacts:      domain.Contacts{Discord: "alice#0001"},
			Referrer:      "momonga",
		}).Return(&schema.Submission{ID: 1, WalletAddress: strings.ToLower(testAddress), Status: domain.SubmissionStatusPending}, nil)

		submission, err := ts.service.Submit(context.Background(), validInput())
		require.NoError(t, err)
		assert.Equal(t, uint64(1), submission.ID)
	})

	tests := []struct {
		name   string
		mutate func(*onboarding.SubmitInput)
	}{
		{"malformed address", func(in *onboarding.SubmitInput) { in.WalletAddress = "0x123" }},
		{"address without prefix", func(in *onboarding.SubmitInput) { in.WalletAddress = strings.TrimPrefix(testAddress, "0x") }},
		{"no contacts", func(in *onboarding.SubmitInput) { in.Contacts = domain.Contacts{Telegram: "   "} }},
		{"missing referrer", func(in *onboarding.SubmitInput) { in.Referrer = " " }},
		{"referrer not accepted", func(in *onboarding.SubmitInput) { in.Referrer = "stranger" }},
		{"contact too long", func(in *onboarding.SubmitInput) { in.Contacts.Forum = strings.Repeat("x", 129) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestService(t, onboarding.Config{Referrers: []string{"momonga"}})
			input := validInput()
			tt.mutate(&input)

			_, err := ts.service.Submit(context.Background(), input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	t.Run("any referrer without allowlist", func(t *testing.T) {
		ts := newTestService(t, onboarding.Config{})
		ts.store.EXPECT().CreateSubmission(gomock.Any(), gomock.Any()).Return(&schema.Submission{ID: 2}, nil)

		input := validInput()
		input.Referrer = "anyone"
		_, err := ts.service.Submit(context.Background(), input)
		require.NoError(t, err)
	})

	for _, storeErr := range []error{domain.ErrAlreadyPending, domain.ErrAlreadyApproved, domain.ErrPersistence} {
		t.Run("store error "+storeErr.Error(), func(t *testing.T) {
			ts := newTestService(t, onboarding.Config{})
			ts.store.EXPECT().CreateSubmission(gomock.Any(), gomock.Any()).Return(nil, storeErr)

			_, err := ts.service.Submit(context.Background(), validInput())
			assert.ErrorIs(t, err, storeErr)
		})
	}
}

func TestCheckStatus(t *testing.T) {
	t.Run("not submitted", func(t *testing.T) {
		ts := newTestService(t, onboarding.Config{})
		ts.store.EXPECT().GetSubmissionByAddress(gomock.Any(), testAddress).Return(nil, nil)

		status, err := ts.service.CheckStatus(context.Background(), testAddress)
		require.NoError(t, err)
		assert.Equal(t, domain.SubmissionStatusNotSubmitted, status)
	})

	t.Run("existing submission", func(t *testing.T) {
		ts := newTestService(t, onboarding.Config{})
		ts.store.EXPECT().GetSubmissionByAddress(gomock.Any(), testAddress).
			Return(&schema.Submission{ID: 1, Status: domain.SubmissionStatusRejected}, nil)

		status, err := ts.service.CheckStatus(context.Background(), testAddress)
		require.NoError(t, err)
		assert.Equal(t, domain.SubmissionStatusRejected, status)
	})

	t.Run("invalid address", func(t *testing.T) {
		ts := newTestService(t, onboarding.Config{})
		_, err := ts.service.CheckStatus(context.Background(), "alice")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestTransition(t *testing.T) {
	reviewedAt := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	approved := &schema.Submission{
		ID:            9,
		WalletAddress: strings.ToLower(testAddress),
		Referrer:      "momonga",
		Status:        domain.SubmissionStatusApproved,
		ReviewedAt:    &reviewedAt,
	}

	t.Run("approval publishes event", func(t *testing.T) {
		ts := newTestService(t, onboarding.Config{})
		ts.store.EXPECT().TransitionSubmission(gomock.Any(), store.TransitionSubmissionInput{
			ID: 9, To: domain.SubmissionStatusApproved, Reviewer: "admin",
		}).Return(approved, nil)
		ts.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, event *messaging.Event) error {
				assert.Equal(t, domain.SubjectSubmissionApproved, event.Subject)
				assert.Equal(t, reviewedAt, event.OccurredAt)
				return nil
			})

		submission, err := ts.service.Transition(context.Background(), 9, domain.SubmissionStatusApproved, "admin")
		require.NoError(t, err)
		assert.Equal(t, domain.SubmissionStatusApproved, submission.Status)
	})

	t.Run("publish failure does not fail the transition", func(t *testing.T) {
		ts := newTestService(t, onboarding.Config{})
		ts.store.EXPECT().TransitionSubmission(gomock.Any(), gomock.Any()).Return(approved, nil)
		ts.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

		_, err := ts.service.Transition(context.Background(), 9, domain.SubmissionStatusApproved, "admin")
		require.NoError(t, err)
	})

	t.Run("rejection does not publish", func(t *testing.T) {
		ts := newTestService(t, onboarding.Config{})
		ts.store.EXPECT().TransitionSubmission(gomock.Any(), gomock.Any()).
			Return(&schema.Submission{ID: 9, Status: domain.SubmissionStatusRejected}, nil)

		_, err := ts.service.Transition(context.Background(), 9, domain.SubmissionStatusRejected, "admin")
		require.NoError(t, err)
	})

	t.Run("invalid target", func(t *testing.T) {
		ts := newTestService(t, onboarding.Config{})
		_, err := ts.service.Transition(context.Background(), 9, domain.SubmissionStatus("archived"), "admin")
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = ts.service.Transition(context.Background(), 9, domain.SubmissionStatusNotSubmitted, "admin")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("store errors pass through", func(t *testing.T) {
		for _, storeErr := range []error{domain.ErrInvalidTransition, domain.ErrSubmissionNotFound} {
			ts := newTestService(t, onboarding.Config{})
			ts.store.EXPECT().TransitionSubmission(gomock.Any(), gomock.Any()).Return(nil, storeErr)

			_, err := ts.service.Transition(context.Background(), 9, domain.SubmissionStatusApproved, "admin")
			assert.ErrorIs(t, err, storeErr)
		}
	})
}

func TestList(t *testing.T) {
	ts := newTestService(t, onboarding.Config{})
	ts.store.EXPECT().ListSubmissions(gomock.Any(), store.SubmissionFilter{
		Status: domain.SubmissionStatusPending,
		Search: "alice",
	}).Return([]schema.Submission{{ID: 1}}, nil)

	submissions, err := ts.service.List(context.Background(), onboarding.ListFilter{Status: domain.SubmissionStatusPending, Search: "alice"})
	require.NoError(t, err)
	assert.Len(t, submissions, 1)

	_, err = ts.service.List(context.Background(), onboarding.ListFilter{Status: "bogus"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	ts.store.EXPECT().ListOnboardedIdentities(gomock.Any(), 10, 0).Return([]schema.OnboardedIdentity{{ID: 1}}, nil)
	identities, err := ts.service.ListOnboarded(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, identities, 1)
}
