package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/bonesdao/onboarding/internal/adapter"
	"github.com/bonesdao/onboarding/internal/domain"
	"github.com/bonesdao/onboarding/internal/logger"
	"github.com/bonesdao/onboarding/internal/messaging"
	"github.com/bonesdao/onboarding/internal/metrics"
	"github.com/bonesdao/onboarding/internal/store"
	"github.com/bonesdao/onboarding/internal/store/schema"
)

// maxFieldLength bounds every free-text field of a submission
const maxFieldLength = 128

// SubmitInput is an onboarding request as entered by the applicant
type SubmitInput struct {
	WalletAddress string
	Contacts      domain.Contacts
	Referrer      string
}

// ListFilter narrows List. An empty Status lists every status.
type ListFilter struct {
	Status domain.SubmissionStatus
	Search string
	Limit  int
	Offset int
}

// Config holds submission rules
type Config struct {
	// Referrers restricts accepted referrers when non-empty
	Referrers []string
}

// Service runs the onboarding review workflow
//
//go:generate mockgen -source=onboarding.go -destination=../mocks/onboarding.go -package=mocks -mock_names=Service=MockOnboardingService
type Service interface {
	// Submit creates a pending submission for a wallet address
	Submit(ctx context.Context, input SubmitInput) (*schema.Submission, error)
	// CheckStatus returns the status of the address's submission, not_submitted if none
	CheckStatus(ctx context.Context, walletAddress string) (domain.SubmissionStatus, error)
	// Transition moves a submission to target on behalf of reviewer
	Transition(ctx context.Context, id uint64, target domain.SubmissionStatus, reviewer string) (*schema.Submission, error)
	// List lists submissions newest first
	List(ctx context.Context, filter ListFilter) ([]schema.Submission, error)
	// ListOnboarded lists the approval archive newest first
	ListOnboarded(ctx context.Context, limit, offset int) ([]schema.OnboardedIdentity, error)
}

type service struct {
	referrers map[string]struct{}
	store     store.Store
	publisher messaging.Publisher
	clock     adapter.Clock
	metrics   *metrics.Metrics
}

// NewService creates the onboarding service
func NewService(cfg Config, st store.Store, publisher messaging.Publisher, clock adapter.Clock, m *metrics.Metrics) Service {
	referrers := make(map[string]struct{}, len(cfg.Referrers))
	for _, r := range cfg.Referrers {
		if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
			referrers[r] = struct{}{}
		}
	}

	if publisher == nil {
		publisher = messaging.NewNoopPublisher()
	}

	return &service{
		referrers: referrers,
		store:     st,
		publisher: publisher,
		clock:     clock,
		metrics:   m,
	}
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}

// validate normalizes input and checks it against the submission rules
func (s *service) validate(input SubmitInput) (SubmitInput, error) {
	input.WalletAddress = strings.TrimSpace(input.WalletAddress)
	if !domain.IsValidAddress(input.WalletAddress) {
		return input, validationError("wallet address %q is not a valid address", input.WalletAddress)
	}
	input.WalletAddress = domain.NormalizeAddress(input.WalletAddress)

	input.Contacts = input.Contacts.Normalize()
	if input.Contacts.Empty() {
		return input, validationError("at least one contact is required")
	}
	for name, value := range map[string]string{
		"discord":  input.Contacts.Discord,
		"wechat":   input.Contacts.WeChat,
		"telegram": input.Contacts.Telegram,
		"forum":    input.Contacts.Forum,
	} {
		if utf8.RuneCountInString(value) > maxFieldLength {
			return input, validationError("%s must be at most %d characters", name, maxFieldLength)
		}
	}

	input.Referrer = strings.TrimSpace(input.Referrer)
	if input.Referrer == "" {
		return input, validationError("referrer is required")
	}
	if utf8.RuneCountInString(input.Referrer) > maxFieldLength {
		return input, validationError("referrer must be at most %d characters", maxFieldLength)
	}
	if len(s.referrers) > 0 {
		if _, ok := s.referrers[strings.ToLower(input.Referrer)]; !ok {
			return input, validationError("referrer %q is not accepted", input.Referrer)
		}
	}

	return input, nil
}

// Submit creates a pending submission for a wallet address
func (s *service) Submit(ctx context.Context, input SubmitInput) (*schema.Submission, error) {
	input, err := s.validate(input)
	if err != nil {
		s.metrics.IncSubmission(metrics.ResultRejected)
		return nil, err
	}

	submission, err := s.store.CreateSubmission(ctx, store.CreateSubmissionInput{
		WalletAddress: input.WalletAddress,
		Contacts:      input.Contacts,
		Referrer:      input.Referrer,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyPending) || errors.Is(err, domain.ErrAlreadyApproved) {
			s.metrics.IncSubmission(metrics.ResultRejected)
		} else {
			s.metrics.IncSubmission(metrics.ResultError)
		}
		return nil, err
	}

	s.metrics.IncSubmission(metrics.ResultOK)
	logger.InfoCtx(ctx, "Submission created",
		zap.Uint64("submission_id", submission.ID),
		zap.String("wallet_address", submission.WalletAddress),
		zap.String("referrer", submission.Referrer))

	return submission, nil
}

// CheckStatus returns the status of the address's submission
func (s *service) CheckStatus(ctx context.Context, walletAddress string) (domain.SubmissionStatus, error) {
	walletAddress = strings.TrimSpace(walletAddress)
	if !domain.IsValidAddress(walletAddress) {
		return "", validationError("wallet address %q is not a valid address", walletAddress)
	}

	submission, err := s.store.GetSubmissionByAddress(ctx, walletAddress)
	if err != nil {
		return "", err
	}
	if submission == nil {
		return domain.SubmissionStatusNotSubmitted, nil
	}
	return submission.Status, nil
}

// Transition moves a submission along a review edge. Approval is announced after commit.
func (s *service) Transition(ctx context.Context, id uint64, target domain.SubmissionStatus, reviewer string) (*schema.Submission, error) {
	if !target.Valid() {
		return nil, validationError("status %q is not a valid target", target)
	}
	if id == 0 {
		return nil, validationError("submission id is required")
	}

	submission, err := s.store.TransitionSubmission(ctx, store.TransitionSubmissionInput{
		ID:       id,
		To:       target,
		Reviewer: reviewer,
	})
	if err != nil {
		s.metrics.IncTransition(string(target), metrics.ResultRejected)
		return nil, err
	}

	s.metrics.IncTransition(string(target), metrics.ResultOK)
	logger.InfoCtx(ctx, "Submission transitioned",
		zap.Uint64("submission_id", submission.ID),
		zap.String("status", string(submission.Status)),
		zap.String("reviewer", reviewer))

	if target == domain.SubmissionStatusApproved {
		s.announceApproval(ctx, submission, reviewer)
	}

	return submission, nil
}

// announceApproval publishes the approval event; failures are logged, never returned
func (s *service) announceApproval(ctx context.Context, submission *schema.Submission, reviewer string) {
	approvedAt := s.clock.Now()
	if submission.ReviewedAt != nil {
		approvedAt = *submission.ReviewedAt
	}

	event, err := messaging.NewEvent(domain.SubjectSubmissionApproved, approvedAt, messaging.SubmissionApproved{
		SubmissionID:  submission.ID,
		WalletAddress: submission.WalletAddress,
		Referrer:      submission.Referrer,
		ApprovedBy:    reviewer,
		ApprovedAt:    approvedAt,
	})
	if err == nil {
		err = s.publisher.Publish(ctx, event)
	}
	if err != nil {
		logger.WarnCtx(ctx, "Failed to publish approval event",
			zap.Uint64("submission_id", submission.ID),
			zap.Error(err))
	}
}

// List lists submissions newest first
func (s *service) List(ctx context.Context, filter ListFilter) ([]schema.Submission, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, validationError("status %q is not a valid filter", filter.Status)
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, validationError("limit and offset must not be negative")
	}

	return s.store.ListSubmissions(ctx, store.SubmissionFilter{
		Status: filter.Status,
		Search: filter.Search,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// ListOnboarded lists the approval archive newest first
func (s *service) ListOnboarded(ctx context.Context, limit, offset int) ([]schema.OnboardedIdentity, error) {
	if limit < 0 || offset < 0 {
		return nil, validationError("limit and offset must not be negative")
	}
	return s.store.ListOnboardedIdentities(ctx, limit, offset)
}
