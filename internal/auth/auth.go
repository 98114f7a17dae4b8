package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bonesdao/onboarding/internal/adapter"
	"github.com/bonesdao/onboarding/internal/domain"
	"github.com/bonesdao/onboarding/internal/logger"
	"github.com/bonesdao/onboarding/internal/store"
)

const (
	defaultAccessTokenTTL  = time.Hour
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// dummyHash is compared against when the username is unknown so both failures cost the same
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("onboarding-dummy-password"), bcrypt.DefaultCost)

// Config holds credential signing settings
type Config struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// Gateway issues and verifies administrator credentials
//
//go:generate mockgen -source=auth.go -destination=../mocks/auth.go -package=mocks -mock_names=Gateway=MockAuthGateway
type Gateway interface {
	// LoginWithPassword authenticates an admin by username and password
	LoginWithPassword(ctx context.Context, username, password string) (*TokenPair, error)
	// LoginWithSignature authenticates an admin wallet by its signature over the login challenge
	LoginWithSignature(ctx context.Context, address, signature, message string) (*TokenPair, error)
	// Verify checks an access credential
	Verify(token string) (*Claims, error)
	// Refresh exchanges a refresh credential for a new access credential
	Refresh(refreshToken string) (string, error)
	// IssueTokenPair signs both credentials for subject
	IssueTokenPair(subject string) (*TokenPair, error)
}

type gateway struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      store.Store
	clock      adapter.Clock
}

// NewGateway creates an auth gateway
func NewGateway(cfg Config, st store.Store, clock adapter.Clock) (Gateway, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = defaultAccessTokenTTL
	}
	if cfg.RefreshTokenTTL <= 0 {
		cfg.RefreshTokenTTL = defaultRefreshTokenTTL
	}

	return &gateway{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		store:      st,
		clock:      clock,
	}, nil
}

// LoginWithPassword authenticates an admin by username and password.
// Unknown user and wrong password are indistinguishable.
func (g *gateway) LoginWithPassword(ctx context.Context, username, password string) (*TokenPair, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	admin, err := g.store.GetAdminByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	hash := dummyHash
	if admin != nil {
		hash = []byte(admin.PasswordHash)
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil || admin == nil {
		logger.WarnCtx(ctx, "Password login rejected", zap.String("username", username))
		return nil, domain.ErrInvalidCredentials
	}

	return g.IssueTokenPair(admin.Username)
}

// LoginWithSignature authenticates a registered admin wallet.
// The message must be exactly the login challenge of the claimed address.
func (g *gateway) LoginWithSignature(ctx context.Context, address, signature, message string) (*TokenPair, error) {
	if !domain.IsValidAddress(address) {
		return nil, domain.ErrInvalidCredentials
	}
	normalized := domain.NormalizeAddress(address)

	if message != domain.LoginChallenge(normalized) {
		logger.WarnCtx(ctx, "Signature login with unexpected message", zap.String("address", normalized))
		return nil, domain.ErrInvalidCredentials
	}

	recovered, err := RecoverAddress(message, signature)
	if err != nil {
		logger.WarnCtx(ctx, "Signature login with malformed signature", zap.String("address", normalized), zap.Error(err))
		return nil, domain.ErrInvalidCredentials
	}
	if domain.NormalizeAddress(recovered.Hex()) != normalized {
		logger.WarnCtx(ctx, "Signature does not match address",
			zap.String("address", normalized),
			zap.String("recovered", recovered.Hex()))
		return nil, domain.ErrInvalidCredentials
	}

	admin, err := g.store.GetAdminByAddress(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		logger.WarnCtx(ctx, "Signature login from unregistered wallet", zap.String("address", normalized))
		return nil, domain.ErrInvalidCredentials
	}

	return g.IssueTokenPair(normalized)
}

// HashPassword returns the bcrypt hash stored for an admin password
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
