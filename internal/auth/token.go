package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bonesdao/onboarding/internal/domain"
)

// TokenUse distinguishes access credentials from refresh credentials
type TokenUse string

const (
	TokenUseAccess  TokenUse = "access"
	TokenUseRefresh TokenUse = "refresh"
)

// Claims are the claims carried by every credential
type Claims struct {
	TokenUse TokenUse `json:"token_use"`
	jwt.RegisteredClaims
}

// TokenPair is returned on a successful login
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (g *gateway) issue(subject string, use TokenUse, ttl time.Duration) (string, error) {
	now := g.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", use, err)
	}
	return signed, nil
}

// IssueAccessToken signs a short-lived access credential for subject
func (g *gateway) IssueAccessToken(subject string) (string, error) {
	return g.issue(subject, TokenUseAccess, g.accessTTL)
}

// IssueRefreshToken signs a refresh credential for subject
func (g *gateway) IssueRefreshToken(subject string) (string, error) {
	return g.issue(subject, TokenUseRefresh, g.refreshTTL)
}

// IssueTokenPair signs both credentials for subject
func (g *gateway) IssueTokenPair(subject string) (*TokenPair, error) {
	access, err := g.IssueAccessToken(subject)
	if err != nil {
		return nil, err
	}
	refresh, err := g.IssueRefreshToken(subject)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// parse validates signature, algorithm and expiry of a credential
func (g *gateway) parse(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

// Verify checks an access credential. A refresh credential is not accepted.
func (g *gateway) Verify(tokenString string) (*Claims, error) {
	claims, err := g.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenUse != TokenUseAccess {
		return nil, fmt.Errorf("%w: not an access token", domain.ErrTokenInvalid)
	}
	return claims, nil
}

// Refresh exchanges a refresh credential for a new access credential.
// An expired refresh credential is invalid.
func (g *gateway) Refresh(refreshToken string) (string, error) {
	claims, err := g.parse(refreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: refresh token rejected", domain.ErrTokenInvalid)
	}
	if claims.TokenUse != TokenUseRefresh {
		return "", fmt.Errorf("%w: not a refresh token", domain.ErrTokenInvalid)
	}
	return g.IssueAccessToken(claims.Subject)
}
