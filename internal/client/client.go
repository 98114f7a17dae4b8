package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	apierrors "github.com/bonesdao/onboarding/internal/api/shared/errors"
	"github.com/bonesdao/onboarding/internal/domain"
	"github.com/bonesdao/onboarding/internal/ledger"
	"github.com/bonesdao/onboarding/internal/logger"
)

const apiPrefix = "/api/v1"

// Config holds the API endpoint and the operator's credentials
type Config struct {
	BaseURL  string
	Username string
	Password string
	// Token is a pre-issued access token; used until it is rejected
	Token   string
	Timeout time.Duration
	// MaxRetries bounds retries of transport failures and 5xx responses
	MaxRetries uint64
}

// APIError is an error envelope returned by the API
type APIError struct {
	StatusCode int         `json:"-"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps the envelope code back onto the domain errors
func (e *APIError) Unwrap() error {
	switch apierrors.ErrorCode(e.Code) {
	case apierrors.ErrCodeValidationFailed:
		return domain.ErrValidation
	case apierrors.ErrCodeUnauthorized:
		return domain.ErrTokenInvalid
	case apierrors.ErrCodeNotFound:
		return domain.ErrSubmissionNotFound
	case apierrors.ErrCodeConflict:
		switch e.Message {
		case apierrors.MessageAlreadyPending:
			return domain.ErrAlreadyPending
		case apierrors.MessageAlreadyApproved:
			return domain.ErrAlreadyApproved
		}
		return domain.ErrInvalidTransition
	case apierrors.ErrCodeRateLimited:
		return domain.ErrRateLimited
	case apierrors.ErrCodeDatabaseError:
		return domain.ErrPersistence
	}
	return nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type statusResponse struct {
	Address string                  `json:"address"`
	Status  domain.SubmissionStatus `json:"status"`
}

type recordResponse struct {
	ID uint64 `json:"id"`
}

// Client calls the onboarding API on behalf of an operator. It implements the
// disbursement Recorder and PendingTracker.
type Client struct {
	cfg  Config
	http *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

// New creates an API client
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg:         cfg,
		http:        &http.Client{Timeout: cfg.Timeout},
		accessToken: cfg.Token,
	}
}

// Login exchanges the configured username and password for a token pair
func (c *Client) Login(ctx context.Context) error {
	if c.cfg.Username == "" || c.cfg.Password == "" {
		return fmt.Errorf("%w: no credentials configured", domain.ErrInvalidCredentials)
	}

	var tokens tokenResponse
	status, err := c.send(ctx, http.MethodPost, "/admin/login", "", map[string]string{
		"username": c.cfg.Username,
		"password": c.cfg.Password,
	}, &tokens)
	if err != nil {
		if status == http.StatusUnauthorized {
			return fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, err)
		}
		return err
	}

	c.mu.Lock()
	c.accessToken = tokens.AccessToken
	c.refreshToken = tokens.RefreshToken
	c.mu.Unlock()
	return nil
}

// refresh gets a new access token, logging in again when no refresh token works
func (c *Client) refresh(ctx context.Context) error {
	c.mu.Lock()
	refreshToken := c.refreshToken
	c.mu.Unlock()

	if refreshToken != "" {
		var tokens tokenResponse
		_, err := c.send(ctx, http.MethodPost, "/admin/refresh-token", "", map[string]string{
			"refresh_token": refreshToken,
		}, &tokens)
		if err == nil {
			c.mu.Lock()
			c.accessToken = tokens.AccessToken
			c.mu.Unlock()
			return nil
		}
		logger.WarnCtx(ctx, "Refresh token rejected, logging in again", zap.Error(err))
	}

	return c.Login(ctx)
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.accessToken
	c.mu.Unlock()
	if token != "" {
		return token, nil
	}

	if err := c.Login(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, nil
}

// authorized sends an authenticated request. A 401 refreshes the token and retries exactly once.
func (c *Client) authorized(ctx context.Context, method, path string, body, result interface{}) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	status, err := c.send(ctx, method, path, token, body, result)
	if status != http.StatusUnauthorized {
		return err
	}

	logger.DebugCtx(ctx, "Access token rejected, refreshing", zap.String("path", path))
	if err := c.refresh(ctx); err != nil {
		return err
	}

	token, err = c.token(ctx)
	if err != nil {
		return err
	}
	_, err = c.send(ctx, method, path, token, body, result)
	return err
}

// send performs one logical request, retrying transport failures and 5xx with backoff.
// It returns the final status code, zero when no response was received.
func (c *Client) send(ctx context.Context, method, path, token string, body, result interface{}) (int, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return 0, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	var status int
	operation := func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+apiPrefix+path, reader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("failed to perform request: %w", err)
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				logger.Warn("failed to close response body", zap.Error(err), zap.String("path", path))
			}
		}()

		status = resp.StatusCode
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if status >= http.StatusInternalServerError {
			return decodeAPIError(status, respBody)
		}
		if status >= http.StatusBadRequest {
			return backoff.Permanent(decodeAPIError(status, respBody))
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
			}
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second

	notify := func(err error, d time.Duration) {
		logger.WarnCtx(ctx, "API request failed, retrying",
			zap.String("path", path),
			zap.Duration("backoff", d),
			zap.Error(err))
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(backoff.WithMaxRetries(b, c.cfg.MaxRetries), ctx), notify)
	return status, err
}

func decodeAPIError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

// Record saves a confirmed disbursement and returns its ledger id
func (c *Client) Record(ctx context.Context, input ledger.RecordInput) (uint64, error) {
	var resp recordResponse
	if err := c.authorized(ctx, http.MethodPost, "/admin/save-transaction", input, &resp); err != nil {
		return 0, fmt.Errorf("failed to save transaction: %w", err)
	}
	return resp.ID, nil
}

// TrackPending hands an unconfirmed disbursement to the confirmation sweeper
func (c *Client) TrackPending(ctx context.Context, input ledger.RecordInput) error {
	if err := c.authorized(ctx, http.MethodPost, "/admin/pending-transactions", input, nil); err != nil {
		return fmt.Errorf("failed to track pending transaction: %w", err)
	}
	return nil
}

// CheckStatus returns the review status of an address
func (c *Client) CheckStatus(ctx context.Context, address string) (domain.SubmissionStatus, error) {
	var resp statusResponse
	path := "/onboarding/status?address=" + url.QueryEscape(address)
	if _, err := c.send(ctx, http.MethodGet, path, "", nil, &resp); err != nil {
		return "", fmt.Errorf("failed to check status: %w", err)
	}
	return resp.Status, nil
}

// IsUnauthorized reports whether err is an authentication failure from the API
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}
