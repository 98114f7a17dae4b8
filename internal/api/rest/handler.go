package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bonesdao/onboarding/internal/api/middleware"
	"github.com/bonesdao/onboarding/internal/auth"
	"github.com/bonesdao/onboarding/internal/domain"
	"github.com/bonesdao/onboarding/internal/ledger"
	"github.com/bonesdao/onboarding/internal/logger"
	"github.com/bonesdao/onboarding/internal/metrics"
	"github.com/bonesdao/onboarding/internal/onboarding"
	"github.com/bonesdao/onboarding/internal/store/schema"
)

const healthCheckTimeout = 2 * time.Second

// StoreReader is the part of the data store the handlers read directly
type StoreReader interface {
	// Ping reports whether the backing store is reachable
	Ping(ctx context.Context) error
	// GetAdminByUsername retrieves an admin by username, nil if none
	GetAdminByUsername(ctx context.Context, username string) (*schema.Admin, error)
}

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// Submit creates a pending onboarding submission
	// POST /api/v1/onboarding/submit
	Submit(c *gin.Context)

	// CheckStatus reports the review status of a wallet address
	// GET /api/v1/onboarding/status?address=<address>
	// POST /api/v1/onboarding/status
	CheckStatus(c *gin.Context)

	// Login exchanges a password or a wallet signature for a token pair
	// POST /api/v1/admin/login
	Login(c *gin.Context)

	// RefreshToken exchanges a refresh token for a new access token
	// POST /api/v1/admin/refresh-token
	RefreshToken(c *gin.Context)

	// VerifyToken echoes the authenticated admin
	// GET /api/v1/admin/verify-token
	VerifyToken(c *gin.Context)

	// ListSubmissions lists submissions newest first
	// GET /api/v1/admin/submissions?status=<status>&search=<text>&limit=<limit>&offset=<offset>
	ListSubmissions(c *gin.Context)

	// UpdateSubmissionStatus applies a review transition
	// POST /api/v1/admin/update-submission-status
	UpdateSubmissionStatus(c *gin.Context)

	// ListOnboarded lists the approval archive
	// GET /api/v1/admin/onboarded?limit=<limit>&offset=<offset>
	ListOnboarded(c *gin.Context)

	// SaveTransaction records a confirmed disbursement
	// POST /api/v1/admin/save-transaction
	SaveTransaction(c *gin.Context)

	// ListTransactionRecords lists disbursements newest first
	// GET /api/v1/admin/transaction-records?recipient=<address>&asset=<kind>&limit=<limit>&offset=<offset>
	ListTransactionRecords(c *gin.Context)

	// TransactionStats aggregates disbursements in a time window
	// GET /api/v1/admin/transaction-stats?from=<time>&to=<time>
	TransactionStats(c *gin.Context)

	// TrackPending keeps a dispatched but unconfirmed disbursement for the sweeper
	// POST /api/v1/admin/pending-transactions
	TrackPending(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	onboarding onboarding.Service
	gateway    auth.Gateway
	ledger     ledger.Ledger
	store      StoreReader
	metrics    *metrics.Metrics
}

// NewHandler creates a new REST API handler
func NewHandler(svc onboarding.Service, gateway auth.Gateway, l ledger.Ledger, store StoreReader, m *metrics.Metrics) Handler {
	return &handler{
		onboarding: svc,
		gateway:    gateway,
		ledger:     l,
		store:      store,
		metrics:    m,
	}
}

// Submit creates a pending onboarding submission
func (h *handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	submission, err := h.onboarding.Submit(c.Request.Context(), onboarding.SubmitInput{
		WalletAddress: req.WalletAddress,
		Contacts:      req.contacts(),
		Referrer:      req.Referrer,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// CheckStatus reports the review status of a wallet address
func (h *handler) CheckStatus(c *gin.Context) {
	address := c.Query("address")
	if c.Request.Method == http.MethodPost {
		var req StatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "Invalid request body", err.Error())
			return
		}
		address = req.Address
	}

	status, err := h.onboarding.CheckStatus(c.Request.Context(), address)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatusResponse{
		Address: domain.NormalizeAddress(address),
		Status:  status,
	})
}

// Login exchanges a password or a wallet signature for a token pair
func (h *handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	var (
		pair   *auth.TokenPair
		err    error
		method = "password"
	)
	if req.bySignature() {
		method = "signature"
		pair, err = h.gateway.LoginWithSignature(c.Request.Context(), req.Address, req.Signature, req.Message)
	} else {
		pair, err = h.gateway.LoginWithPassword(c.Request.Context(), req.Username, req.Password)
	}
	if err != nil {
		h.metrics.IncLogin(method, metrics.ResultRejected)
		respondError(c, err)
		return
	}

	h.metrics.IncLogin(method, metrics.ResultOK)
	c.JSON(http.StatusOK, pair)
}

// RefreshToken exchanges a refresh token for a new access token
func (h *handler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	accessToken, err := h.gateway.Refresh(req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": accessToken})
}

// VerifyToken echoes the authenticated admin
func (h *handler) VerifyToken(c *gin.Context) {
	resp := gin.H{"valid": true, "subject": middleware.Subject(c)}
	if claims := middleware.Claims(c); claims != nil && claims.ExpiresAt != nil {
		resp["expires_at"] = claims.ExpiresAt.Time
	}
	c.JSON(http.StatusOK, resp)
}

// ListSubmissions lists submissions newest first
func (h *handler) ListSubmissions(c *gin.Context) {
	limit, offset, err := parsePagination(c)
	if err != nil {
		respondError(c, err)
		return
	}

	submissions, err := h.onboarding.List(c.Request.Context(), onboarding.ListFilter{
		Status: domain.SubmissionStatus(strings.TrimSpace(c.Query("status"))),
		Search: strings.TrimSpace(c.Query("search")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}

// UpdateSubmissionStatus applies a review transition on behalf of the authenticated admin
func (h *handler) UpdateSubmissionStatus(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	submission, err := h.onboarding.Transition(c.Request.Context(), req.ID, req.Status, middleware.Subject(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// ListOnboarded lists the approval archive
func (h *handler) ListOnboarded(c *gin.Context) {
	limit, offset, err := parsePagination(c)
	if err != nil {
		respondError(c, err)
		return
	}

	identities, err := h.onboarding.ListOnboarded(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"onboarded": identities})
}

// bindRecordInput reads a disbursement body and ties it to the authenticated admin.
// The reviewer must be the admin's wallet: the signing wallet for a wallet session,
// the linked wallet for a password session.
func (h *handler) bindRecordInput(c *gin.Context) (ledger.RecordInput, bool) {
	var input ledger.RecordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return input, false
	}

	wallet, err := h.adminWallet(c.Request.Context(), middleware.Subject(c))
	if err != nil {
		respondError(c, err)
		return input, false
	}
	if wallet == "" {
		// Password admin without a linked wallet
		return input, true
	}

	if input.ReviewerAddress == "" {
		input.ReviewerAddress = wallet
	}
	if domain.NormalizeAddress(input.ReviewerAddress) != domain.NormalizeAddress(wallet) {
		respondError(c, fmt.Errorf("%w: reviewer_address must be the authenticated admin's wallet", domain.ErrValidation))
		return input, false
	}
	return input, true
}

// adminWallet resolves the wallet of the authenticated subject, empty when a
// password admin has none linked
func (h *handler) adminWallet(ctx context.Context, subject string) (string, error) {
	if domain.IsValidAddress(subject) {
		return subject, nil
	}

	admin, err := h.store.GetAdminByUsername(ctx, subject)
	if err != nil {
		return "", err
	}
	if admin == nil || admin.WalletAddress == nil {
		return "", nil
	}
	return *admin.WalletAddress, nil
}

// SaveTransaction records a confirmed disbursement
func (h *handler) SaveTransaction(c *gin.Context) {
	input, ok := h.bindRecordInput(c)
	if !ok {
		return
	}

	record, err := h.ledger.Record(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// ListTransactionRecords lists disbursements newest first
func (h *handler) ListTransactionRecords(c *gin.Context) {
	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	records, err := h.ledger.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records})
}

// TransactionStats aggregates disbursements in a time window
func (h *handler) TransactionStats(c *gin.Context) {
	from, err := parseTimeParam(c, "from")
	if err != nil {
		respondError(c, err)
		return
	}
	to, err := parseTimeParam(c, "to")
	if err != nil {
		respondError(c, err)
		return
	}

	stats, err := h.ledger.Stats(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// TrackPending keeps a dispatched but unconfirmed disbursement for the sweeper
func (h *handler) TrackPending(c *gin.Context) {
	input, ok := h.bindRecordInput(c)
	if !ok {
		return
	}

	pending, err := h.ledger.TrackPending(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.InfoCtx(c.Request.Context(), "Pending transfer handed off",
		zap.Uint64("pending_id", pending.ID),
		zap.String("tx_hash", pending.TxHash))
	c.JSON(http.StatusAccepted, pending)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logger.WarnCtx(ctx, "Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unavailable",
			"service":  "onboarding-api",
			"database": "unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "onboarding-api",
		"database": "ok",
	})
}
