package rest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bonesdao/onboarding/internal/domain"
	"github.com/bonesdao/onboarding/internal/ledger"
)

// maxPageLimit bounds an explicit limit; no limit lists everything
const maxPageLimit = 1000

// SubmitRequest is the body of POST /onboarding/submit
type SubmitRequest struct {
	WalletAddress string `json:"wallet_address"`
	Discord       string `json:"discord"`
	WeChat        string `json:"wechat"`
	Telegram      string `json:"telegram"`
	Forum         string `json:"forum"`
	Referrer      string `json:"referrer"`
}

func (r SubmitRequest) contacts() domain.Contacts {
	return domain.Contacts{
		Discord:  r.Discord,
		WeChat:   r.WeChat,
		Telegram: r.Telegram,
		Forum:    r.Forum,
	}
}

// StatusRequest is the body of POST /onboarding/status
type StatusRequest struct {
	Address string `json:"address"`
}

// StatusResponse reports the review status of an address
type StatusResponse struct {
	Address string                  `json:"address"`
	Status  domain.SubmissionStatus `json:"status"`
}

// LoginRequest carries either a username and password or a wallet signature
type LoginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Address   string `json:"address"`
	Signature string `json:"signature"`
	Message   string `json:"message"`
}

func (r LoginRequest) bySignature() bool {
	return r.Address != "" || r.Signature != ""
}

// RefreshRequest is the body of POST /admin/refresh-token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TransitionRequest is the body of POST /admin/update-submission-status
type TransitionRequest struct {
	ID     uint64                  `json:"id" binding:"required"`
	Status domain.SubmissionStatus `json:"status" binding:"required"`
}

// parsePagination reads the optional limit and offset. Zero limit means unbounded.
func parsePagination(c *gin.Context) (limit, offset int, err error) {
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxPageLimit {
			return 0, 0, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrValidation, maxPageLimit)
		}
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("%w: offset must be a non-negative integer", domain.ErrValidation)
		}
	}
	return limit, offset, nil
}

// parseTransactionFilter reads the transaction record list query
func parseTransactionFilter(c *gin.Context) (ledger.ListFilter, error) {
	limit, offset, err := parsePagination(c)
	if err != nil {
		return ledger.ListFilter{}, err
	}
	return ledger.ListFilter{
		RecipientAddress: strings.TrimSpace(c.Query("recipient")),
		AssetKind:        domain.AssetKind(strings.TrimSpace(c.Query("asset"))),
		Limit:            limit,
		Offset:           offset,
	}, nil
}

// parseTimeParam accepts RFC 3339 timestamps or plain UTC dates
func parseTimeParam(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an RFC 3339 timestamp or a YYYY-MM-DD date", domain.ErrValidation, name)
	}
	return &t, nil
}
