package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/bonesdao/onboarding/internal/api/shared/errors"
	"github.com/bonesdao/onboarding/internal/auth"
	"github.com/bonesdao/onboarding/internal/logger"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	AUTH_SUBJECT_KEY contextKey = "auth_subject"
	JWT_CLAIMS_KEY   contextKey = "jwt_claims"
)

// bearerToken extracts the credential from an Authorization header
func bearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", errors.New("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
		return "", errors.New("invalid Authorization header format")
	}
	if !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("unsupported authorization type: " + parts[0])
	}
	return strings.TrimSpace(parts[1]), nil
}

// Auth requires a valid access credential issued by gateway
func Auth(gateway auth.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		var claims *auth.Claims
		if err == nil {
			claims, err = gateway.Verify(token)
		}

		if err != nil {
			logger.WarnCtx(c.Request.Context(), "Authentication failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			status, apiErr := apierrors.FromError(err)
			if status != http.StatusUnauthorized {
				apiErr = apierrors.NewUnauthorizedError("Authentication failed")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiErr)
			return
		}

		c.Set(string(JWT_CLAIMS_KEY), claims)
		c.Set(string(AUTH_SUBJECT_KEY), claims.Subject)
		ctx := logger.WithFields(c.Request.Context(), zap.String("admin", claims.Subject))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// Subject returns the authenticated admin of the request
func Subject(c *gin.Context) string {
	return c.GetString(string(AUTH_SUBJECT_KEY))
}

// Claims returns the verified claims of the request
func Claims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(string(JWT_CLAIMS_KEY))
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
