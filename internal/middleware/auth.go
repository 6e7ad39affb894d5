package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/showrunner/notification-api/pkg/auth"
	apperrors "github.com/showrunner/notification-api/pkg/errors"
	"github.com/showrunner/notification-api/pkg/httputil"
)

// ContextUserID is where the authenticated subject lands in the gin context
const ContextUserID = "user_id"

type AuthMiddleware struct {
	jwt auth.JWTService
}

func NewAuthMiddleware(jwt auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// Optional extracts the bearer subject when a token is present. Requests
// without a token pass through; most notification routes accept a
// caller-supplied recipient identity.
func (m *AuthMiddleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := m.jwt.ValidateToken(token); err == nil {
				c.Set(ContextUserID, claims.UserID.String())
			}
		}
		c.Next()
	}
}

// RequireUser demands a valid bearer token whose subject matches the named
// path parameter. The bulk read-all route uses this so one user cannot
// clear another's inbox.
func (m *AuthMiddleware) RequireUser(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			httputil.RespondWithError(c, apperrors.NewUnauthorized("missing authorization header", nil))
			c.Abort()
			return
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			httputil.RespondWithError(c, apperrors.NewUnauthorized("invalid token", err))
			c.Abort()
			return
		}

		if claims.UserID.String() != c.Param(param) {
			httputil.RespondWithError(c, apperrors.NewForbidden("token subject does not match user", nil))
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID.String())
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
