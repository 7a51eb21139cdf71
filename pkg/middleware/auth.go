package middleware

import (
	"errors"
	"net/http"

	"partyshare/party-api/pkg/respond"
	"partyshare/party-api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewAuthMiddleware verifies the auth cookies once per request and stores the
// caller's ID as userID. Handlers behind it never look at the tokens.
func NewAuthMiddleware(tokens *security.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		access, _ := c.Cookie(security.AccessCookie)
		refresh, _ := c.Cookie(security.RefreshCookie)

		id, err := tokens.Authenticate(access, refresh)
		if err != nil {
			msg := "Authorization token invalid, please login."
			if errors.Is(err, security.ErrTokenExpired) {
				msg = "Authorization token expired, please login again."
			}

			respond.Error(c, http.StatusUnauthorized, respond.KindUnauthenticated, msg)

			zap.L().Debug("Rejected auth token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("userID", id.UserID)
		c.Set("tokenKind", string(id.Kind))
		c.Next()
	}
}
