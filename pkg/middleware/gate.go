package middleware

import (
	"net/http"

	"partyshare/party-api/pkg/respond"
	"partyshare/party-api/pkg/security"

	"github.com/gin-gonic/gin"
)

// NewCookieGate only checks that one of the auth cookies is present. It
// doesn't decode anything, NewAuthMiddleware does the verification.
func NewCookieGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if hasCookie(c, security.AccessCookie) || hasCookie(c, security.RefreshCookie) {
			c.Next()
			return
		}

		respond.Error(c, http.StatusUnauthorized, respond.KindUnauthenticated, "Token lifetime expired, please login.")
	}
}

func hasCookie(c *gin.Context, name string) bool {
	v, err := c.Cookie(name)
	return err == nil && v != ""
}
