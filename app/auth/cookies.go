// Package auth contains the endpoints that hand out and clear the auth cookies
package auth

import (
	"net/http"
	"time"

	"partyshare/party-api/config"
	"partyshare/party-api/pkg/security"

	"github.com/gin-gonic/gin"
)

// Client facing texts shared by register and the user update endpoint
const (
	MsgInvalidPassword = "Invalid password format. Password must have at least 8 characters, one uppercase, one lowercase and one digit."
	MsgPasswordsDiffer = "Please make sure both passwords are equal."
	MsgEmailTaken      = "Someone is already using that email."
)

func setAuthCookies(c *gin.Context, cfg *config.Cookie, pair *security.TokenPair) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(security.AccessCookie, pair.AccessToken, maxAge(cfg.AccessMaxAge), "/", "", cfg.Secure, true)
	c.SetCookie(security.RefreshCookie, pair.RefreshToken, maxAge(cfg.RefreshMaxAge), "/", "", cfg.Secure, true)
}

func clearAuthCookies(c *gin.Context, cfg *config.Cookie) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(security.AccessCookie, "", -1, "/", "", cfg.Secure, true)
	c.SetCookie(security.RefreshCookie, "", -1, "/", "", cfg.Secure, true)
}

// Cookie max ages are configured in milliseconds, browsers want seconds
func maxAge(d time.Duration) int {
	return int(d / time.Second)
}
