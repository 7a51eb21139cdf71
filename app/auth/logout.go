package auth

import (
	"net/http"

	"partyshare/party-api/internal"

	"github.com/gin-gonic/gin"
)

// Logout only drops the cookies. The tokens stay valid until they expire.
func Logout(c *gin.Context, d *internal.Deps) {
	clearAuthCookies(c, &d.Config.Cookie)

	c.JSON(http.StatusOK, gin.H{
		"error":   nil,
		"message": "Logout completed!",
	})
}
