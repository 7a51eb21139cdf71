package middleware

import (
	"errors"
	"net/http"

	"partyshare/party-api/pkg/respond"

	"github.com/gin-gonic/gin"
)

const bodyTooLargeMessage = "Request body size exceeds limit"

func BodySizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Fast reject for legit requests
		if c.Request.ContentLength > maxBytes {
			respond.Error(c, http.StatusRequestEntityTooLarge, respond.KindTooLarge, bodyTooLargeMessage)
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()

		if err := c.Errors.Last(); err != nil && IsBodyTooLarge(err.Err) && !c.Writer.Written() {
			respond.Error(c, http.StatusRequestEntityTooLarge, respond.KindTooLarge, bodyTooLargeMessage)
		}
	}
}

// IsBodyTooLarge reports whether err comes from reading past the limit
// set by BodySizeLimiter
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// AbortBodyTooLarge is the response handlers use when binding hits the limit
func AbortBodyTooLarge(c *gin.Context) {
	respond.Error(c, http.StatusRequestEntityTooLarge, respond.KindTooLarge, bodyTooLargeMessage)
}
