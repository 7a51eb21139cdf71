// Package respond writes the JSON error envelope shared by every endpoint
package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Kind string

const (
	KindValidation      Kind = "validation"
	KindUnauthenticated Kind = "unauthenticated"
	KindNotFound        Kind = "not_found"
	KindOwnership       Kind = "ownership"
	KindConflict        Kind = "conflict"
	KindTooLarge        Kind = "too_large"
	KindRateLimited     Kind = "rate_limited"
	KindInternal        Kind = "internal"
)

const internalMessage = "Something went wrong, please try again."

// Error aborts the request with {error, kind, requestID}
func Error(c *gin.Context, code int, kind Kind, msg string) {
	c.AbortWithStatusJSON(code, gin.H{
		"error":     msg,
		"kind":      kind,
		"requestID": c.GetString("requestID"),
	})
}

// Internal hides err from the client and logs it instead
func Internal(c *gin.Context, logMsg string, err error) {
	Error(c, http.StatusInternalServerError, KindInternal, internalMessage)

	zap.L().Error(logMsg,
		zap.Error(err),
		zap.String("requestID", c.GetString("requestID")),
		zap.String("path", c.FullPath()),
	)
}
