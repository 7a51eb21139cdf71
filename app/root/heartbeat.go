// Package root contains endpoints that don't belong to any resource
package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Heartbeat answers HEAD /api/heartbeat so load balancers and the frontend
// can check that the server is up
func Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}
