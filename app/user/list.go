package user

import (
	"net/http"

	"partyshare/party-api/internal"
	"partyshare/party-api/internal/model"
	"partyshare/party-api/pkg/respond"

	"github.com/gin-gonic/gin"
)

func List(c *gin.Context, d *internal.Deps) {
	users := []model.User{}

	if err := d.DB.WithContext(c.Request.Context()).Order("id").Find(&users).Error; err != nil {
		respond.Internal(c, "Failed to list users", err)
		return
	}

	c.JSON(http.StatusOK, users)
}
