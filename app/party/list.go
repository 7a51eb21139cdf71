package party

import (
	"net/http"

	"partyshare/party-api/internal"
	"partyshare/party-api/internal/model"
	"partyshare/party-api/pkg/respond"

	"github.com/gin-gonic/gin"
)

// ListAll returns every party of every user, newest first. Private
// parties are included.
func ListAll(c *gin.Context, d *internal.Deps) {
	parties := []model.Party{}

	err := d.DB.WithContext(c.Request.Context()).
		Order("id desc").
		Find(&parties).
		Error
	if err != nil {
		respond.Internal(c, "Failed to list parties", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":   nil,
		"parties": parties,
	})
}

func ListMine(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	parties := []model.Party{}

	err := d.DB.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("id desc").
		Find(&parties).
		Error
	if err != nil {
		respond.Internal(c, "Failed to list user parties", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":       nil,
		"userParties": parties,
	})
}
