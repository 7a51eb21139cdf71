package party

import (
	"errors"
	"net/http"

	"partyshare/party-api/internal"
	"partyshare/party-api/internal/model"
	"partyshare/party-api/pkg/respond"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Fetch returns one of the caller's parties. Parties of other users look
// exactly like IDs that don't exist.
func Fetch(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var party model.Party

	err := d.DB.WithContext(c.Request.Context()).
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		First(&party).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(c, http.StatusBadRequest, respond.KindNotFound, "Invalid partyId!")
			return
		}

		respond.Internal(c, "Failed to fetch party", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error": nil,
		"party": party,
	})
}
