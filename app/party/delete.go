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

var errNotOwned = errors.New("party does not belong to the user")

func Delete(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)
	ctx := c.Request.Context()

	var party model.Party

	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&party).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotOwned
		}
		if err != nil {
			return err
		}

		r := tx.Where("id = ? AND user_id = ?", party.ID, userID).Delete(&model.Party{})
		if r.Error != nil {
			return r.Error
		}

		// Someone else deleted it between the two statements
		if r.RowsAffected == 0 {
			return errNotOwned
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, errNotOwned) {
			respond.Error(c, http.StatusBadRequest, respond.KindOwnership, "The party does not belong to the user.")
			return
		}

		respond.Internal(c, "Failed to delete party", err)
		return
	}

	d.Uploader.Remove(ctx, party.Photos)

	c.JSON(http.StatusOK, gin.H{
		"error":   nil,
		"message": "Party removed!",
	})
}
