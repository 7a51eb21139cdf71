package party

import (
	"errors"
	"net/http"

	"partyshare/party-api/internal"
	"partyshare/party-api/internal/model"
	"partyshare/party-api/pkg/respond"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Update overwrites one of the caller's parties. The match is always on
// the caller, but a non empty userId in the body is stored as the new
// owner. Photos are only replaced when new ones were uploaded.
func Update(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	form, batch, ok := bindPartyForm(c, d)
	if !ok {
		return
	}
	defer batch.Close()

	ctx := c.Request.Context()

	var (
		party      model.Party
		superseded []string
	)

	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&party).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotOwned
		}
		if err != nil {
			return err
		}

		if batch.Len() > 0 {
			refs, err := batch.Commit(ctx)
			if err != nil {
				return err
			}

			superseded = party.Photos
			party.Photos = refs
		}

		party.Title = form.Title
		party.Description = form.Description
		party.PartyDate = form.date
		party.Privacy = bool(form.Privacy)

		if form.UserID != "" {
			party.UserID = form.UserID
		}

		return tx.Save(&party).Error
	})
	if err != nil {
		batch.Rollback(ctx)

		if errors.Is(err, errNotOwned) {
			respond.Error(c, http.StatusBadRequest, respond.KindOwnership, "That party does not belong to the user.")
			return
		}

		respond.Internal(c, "Failed to update party", err)
		return
	}

	if party.UserID != userID {
		zap.L().Warn("Party owner changed on update",
			zap.String("partyID", party.ID),
			zap.String("from", userID),
			zap.String("to", party.UserID),
			zap.String("requestID", requestID),
		)
	}

	d.Uploader.Remove(ctx, superseded)

	c.JSON(http.StatusOK, gin.H{
		"error":        nil,
		"message":      "Party updated!",
		"updatedParty": party,
	})
}
