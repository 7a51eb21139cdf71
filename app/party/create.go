package party

import (
	"errors"
	"net/http"

	"partyshare/party-api/internal"
	"partyshare/party-api/internal/model"
	"partyshare/party-api/pkg/respond"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Create(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	form, batch, ok := bindPartyForm(c, d)
	if !ok {
		return
	}
	defer batch.Close()

	ctx := c.Request.Context()
	db := d.DB.WithContext(ctx)

	// The token may outlive its user
	var owners int64
	if err := db.Model(&model.User{}).Where("id = ?", userID).Count(&owners).Error; err != nil {
		respond.Internal(c, "Failed to check party owner", err)
		return
	}

	if owners == 0 {
		respond.Error(c, http.StatusUnauthorized, respond.KindUnauthenticated, "Access denied.")
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		respond.Internal(c, "Failed to generate party ID", err)
		return
	}

	party := &model.Party{
		ID:          id.String(),
		UserID:      userID,
		Title:       form.Title,
		Description: form.Description,
		PartyDate:   form.date,
		Privacy:     bool(form.Privacy),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		refs, err := batch.Commit(ctx)
		if err != nil {
			return err
		}
		party.Photos = refs

		return tx.Create(party).Error
	})
	if err != nil {
		batch.Rollback(ctx)

		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respond.Error(c, http.StatusConflict, respond.KindConflict, "Party already exists, please try again.")
			return
		}

		respond.Internal(c, "Failed to create party", err)
		return
	}

	zap.L().Debug("Party created",
		zap.String("partyID", party.ID),
		zap.Int("photos", len(party.Photos)),
		zap.String("requestID", requestID),
	)

	c.JSON(http.StatusOK, gin.H{
		"error":    nil,
		"message":  "Party added!",
		"newParty": party,
	})
}
