package user

import (
	"errors"
	"net/http"
	"strings"

	"partyshare/party-api/app/auth"
	"partyshare/party-api/internal"
	"partyshare/party-api/internal/model"
	"partyshare/party-api/pkg/middleware"
	"partyshare/party-api/pkg/respond"
	"partyshare/party-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type updateBody struct {
	Name            string `json:"name" form:"name"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

// Update overwrites the caller's name, email and password in one go
func Update(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data updateBody
	if err := c.ShouldBind(&data); err != nil {
		if middleware.IsBodyTooLarge(err) {
			middleware.AbortBodyTooLarge(c)
			return
		}

		respond.Error(c, http.StatusBadRequest, respond.KindValidation, "Invalid request body")

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	db := d.DB.WithContext(c.Request.Context())

	var user model.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(c, http.StatusUnauthorized, respond.KindUnauthenticated, "Access denied.")
			return
		}

		respond.Internal(c, "Failed to fetch user", err)
		return
	}

	data.Name = strings.TrimSpace(data.Name)

	if data.Name == "" {
		respond.Error(c, http.StatusBadRequest, respond.KindValidation, "Please insert your name.")
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.KindValidation, "Please insert a valid email.")
		return
	}

	if err := validators.PasswordValidator(data.Password); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.KindValidation, auth.MsgInvalidPassword)
		return
	}

	if data.Password != data.ConfirmPassword {
		respond.Error(c, http.StatusBadRequest, respond.KindValidation, auth.MsgPasswordsDiffer)
		return
	}

	var taken int64
	err := db.Model(&model.User{}).
		Where("email = ? AND id <> ?", data.Email, user.ID).
		Count(&taken).
		Error
	if err != nil {
		respond.Internal(c, "Failed to check if email is taken", err)
		return
	}

	if taken > 0 {
		respond.Error(c, http.StatusBadRequest, respond.KindConflict, auth.MsgEmailTaken)
		return
	}

	hash, err := d.Hasher.GenerateFromPassword(data.Password)
	if err != nil {
		respond.Internal(c, "Failed to hash password", err)
		return
	}

	user.Name = data.Name
	user.Email = data.Email
	user.Password = hash

	if err := db.Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respond.Error(c, http.StatusBadRequest, respond.KindConflict, auth.MsgEmailTaken)
			return
		}

		respond.Internal(c, "Failed to update user", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"error":       nil,
		"message":     "User updated!",
		"updatedUser": user,
	})
}
