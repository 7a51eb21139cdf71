package auth

import (
	"errors"
	"net/http"
	"strings"

	"partyshare/party-api/internal"
	"partyshare/party-api/internal/model"
	"partyshare/party-api/pkg/middleware"
	"partyshare/party-api/pkg/respond"
	"partyshare/party-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type registerBody struct {
	Name            string `json:"name" form:"name"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

func Register(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data registerBody
	if err := c.ShouldBind(&data); err != nil {
		if middleware.IsBodyTooLarge(err) {
			middleware.AbortBodyTooLarge(c)
			return
		}

		respond.Error(c, http.StatusBadRequest, respond.KindValidation, "Invalid request body")

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	data.Name = strings.TrimSpace(data.Name)

	if data.Name == "" || data.Email == "" || data.Password == "" || data.ConfirmPassword == "" {
		respond.Error(c, http.StatusBadRequest, respond.KindValidation, "Please fill all the form fields to register.")
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.KindValidation, "Invalid email format.")
		return
	}

	if err := validators.PasswordValidator(data.Password); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.KindValidation, MsgInvalidPassword)
		return
	}

	if data.Password != data.ConfirmPassword {
		respond.Error(c, http.StatusBadRequest, respond.KindValidation, MsgPasswordsDiffer)
		return
	}

	db := d.DB.WithContext(c.Request.Context())

	var taken int64
	if err := db.Model(&model.User{}).Where("email = ?", data.Email).Count(&taken).Error; err != nil {
		respond.Internal(c, "Failed to check if email is registered", err)
		return
	}

	if taken > 0 {
		respond.Error(c, http.StatusBadRequest, respond.KindConflict, MsgEmailTaken)
		return
	}

	hash, err := d.Hasher.GenerateFromPassword(data.Password)
	if err != nil {
		respond.Internal(c, "Failed to hash password", err)
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		respond.Internal(c, "Failed to generate user ID", err)
		return
	}

	user := &model.User{
		ID:       id.String(),
		Name:     data.Name,
		Email:    data.Email,
		Password: hash,
	}

	if err := db.Create(user).Error; err != nil {
		// Lost a race against another registration with the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respond.Error(c, http.StatusBadRequest, respond.KindConflict, MsgEmailTaken)
			return
		}

		respond.Internal(c, "Failed to create user", err)
		return
	}

	pair, err := d.Tokens.IssuePair(user.ID)
	if err != nil {
		respond.Internal(c, "Failed to issue tokens", err)
		return
	}

	setAuthCookies(c, &d.Config.Cookie, pair)

	zap.L().Info("User registered", zap.String("userID", user.ID), zap.String("requestID", requestID))

	c.JSON(http.StatusCreated, gin.H{
		"error":   nil,
		"message": "Register completed!",
		"id":      user.ID,
		"name":    user.Name,
	})
}
