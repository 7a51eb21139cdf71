package auth

import (
	"errors"
	"net/http"

	"partyshare/party-api/internal"
	"partyshare/party-api/internal/model"
	"partyshare/party-api/pkg/middleware"
	"partyshare/party-api/pkg/respond"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type loginBody struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func Login(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if err := c.ShouldBind(&data); err != nil {
		if middleware.IsBodyTooLarge(err) {
			middleware.AbortBodyTooLarge(c)
			return
		}

		respond.Error(c, http.StatusBadRequest, respond.KindValidation, "Invalid request body")

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.Email == "" || data.Password == "" {
		respond.Error(c, http.StatusBadRequest, respond.KindValidation, "Please insert email and password to login.")
		return
	}

	var user model.User

	err := d.DB.WithContext(c.Request.Context()).
		Where("email = ?", data.Email).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(c, http.StatusBadRequest, respond.KindValidation,
				"This email is not registered in our database, please register before login.")
			return
		}

		respond.Internal(c, "Failed to fetch user", err)
		return
	}

	ok, err := d.Hasher.VerifyPasswd(data.Password, user.Password)
	if err != nil {
		respond.Internal(c, "Failed to verify password", err)
		return
	}

	if !ok {
		respond.Error(c, http.StatusBadRequest, respond.KindValidation, "Invalid password, please try again.")
		return
	}

	pair, err := d.Tokens.IssuePair(user.ID)
	if err != nil {
		respond.Internal(c, "Failed to issue tokens", err)
		return
	}

	setAuthCookies(c, &d.Config.Cookie, pair)

	c.JSON(http.StatusOK, gin.H{
		"error":   nil,
		"message": "Login completed!",
		"id":      user.ID,
		"name":    user.Name,
	})
}
