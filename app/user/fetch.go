// Package user contains the profile endpoints, all behind authentication
package user

import (
	"errors"
	"net/http"

	"partyshare/party-api/internal"
	"partyshare/party-api/internal/model"
	"partyshare/party-api/pkg/respond"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Fetch returns any user by ID. The password digest never leaves the model.
func Fetch(c *gin.Context, d *internal.Deps) {
	var user model.User

	err := d.DB.WithContext(c.Request.Context()).
		Where("id = ?", c.Param("id")).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(c, http.StatusNotFound, respond.KindNotFound, "Id is not valid, please try again.")
			return
		}

		respond.Internal(c, "Failed to fetch user", err)
		return
	}

	c.JSON(http.StatusOK, user)
}
