package internal

import (
	"partyshare/party-api/config"
	"partyshare/party-api/internal/service"
	"partyshare/party-api/pkg/security"

	"gorm.io/gorm"
)

type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Hasher   *security.Hasher
	Tokens   *security.TokenService
	Uploader *service.Uploader
}
