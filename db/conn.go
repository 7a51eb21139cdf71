// Package db opens the gorm connection used by the whole application
package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"partyshare/party-api/config"
	"partyshare/party-api/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func New(c *config.DB) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch c.Driver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
		dialector = postgres.Open(dsn)
	case "sqlite":
		path := SQLitePath(c.Name)

		// If running in a docker container don't allow the sqlite file to be created.
		// The host should instead mount it using volumes
		if runningInDocker() && !filepath.IsAbs(path) {
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", path)
			}
		}

		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		// Unique index violations come back as gorm.ErrDuplicatedKey
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database, %w", c.Driver, err)
	}

	if err := db.AutoMigrate(model.User{}, model.Party{}); err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}

// SQLitePath maps a database name onto its file
func SQLitePath(name string) string {
	if strings.HasSuffix(name, ".db") || strings.HasPrefix(name, "file:") {
		return name
	}

	return name + ".db"
}

func runningInDocker() bool {
	_, err := os.Stat("/.dockerenv")
	return err == nil
}
