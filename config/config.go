// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	configDir         = pflag.String("config", ".", "Directory containing config.toml and .env")
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"s3", "local"}
	validDBDrivers    = []string{"sqlite", "postgres"}
)

type Config struct {
	App      App
	JWT      JWT
	Cookie   Cookie
	DB       DB
	Static   Static
	Upload   Upload
	Storage  Storage
	AWS      AWS
	Host     Host
	Security Security
}

type App struct {
	LogLevel string
}

type JWT struct {
	AccessSecret      string
	RefreshSecret     string
	AccessExpiration  time.Duration
	RefreshExpiration time.Duration
}

// Cookie max ages are configured in milliseconds and stored as durations
type Cookie struct {
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
	Secure        bool
}

type DB struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type Static struct {
	Dir string
}

type Upload struct {
	Dir          string
	MaxSize      int64 // bytes per photo
	MaxFiles     int
	AllowedTypes []string
}

type Storage struct {
	Type string
}

type AWS struct {
	AccessKey       string
	SecretAccessKey string
	Region          string
	Bucket          string
	Endpoint        string
	PublicURL       string
}

type Host struct {
	CORSOrigins []string
}

type Security struct {
	RateLimit int
	BodyLimit int64
}

// Setup parses the command line flags and loads the configuration
// from the directory given by --config.
func Setup() (*Config, error) {
	pflag.Parse()
	return Load(*configDir)
}

// Load reads .env, config.toml and the environment, in increasing order
// of priority, from dir. A missing config.toml is not an error, every
// option can be provided through the environment instead.
func Load(dir string) (*Config, error) {
	// Already exported variables win over the .env file
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "APP_LOG_LEVEL")

	v.BindEnv("jwt.access_secret", "SECRET")
	v.BindEnv("jwt.refresh_secret", "REFRESH_SECRET")
	v.BindEnv("jwt.access_expiration", "ACCESS_TOKEN_EXPIRATION")
	v.BindEnv("jwt.refresh_expiration", "REFRESH_TOKEN_EXPIRATION")

	v.BindEnv("cookie.access_max_age", "ACCESS_TOKEN_MAX_AGE")
	v.BindEnv("cookie.refresh_max_age", "REFRESH_TOKEN_MAX_AGE")
	v.BindEnv("cookie.secure", "COOKIE_SECURE")

	v.BindEnv("db.driver", "DB_DRIVER")
	v.BindEnv("db.host", "DB_HOST")
	v.BindEnv("db.port", "DB_PORT")
	v.BindEnv("db.user", "DB_USER")
	v.BindEnv("db.password", "DB_PASSWORD")
	v.BindEnv("db.name", "DB_NAME")
	v.BindEnv("db.ssl_mode", "DB_SSL_MODE")

	v.BindEnv("static.dir", "STATIC_DIR")

	v.BindEnv("upload.dir", "UPLOAD_DIR")
	v.BindEnv("upload.max_size", "UPLOAD_MAX_SIZE")
	v.BindEnv("upload.max_files", "UPLOAD_MAX_FILES")
	v.BindEnv("upload.allowed_types", "UPLOAD_ALLOWED_TYPES")

	v.BindEnv("storage.type", "STORAGE_TYPE")

	v.BindEnv("aws.access_key", "AWS_ACCESS_KEY")
	v.BindEnv("aws.secret_access_key", "AWS_SECRET_ACCESS_KEY")
	v.BindEnv("aws.region", "AWS_REGION")
	v.BindEnv("aws.bucket", "AWS_BUCKET")
	v.BindEnv("aws.endpoint", "AWS_ENDPOINT")
	v.BindEnv("aws.public_url", "AWS_PUBLIC_URL")

	v.BindEnv("host.cors", "HOST_CORS")

	v.BindEnv("security.rate_limit", "SECURITY_RATE_LIMIT")
	v.BindEnv("security.body_limit", "SECURITY_BODY_LIMIT")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("jwt.access_expiration", "15m")
	v.SetDefault("jwt.refresh_expiration", "7d")

	v.SetDefault("cookie.access_max_age", 15*60*1000)
	v.SetDefault("cookie.refresh_max_age", 7*24*60*60*1000)
	v.SetDefault("cookie.secure", false)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "party")
	v.SetDefault("db.ssl_mode", "disable")

	v.SetDefault("static.dir", "public")

	v.SetDefault("upload.dir", "public/img/party")
	v.SetDefault("upload.max_size", 10)
	v.SetDefault("upload.max_files", 10)
	v.SetDefault("upload.allowed_types", []string{"image/jpeg", "image/png", "image/gif", "image/webp"})

	v.SetDefault("storage.type", "local")

	v.SetDefault("security.rate_limit", 0)
	v.SetDefault("security.body_limit", 1)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}
	}

	return build(v)
}

func build(v *viper.Viper) (*Config, error) {
	c := &Config{
		App: App{
			LogLevel: v.GetString("app.log_level"),
		},
		JWT: JWT{
			AccessSecret:  v.GetString("jwt.access_secret"),
			RefreshSecret: v.GetString("jwt.refresh_secret"),
		},
		Cookie: Cookie{
			AccessMaxAge:  time.Duration(v.GetInt64("cookie.access_max_age")) * time.Millisecond,
			RefreshMaxAge: time.Duration(v.GetInt64("cookie.refresh_max_age")) * time.Millisecond,
			Secure:        v.GetBool("cookie.secure"),
		},
		DB: DB{
			Driver:   v.GetString("db.driver"),
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			Name:     v.GetString("db.name"),
			SSLMode:  v.GetString("db.ssl_mode"),
		},
		Static: Static{
			Dir: v.GetString("static.dir"),
		},
		Upload: Upload{
			Dir:          v.GetString("upload.dir"),
			MaxSize:      v.GetInt64("upload.max_size") << 20,
			MaxFiles:     v.GetInt("upload.max_files"),
			AllowedTypes: splitList(v.GetStringSlice("upload.allowed_types")),
		},
		Storage: Storage{
			Type: v.GetString("storage.type"),
		},
		AWS: AWS{
			AccessKey:       v.GetString("aws.access_key"),
			SecretAccessKey: v.GetString("aws.secret_access_key"),
			Region:          v.GetString("aws.region"),
			Bucket:          v.GetString("aws.bucket"),
			Endpoint:        v.GetString("aws.endpoint"),
			PublicURL:       strings.TrimSuffix(v.GetString("aws.public_url"), "/"),
		},
		Host: Host{
			CORSOrigins: splitList(v.GetStringSlice("host.cors")),
		},
		Security: Security{
			RateLimit: v.GetInt("security.rate_limit"),
			BodyLimit: v.GetInt64("security.body_limit") << 20,
		},
	}

	var err error

	c.JWT.AccessExpiration, err = ParseExpiration(v.GetString("jwt.access_expiration"))
	if err != nil {
		return nil, fmt.Errorf("invalid access token expiration, %w", err)
	}

	c.JWT.RefreshExpiration, err = ParseExpiration(v.GetString("jwt.refresh_expiration"))
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token expiration, %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) validate() error {
	if !slices.Contains(validLogLevels, c.App.LogLevel) {
		return errors.New("invalid log level provided")
	}

	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		return errors.New("both SECRET and REFRESH_SECRET must be set")
	}

	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New("SECRET and REFRESH_SECRET must be different")
	}

	if c.JWT.AccessExpiration <= 0 || c.JWT.RefreshExpiration <= 0 {
		return errors.New("token expirations must be bigger than 0")
	}

	if c.Cookie.AccessMaxAge <= 0 || c.Cookie.RefreshMaxAge <= 0 {
		return errors.New("cookie max ages must be bigger than 0")
	}

	if !slices.Contains(validDBDrivers, c.DB.Driver) {
		return errors.New("invalid database driver provided")
	}

	if c.DB.Name == "" {
		return errors.New("database name can't be empty")
	}

	if c.DB.Driver == "postgres" && c.DB.User == "" {
		return errors.New("database user can't be empty")
	}

	if c.Upload.MaxSize <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if c.Upload.MaxFiles <= 0 {
		return errors.New("upload.max_files must be bigger than 0")
	}

	if c.Security.BodyLimit <= 0 {
		return errors.New("security.body_limit must be bigger than 0")
	}

	if c.Security.RateLimit < 0 {
		return errors.New("security.rate_limit can't be negative")
	}

	if !slices.Contains(validStorageTypes, c.Storage.Type) {
		return errors.New("invalid storage type provided")
	}

	switch c.Storage.Type {
	case "s3":
		if c.AWS.Bucket == "" {
			return errors.New("bucket can't be empty")
		}
		if c.AWS.Region == "" {
			return errors.New("region can't be empty")
		}
		if c.AWS.AccessKey == "" || c.AWS.SecretAccessKey == "" {
			return errors.New("aws credentials can't be empty")
		}
	case "local":
		if c.Upload.Dir == "" {
			return errors.New("upload.dir can't be empty")
		}
	}

	return nil
}

var expirationRegex = regexp.MustCompile(`(?i)^(-?\d*\.?\d+) *(milliseconds?|msecs?|ms|seconds?|secs?|s|minutes?|mins?|m|hours?|hrs?|h|days?|d|weeks?|w|years?|yrs?|y)?$`)

var expirationUnits = map[string]time.Duration{
	"ms": time.Millisecond,
	"s":  time.Second,
	"m":  time.Minute,
	"h":  time.Hour,
	"d":  24 * time.Hour,
	"w":  7 * 24 * time.Hour,
	"y":  time.Duration(365.25 * float64(24*time.Hour)),
}

// ParseExpiration reads token lifetimes such as "15m", "2 days", "1w", "1.5h"
// or "1y". A bare number is a millisecond count. Compound Go durations like
// "1h30m" are accepted too.
func ParseExpiration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty expiration")
	}

	m := expirationRegex.FindStringSubmatch(s)
	if m == nil {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid expiration %q", s)
		}
		return d, nil
	}

	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid expiration %q", s)
	}

	return time.Duration(n * float64(expirationUnits[unitKey(m[2])])), nil
}

func unitKey(unit string) string {
	unit = strings.ToLower(unit)
	switch {
	case unit == "" || strings.HasPrefix(unit, "ms") || strings.HasPrefix(unit, "milli"):
		return "ms"
	case strings.HasPrefix(unit, "mi") || unit == "m":
		return "m"
	case strings.HasPrefix(unit, "h"):
		return "h"
	case strings.HasPrefix(unit, "d"):
		return "d"
	case strings.HasPrefix(unit, "w"):
		return "w"
	case strings.HasPrefix(unit, "y"):
		return "y"
	}

	return "s"
}

// Env lists arrive as a single comma separated string
func splitList(in []string) []string {
	out := []string{}
	for _, s := range in {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}

	return out
}
