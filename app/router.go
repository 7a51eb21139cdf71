// Package app wires the dependencies, middleware and endpoints together
package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"partyshare/party-api/app/auth"
	"partyshare/party-api/app/party"
	"partyshare/party-api/app/root"
	"partyshare/party-api/app/user"
	"partyshare/party-api/aws"
	"partyshare/party-api/config"
	"partyshare/party-api/db"
	"partyshare/party-api/internal"
	"partyshare/party-api/internal/service"
	"partyshare/party-api/pkg/middleware"
	"partyshare/party-api/pkg/respond"
	"partyshare/party-api/pkg/security"
	"partyshare/party-api/pkg/validators"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

type API struct {
	Deps    *internal.Deps
	Router  *gin.Engine
	limiter *middleware.RateLimiter
}

// NewRouter builds every dependency described by cfg and mounts the
// endpoints on a fresh engine
func NewRouter(ctx context.Context, cfg *config.Config) (*API, error) {
	makeLogger(cfg.App.LogLevel)

	d := &internal.Deps{
		Config: cfg,
		Hasher: security.NewHasher(security.DefaultCost),
		Tokens: security.NewTokenService(&cfg.JWT),
	}

	conn, err := db.New(&cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", cfg.DB.Driver, err)
	}
	d.DB = conn

	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	d.Uploader = service.NewUploader(store, &validators.PhotoRules{
		MaxSize:      cfg.Upload.MaxSize,
		MaxFiles:     cfg.Upload.MaxFiles,
		AllowedTypes: cfg.Upload.AllowedTypes,
	})

	return NewAPI(d), nil
}

func newStore(ctx context.Context, cfg *config.Config) (service.Store, error) {
	if cfg.Storage.Type == "s3" {
		s3, err := aws.NewS3(ctx, &cfg.AWS)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
		}

		return service.NewS3Store(s3, cfg.AWS.PublicURL), nil
	}

	store, err := service.NewLocalStore(cfg.Upload.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize local photo storage, %w", err)
	}

	return store, nil
}

// NewAPI mounts the endpoints on top of already built dependencies
func NewAPI(d *internal.Deps) *API {
	cfg := d.Config
	a := &API{Deps: d}

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(corsConfig(cfg.Host.CORSOrigins)),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 8 << 20

	if cfg.Security.RateLimit > 0 {
		a.limiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.Security.RateLimit,
			Burst:             cfg.Security.RateLimit * 2,
		})
		router.Use(a.limiter.Middleware())
	}

	gate := middleware.NewCookieGate()
	authenticate := middleware.NewAuthMiddleware(d.Tokens)
	bodyLimit := middleware.BodySizeLimiter(cfg.Security.BodyLimit)
	uploadLimit := middleware.BodySizeLimiter(uploadBodyLimit(&cfg.Upload))

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", root.Heartbeat)
	}

	authGroup := main.Group("/auth", bodyLimit)
	{
		// POST /api/auth/register	-> Registers a new user and logs them in
		authGroup.POST("/register", func(c *gin.Context) { auth.Register(c, d) })

		// POST /api/auth/login		-> Logs in a user and sets the auth cookies
		authGroup.POST("/login", func(c *gin.Context) { auth.Login(c, d) })

		// POST /api/auth/logout	-> Clears the auth cookies
		authGroup.POST("/logout", func(c *gin.Context) { auth.Logout(c, d) })
	}

	users := main.Group("/users", gate, authenticate)
	{
		// GET /api/users		-> Returns every user
		users.GET("", func(c *gin.Context) { user.List(c, d) })

		// GET /api/users/:id		-> Returns a user by ID
		users.GET("/:id", func(c *gin.Context) { user.Fetch(c, d) })

		// PUT /api/users		-> Updates the caller
		users.PUT("", bodyLimit, func(c *gin.Context) { user.Update(c, d) })
	}

	parties := main.Group("/party", gate, authenticate)
	{
		// POST /api/party		-> Creates a party with optional photos
		parties.POST("", uploadLimit, func(c *gin.Context) { party.Create(c, d) })

		// GET /api/party/all		-> Returns the parties of every user
		parties.GET("/all", func(c *gin.Context) { party.ListAll(c, d) })

		// GET /api/party/userparties	-> Returns the caller's parties
		parties.GET("/userparties", func(c *gin.Context) { party.ListMine(c, d) })

		// GET /api/party/userparty/:id	-> Returns one of the caller's parties
		parties.GET("/userparty/:id", func(c *gin.Context) { party.Fetch(c, d) })

		// PUT /api/party/:id		-> Updates one of the caller's parties
		parties.PUT("/:id", uploadLimit, func(c *gin.Context) { party.Update(c, d) })

		// DELETE /api/party/:id	-> Deletes one of the caller's parties
		parties.DELETE("/:id", func(c *gin.Context) { party.Delete(c, d) })
	}

	static := http.FileServer(noListingFS{http.Dir(cfg.Static.Dir)})
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			respond.Error(c, http.StatusNotFound, respond.KindNotFound, "Not found")
			return
		}

		static.ServeHTTP(c.Writer, c.Request)
	})

	return a
}

// Close stops the rate limiter janitor and the database pool
func (a *API) Close() error {
	if a.limiter != nil {
		a.limiter.Close()
	}

	if a.Deps.DB == nil {
		return nil
	}

	sqlDB, err := a.Deps.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// No configured origins means any origin, echoed back instead of "*"
// because the cookies need credentialed responses
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 {
		c.AllowOriginFunc = func(string) bool { return true }
	} else {
		c.AllowOrigins = origins
	}

	return c
}

// Every photo at its maximum size plus room for the text fields
func uploadBodyLimit(u *config.Upload) int64 {
	files := max(u.MaxFiles, 1)
	return u.MaxSize*int64(files) + 1<<20
}

func makeLogger(level string) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
