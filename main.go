package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"partyshare/party-api/app"
	"partyshare/party-api/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const addr = ":3000"

func main() {
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Setup()
	if err != nil {
		panic(err)
	}

	a, err := app.NewRouter(ctx, cfg)
	if err != nil {
		panic(err)
	}
	defer a.Close()

	srv := &http.Server{
		Addr:    addr,
		Handler: a.Router,
	}

	go func() {
		zap.L().Info("Server starting", zap.String("addr", addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Server forced to shutdown", zap.Error(err))
	}

	_ = zap.L().Sync()
}
