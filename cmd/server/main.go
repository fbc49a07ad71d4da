// Command server runs the push-notification fan-out service.
//
// Startup order: env + config, logging, tracing, database, push gateway
// client, HTTP router. Shutdown drains in-flight requests before flushing
// the tracer.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	_ "github.com/parishlink/go-notify-backend/docs"
	"github.com/parishlink/go-notify-backend/internal/config"
	httpapi "github.com/parishlink/go-notify-backend/internal/http"
	"github.com/parishlink/go-notify-backend/internal/observability"
	"github.com/parishlink/go-notify-backend/internal/push"
	"github.com/parishlink/go-notify-backend/internal/repo"
	"github.com/parishlink/go-notify-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// @title           ParishLink Notification API
// @version         1.0
// @description     Multi-tenant push-notification fan-out service for church
// @description     community apps: domain events in, localized pushes out.
//
// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT
//
// @BasePath  /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// .env is optional; real deployments configure via the environment.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetupLogging(cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	shutdownTracing, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("tracing setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("database open failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}
	log.Info().Str("path", cfg.DBPath).Msg("database ready")

	gateway := push.NewClient(cfg.Push.GatewayURL, cfg.Push.AccessToken, cfg.Push.Timeout)

	router := gin.New()
	httpapi.RegisterRoutes(router, db, gateway, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("tracer shutdown failed")
	}
	log.Info().Msg("server exited")
}
