// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, authentication, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Authentication before any domain logic on the API surface
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/parishlink/go-notify-backend/internal/config"
	"github.com/parishlink/go-notify-backend/internal/domain"
	"github.com/parishlink/go-notify-backend/internal/http/handlers"
	"github.com/parishlink/go-notify-backend/internal/http/middleware"
	"github.com/parishlink/go-notify-backend/internal/push"
	"github.com/parishlink/go-notify-backend/internal/repo"
	"github.com/parishlink/go-notify-backend/internal/services"
)

// membershipRepoShim adapts the repository free functions to the
// services.MembershipStore interface expected by the RecipientResolver. This
// keeps services decoupled from the concrete repo package while reusing
// existing functions.
type membershipRepoShim struct{}

// ListActiveMemberships proxies repo.ListActiveMemberships.
func (membershipRepoShim) ListActiveMemberships(ctx context.Context, db *gorm.DB, tenantID string, userIDs []string) ([]domain.Membership, error) {
	return repo.ListActiveMemberships(ctx, db, tenantID, userIDs)
}

// GetConversation proxies repo.GetConversation.
func (membershipRepoShim) GetConversation(ctx context.Context, db *gorm.DB, id string) (*domain.Conversation, error) {
	return repo.GetConversation(ctx, db, id)
}

// ListExcludedMembershipIDs proxies repo.ListExcludedMembershipIDs.
func (membershipRepoShim) ListExcludedMembershipIDs(ctx context.Context, db *gorm.DB, conversationID string) ([]string, error) {
	return repo.ListExcludedMembershipIDs(ctx, db, conversationID)
}

// eventRepoShim adapts the repository free functions to services.EventStore.
type eventRepoShim struct{}

// GetMessage proxies repo.GetMessage.
func (eventRepoShim) GetMessage(ctx context.Context, db *gorm.DB, id string) (*domain.Message, error) {
	return repo.GetMessage(ctx, db, id)
}

// GetPrayerCard proxies repo.GetPrayerCard.
func (eventRepoShim) GetPrayerCard(ctx context.Context, db *gorm.DB, id string) (*domain.PrayerCard, error) {
	return repo.GetPrayerCard(ctx, db, id)
}

// GetPastoralJournal proxies repo.GetPastoralJournal.
func (eventRepoShim) GetPastoralJournal(ctx context.Context, db *gorm.DB, id string) (*domain.PastoralJournal, error) {
	return repo.GetPastoralJournal(ctx, db, id)
}

// GetConversation proxies repo.GetConversation.
func (eventRepoShim) GetConversation(ctx context.Context, db *gorm.DB, id string) (*domain.Conversation, error) {
	return repo.GetConversation(ctx, db, id)
}

// ListConversationMembers proxies repo.ListConversationMembers.
func (eventRepoShim) ListConversationMembers(ctx context.Context, db *gorm.DB, conversationID string) ([]domain.ConversationMember, error) {
	return repo.ListConversationMembers(ctx, db, conversationID)
}

// tokenRepoShim adapts the repository free functions to services.TokenStore,
// services.TokenRevoker, and services.DeviceStore.
type tokenRepoShim struct{}

// ListEligibleTokens proxies repo.ListEligibleTokens.
func (tokenRepoShim) ListEligibleTokens(ctx context.Context, db *gorm.DB, tenantID string, userIDs []string, freshness time.Duration) ([]domain.DeviceToken, error) {
	return repo.ListEligibleTokens(ctx, db, tenantID, userIDs, freshness)
}

// RevokeToken proxies repo.RevokeToken.
func (tokenRepoShim) RevokeToken(ctx context.Context, db *gorm.DB, token string) error {
	return repo.RevokeToken(ctx, db, token)
}

// UpsertDeviceToken proxies repo.UpsertDeviceToken.
func (tokenRepoShim) UpsertDeviceToken(ctx context.Context, db *gorm.DB, tenantID, userID, token string, platform domain.Platform) (*domain.DeviceToken, error) {
	return repo.UpsertDeviceToken(ctx, db, tenantID, userID, token, platform)
}

// auditRepoShim adapts the repository free functions to services.AuditStore.
type auditRepoShim struct{}

// InsertAuditEntry proxies repo.InsertAuditEntry.
func (auditRepoShim) InsertAuditEntry(ctx context.Context, db *gorm.DB, e *domain.AuditLogEntry) error {
	return repo.InsertAuditEntry(ctx, db, e)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), the edge rate
// limiter, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned, authenticated API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII/token scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Response compression
//  7. Metrics
//  8. CORS and Security headers
//  9. Auth + edge rate limiter (API group only, limiter keyed by tenant)
func RegisterRoutes(r *gin.Engine, db *gorm.DB, gw *push.Client, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key", // project-specific sensitive header example
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Compress responses for clients that ask for it
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (dev/staging only)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/gateway
	resolver := services.NewRecipientResolver(db, membershipRepoShim{})
	limiter := services.NewTenantRateLimiter(cfg.RateWindow, cfg.RateMaxCalls)
	content := services.NewContentBuilder(cfg.DefaultLocale)
	dispatcher := services.NewBatchDispatcher(db, gw, tokenRepoShim{}, cfg.Push.BatchSize)
	audit := services.NewAuditLogger(db, auditRepoShim{})

	notifySvc := &services.NotificationService{
		DB:             db,
		Events:         eventRepoShim{},
		Tokens:         tokenRepoShim{},
		Resolver:       resolver,
		Limiter:        limiter,
		Content:        content,
		Dispatcher:     dispatcher,
		Audit:          audit,
		TokenFreshness: cfg.TokenFreshness,
	}
	deviceSvc := services.NewDeviceService(db, tokenRepoShim{})
	h := handlers.New(notifySvc, deviceSvc)

	// Authenticated API. The edge limiter runs after Auth so buckets key on
	// the caller's tenant scope rather than the client IP alone.
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	api.Use(middleware.Auth(middleware.AuthOptions{
		ServiceToken: cfg.Auth.ServiceToken,
		JWTSecret:    cfg.Auth.JWTSecret,
	}))
	rl := middleware.NewRateLimiter(cfg.EdgeRateRPS, cfg.EdgeRateBurst, middleware.KeyByTenantOrIP())
	api.Use(rl.Handler())
	{
		// Domain events
		api.POST("/events/message-sent", h.MessageSent)
		api.POST("/events/prayer-answered", h.PrayerAnswered)
		api.POST("/events/journal-submitted", h.JournalSubmitted)

		// Direct dispatch
		api.POST("/notifications/dispatch", h.Dispatch)

		// Device registration
		api.POST("/devices", h.RegisterDevice)
		api.DELETE("/devices/:token", h.RevokeDevice)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
