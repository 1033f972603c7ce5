// internal/router/router.go
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/sales-ledger/internal/config"
	"github.com/javajoker/sales-ledger/internal/database"
	"github.com/javajoker/sales-ledger/internal/handlers"
	"github.com/javajoker/sales-ledger/internal/metrics"
	"github.com/javajoker/sales-ledger/internal/middleware"
	"github.com/javajoker/sales-ledger/internal/services"
	"github.com/javajoker/sales-ledger/internal/utils"
)

const serviceName = "sales-ledger"

func Initialize(db *gorm.DB, cfg *config.Config, backend services.CollectionBackend, log *logrus.Logger) *gin.Engine {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry, cfg.Metrics.Namespace, serviceName)
	storeMetrics := metrics.NewStoreMetrics(registry, cfg.Metrics.Namespace)

	// Initialize services
	tokens := utils.NewTokenIssuer(
		cfg.JWT.SecretKey,
		cfg.JWT.Issuer,
		time.Duration(cfg.JWT.AccessTokenTTL)*time.Hour,
	)
	authService := services.NewAuthService(db, tokens, storeMetrics)
	collectionService := services.NewCollectionService(backend, storeMetrics, log)
	auditService := services.NewAuditService(db)
	userService := services.NewUserService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.IsProduction())
	collectionHandler := handlers.NewCollectionHandler(collectionService)
	auditHandler := handlers.NewAuditHandler(auditService)
	userHandler := handlers.NewUserHandler(userService)
	adminHandler := handlers.NewAdminHandler(userService, collectionService)

	generalLimiter := middleware.NewGeneralRateLimiter()
	authLimiter := middleware.NewAuthRateLimiter()
	storeLimiter := middleware.NewStoreRateLimiter()

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.I18nMiddleware())
	if cfg.Metrics.Enabled {
		r.Use(httpMetrics.Middleware())
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.HealthCheck(ctx, db); err != nil {
			log.WithError(err).Warn("Health check failed")
			utils.ErrorResponse(c, http.StatusServiceUnavailable, utils.CodeServiceDegraded, "database unreachable", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"store":   cfg.Store.Backend,
			"version": "1.0.0",
		})
	})

	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(metrics.Handler(registry)))
	}

	// Collection store routes. A ledger operation is a burst of reads and
	// writes, so these sit behind a per-user limiter instead of the per-IP one.
	store := r.Group("/api/store")
	store.Use(middleware.AuthRequired(authService), storeLimiter.Middleware())
	{
		store.GET("/:collection", collectionHandler.Get)

		writes := store.Group("")
		writes.Use(middleware.AuditLogMiddleware(auditService, log))
		{
			writes.PUT("/:collection", collectionHandler.Replace)
			writes.POST("/:collection", collectionHandler.Replace)
		}
	}

	api := r.Group("/api")
	api.Use(generalLimiter.Middleware())
	{
		// Authentication routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authLimiter.Middleware(), middleware.AuditLogMiddleware(auditService, log), authHandler.Login)
			auth.GET("/check", middleware.OptionalAuth(authService), authHandler.Check)
			auth.POST("/logout", middleware.OptionalAuth(authService), authHandler.Logout)
		}

		// Own account
		users := api.Group("/users")
		users.Use(middleware.AuthRequired(authService))
		{
			users.GET("/me", userHandler.Me)
			users.PUT("/me/password", middleware.AuditLogMiddleware(auditService, log), userHandler.ChangePassword)
		}

		// Audit trail (admin only)
		audit := api.Group("/audit")
		audit.Use(middleware.AuthRequired(authService), middleware.AdminRequired(authService))
		{
			audit.GET("", auditHandler.List)
		}

		// Account administration
		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(authService), middleware.AdminRequired(authService))
		{
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/users", adminHandler.GetUsers)

			writes := admin.Group("")
			writes.Use(middleware.AuditLogMiddleware(auditService, log))
			{
				writes.POST("/users", adminHandler.CreateUser)
				writes.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
			}
		}
	}

	return r
}
