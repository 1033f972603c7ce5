// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/sales-ledger/internal/config"
	"github.com/javajoker/sales-ledger/internal/database"
	"github.com/javajoker/sales-ledger/internal/i18n"
	"github.com/javajoker/sales-ledger/internal/router"
	"github.com/javajoker/sales-ledger/internal/services"
	"github.com/javajoker/sales-ledger/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log := utils.NewLogger(cfg.Log, cfg.Environment)
	// Packages that log through the standard logger follow the same setup.
	logrus.SetLevel(log.GetLevel())
	logrus.SetFormatter(log.Formatter)

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db)

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}
	if err := database.SeedInitialData(db, cfg.Auth); err != nil {
		log.WithError(err).Fatal("Failed to seed initial data")
	}

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
		log.WithError(err).Fatal("Failed to initialize i18n")
	}

	backend, err := newCollectionBackend(cfg, db)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize collection store")
	}

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.Initialize(db, cfg, backend, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"addr":    srv.Addr,
			"store":   cfg.Store.Backend,
			"db":      cfg.Database.Driver,
			"locale":  cfg.I18n.DefaultLocale,
			"metrics": cfg.Metrics.Enabled,
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server exited")
}

func newCollectionBackend(cfg *config.Config, db *gorm.DB) (services.CollectionBackend, error) {
	switch cfg.Store.Backend {
	case "s3":
		return services.NewS3Backend(cfg.AWS)
	case "memory":
		return services.NewMemoryBackend(), nil
	default:
		return services.NewDatabaseBackend(db), nil
	}
}
