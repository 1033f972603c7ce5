// internal/middleware/logging.go
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/sales-ledger/internal/models"
)

// Context keys a handler sets so the audit trail can record the outcome.
const (
	AuditCollectionKey = "audit_collection"
	AuditVersionKey    = "audit_version"
	AuditItemCountKey  = "audit_item_count"
)

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog) error
}

func AuditLogMiddleware(recorder AuditRecorder, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Reads are not audited
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		c.Next()

		username, _ := c.Get("username")
		name, _ := username.(string)
		if name == "" {
			name = "anonymous"
		}

		entry := &models.AuditLog{
			Username:   name,
			Action:     c.Request.Method + " " + c.FullPath(),
			Collection: c.GetString(AuditCollectionKey),
			Status:     c.Writer.Status(),
			Version:    c.GetInt64(AuditVersionKey),
			ItemCount:  c.GetInt(AuditItemCountKey),
			IPAddress:  c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		}
		if entry.Collection == "" {
			entry.Collection = c.Param("collection")
		}

		if err := recorder.Record(c.Request.Context(), entry); err != nil {
			log.WithError(err).WithField("action", entry.Action).Error("Failed to create audit log")
		}
	}
}

func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := logrus.Fields{
			"method":     c.Request.Method,
			"path":       path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).Milliseconds(),
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		}
		if username, ok := c.Get("username"); ok {
			fields["user"] = username
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		entry := log.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("Request processed")
		case status >= http.StatusBadRequest:
			entry.Warn("Request processed")
		default:
			entry.Info("Request processed")
		}
	}
}
