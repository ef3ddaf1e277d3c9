// internal/middleware/logging.go
package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/kpay-backend/internal/models"
	"github.com/javajoker/kpay-backend/internal/utils"
)

// redactedFields never reach the audit log.
var redactedFields = []string{"api_key", "password"}

// AuditLogMiddleware stores every mutating request in audit_logs and logs
// every request. The audit row is written asynchronously.
func AuditLogMiddleware(db *gorm.DB, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		mutating := c.Request.Method != "GET" && c.Request.Method != "OPTIONS" && c.Request.Method != "HEAD"

		var requestBody []byte
		if mutating && c.Request.Body != nil {
			requestBody, _ = io.ReadAll(io.LimitReader(c.Request.Body, 64<<10))
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		c.Next()
		duration := time.Since(start)

		actor, _ := utils.GetCallerFromContext(c)

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   duration.Milliseconds(),
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
			"actor":      actor,
		}).Info("Request processed")

		if !mutating {
			return
		}

		var requestData map[string]interface{}
		if len(requestBody) > 0 {
			json.Unmarshal(requestBody, &requestData)
		}
		for _, field := range redactedFields {
			if _, ok := requestData[field]; ok {
				requestData[field] = "[redacted]"
			}
		}

		resource, resourceID := extractResource(c.Request.URL.Path)
		auditLog := &models.AuditLog{
			Actor:      actor,
			Action:     c.Request.Method + " " + c.FullPath(),
			Resource:   resource,
			ResourceID: resourceID,
			Request:    models.JSONB(requestData),
			Status:     c.Writer.Status(),
			IPAddress:  c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		}

		// Save audit log asynchronously
		go func() {
			if err := db.Create(auditLog).Error; err != nil {
				logger.WithError(err).Error("Failed to create audit log")
			}
		}()
	}
}

// extractResource returns the first path segment after the version prefix and
// the segment following it, e.g. "/v1/nfts/3/buy" -> ("nfts", "3").
func extractResource(path string) (string, string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, part := range parts {
		if part == "v1" {
			parts = parts[i+1:]
			break
		}
	}
	switch len(parts) {
	case 0:
		return "unknown", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[1]
	}
}
