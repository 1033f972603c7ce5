// internal/handlers/audit.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/sales-ledger/internal/services"
	"github.com/javajoker/sales-ledger/internal/utils"
)

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// GET /api/audit?collection=sales&page=1&limit=20
func (h *AuditHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	logs, total, err := h.auditService.List(c.Request.Context(), params)
	if err != nil {
		logrus.WithError(err).Error("Failed to list audit logs")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(logs, total, params))
}
