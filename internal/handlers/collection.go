// internal/handlers/collection.go
package handlers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/sales-ledger/internal/i18n"
	"github.com/javajoker/sales-ledger/internal/middleware"
	"github.com/javajoker/sales-ledger/internal/models"
	"github.com/javajoker/sales-ledger/internal/services"
	"github.com/javajoker/sales-ledger/internal/utils"
)

type CollectionHandler struct {
	collectionService *services.CollectionService
}

func NewCollectionHandler(collectionService *services.CollectionService) *CollectionHandler {
	return &CollectionHandler{
		collectionService: collectionService,
	}
}

type collectionPayload struct {
	Items     json.RawMessage `json:"items"`
	Version   models.Version  `json:"version"`
	UpdatedBy string          `json:"updated_by,omitempty"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

func newCollectionPayload(doc *models.CollectionDocument) collectionPayload {
	payload := collectionPayload{
		Items:     doc.Items,
		Version:   doc.Version,
		UpdatedBy: doc.UpdatedBy,
	}
	if !doc.UpdatedAt.IsZero() {
		updatedAt := doc.UpdatedAt
		payload.UpdatedAt = &updatedAt
	}
	return payload
}

// GET /api/store/:collection
func (h *CollectionHandler) Get(c *gin.Context) {
	doc, err := h.collectionService.Get(c.Request.Context(), c.Param("collection"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.SuccessResponse(c, newCollectionPayload(doc))
}

// PUT|POST /api/store/:collection
func (h *CollectionHandler) Replace(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.ReplaceCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	actor, _ := utils.GetUsernameFromContext(c)
	result, err := h.collectionService.Replace(c.Request.Context(), c.Param("collection"), &req, actor)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Set(middleware.AuditCollectionKey, string(result.Document.Name))
	c.Set(middleware.AuditVersionKey, int64(result.Document.Version))
	c.Set(middleware.AuditItemCountKey, result.ItemCount)

	utils.SuccessResponseWithMeta(c, newCollectionPayload(result.Document), gin.H{
		"message": i18n.T(lang, i18n.KeyStoreSaved, result.Document.Name),
		"count":   result.ItemCount,
	})
}

func (h *CollectionHandler) handleError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)
	collection := c.Param("collection")

	var conflict *services.VersionConflictError
	var payload *services.PayloadError
	switch {
	case errors.Is(err, services.ErrUnknownCollection):
		utils.NotFoundResponse(c, i18n.KeyStoreUnknownCollection, collection)
	case errors.As(err, &conflict):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyStoreVersionConflict, collection), gin.H{
			"expected": conflict.Expected,
			"current":  conflict.Current,
		})
	case errors.As(err, &payload):
		if len(payload.Fields) > 0 {
			utils.ValidationErrorResponse(c, payload.Fields)
			return
		}
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "items"), payload.Error())
	default:
		logrus.WithError(err).WithField("collection", collection).Error("Collection store failed")
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyStoreUnavailable))
	}
}
