// internal/handlers/admin.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/sales-ledger/internal/i18n"
	"github.com/javajoker/sales-ledger/internal/models"
	"github.com/javajoker/sales-ledger/internal/services"
	"github.com/javajoker/sales-ledger/internal/utils"
)

type AdminHandler struct {
	userService       *services.UserService
	collectionService *services.CollectionService
}

type collectionStats struct {
	Name      models.CollectionName `json:"name"`
	Version   models.Version        `json:"version"`
	UpdatedBy string                `json:"updated_by,omitempty"`
	UpdatedAt *time.Time            `json:"updated_at,omitempty"`
}

func NewAdminHandler(userService *services.UserService, collectionService *services.CollectionService) *AdminHandler {
	return &AdminHandler{
		userService:       userService,
		collectionService: collectionService,
	}
}

// GET /api/admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.userService.Stats(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to count users")
		utils.InternalErrorResponse(c, "")
		return
	}

	collections := make([]collectionStats, 0, len(models.CollectionNames()))
	for _, name := range models.CollectionNames() {
		doc, err := h.collectionService.Get(ctx, string(name))
		if err != nil {
			logrus.WithError(err).WithField("collection", name).Error("Failed to load collection")
			utils.ErrorResponse(c, http.StatusServiceUnavailable, utils.CodeServiceDegraded,
				i18n.T(utils.GetLangFromContext(c), i18n.KeyStoreUnavailable), nil)
			return
		}
		stat := collectionStats{Name: name, Version: doc.Version, UpdatedBy: doc.UpdatedBy}
		if !doc.UpdatedAt.IsZero() {
			updatedAt := doc.UpdatedAt.UTC()
			stat.UpdatedAt = &updatedAt
		}
		collections = append(collections, stat)
	}

	utils.SuccessResponse(c, gin.H{
		"users":       users,
		"collections": collections,
	})
}

// GET /api/admin/users?status=active&page=1&limit=20
func (h *AdminHandler) GetUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	status := models.UserStatus(c.Query("status"))

	users, total, err := h.userService.List(c.Request.Context(), params, status)
	if err != nil {
		logrus.WithError(err).Error("Failed to list users")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(users, total, params))
}

// POST /api/admin/users
func (h *AdminHandler) CreateUser(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), &req)
	switch {
	case errors.Is(err, services.ErrUsernameTaken):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyUserUsernameTaken, req.Username), nil)
		return
	case err != nil:
		logrus.WithError(err).Error("Failed to create user")
		utils.InternalErrorResponse(c, "")
		return
	}

	c.JSON(http.StatusCreated, utils.APIResponse{
		Success: true,
		Data: gin.H{
			"message": i18n.T(lang, i18n.KeyUserCreated, user.Username),
			"user":    user,
		},
	})
}

// PUT /api/admin/users/:id/status
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "id"), nil)
		return
	}

	adminID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	user, err := h.userService.UpdateStatus(c.Request.Context(), adminID, userID, &req)
	switch {
	case errors.Is(err, services.ErrSelfSuspension):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyUserSelfStatus), nil)
		return
	case errors.Is(err, services.ErrUserNotFound):
		utils.NotFoundResponse(c, i18n.KeyUserNotFound)
		return
	case err != nil:
		logrus.WithError(err).Error("Failed to update user status")
		utils.InternalErrorResponse(c, "")
		return
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"status":   user.Status,
		"admin_id": adminID,
	}).Info("User status updated")

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUserStatusUpdated),
		"user":    user,
	})
}
