// internal/handlers/user.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/sales-ledger/internal/i18n"
	"github.com/javajoker/sales-ledger/internal/services"
	"github.com/javajoker/sales-ledger/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// currentUserID reads the authenticated user id set by AuthRequired.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

// GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.NotFoundResponse(c, i18n.KeyUserNotFound)
			return
		}
		logrus.WithError(err).Error("Failed to load current user")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user": user,
	})
}

// PUT /api/users/me/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	err := h.userService.ChangePassword(c.Request.Context(), userID, &req)
	switch {
	case errors.Is(err, services.ErrWrongPassword):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyUserWrongPassword), nil)
		return
	case errors.Is(err, services.ErrUserNotFound):
		utils.NotFoundResponse(c, i18n.KeyUserNotFound)
		return
	case err != nil:
		logrus.WithError(err).Error("Failed to change password")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUserPasswordChanged),
	})
}
