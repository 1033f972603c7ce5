// internal/handlers/auth.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/sales-ledger/internal/i18n"
	"github.com/javajoker/sales-ledger/internal/middleware"
	"github.com/javajoker/sales-ledger/internal/models"
	"github.com/javajoker/sales-ledger/internal/services"
	"github.com/javajoker/sales-ledger/internal/utils"
)

type AuthHandler struct {
	authService  *services.AuthService
	secureCookie bool
}

func NewAuthHandler(authService *services.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		secureCookie: secureCookie,
	}
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	// Recorded by the audit trail for failed attempts too
	c.Set("username", req.Username)

	result, err := h.authService.Login(c.Request.Context(), &req)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
		return
	case errors.Is(err, services.ErrAccountSuspended):
		utils.ErrorResponse(c, http.StatusForbidden, utils.CodeForbidden, i18n.T(lang, i18n.KeyAuthAccountSuspended), nil)
		return
	case err != nil:
		logrus.WithError(err).Error("Login failed")
		utils.InternalErrorResponse(c, "")
		return
	}

	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, result.Token, maxAge, "/", "", h.secureCookie, true)

	utils.SuccessResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyAuthLoginSuccess),
		"user":       result.User,
		"token":      result.Token,
		"token_type": result.TokenType,
		"expires_at": result.ExpiresAt,
	})
}

// GET /api/auth/check
func (h *AuthHandler) Check(c *gin.Context) {
	status := models.AuthStatus{}

	if userID, ok := utils.GetUserIDFromContext(c); ok {
		user, err := h.authService.GetUserByID(c.Request.Context(), userID)
		switch {
		case err == nil && user.Status == models.UserStatusActive:
			info := user.Info()
			status.Authenticated = true
			status.User = &info
		case err != nil && !errors.Is(err, services.ErrUserNotFound):
			logrus.WithError(err).Error("Session check failed")
			utils.InternalErrorResponse(c, "")
			return
		}
	}

	utils.SuccessResponse(c, status)
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	if claims, ok := middleware.ClaimsFromContext(c); ok {
		h.authService.Logout(claims)
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookie, true)

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAuthLogoutSuccess),
	})
}
