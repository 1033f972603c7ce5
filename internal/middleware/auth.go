// internal/middleware/auth.go
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/sales-ledger/internal/i18n"
	"github.com/javajoker/sales-ledger/internal/models"
	"github.com/javajoker/sales-ledger/internal/services"
	"github.com/javajoker/sales-ledger/internal/utils"
)

// SessionCookie carries the access token for browser clients.
const SessionCookie = "ledger_session"

func AuthRequired(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		token, ok := extractToken(c)
		if !ok {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			c.Abort()
			return
		}

		claims, err := authService.Authenticate(token)
		if err != nil {
			key := i18n.KeyAuthInvalidToken
			if errors.Is(err, services.ErrTokenRevoked) {
				key = i18n.KeyAuthTokenRevoked
			}
			utils.UnauthorizedResponse(c, i18n.T(lang, key))
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

func OptionalAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractToken(c)
		if !ok {
			c.Next()
			return
		}

		// Set user info in context if token is valid
		if claims, err := authService.Authenticate(token); err == nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}

// extractToken reads "Bearer <token>" first and falls back to the session cookie.
func extractToken(c *gin.Context) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", false
		}
		return strings.TrimSpace(parts[1]), true
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

func setClaims(c *gin.Context, claims *utils.JWTClaims) {
	c.Set("user_id", claims.UserID)
	c.Set("username", claims.Username)
	c.Set("token_id", claims.ID)
	c.Set("claims", claims)
}

// ClaimsFromContext returns the claims stored by AuthRequired or OptionalAuth.
func ClaimsFromContext(c *gin.Context) (*utils.JWTClaims, bool) {
	value, exists := c.Get("claims")
	if !exists {
		return nil, false
	}
	claims, ok := value.(*utils.JWTClaims)
	return claims, ok
}

func AdminRequired(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		userID, ok := utils.GetUserIDFromContext(c)
		if !ok {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			c.Abort()
			return
		}

		user, err := authService.GetUserByID(c.Request.Context(), userID)
		if err != nil || user.Role != models.UserRoleAdmin {
			utils.AbortWithError(c, http.StatusForbidden, utils.CodeForbidden, i18n.T(lang, i18n.KeyAuthForbidden))
			return
		}
		c.Next()
	}
}
