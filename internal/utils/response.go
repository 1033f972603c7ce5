// internal/utils/response.go
package utils

import (
	"net/http"

	"github.com/javajoker/sales-ledger/internal/i18n"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternal        = "INTERNAL_ERROR"
	CodeServiceDegraded = "SERVICE_DEGRADED"
)

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func SuccessResponseWithMeta(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func AbortWithError(c *gin.Context, statusCode int, code, message string) {
	ErrorResponse(c, statusCode, code, message, nil)
	c.Abort()
}

func BadRequestResponse(c *gin.Context, message string, details interface{}) {
	lang := GetLangFromContext(c)
	if message == "" {
		message = i18n.T(lang, i18n.KeyValidationInvalid, "request")
	}
	ErrorResponse(c, http.StatusBadRequest, CodeBadRequest, message, details)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	lang := GetLangFromContext(c)
	if message == "" {
		message = i18n.T(lang, i18n.KeyAuthRequired)
	}
	ErrorResponse(c, http.StatusUnauthorized, CodeUnauthorized, message, nil)
}

func NotFoundResponse(c *gin.Context, key string, args ...interface{}) {
	lang := GetLangFromContext(c)
	ErrorResponse(c, http.StatusNotFound, CodeNotFound, i18n.T(lang, key, args...), nil)
}

func ConflictResponse(c *gin.Context, message string, details interface{}) {
	ErrorResponse(c, http.StatusConflict, CodeConflict, message, details)
}

func InternalErrorResponse(c *gin.Context, message string) {
	if message == "" {
		message = i18n.T(GetLangFromContext(c), i18n.KeyInternalError)
	}
	ErrorResponse(c, http.StatusInternalServerError, CodeInternal, message, nil)
}

func ValidationErrorResponse(c *gin.Context, errors []ValidationError) {
	lang := GetLangFromContext(c)
	message := i18n.T(lang, i18n.KeyValidationInvalid, "input")
	ErrorResponse(c, http.StatusBadRequest, CodeValidation, message, errors)
}

func GetLangFromContext(c *gin.Context) string {
	if lang, exists := c.Get("lang"); exists {
		if langStr, ok := lang.(string); ok {
			return langStr
		}
	}
	return i18n.DefaultLanguage()
}

func GetUserIDFromContext(c *gin.Context) (string, bool) {
	return getString(c, "user_id")
}

func GetUsernameFromContext(c *gin.Context) (string, bool) {
	return getString(c, "username")
}

func getString(c *gin.Context, key string) (string, bool) {
	if value, exists := c.Get(key); exists {
		if s, ok := value.(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}
