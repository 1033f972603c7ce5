// internal/middleware/i18n.go
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/sales-ledger/internal/i18n"
)

func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Handles tags like "pt-BR,pt;q=0.9,en;q=0.8"
		lang := i18n.Normalize(c.GetHeader("Accept-Language"))
		if q := c.Query("lang"); q != "" {
			lang = i18n.Normalize(q)
		}

		c.Set("lang", lang)
		c.Next()
	}
}
