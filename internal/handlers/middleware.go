// Package handlers wires the HTTP surface of the twin: route
// registration, parameter binding and the response envelope.
package handlers

import (
	"net/http"

	"archive-twin/internal/config"
	"archive-twin/utils"

	"github.com/gin-gonic/gin"
)

// APIKeyAuth guards every data route with the X-API-Key header. With no
// keys configured the middleware fails closed; the dev override must be
// set explicitly.
func APIKeyAuth(cfg config.ServerConfig) gin.HandlerFunc {
	keys := make(map[string]bool, len(cfg.ValidAPIKeys))
	for _, key := range cfg.ValidAPIKeys {
		keys[key] = true
	}

	return func(c *gin.Context) {
		if cfg.SkipAPIKeyCheck {
			c.Next()
			return
		}

		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				utils.CreateErrorResponse(utils.CodeUnauthorized, "API key missing. Please provide X-API-Key header."))
			return
		}
		if len(keys) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				utils.CreateErrorResponse(utils.CodeUnauthorized, "API key validation is not configured"))
			return
		}
		if !keys[apiKey] {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				utils.CreateErrorResponse(utils.CodeUnauthorized, "Invalid API key"))
			return
		}
		c.Next()
	}
}
