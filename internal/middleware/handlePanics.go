package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// HandlePanics converts a recovered panic into the uniform JSON error shape.
// Only the message string leaves the process; the stack stays in the log.
func HandlePanics() gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		msg := "internal server error"
		if err, ok := recovered.(error); ok {
			msg = err.Error()
		}

		log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
