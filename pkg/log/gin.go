package log

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// GinMiddleware returns a Gin middleware that reuses the request id set by
// HTTPMiddleware (or generates one), injects a child logger into the request
// context and logs the completed request with the authenticated user, if any.
func GinMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.Writer.Header().Get(headerRequestID)
		if reqID == "" {
			reqID = c.GetHeader(headerRequestID)
		}
		if reqID == "" {
			reqID = uuid.New().String()
			c.Header(headerRequestID, reqID)
		}

		child := logger.With().
			Str(FieldRequestID, reqID).
			Str(FieldMethod, c.Request.Method).
			Str(FieldPath, c.FullPath()).
			Str(FieldClientIP, c.ClientIP()).
			Logger()

		c.Request = c.Request.WithContext(WithLogger(c.Request.Context(), child))

		c.Next()

		evt := child.Info().
			Int(FieldStatus, c.Writer.Status()).
			Float64(FieldLatency, float64(time.Since(start).Milliseconds()))

		// Set by the auth middleware once the bearer token is verified.
		if userID := c.GetString(FieldUserID); userID != "" {
			evt = evt.Str(FieldUserID, userID)
		}

		evt.Msg("api request completed")
	}
}
