package middleware

import (
	"go-payroll/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContextLogger attaches a request-scoped logger carrying the request id to
// the request context. AuthMiddleware later adds user_id to the same logger.
// It also logs one line per finished request.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetString(ContextRequestID)
		if rid == "" {
			rid = c.GetHeader(HeaderRequestID)
		}
		if rid == "" {
			rid = uuid.New().String()
			c.Header(HeaderRequestID, rid)
		}

		reqLogger := logger.With(zap.String("request_id", rid))

		ctx := c.Request.Context()
		ctx = contextutil.WithRequestID(ctx, rid)
		ctx = contextutil.WithLogger(ctx, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
		}
		if uid := c.GetString(ContextUserID); uid != "" {
			fields = append(fields, zap.String("user_id", uid))
		}
		if c.Writer.Status() >= 500 {
			reqLogger.Warn("request failed", fields...)
			return
		}
		reqLogger.Debug("request handled", fields...)
	}
}
