package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()

		rqID := uuid.NewString()
		c.Set("rqID", rqID)

		slog.Info(
			"start request",
			slog.String("rqID", rqID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
		)

		c.Next()

		slog.Info(
			"request finished",
			slog.String("rqID", rqID),
			slog.Int("status", c.Writer.Status()),
			slog.String("request duration", fmt.Sprintf("%.2fs", time.Since(now).Seconds())),
		)
	}
}
