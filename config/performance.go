package config

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func PerformanceLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)

		zap.S().Infow("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", latency,
		)

		if latency > 200*time.Millisecond {
			zap.S().Warnw("slow request",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"latency", latency,
			)
		}
	}
}
