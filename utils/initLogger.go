package utils

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ロガーを初期化。LOG_MODE=developmentで開発用の出力に切り替え。
func InitLogger() (*zap.Logger, error) {
	if os.Getenv("LOG_MODE") == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Gin のミドルウェア用関数で、リクエストのログを取得します。
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
		)
	}
}
