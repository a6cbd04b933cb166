package middleware

import (
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// StructuredLogging logs one line per request through zap.
func StructuredLogging(logger *zap.Logger, skipPaths ...string) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Output:    io.Discard,
		SkipPaths: skipPaths,
		Formatter: func(param gin.LogFormatterParams) string {
			requestID, _ := param.Keys[RequestIDKey].(string)

			level := zapcore.InfoLevel
			switch {
			case param.StatusCode >= 500:
				level = zapcore.ErrorLevel
			case param.StatusCode >= 400:
				level = zapcore.WarnLevel
			}

			logger.Log(level, "HTTP Request",
				zap.String("request_id", requestID),
				zap.String("method", param.Method),
				zap.String("path", param.Path),
				zap.Int("status", param.StatusCode),
				zap.Int64("latency_ms", param.Latency.Milliseconds()),
				zap.String("client_ip", param.ClientIP),
				zap.String("user_agent", param.Request.UserAgent()),
				zap.String("error", param.ErrorMessage),
			)

			return ""
		},
	})
}
