package utils

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the global zerolog logger. Console output is
// fine for a single-process deployment; swap the writer for plain JSON
// when shipping logs elsewhere.
func InitLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()

	log.Info().Msg("Logger initialized")
}

// GinLogger logs every request through zerolog. 5xx responses log at
// error level, 4xx at warn, the rest at info.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		var event *zerolog.Event
		latency := time.Since(start)
		statusCode := c.Writer.Status()

		switch {
		case statusCode >= 500:
			event = log.Error()
		case statusCode >= 400:
			event = log.Warn()
		default:
			event = log.Info()
		}

		event.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status_code", statusCode).
			Str("client_ip", c.ClientIP()).
			Str("latency", latency.String()).
			Str("user_agent", c.Request.UserAgent()).
			Msg("Request processed")
	}
}

// LogError logs err at error level. A nil err is a no-op.
func LogError(err error, message string) {
	if err != nil {
		log.Error().Err(err).Msg(message)
	}
}

func LogInfo(message string, fields ...map[string]interface{}) {
	event := log.Info()
	for _, f := range fields {
		event = event.Fields(f)
	}
	event.Msg(message)
}

func LogDebug(message string, fields ...map[string]interface{}) {
	event := log.Debug()
	for _, f := range fields {
		event = event.Fields(f)
	}
	event.Msg(message)
}
