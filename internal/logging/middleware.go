package logging

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/axgrid/aftercare"
)

const RequestIDHeader = "X-Request-Id"

// RequestID берёт id из заголовка или генерирует новый и кладёт его в контекст запроса.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(aftercare.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// AccessLog пишет одну строку на запрос. Пользователь читается после c.Next,
// поэтому middleware можно ставить раньше авторизации.
func AccessLog(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("error", c.Errors.String())
		}
		ctx := c.Request.Context()
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("request_id", aftercare.RequestIDFrom(ctx)).
			Str("actor", c.GetString(ActorKey)).
			Msg("http request")
	}
}

// ActorKey — ключ gin.Context, под которым auth-middleware оставляет пользователя для лога.
const ActorKey = "actor"
