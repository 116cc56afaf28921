// Package health — проверки живости для балансировщика и мониторинга.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/axgrid/aftercare"
)

// Pinger — всё, что нужно от хранилища для heartCheck.
type Pinger func(ctx context.Context) error

type Controller struct {
	ping    Pinger
	timeout time.Duration
	log     zerolog.Logger
}

func NewController(ping Pinger, log zerolog.Logger) *Controller {
	return &Controller{ping: ping, timeout: 2 * time.Second, log: log.With().Str("component", "health").Logger()}
}

func (h *Controller) Register(r gin.IRouter) {
	r.GET("/ping-assessment", h.pingAssessment)
	r.GET("/heartCheck", h.heartCheck)
}

func (h *Controller) pingAssessment(c *gin.Context) {
	c.JSON(http.StatusOK, aftercare.Ok("pong"))
}

func (h *Controller) heartCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()
	if err := h.ping(ctx); err != nil {
		h.log.Error().Err(err).Msg("database unreachable")
		c.JSON(http.StatusServiceUnavailable, aftercare.Fail[aftercare.Void]("database unreachable"))
		return
	}
	c.JSON(http.StatusOK, aftercare.Ok("alive"))
}
