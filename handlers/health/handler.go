package health

import (
	"context"
	"net/http"
	"time"

	"github.com/Boltflix/My-Dotts-Backend/utils"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	db      Pinger
	timeout time.Duration
}

// New builds the health handler. A nil db reports liveness only.
func New(db Pinger, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Handler{db: db, timeout: timeout}
}

// HandleHealth reports whether the service and its database are reachable.
// @Summary Health check
// @Description Liveness probe, also pings the database when one is configured
// @Tags health
// @Produce json
// @Success 200 {object} utils.Response
// @Failure 503 {object} utils.Response "Database unreachable"
// @Router /health [get]
func (h *Handler) HandleHealth(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			utils.LogError(err, "Database ping failed in HandleHealth")
			utils.SendError(c, http.StatusServiceUnavailable, "Database unreachable")
			return
		}
	}
	utils.SendSuccess(c, http.StatusOK, "Service healthy", gin.H{
		"status": "ok",
	})
}
