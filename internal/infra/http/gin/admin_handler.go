package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"parkshare/internal/app/booking"
	domainuser "parkshare/internal/domain/user"
)

type AdminHTTP interface {
	Sweep(c *gin.Context)
}

// AdminHandler exposes the manual completion sweep. The background sweeper
// covers normal operation; the endpoint exists for catch-up after downtime.
type AdminHandler struct {
	Service *booking.Service
	Logger  *slog.Logger
}

func (h AdminHandler) Sweep(c *gin.Context) {
	if _, ok := requireActor(c, domainuser.RoleAdmin); !ok {
		return
	}
	now := time.Now()
	count, err := h.Service.SweepCompletions(c.Request.Context(), now)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("manual sweep failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sweep failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transitioned": count, "swept_at": now.UTC()})
}

var _ AdminHTTP = AdminHandler{}
