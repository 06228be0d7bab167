package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/catalog/pkg/ctx"
)

// Pinger is anything that can confirm its backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	store Pinger
}

func NewHealthController(store Pinger) *HealthController {
	return &HealthController{store: store}
}

// Show answers 200 {"status":"ok"} when the store responds within two
// seconds and 503 otherwise.
func (hc *HealthController) Show(c *ctx.Context) {
	pingCtx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	if err := hc.store.Ping(pingCtx); err != nil {
		c.Logger().Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": "down"})
		return
	}
	c.JSON(http.StatusOK, map[string]string{"status": "ok", "database": "up"})
}
