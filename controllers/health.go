package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"ewaste-pickup/middleware"
)

// HealthController reports whether the store answers.
type HealthController struct {
	Store HealthChecker
}

func NewHealthController(store HealthChecker) *HealthController {
	return &HealthController{Store: store}
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := hc.Store.Ping(ctx); err != nil {
		middleware.LoggerFromContext(r.Context()).Warn("health check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("UNAVAILABLE"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
