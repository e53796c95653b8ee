package controllers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rahulshendre/secure-logchain/internal/runtime"
	logsvc "github.com/rahulshendre/secure-logchain/internal/services/logs"
)

// GeneralController handles instance-level endpoints: health and metrics.
type GeneralController struct {
	rt   *runtime.Runtime
	logs *logsvc.Service
}

// NewGeneralController creates a new general controller.
func NewGeneralController(rt *runtime.Runtime, logs *logsvc.Service) *GeneralController {
	return &GeneralController{rt: rt, logs: logs}
}

// RegisterRoutes registers health and metrics routes with the given mux.
func (c *GeneralController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/healthz", c.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(c.rt.Registry(), promhttp.HandlerOpts{}))
}

// handleHealth reports whether the instance can serve ledger operations.
func (c *GeneralController) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := c.logs.Health(r.Context()); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{"status": "not_serving"})
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}
