package controllers

import (
	"net/http"

	"github.com/rahulshendre/secure-logchain/internal/runtime"
	logsvc "github.com/rahulshendre/secure-logchain/internal/services/logs"
)

// ControllerRegistry manages all HTTP controllers.
type ControllerRegistry struct {
	general *GeneralController
	logs    *LogsController
	ledger  *LedgerController
}

// NewControllerRegistry creates a new controller registry.
func NewControllerRegistry(rt *runtime.Runtime, logs *logsvc.Service) *ControllerRegistry {
	return &ControllerRegistry{
		general: NewGeneralController(rt, logs),
		logs:    NewLogsController(rt, logs),
		ledger:  NewLedgerController(rt),
	}
}

// RegisterAllRoutes registers every controller's routes with the given mux.
func (r *ControllerRegistry) RegisterAllRoutes(mux *http.ServeMux) {
	r.general.RegisterRoutes(mux)
	r.logs.RegisterRoutes(mux)
	r.ledger.RegisterRoutes(mux)
}
