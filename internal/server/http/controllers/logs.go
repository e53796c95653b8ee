package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rahulshendre/secure-logchain/internal/ledger"
	"github.com/rahulshendre/secure-logchain/internal/runtime"
	logsvc "github.com/rahulshendre/secure-logchain/internal/services/logs"
)

// LogsController handles submission and retrieval endpoints.
type LogsController struct {
	rt   *runtime.Runtime
	logs *logsvc.Service
}

// NewLogsController creates a new logs controller.
func NewLogsController(rt *runtime.Runtime, logs *logsvc.Service) *LogsController {
	return &LogsController{rt: rt, logs: logs}
}

// RegisterRoutes registers log routes with the given mux.
func (c *LogsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/submit", c.handleSubmit)
	mux.HandleFunc("/v1/logs/latest", c.handleLatest)
	mux.HandleFunc("/v1/ingest", c.handleIngest)
}

type submitReq struct {
	Message string `json:"message"`
}

// handleSubmit appends one message directly, skipping the pipeline's queue
// and rate gate.
func (c *LogsController) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req submitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	receipt, err := c.logs.Submit(r.Context(), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, logsvc.ErrMalformedInput):
			writeError(w, http.StatusBadRequest, "Message must be non-empty")
		case errors.Is(err, ledger.ErrRejected):
			writeError(w, http.StatusUnprocessableEntity, "Ledger rejected the message")
		default:
			writeError(w, http.StatusBadGateway, "Ledger unavailable")
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, receipt)
}

// handleLatest returns the most recent entries, newest first.
func (c *LogsController) handleLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	n := parseLimit(r.URL.Query().Get("n"))
	tail, err := c.logs.Latest(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to retrieve latest entries")
		return
	}
	writeJSON(w, tail)
}

// handleIngest streams the request body into the pipeline: each chunk is
// split into lines, queued, and dispatched on the pipeline's own schedule.
// The response only confirms intake, not eventual appends.
func (c *LogsController) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	p := c.rt.Pipeline()
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Body.Read(buf)
		if n > 0 {
			p.Feed(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "Failed to read request body")
			return
		}
	}
	p.FlushPartial()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]int{"queued": p.QueueLen()})
}
