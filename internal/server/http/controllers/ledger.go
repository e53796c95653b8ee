package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rahulshendre/secure-logchain/internal/ledger"
	"github.com/rahulshendre/secure-logchain/internal/runtime"
)

// LedgerController exposes the raw ledger capability over HTTP. A logchain
// instance running with a local store serves these endpoints so other
// instances can point LOGCHAIN_LEDGER_URL at it and use it as their remote
// ledger.
type LedgerController struct {
	rt *runtime.Runtime
}

// NewLedgerController creates a new ledger controller.
func NewLedgerController(rt *runtime.Runtime) *LedgerController {
	return &LedgerController{rt: rt}
}

// RegisterRoutes registers ledger routes with the given mux.
func (c *LedgerController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/ledger/estimate", c.handleEstimate)
	mux.HandleFunc("/v1/ledger/append", c.handleAppend)
	mux.HandleFunc("/v1/ledger/entry", c.handleEntry)
	mux.HandleFunc("/v1/ledger/range", c.handleRange)
}

type messageReq struct {
	Message string `json:"message"`
}

// handleEstimate prices an append without issuing it.
func (c *LedgerController) handleEstimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req messageReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	cost, err := c.rt.Ledger().EstimateAppendCost(r.Context(), req.Message)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Cost estimation failed")
		return
	}
	writeJSON(w, map[string]uint64{"cost": uint64(cost)})
}

// handleAppend writes one message to the ledger.
func (c *LedgerController) handleAppend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req messageReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	receipt, err := c.rt.Ledger().Append(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, ledger.ErrRejected) {
			writeError(w, http.StatusUnprocessableEntity, "Append rejected")
			return
		}
		writeError(w, http.StatusInternalServerError, "Append failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, receipt)
}

// handleEntry fetches one entry by index. A missing index is 404 so remote
// clients can distinguish absence from failure.
func (c *LedgerController) handleEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	index, ok := parseIndex(r.URL.Query().Get("index"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Missing or invalid index")
		return
	}
	entry, err := c.rt.Ledger().ReadByIndex(r.Context(), index)
	if err != nil {
		if errors.Is(err, ledger.ErrAbsent) {
			writeError(w, http.StatusNotFound, "No entry at index")
			return
		}
		writeError(w, http.StatusInternalServerError, "Read failed")
		return
	}
	writeJSON(w, entry)
}

// handleRange serves one bulk read over [from, to], ascending.
func (c *LedgerController) handleRange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	from, okFrom := parseIndex(r.URL.Query().Get("from"))
	to, okTo := parseIndex(r.URL.Query().Get("to"))
	if !okFrom || !okTo || from > to {
		writeError(w, http.StatusBadRequest, "Missing or invalid range")
		return
	}
	br, ok := c.rt.Ledger().(ledger.BulkReader)
	if !ok {
		writeError(w, http.StatusNotImplemented, "Bulk reads not supported")
		return
	}
	entries, err := br.ReadRange(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Range read failed")
		return
	}
	if entries == nil {
		entries = []ledger.Entry{}
	}
	writeJSON(w, map[string]any{"entries": entries})
}
