package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/sparko/internal/service"
)

// QuotaHandler reports and refreshes the weekly super spark allowance.
type QuotaHandler struct {
	quota  *service.QuotaService
	logger *slog.Logger
}

func NewQuotaHandler(quota *service.QuotaService, logger *slog.Logger) *QuotaHandler {
	return &QuotaHandler{quota: quota, logger: logger}
}

// HandleStatus returns the current super spark count and the next refill.
//
// HTTP: GET /api/super-spark
func (h *QuotaHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	st, err := h.quota.Status(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleReset refills the allowance if a full week has passed.
//
// HTTP: POST /api/super-spark/reset
func (h *QuotaHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	st, err := h.quota.Reset(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
