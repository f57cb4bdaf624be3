package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/sparko/internal/service"
)

// DiscoveryHandler serves the next profiles to swipe on.
type DiscoveryHandler struct {
	discovery *service.DiscoveryService
	logger    *slog.Logger
}

func NewDiscoveryHandler(discovery *service.DiscoveryService, logger *slog.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{discovery: discovery, logger: logger}
}

// HandleDiscover returns up to one page of candidates. A user whose active
// profile is incomplete gets 200 with an empty list and profileIncomplete.
//
// HTTP: GET /api/discover
func (h *DiscoveryHandler) HandleDiscover(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	res, err := h.discovery.Discover(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
