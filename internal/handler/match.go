package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/sparko/internal/service"
)

// MatchHandler serves the user's matches and the chat unlock action.
type MatchHandler struct {
	matches *service.MatchService
	logger  *slog.Logger
}

func NewMatchHandler(matches *service.MatchService, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{matches: matches, logger: logger}
}

// HandleList returns the matches formed in the user's current role.
//
// HTTP: GET /api/matches
func (h *MatchHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	list, err := h.matches.ListMatches(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleGet returns one match the user takes part in.
//
// HTTP: GET /api/matches/{id}
func (h *MatchHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	v, err := h.matches.GetMatch(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleUnlock opens chat on a match.
//
// HTTP: POST /api/matches/{id}/unlock
func (h *MatchHandler) HandleUnlock(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	m, err := h.matches.UnlockChat(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"matchId":      m.ID,
		"chatUnlocked": m.ChatUnlocked,
	})
}
