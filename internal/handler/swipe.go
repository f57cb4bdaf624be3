package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/sparko/internal/service"
)

// SwipeHandler records swipes.
type SwipeHandler struct {
	swipes *service.SwipeService
	logger *slog.Logger
}

func NewSwipeHandler(swipes *service.SwipeService, logger *slog.Logger) *SwipeHandler {
	return &SwipeHandler{swipes: swipes, logger: logger}
}

// swipeRequest accepts the target under either name.
type swipeRequest struct {
	UserID       int64  `json:"user_id"`
	TargetUserID int64  `json:"target_user_id"`
	Action       string `json:"action"`
}

func (req swipeRequest) target() int64 {
	if req.TargetUserID != 0 {
		return req.TargetUserID
	}
	return req.UserID
}

// HandleSwipe records one like, skip or super_spark.
//
// HTTP: POST /api/swipe
// REQUEST BODY: {"target_user_id": 42, "action": "like"}
func (h *SwipeHandler) HandleSwipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var in swipeRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.swipes.Swipe(r.Context(), userID, in.target(), in.Action)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
