package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/sparko/internal/model"
	"github.com/sakif/sparko/internal/service"
)

// ProfileHandler serves the per-role profiles of the signed-in user and the
// active-role switch.
type ProfileHandler struct {
	profiles *service.ProfileService
	logger   *slog.Logger
}

func NewProfileHandler(profiles *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

type switchRoleRequest struct {
	Role string `json:"role"`
}

type switchRoleResponse struct {
	User    *model.User    `json:"user"`
	Profile *model.Profile `json:"profile"`
	Message string         `json:"message"`
}

// HandleList returns every role profile the user holds.
//
// HTTP: GET /api/profiles
func (h *ProfileHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	profiles, err := h.profiles.ListAll(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profiles": profiles})
}

// HandleGet returns the profile for {role}, creating an empty one the first
// time it is asked for.
//
// HTTP: GET /api/profiles/{role}
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	role, err := model.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		writeError(w, err)
		return
	}

	p, err := h.profiles.Get(r.Context(), userID, role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleUpdate replaces the profile for {role} with the request body.
//
// HTTP: PUT /api/profiles/{role}
// REQUEST BODY: a profile; only the detail record of {role} may be set.
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	role, err := model.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		writeError(w, err)
		return
	}

	var in model.Profile
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.profiles.Update(r.Context(), userID, role, &in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleCompletion scores the profile for {role} and lists what's missing.
//
// HTTP: GET /api/profiles/{role}/completion
func (h *ProfileHandler) HandleCompletion(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	role, err := model.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := h.profiles.Completion(r.Context(), userID, role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleSwitchRole changes the user's active role.
//
// HTTP: POST /api/switch-role
// REQUEST BODY: {"role": "partner"}
func (h *ProfileHandler) HandleSwitchRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var in switchRoleRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	role, err := model.ParseRole(in.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	user, p, err := h.profiles.SwitchRole(r.Context(), userID, role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, switchRoleResponse{
		User:    user,
		Profile: p,
		Message: "Switched to " + string(role),
	})
}
