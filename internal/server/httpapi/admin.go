package httpapi

import (
	"net/http"

	"github.com/photobridge/authserver/internal/server/auth"
	"github.com/photobridge/authserver/internal/server/services"
)

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request, _ *auth.Claims) {
	users, err := h.admin.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]adminUserOut, 0, len(users))
	for _, u := range users {
		out = append(out, toAdminUserOut(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request, _ *auth.Claims) {
	var req adminUserCreate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	user, err := h.admin.CreateUser(r.Context(), &services.UserInput{
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		IsActive:    active,
		Roles:       req.Roles,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.logger.Info(r.Context(), "user created", "user_id", user.ID, "username", user.Username)
	writeJSON(w, http.StatusCreated, toAdminUserOut(user))
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	id := r.PathValue("id")
	var req adminUserUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	// Absent fields keep their stored values.
	current, err := h.admin.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	in := &services.UserInput{
		Password:    req.Password,
		DisplayName: current.DisplayName,
		IsActive:    current.IsActive,
		Roles:       current.Roles,
	}
	if req.DisplayName != "" {
		in.DisplayName = req.DisplayName
	}
	if req.IsActive != nil {
		in.IsActive = *req.IsActive
	}
	if req.Roles != nil {
		in.Roles = req.Roles
	}

	user, err := h.admin.UpdateUser(r.Context(), claims.Subject, id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAdminUserOut(user))
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	id := r.PathValue("id")
	if err := h.admin.DeleteUser(r.Context(), claims.Subject, id); err != nil {
		writeServiceError(w, err)
		return
	}
	h.logger.Info(r.Context(), "user deleted", "user_id", id)
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok", Message: "user deleted"})
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request, _ *auth.Claims) {
	setting, err := h.admin.GetSettings(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingOut(setting))
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request, _ *auth.Claims) {
	var req settingUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	setting, err := h.admin.UpdateSettings(r.Context(), r.PathValue("id"), &services.SettingsInput{
		Status:      req.Status,
		TrialEndsAt: req.TrialEndsAt,
		MaxDevices:  req.MaxDevices,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingOut(setting))
}

func (h *Handler) handleLogoutAll(w http.ResponseWriter, r *http.Request, _ *auth.Claims) {
	id := r.PathValue("id")
	if _, err := h.admin.GetUser(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.sessions.LogoutAll(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	h.logger.Info(r.Context(), "sessions revoked", "user_id", id)
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok", Message: "all sessions revoked"})
}
