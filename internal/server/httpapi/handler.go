// Package httpapi exposes the session and admin operations over a JSON HTTP
// API and serves the embedded operator console.
package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/photobridge/authserver/internal/common"
	"github.com/photobridge/authserver/internal/logging"
	"github.com/photobridge/authserver/internal/server/auth"
	"github.com/photobridge/authserver/internal/server/models"
	"github.com/photobridge/authserver/internal/server/services"
)

// SessionAPI is the slice of SessionService the transport needs.
type SessionAPI interface {
	Login(ctx context.Context, username, password string) (*services.SessionResult, error)
	Refresh(ctx context.Context, refreshToken string) (*services.SessionResult, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID string) error
}

// AdminAPI is the slice of AdminService the transport needs.
type AdminAPI interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, in *services.UserInput) (*models.User, error)
	UpdateUser(ctx context.Context, actorID, id string, in *services.UserInput) (*models.User, error)
	DeleteUser(ctx context.Context, actorID, id string) error
	GetSettings(ctx context.Context, userID string) (*models.AccountSetting, error)
	UpdateSettings(ctx context.Context, userID string, in *services.SettingsInput) (*models.AccountSetting, error)
}

// Handler wires the HTTP endpoints to the session and admin services.
type Handler struct {
	logger    logging.Logger
	sessions  SessionAPI
	admin     AdminAPI
	jwtSecret []byte
}

// NewHandler constructs a Handler.
func NewHandler(l logging.Logger, sessions SessionAPI, admin AdminAPI, secretKey string) *Handler {
	return &Handler{
		logger:    l.With("module", "httpapi"),
		sessions:  sessions,
		admin:     admin,
		jwtSecret: []byte(secretKey),
	}
}

// Register wires all routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleHealth)

	mux.HandleFunc("POST /auth/login", h.handleLogin)
	mux.HandleFunc("POST /auth/refresh", h.handleRefresh)
	mux.HandleFunc("POST /auth/logout", h.handleLogout)

	mux.HandleFunc("GET /admin", h.handleConsole)
	mux.HandleFunc("GET /admin/users", h.requireAdmin(h.handleListUsers))
	mux.HandleFunc("POST /admin/users", h.requireAdmin(h.handleCreateUser))
	mux.HandleFunc("PUT /admin/users/{id}", h.requireAdmin(h.handleUpdateUser))
	mux.HandleFunc("DELETE /admin/users/{id}", h.requireAdmin(h.handleDeleteUser))
	mux.HandleFunc("GET /admin/users/{id}/settings", h.requireAdmin(h.handleGetSettings))
	mux.HandleFunc("PUT /admin/users/{id}/settings", h.requireAdmin(h.handleUpdateSettings))
	mux.HandleFunc("POST /admin/users/{id}/logout_all", h.requireAdmin(h.handleLogoutAll))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusUnauthorized, "invalid credentials or token")
		return
	}

	result, err := h.sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Warn(r.Context(), "login rejected", "username", req.Username, "reason", err.Error())
		writeServiceError(w, err)
		return
	}
	h.logger.Info(r.Context(), "login", "user_id", result.User.ID)
	writeJSON(w, http.StatusOK, toSessionResponse(result))
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusUnauthorized, "invalid credentials or token")
		return
	}

	result, err := h.sessions.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.logger.Warn(r.Context(), "refresh rejected", "reason", err.Error())
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(result))
}

// handleLogout is always 200: revoking an unknown or already-revoked token is
// indistinguishable from a successful logout.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.RefreshToken == "" {
		writeJSON(w, http.StatusOK, statusResponse{Status: "ok", Message: "no token provided"})
		return
	}
	if err := h.sessions.Logout(r.Context(), req.RefreshToken); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok", Message: "logged out"})
}

// requireAdmin verifies the Bearer access token and the admin role before
// delegating. The claims of the acting admin are handed to the endpoint so
// the self-lockout guards can compare identities.
func (h *Handler) requireAdmin(next func(http.ResponseWriter, *http.Request, *auth.Claims)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := h.authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid credentials or token")
			return
		}
		if !hasRole(claims.Roles, common.AdminRoleName) {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}
		next(w, r, claims)
	}
}

func (h *Handler) authenticate(r *http.Request) (*auth.Claims, error) {
	header := r.Header.Get(common.AuthorizationHeaderName)
	if !strings.HasPrefix(header, common.BearerPrefix) {
		return nil, common.ErrorUnauthenticated
	}
	return auth.ParseToken(strings.TrimPrefix(header, common.BearerPrefix), h.jwtSecret)
}

func hasRole(roles []string, want string) bool {
	for _, role := range roles {
		if role == want {
			return true
		}
	}
	return false
}
