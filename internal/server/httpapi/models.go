package httpapi

import (
	"time"

	"github.com/photobridge/authserver/internal/server/models"
	"github.com/photobridge/authserver/internal/server/services"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type userOut struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name"`
	Roles       []string `json:"roles"`
}

// sessionResponse is the body of a successful login or refresh.
type sessionResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	Roles        []string `json:"roles"`
	User         userOut  `json:"user"`
}

func toSessionResponse(result *services.SessionResult) sessionResponse {
	return sessionResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    "bearer",
		Roles:        result.User.Roles,
		User:         toUserOut(result.User),
	}
}

func toUserOut(u *models.User) userOut {
	return userOut{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName, Roles: u.Roles}
}

type adminUserOut struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	IsActive    bool      `json:"is_active"`
	Roles       []string  `json:"roles"`
	CreatedAt   time.Time `json:"created_at"`
}

func toAdminUserOut(u *models.User) adminUserOut {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return adminUserOut{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		IsActive:    u.IsActive,
		Roles:       roles,
		CreatedAt:   u.CreatedAt,
	}
}

type adminUserCreate struct {
	Username    string   `json:"username"`
	Password    string   `json:"password"`
	DisplayName string   `json:"display_name"`
	Roles       []string `json:"roles"`
	IsActive    *bool    `json:"is_active"`
}

type adminUserUpdate struct {
	Password    string   `json:"password"`
	DisplayName string   `json:"display_name"`
	Roles       []string `json:"roles"`
	IsActive    *bool    `json:"is_active"`
}

type settingOut struct {
	UserID      string     `json:"user_id"`
	Status      string     `json:"status"`
	TrialEndsAt *time.Time `json:"trial_ends_at"`
	MaxDevices  *int       `json:"max_devices"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toSettingOut(s *models.AccountSetting) settingOut {
	return settingOut{
		UserID:      s.UserID,
		Status:      s.Status,
		TrialEndsAt: s.TrialEndsAt,
		MaxDevices:  s.MaxDevices,
		UpdatedAt:   s.UpdatedAt,
	}
}

type settingUpdate struct {
	Status      string  `json:"status"`
	TrialEndsAt *string `json:"trial_ends_at"`
	MaxDevices  *int    `json:"max_devices"`
}
