package services

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/photobridge/authserver/internal/common"
	"github.com/photobridge/authserver/internal/cryptox"
	"github.com/photobridge/authserver/internal/server/models"
	"github.com/photobridge/authserver/internal/server/repositories/repomanager"
)

// AdminService implements the operator console operations: account CRUD and
// per-account entitlement settings. Callers are expected to have passed the
// admin-role check at the transport layer already; the service only guards
// the self-lockout cases that need the acting admin's identity.
type AdminService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sessions    *SessionService
}

// NewAdminService constructs an AdminService. It shares the SessionService
// for lazy entitlement creation and mass logout.
func NewAdminService(db *sql.DB, m repomanager.RepositoryManager, sessions *SessionService) *AdminService {
	return &AdminService{db: db, repomanager: m, sessions: sessions}
}

// UserInput carries the operator-editable account fields. Password is the
// plaintext to hash; empty means keep the current hash on update.
type UserInput struct {
	Username    string
	Password    string
	DisplayName string
	IsActive    bool
	Roles       []string
}

// SettingsInput carries the operator-editable entitlement fields.
type SettingsInput struct {
	Status      string
	TrialEndsAt *string
	MaxDevices  *int
}

// ListUsers returns every account, roles included.
func (s *AdminService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repomanager.Users(s.db).List(ctx)
}

// GetUser returns one account by ID.
func (s *AdminService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// CreateUser creates an account. Username and password are mandatory;
// duplicate usernames surface as common.ErrorAlreadyExists.
func (s *AdminService) CreateUser(ctx context.Context, in *UserInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrorInvalidArgument)
	}
	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return nil, common.ErrorInternal
	}
	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  in.DisplayName,
		IsActive:     in.IsActive,
		Roles:        in.Roles,
	}
	return s.repomanager.Users(s.db).Create(ctx, user)
}

// UpdateUser rewrites the mutable fields of an account. The username is
// immutable. An admin cannot deactivate their own account.
func (s *AdminService) UpdateUser(ctx context.Context, actorID, id string, in *UserInput) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if id == actorID && !in.IsActive {
		return nil, fmt.Errorf("%w: cannot deactivate your own account", common.ErrorInvalidArgument)
	}

	user.DisplayName = in.DisplayName
	user.IsActive = in.IsActive
	user.Roles = in.Roles
	if in.Password != "" {
		hash, err := cryptox.HashPassword(in.Password)
		if err != nil {
			return nil, common.ErrorInternal
		}
		user.PasswordHash = hash
	}

	return repo.Update(ctx, user)
}

// DeleteUser removes an account and, via schema cascade, its tokens and
// settings. An admin cannot delete their own account.
func (s *AdminService) DeleteUser(ctx context.Context, actorID, id string) error {
	if id == actorID {
		return fmt.Errorf("%w: cannot delete your own account", common.ErrorInvalidArgument)
	}
	return s.repomanager.Users(s.db).Delete(ctx, id)
}

// GetSettings returns the account's entitlement settings, creating the row
// with policy defaults when the account has never logged in.
func (s *AdminService) GetSettings(ctx context.Context, userID string) (*models.AccountSetting, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.sessions.EnsureEntitlement(ctx, s.db, user)
}

// UpdateSettings rewrites the account's entitlement state. Setting status
// away from trial clears nothing by itself; the fields are written as given.
func (s *AdminService) UpdateSettings(ctx context.Context, userID string, in *SettingsInput) (*models.AccountSetting, error) {
	if !slices.Contains([]string{models.StatusActive, models.StatusTrial, models.StatusLocked, models.StatusExpired}, in.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", common.ErrorInvalidArgument, in.Status)
	}
	if in.Status == models.StatusTrial && in.TrialEndsAt == nil {
		return nil, fmt.Errorf("%w: trial status requires trial_ends_at", common.ErrorInvalidArgument)
	}

	setting, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	setting.Status = in.Status
	setting.MaxDevices = in.MaxDevices
	if in.TrialEndsAt != nil {
		deadline, err := parseDeadline(*in.TrialEndsAt)
		if err != nil {
			return nil, err
		}
		setting.TrialEndsAt = deadline
	} else if in.Status != models.StatusTrial {
		setting.TrialEndsAt = nil
	}

	return s.repomanager.Entitlements(s.db).Update(ctx, setting)
}

// parseDeadline accepts an RFC 3339 timestamp or a bare date, which is taken
// as midnight UTC.
func parseDeadline(value string) (*time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: cannot parse trial_ends_at %q", common.ErrorInvalidArgument, value)
}
