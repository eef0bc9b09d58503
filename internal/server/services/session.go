// Package services contains server-side business logic. This file implements
// SessionService, which owns the full session lifecycle: credential login,
// refresh-token rotation, logout, and the entitlement gate every session
// start or continuation must pass.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/photobridge/authserver/internal/common"
	"github.com/photobridge/authserver/internal/cryptox"
	"github.com/photobridge/authserver/internal/dbx"
	"github.com/photobridge/authserver/internal/server/auth"
	"github.com/photobridge/authserver/internal/server/config"
	"github.com/photobridge/authserver/internal/server/models"
	"github.com/photobridge/authserver/internal/server/repositories/repomanager"
)

// dummyHash is a valid bcrypt digest verified against the submitted password
// when the username does not exist, so the unknown-user path costs the same
// as a wrong-password path.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}

// SessionResult is what a successful login or refresh hands to the transport:
// the tokens plus the account they belong to.
type SessionResult struct {
	TokenPair
	User *models.User
}

// SessionService provides the session lifecycle operations:
//   - Login: verify credentials, pass the entitlement gate and device policy,
//     mint a token pair
//   - Refresh: rotate a refresh token (strict single use) and mint a new pair
//   - Logout / LogoutAll: revoke one token or every token of an account
type SessionService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	signingMethod                jwt.SigningMethod
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	trialPolicy                  map[string]int
}

// NewSessionService constructs a SessionService using repositories and server
// config. The configured JWT algorithm must already be validated via
// auth.ResolveMethod.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, method jwt.SigningMethod) *SessionService {
	return &SessionService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		signingMethod:                method,
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		trialPolicy:                  cfg.TrialPolicy,
	}
}

// Login verifies the credentials and, if the account passes the entitlement
// gate and the device policy, returns a new TokenPair. Credential failures
// collapse to common.ErrorUnauthenticated regardless of whether the username
// exists.
func (s *SessionService) Login(ctx context.Context, username, password string) (*SessionResult, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.VerifyPassword(password, dummyHash)
			return nil, common.ErrorUnauthenticated
		}
		return nil, common.ErrorInternal
	}
	if !cryptox.VerifyPassword(password, user.PasswordHash) {
		return nil, common.ErrorUnauthenticated
	}
	if !user.IsActive {
		return nil, common.ErrorAccountDisabled
	}

	now := time.Now()
	var pair *TokenPair
	var gateErr error
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.AccountLocks(tx).Acquire(ctx, user.ID); err != nil {
			return err
		}
		setting, err := s.EnsureEntitlement(ctx, tx, user)
		if err != nil {
			return err
		}
		// A lapsed trial is persisted on the spot; returning nil commits the
		// status write even though the login itself then fails.
		if gateErr = s.applyGate(ctx, tx, setting, now); gateErr != nil {
			return nil
		}
		if err := s.checkDeviceCap(ctx, tx, user.ID, setting, now, ""); err != nil {
			return err
		}
		pair, err = s.issueTokenPair(ctx, tx, user, now)
		return err
	}); err != nil {
		return nil, err
	}
	if gateErr != nil {
		return nil, gateErr
	}
	return &SessionResult{TokenPair: *pair, User: user}, nil
}

// Refresh consumes a refresh token and returns a fresh TokenPair. The token
// is strictly single use: rotation revokes it in the same transaction that
// records its replacement, and concurrent rotations of one token serialize on
// the row lock so exactly one wins.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*SessionResult, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	record, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthenticated
		}
		return nil, common.ErrorInternal
	}
	if record.Revoked {
		return nil, common.ErrorUnauthenticated
	}
	if !record.Active(time.Now()) {
		// Lazy expiry: the row outlived its window, flag it now that it has
		// been observed.
		if err := repo.Revoke(ctx, refreshToken); err != nil {
			return nil, common.ErrorInternal
		}
		return nil, common.ErrorUnauthenticated
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthenticated
		}
		return nil, common.ErrorInternal
	}
	if !user.IsActive {
		// A disabled account keeps no live sessions.
		if err := repo.RevokeAllForUser(ctx, user.ID); err != nil {
			return nil, common.ErrorInternal
		}
		return nil, common.ErrorAccountDisabled
	}

	now := time.Now()
	var pair *TokenPair
	var gateErr error
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.AccountLocks(tx).Acquire(ctx, user.ID); err != nil {
			return err
		}
		repoTx := s.repomanager.RefreshTokens(tx)
		locked, err := repoTx.FindForUpdate(ctx, refreshToken)
		if err != nil {
			return fmt.Errorf("error locking refresh token: %v", err)
		}
		// Re-check under the lock: a concurrent rotation may have consumed
		// the token between the optimistic read and here.
		if locked.Revoked || !locked.Active(now) {
			gateErr = common.ErrorUnauthenticated
			return nil
		}
		setting, err := s.EnsureEntitlement(ctx, tx, user)
		if err != nil {
			return err
		}
		if gateErr = s.applyGate(ctx, tx, setting, now); gateErr != nil {
			return nil
		}
		if err := s.checkDeviceCap(ctx, tx, user.ID, setting, now, refreshToken); err != nil {
			return err
		}
		if err := repoTx.Revoke(ctx, refreshToken); err != nil {
			return fmt.Errorf("error revoking refresh token: %v", err)
		}
		pair, err = s.issueTokenPair(ctx, tx, user, now)
		return err
	}); err != nil {
		return nil, err
	}
	if gateErr != nil {
		return nil, gateErr
	}
	return &SessionResult{TokenPair: *pair, User: user}, nil
}

// Logout revokes the given refresh token. Unknown or already-revoked tokens
// are not an error, so retries and double-submits are harmless.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	repo := s.repomanager.RefreshTokens(s.db)
	if err := repo.Revoke(ctx, refreshToken); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// LogoutAll revokes every active refresh token of the account. Subsequent
// refresh attempts with any of them fail; outstanding access tokens run out
// their remaining lifetime.
func (s *SessionService) LogoutAll(ctx context.Context, userID string) error {
	repo := s.repomanager.RefreshTokens(s.db)
	if err := repo.RevokeAllForUser(ctx, userID); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// EnsureEntitlement returns the account's settings row, creating it on first
// contact. The initial state comes from the trial policy: accounts holding a
// trial-granting role start a timed trial (the shortest matching duration
// wins), everyone else starts active.
func (s *SessionService) EnsureEntitlement(ctx context.Context, db dbx.DBTX, user *models.User) (*models.AccountSetting, error) {
	repo := s.repomanager.Entitlements(db)

	setting, err := repo.Get(ctx, user.ID)
	if err == nil {
		return setting, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	setting = &models.AccountSetting{UserID: user.ID, Status: models.StatusActive}
	if days, ok := s.trialDays(user.Roles); ok {
		deadline := time.Now().Add(time.Duration(days) * 24 * time.Hour)
		setting.Status = models.StatusTrial
		setting.TrialEndsAt = &deadline
	}

	created, err := repo.Create(ctx, setting)
	if err != nil {
		// Lost a creation race outside the account lock (admin settings
		// fetch); the winner's row is the truth.
		if existing, getErr := repo.Get(ctx, user.ID); getErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return created, nil
}

// applyGate evaluates the entitlement state at now. A lapsed trial is
// transitioned to expired immediately; the write belongs to the caller's
// transaction and must be committed even when the gate fails.
func (s *SessionService) applyGate(ctx context.Context, db dbx.DBTX, setting *models.AccountSetting, now time.Time) error {
	switch {
	case setting.Status == models.StatusLocked:
		return common.ErrorAccountLocked
	case setting.Status == models.StatusExpired:
		return common.ErrorAccountExpired
	case setting.TrialLapsed(now):
		if err := s.repomanager.Entitlements(db).UpdateStatus(ctx, setting.ID, models.StatusExpired); err != nil {
			return err
		}
		setting.Status = models.StatusExpired
		return common.ErrorTrialExpired
	}
	return nil
}

// checkDeviceCap rejects the issue when the account already holds as many
// active refresh tokens as its cap allows. A rotation passes its own old
// token in excludeToken so replacing a session never counts it twice.
func (s *SessionService) checkDeviceCap(ctx context.Context, db dbx.DBTX, userID string, setting *models.AccountSetting, now time.Time, excludeToken string) error {
	limit := setting.DeviceCap()
	if limit == 0 {
		return nil
	}
	count, err := s.repomanager.RefreshTokens(db).CountActive(ctx, userID, now, excludeToken)
	if err != nil {
		return err
	}
	if count >= limit {
		return common.ErrorDeviceLimit
	}
	return nil
}

func (s *SessionService) issueTokenPair(ctx context.Context, db dbx.DBTX, user *models.User, now time.Time) (*TokenPair, error) {
	access, expiresAt, err := auth.GenerateToken(user.ID, user.Roles, s.jwtSecret, s.signingMethod, now, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := cryptox.NewRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	repo := s.repomanager.RefreshTokens(db)
	if _, err := repo.Create(ctx, user.ID, refresh, now.Add(s.refreshTokenValidityDuration)); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, AccessExpiresAt: expiresAt}, nil
}

// trialDays returns the shortest trial duration granted by any of the roles,
// or false when none of them grants one.
func (s *SessionService) trialDays(roles []string) (int, bool) {
	best := 0
	found := false
	for _, role := range roles {
		days, ok := s.trialPolicy[role]
		if !ok || days <= 0 {
			continue
		}
		if !found || days < best {
			best = days
			found = true
		}
	}
	return best, found
}
