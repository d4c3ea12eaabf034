package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mediabot/internal/errs"
	"mediabot/internal/models"
	"mediabot/internal/providers"
	"mediabot/internal/storage"
	"mediabot/internal/structures"
)

type AuthServiceInterface interface {
	PasswordRequired() bool
	IsAuthorized(ctx context.Context, userID int64) bool
	Authorize(ctx context.Context, user models.Sender, password string) (bool, error)
	Touch(ctx context.Context, user models.Sender) error
	IsAdmin(ctx context.Context, userID int64) bool
	SetBlocked(ctx context.Context, adminID, userID int64, blocked bool) error
	SetAdmin(ctx context.Context, adminID, userID int64, admin bool) error
	ListUsers(ctx context.Context) ([]UserView, error)
}

// UserView is one allow-list entry with its chat user id.
type UserView struct {
	ID int64
	models.UserEntry
}

type AuthService struct {
	repo     storage.RepositoryInterface
	password string
	logger   providers.Logger
}

func NewAuthService(conf *structures.Config, repo storage.RepositoryInterface, logger providers.Logger) *AuthService {
	return &AuthService{
		repo:     repo,
		password: strings.TrimSpace(conf.Access.Password),
		logger:   logger,
	}
}

func (a *AuthService) PasswordRequired() bool {
	return a.password != ""
}

// IsAuthorized is always true for an open bot. Otherwise the user must be
// allow-listed and not blocked. Storage failures deny.
func (a *AuthService) IsAuthorized(ctx context.Context, userID int64) bool {
	if !a.PasswordRequired() {
		return true
	}
	cfg, err := a.repo.LoadConfig(ctx)
	if err != nil {
		a.logger.Errorf(providers.TypeApp, "Authorization check for %d failed: %s", userID, err)
		return false
	}
	u, ok := cfg.User(userID)
	return ok && u.AllowListed && !u.Blocked
}

// Authorize compares the trimmed password with the configured one. On a
// match the user is allow-listed (and promoted to admin when no admin exists
// yet) and the config is persisted before returning. A blocked user stays
// blocked.
func (a *AuthService) Authorize(ctx context.Context, user models.Sender, password string) (bool, error) {
	if !a.PasswordRequired() {
		return true, a.Touch(ctx, user)
	}
	if strings.TrimSpace(password) != a.password {
		a.logger.Warnf(providers.TypeApp, "Wrong password from user %d", user.ID)
		return false, nil
	}

	_, err := a.repo.UpdateConfig(ctx, func(cfg *models.OperatingConfig) error {
		u := upsertUser(cfg, user)
		u.AllowListed = true
		if !u.Blocked && !cfg.HasAdmin() {
			u.IsAdmin = true
			a.logger.Infof(providers.TypeApp, "User %d promoted to admin", user.ID)
		}
		return nil
	})
	if err != nil {
		return true, fmt.Errorf("authorize %d: %w", user.ID, err)
	}
	a.logger.Infof(providers.TypeApp, "User %d authorized", user.ID)
	return true, nil
}

// Touch keeps the display name current. On an open bot it also registers the
// user and makes the very first one admin. Nothing is written when nothing
// changed.
func (a *AuthService) Touch(ctx context.Context, user models.Sender) error {
	cfg, err := a.repo.LoadConfig(ctx)
	if err != nil {
		return err
	}
	u, known := cfg.User(user.ID)
	open := !a.PasswordRequired()
	switch {
	case !known && !open:
		return nil
	case known && u.DisplayName == user.DisplayName && (!open || u.AllowListed && cfg.HasAdmin()):
		return nil
	}

	_, err = a.repo.UpdateConfig(ctx, func(cfg *models.OperatingConfig) error {
		if _, ok := cfg.User(user.ID); !ok && !open {
			return nil
		}
		u := upsertUser(cfg, user)
		if open {
			u.AllowListed = true
			if !u.Blocked && !cfg.HasAdmin() {
				u.IsAdmin = true
				a.logger.Infof(providers.TypeApp, "User %d is the first user of an open bot, promoted to admin", user.ID)
			}
		}
		return nil
	})
	return err
}

func upsertUser(cfg *models.OperatingConfig, user models.Sender) *models.UserEntry {
	u, ok := cfg.Users[user.ID]
	if !ok {
		u = &models.UserEntry{CreatedAt: time.Now().UTC()}
		cfg.Users[user.ID] = u
	}
	if user.DisplayName != "" {
		u.DisplayName = user.DisplayName
	}
	return u
}

func (a *AuthService) IsAdmin(ctx context.Context, userID int64) bool {
	cfg, err := a.repo.LoadConfig(ctx)
	if err != nil {
		a.logger.Errorf(providers.TypeApp, "Admin check for %d failed: %s", userID, err)
		return false
	}
	u, ok := cfg.User(userID)
	return ok && u.IsAdmin && !u.Blocked
}

func (a *AuthService) SetBlocked(ctx context.Context, adminID, userID int64, blocked bool) error {
	return a.manage(ctx, adminID, userID, func(u *models.UserEntry) {
		u.Blocked = blocked
		if blocked {
			u.IsAdmin = false
		}
	})
}

func (a *AuthService) SetAdmin(ctx context.Context, adminID, userID int64, admin bool) error {
	return a.manage(ctx, adminID, userID, func(u *models.UserEntry) {
		u.IsAdmin = admin
		if admin {
			u.AllowListed = true
			u.Blocked = false
		}
	})
}

// manage applies an admin action to another known user. Admins cannot change
// their own flags, so at least one admin always remains.
func (a *AuthService) manage(ctx context.Context, adminID, userID int64, apply func(u *models.UserEntry)) error {
	if !a.IsAdmin(ctx, adminID) {
		return errs.ErrForbidden
	}
	if adminID == userID {
		return fmt.Errorf("%w: admins cannot change their own flags", errs.ErrInvalidInput)
	}
	_, err := a.repo.UpdateConfig(ctx, func(cfg *models.OperatingConfig) error {
		u, ok := cfg.User(userID)
		if !ok {
			return fmt.Errorf("user %d: %w", userID, errs.ErrNotFound)
		}
		apply(u)
		return nil
	})
	if err == nil {
		a.logger.Infof(providers.TypeApp, "Admin %d updated user %d", adminID, userID)
	}
	return err
}

// ListUsers returns every known user ordered by id.
func (a *AuthService) ListUsers(ctx context.Context) ([]UserView, error) {
	cfg, err := a.repo.LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserView, 0, len(cfg.Users))
	for _, id := range cfg.UserIDs() {
		out = append(out, UserView{ID: id, UserEntry: *cfg.Users[id]})
	}
	return out, nil
}
