package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mediabot/internal/errs"
	"mediabot/internal/models"
	"mediabot/internal/overseerr"
	"mediabot/internal/providers"
	"mediabot/internal/security"
	"mediabot/internal/storage"
	"mediabot/internal/structures"
)

type SessionServiceInterface interface {
	Login(ctx context.Context, userID int64, email, password string) (*models.UserSession, error)
	EnsureValid(ctx context.Context, userID int64) (*models.UserSession, error)
	Logout(ctx context.Context, userID int64) error
	Session(ctx context.Context, userID int64) (*models.UserSession, error)

	LoginShared(ctx context.Context, adminID int64, email, password string) (*models.UserSession, error)
	EnsureShared(ctx context.Context) (*models.UserSession, error)
	LogoutShared(ctx context.Context, adminID int64) error
	SharedSession(ctx context.Context) (*models.UserSession, error)

	SelectIdentity(ctx context.Context, userID, chatID int64, identity models.Identity) error
	Selection(ctx context.Context, userID int64) (*models.IdentitySelection, error)
	NotificationsEnabled(ctx context.Context, backendUserID int) (bool, error)
	SetNotifications(ctx context.Context, backendUserID int, chatID int64, on bool) error

	Attribution(ctx context.Context, userID int64) (overseerr.Credentials, error)
	ServiceCredentials() overseerr.Credentials
}

// SessionService manages the credential each mode uses to reach the backend:
// per-user cookie sessions, the admin-owned shared session, or the service
// key plus a selected identity.
type SessionService struct {
	repo              storage.RepositoryInterface
	client            overseerr.ClientInterface
	sealer            security.SealerInterface
	modes             ModeServiceInterface
	auth              AuthServiceInterface
	apiKey            string
	notificationTypes int
	logger            providers.Logger
	metrics           providers.MetricsProviderInterface
	// held per session record key around every read-probe-write
	records           *KeyLocker[string]
}

func NewSessionService(
	conf *structures.Config,
	repo storage.RepositoryInterface,
	client overseerr.ClientInterface,
	sealer security.SealerInterface,
	modes ModeServiceInterface,
	auth AuthServiceInterface,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) *SessionService {
	return &SessionService{
		repo:              repo,
		client:            client,
		sealer:            sealer,
		modes:             modes,
		auth:              auth,
		apiKey:            conf.Backend.APIKey,
		notificationTypes: conf.Backend.NotificationTypes,
		logger:            logger,
		metrics:           metrics,
		records:           NewKeyLocker[string](),
	}
}

func (s *SessionService) ServiceCredentials() overseerr.Credentials {
	return overseerr.Credentials{APIKey: s.apiKey}
}

// Login opens a backend session for userID. It is refused while the bot runs
// on the service key.
func (s *SessionService) Login(ctx context.Context, userID int64, email, password string) (*models.UserSession, error) {
	if s.modes.Mode() == models.ModeKeyImpersonation {
		return nil, fmt.Errorf("login: %w: bot runs in %s mode", errs.ErrConflictingState, models.ModeKeyImpersonation)
	}
	sess, err := s.login(ctx, storage.SessionKey(userID), email, password)
	if err != nil {
		s.logger.Warnf(providers.TypeApp, "Login of user %d failed: %s", userID, err)
		return nil, err
	}
	s.logger.Infof(providers.TypeApp, "User %d logged in as backend user %d", userID, sess.BackendUserID)
	return sess, nil
}

func (s *SessionService) LoginShared(ctx context.Context, adminID int64, email, password string) (*models.UserSession, error) {
	if !s.auth.IsAdmin(ctx, adminID) {
		return nil, errs.ErrForbidden
	}
	if s.modes.Mode() == models.ModeKeyImpersonation {
		return nil, fmt.Errorf("login: %w: bot runs in %s mode", errs.ErrConflictingState, models.ModeKeyImpersonation)
	}
	sess, err := s.login(ctx, storage.SharedSessionKey, email, password)
	if err != nil {
		s.logger.Warnf(providers.TypeApp, "Shared login by admin %d failed: %s", adminID, err)
		return nil, err
	}
	s.logger.Infof(providers.TypeApp, "Admin %d opened the shared session as backend user %d", adminID, sess.BackendUserID)
	return sess, nil
}

func (s *SessionService) login(ctx context.Context, key, email, password string) (*models.UserSession, error) {
	unlock := s.records.Lock(key)
	defer unlock()

	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	sealed, err := s.sealer.Seal([]byte(password))
	if err != nil {
		return nil, fmt.Errorf("seal credentials: %w", err)
	}
	now := time.Now().UTC()
	sess := &models.UserSession{
		Token:              res.Token,
		Email:              email,
		SealedSecret:       sealed,
		BackendUserID:      res.User.ID,
		BackendDisplayName: res.User.DisplayName,
		CreatedAt:          now,
		RefreshedAt:        now,
	}
	if err := s.repo.SaveSession(ctx, key, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

func (s *SessionService) EnsureValid(ctx context.Context, userID int64) (*models.UserSession, error) {
	return s.ensure(ctx, storage.SessionKey(userID))
}

func (s *SessionService) EnsureShared(ctx context.Context) (*models.UserSession, error) {
	return s.ensure(ctx, storage.SharedSessionKey)
}

// ensure probes the stored session. A rejected token gets exactly one
// re-login with the sealed material; if that fails too the session is
// deleted, so the next call reports ErrNotLoggedIn without trying again.
// An unreachable backend leaves the session untouched. Callers waiting on
// the same record read back whatever the holder stored.
func (s *SessionService) ensure(ctx context.Context, key string) (*models.UserSession, error) {
	unlock := s.records.Lock(key)
	defer unlock()

	sess, err := s.repo.GetSession(ctx, key)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.ErrNotLoggedIn
	}
	if err != nil {
		return nil, err
	}

	_, err = s.client.Me(ctx, overseerr.Credentials{SessionToken: sess.Token})
	if err == nil {
		return sess, nil
	}
	if !overseerr.IsUnauthorized(err) {
		return nil, err
	}

	s.logger.Infof(providers.TypeApp, "Session %s rejected by backend, re-authenticating", key)
	fresh, err := s.relogin(ctx, sess)
	if err != nil {
		s.metrics.IncReauth("failed")
		s.logger.Warnf(providers.TypeApp, "Re-authentication of %s failed: %s", key, err)
		if derr := s.repo.DeleteSession(ctx, key); derr != nil {
			s.logger.Errorf(providers.TypeStorage, "Delete expired session %s failed: %s", key, derr)
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrSessionExpired, err)
	}
	if err := s.repo.SaveSession(ctx, key, fresh); err != nil {
		return nil, fmt.Errorf("store refreshed session: %w", err)
	}
	s.metrics.IncReauth("ok")
	return fresh, nil
}

func (s *SessionService) relogin(ctx context.Context, sess *models.UserSession) (*models.UserSession, error) {
	if sess.Email == "" || len(sess.SealedSecret) == 0 {
		return nil, errors.New("no re-auth material")
	}
	secret, err := s.sealer.Open(sess.SealedSecret)
	if err != nil {
		return nil, err
	}
	res, err := s.client.Login(ctx, sess.Email, string(secret))
	if err != nil {
		return nil, err
	}
	fresh := *sess
	fresh.Token = res.Token
	fresh.BackendUserID = res.User.ID
	fresh.BackendDisplayName = res.User.DisplayName
	fresh.RefreshedAt = time.Now().UTC()
	return &fresh, nil
}

func (s *SessionService) Logout(ctx context.Context, userID int64) error {
	return s.logout(ctx, storage.SessionKey(userID))
}

func (s *SessionService) LogoutShared(ctx context.Context, adminID int64) error {
	if !s.auth.IsAdmin(ctx, adminID) {
		return errs.ErrForbidden
	}
	return s.logout(ctx, storage.SharedSessionKey)
}

// logout ends the backend session best-effort and always drops the record.
func (s *SessionService) logout(ctx context.Context, key string) error {
	unlock := s.records.Lock(key)
	defer unlock()

	sess, err := s.repo.GetSession(ctx, key)
	if errors.Is(err, errs.ErrNotFound) {
		return errs.ErrNotLoggedIn
	}
	if err != nil {
		return err
	}
	if err := s.client.Logout(ctx, sess.Token); err != nil {
		s.logger.Warnf(providers.TypeApp, "Backend logout of %s failed: %s", key, err)
	}
	if err := s.repo.DeleteSession(ctx, key); err != nil {
		return err
	}
	s.logger.Infof(providers.TypeApp, "Session %s closed", key)
	return nil
}

func (s *SessionService) Session(ctx context.Context, userID int64) (*models.UserSession, error) {
	return s.stored(ctx, storage.SessionKey(userID))
}

func (s *SessionService) SharedSession(ctx context.Context) (*models.UserSession, error) {
	return s.stored(ctx, storage.SharedSessionKey)
}

func (s *SessionService) stored(ctx context.Context, key string) (*models.UserSession, error) {
	sess, err := s.repo.GetSession(ctx, key)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.ErrNotLoggedIn
	}
	return sess, err
}

// SelectIdentity records which backend identity userID acts as. Turning on
// the identity's Telegram notifications is attempted on the side and only
// logged when it fails.
func (s *SessionService) SelectIdentity(ctx context.Context, userID, chatID int64, identity models.Identity) error {
	sel := &models.IdentitySelection{
		BackendUserID: identity.ID,
		DisplayName:   identity.DisplayName,
		SelectedAt:    time.Now().UTC(),
	}
	if err := s.repo.SaveSelection(ctx, userID, sel); err != nil {
		return fmt.Errorf("store selection: %w", err)
	}
	s.logger.Infof(providers.TypeApp, "User %d selected backend identity %d", userID, identity.ID)

	on, err := s.NotificationsEnabled(ctx, identity.ID)
	switch {
	case err != nil:
		s.logger.Warnf(providers.TypeBackend, "Read notifications of identity %d failed: %s", identity.ID, err)
	case !on:
		if err := s.SetNotifications(ctx, identity.ID, chatID, true); err != nil {
			s.logger.Warnf(providers.TypeBackend, "Enable notifications of identity %d failed: %s", identity.ID, err)
		}
	}
	return nil
}

func (s *SessionService) Selection(ctx context.Context, userID int64) (*models.IdentitySelection, error) {
	sel, err := s.repo.GetSelection(ctx, userID)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.ErrNoIdentity
	}
	return sel, err
}

func (s *SessionService) NotificationsEnabled(ctx context.Context, backendUserID int) (bool, error) {
	settings, err := s.client.GetNotificationSettings(ctx, s.ServiceCredentials(), backendUserID)
	if err != nil {
		return false, err
	}
	return settings.TelegramEnabled(), nil
}

// SetNotifications rewrites only the Telegram part of the identity's
// notification settings.
func (s *SessionService) SetNotifications(ctx context.Context, backendUserID int, chatID int64, on bool) error {
	creds := s.ServiceCredentials()
	settings, err := s.client.GetNotificationSettings(ctx, creds, backendUserID)
	if err != nil {
		return err
	}
	if on {
		settings.EnableTelegram(chatID, s.notificationTypes)
	} else {
		settings.DisableTelegram()
	}
	return s.client.UpdateNotificationSettings(ctx, creds, backendUserID, settings)
}

// Attribution resolves the credentials for an outbound action from the mode
// in effect right now.
func (s *SessionService) Attribution(ctx context.Context, userID int64) (overseerr.Credentials, error) {
	switch mode := s.modes.Mode(); mode {
	case models.ModeDirectLogin:
		sess, err := s.EnsureValid(ctx, userID)
		if err != nil {
			return overseerr.Credentials{}, err
		}
		return overseerr.Credentials{SessionToken: sess.Token}, nil
	case models.ModeSharedSession:
		sess, err := s.EnsureShared(ctx)
		if err != nil {
			return overseerr.Credentials{}, err
		}
		return overseerr.Credentials{SessionToken: sess.Token}, nil
	case models.ModeKeyImpersonation:
		sel, err := s.Selection(ctx, userID)
		if err != nil {
			return overseerr.Credentials{}, err
		}
		creds := s.ServiceCredentials()
		creds.ActAsUser = sel.BackendUserID
		return creds, nil
	default:
		return overseerr.Credentials{}, fmt.Errorf("%w: unknown mode %q", errs.ErrConflictingState, mode)
	}
}
