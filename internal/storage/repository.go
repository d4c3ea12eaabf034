package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"mediabot/internal/errs"
	"mediabot/internal/models"
	"mediabot/internal/providers"
	"mediabot/internal/storage/interfaces"
	"mediabot/internal/structures"
)

const (
	ConfigKey        = "config"
	SharedSessionKey = "shared_session"
	sessionPrefix    = "session:"
	selectionPrefix  = "selection:"
)

func SessionKey(userID int64) string {
	return sessionPrefix + strconv.FormatInt(userID, 10)
}

func SelectionKey(userID int64) string {
	return selectionPrefix + strconv.FormatInt(userID, 10)
}

type RepositoryInterface interface {
	LoadConfig(ctx context.Context) (*models.OperatingConfig, error)
	SaveConfig(ctx context.Context, cfg *models.OperatingConfig) error
	UpdateConfig(ctx context.Context, fn func(cfg *models.OperatingConfig) error) (*models.OperatingConfig, error)

	GetSession(ctx context.Context, key string) (*models.UserSession, error)
	SaveSession(ctx context.Context, key string, s *models.UserSession) error
	DeleteSession(ctx context.Context, key string) error
	CountSessions(ctx context.Context) (int, error)

	GetSelection(ctx context.Context, userID int64) (*models.IdentitySelection, error)
	SaveSelection(ctx context.Context, userID int64, sel *models.IdentitySelection) error
}

// Repository maps domain records onto the keyed store. Every mutation is
// executed on the single-writer queue.
type Repository struct {
	store       interfaces.StoreInterface
	queue       *Queue
	defaultMode models.Mode
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
}

func NewRepository(store interfaces.StoreInterface, queue *Queue, conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) *Repository {
	mode, err := models.ParseMode(conf.Access.DefaultMode)
	if err != nil {
		mode = models.ModeDirectLogin
	}
	return &Repository{
		store:       store,
		queue:       queue,
		defaultMode: mode,
		logger:      logger,
		metrics:     metrics,
	}
}

func (r *Repository) loadJSON(ctx context.Context, key string, v any) error {
	data, err := r.store.Load(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode record %s: %w", key, err)
	}
	return nil
}

// saveJSON must run on the queue.
func (r *Repository) saveJSON(ctx context.Context, key string, v any) error {
	start := time.Now()
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := r.store.Save(ctx, key, data); err != nil {
		r.logger.Errorf(providers.TypeStorage, "Save %s failed: %s", key, err)
		return err
	}
	r.metrics.ObservePersistenceDuration(time.Since(start))
	return nil
}

// LoadConfig returns the operating config, default-filled. A missing record
// yields a fresh default config.
func (r *Repository) LoadConfig(ctx context.Context) (*models.OperatingConfig, error) {
	var cfg models.OperatingConfig
	err := r.loadJSON(ctx, ConfigKey, &cfg)
	if errors.Is(err, errs.ErrNotFound) {
		return models.NewOperatingConfig(r.defaultMode), nil
	}
	if err != nil {
		return nil, err
	}
	cfg.Normalize(r.defaultMode)
	return &cfg, nil
}

func (r *Repository) SaveConfig(ctx context.Context, cfg *models.OperatingConfig) error {
	return r.queue.Do(ctx, func() error {
		cp := cfg.Clone()
		cp.Normalize(r.defaultMode)
		return r.saveJSON(ctx, ConfigKey, cp)
	})
}

// UpdateConfig performs a serialized read-modify-write of the operating
// config. When fn fails nothing is written.
func (r *Repository) UpdateConfig(ctx context.Context, fn func(cfg *models.OperatingConfig) error) (*models.OperatingConfig, error) {
	var out *models.OperatingConfig
	err := r.queue.Do(ctx, func() error {
		cfg, err := r.LoadConfig(ctx)
		if err != nil {
			return err
		}
		if err := fn(cfg); err != nil {
			return err
		}
		cfg.Normalize(r.defaultMode)
		if err := r.saveJSON(ctx, ConfigKey, cfg); err != nil {
			return err
		}
		out = cfg
		return nil
	})
	return out, err
}

func (r *Repository) GetSession(ctx context.Context, key string) (*models.UserSession, error) {
	var s models.UserSession
	if err := r.loadJSON(ctx, key, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) SaveSession(ctx context.Context, key string, s *models.UserSession) error {
	cp := *s
	return r.queue.Do(ctx, func() error {
		return r.saveJSON(ctx, key, &cp)
	})
}

func (r *Repository) DeleteSession(ctx context.Context, key string) error {
	return r.queue.Do(ctx, func() error {
		return r.store.Delete(ctx, key)
	})
}

func (r *Repository) CountSessions(ctx context.Context) (int, error) {
	keys, err := r.store.Keys(ctx, sessionPrefix)
	if err != nil {
		return 0, err
	}
	n := len(keys)
	if _, err := r.store.Load(ctx, SharedSessionKey); err == nil {
		n++
	}
	return n, nil
}

func (r *Repository) GetSelection(ctx context.Context, userID int64) (*models.IdentitySelection, error) {
	var sel models.IdentitySelection
	if err := r.loadJSON(ctx, SelectionKey(userID), &sel); err != nil {
		return nil, err
	}
	return &sel, nil
}

func (r *Repository) SaveSelection(ctx context.Context, userID int64, sel *models.IdentitySelection) error {
	cp := *sel
	return r.queue.Do(ctx, func() error {
		return r.saveJSON(ctx, SelectionKey(userID), &cp)
	})
}

// Bootstrap runs once at startup: it rewrites a legacy config layout, merges
// the configured whitelist and makes sure a config record exists.
func (r *Repository) Bootstrap(ctx context.Context, whitelist []int64) (*models.OperatingConfig, error) {
	var out *models.OperatingConfig
	err := r.queue.Do(ctx, func() error {
		raw, err := r.store.Load(ctx, ConfigKey)
		var cfg *models.OperatingConfig
		switch {
		case errors.Is(err, errs.ErrNotFound):
			r.logger.Infof(providers.TypeStorage, "No operating config found, creating defaults (mode=%s)", r.defaultMode)
			cfg = models.NewOperatingConfig(r.defaultMode)
		case err != nil:
			return err
		default:
			cfg, err = decodeConfig(raw, r.defaultMode, r.logger)
			if err != nil {
				return err
			}
		}

		now := time.Now()
		for _, id := range whitelist {
			if _, ok := cfg.Users[id]; ok {
				continue
			}
			cfg.Users[id] = &models.UserEntry{AllowListed: true, CreatedAt: now}
		}
		cfg.Normalize(r.defaultMode)
		if err := r.saveJSON(ctx, ConfigKey, cfg); err != nil {
			return err
		}
		out = cfg
		return nil
	})
	return out, err
}

// legacyConfig is the flat layout written by older releases.
type legacyConfig struct {
	Version       int                    `json:"version"`
	UserMode      string                 `json:"user_mode"`
	Whitelist     []int64                `json:"whitelist"`
	Blocked       []int64                `json:"blocked"`
	Admins        []int64                `json:"admins"`
	GroupMode     bool                   `json:"group_mode"`
	PrimaryChatID *models.ChannelLocator `json:"primary_chat_id"`
}

var legacyModes = map[string]models.Mode{
	"normal": models.ModeDirectLogin,
	"shared": models.ModeSharedSession,
	"api":    models.ModeKeyImpersonation,
}

func decodeConfig(raw []byte, defaultMode models.Mode, logger providers.Logger) (*models.OperatingConfig, error) {
	var legacy legacyConfig
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, fmt.Errorf("decode operating config: %w", err)
	}
	if legacy.Version == 0 && (legacy.UserMode != "" || legacy.Whitelist != nil || legacy.Admins != nil) {
		logger.Warnf(providers.TypeStorage, "Legacy operating config found, migrating")
		return migrateLegacy(&legacy, defaultMode), nil
	}

	var cfg models.OperatingConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode operating config: %w", err)
	}
	cfg.Normalize(defaultMode)
	return &cfg, nil
}

func migrateLegacy(legacy *legacyConfig, defaultMode models.Mode) *models.OperatingConfig {
	cfg := models.NewOperatingConfig(defaultMode)
	if m, ok := legacyModes[strings.ToLower(legacy.UserMode)]; ok {
		cfg.Mode = m
	}
	cfg.GroupMode = legacy.GroupMode
	cfg.PrimaryChannel = legacy.PrimaryChatID

	now := time.Now()
	entry := func(id int64) *models.UserEntry {
		u, ok := cfg.Users[id]
		if !ok {
			u = &models.UserEntry{CreatedAt: now}
			cfg.Users[id] = u
		}
		return u
	}
	for _, id := range legacy.Whitelist {
		entry(id).AllowListed = true
	}
	for _, id := range legacy.Admins {
		u := entry(id)
		u.AllowListed = true
		u.IsAdmin = true
	}
	for _, id := range legacy.Blocked {
		u := entry(id)
		u.Blocked = true
		u.IsAdmin = false
	}
	cfg.Normalize(defaultMode)
	return cfg
}
