package services

import (
	"context"
	"fmt"

	"go.uber.org/atomic"

	"mediabot/internal/errs"
	"mediabot/internal/events"
	"mediabot/internal/models"
	"mediabot/internal/providers"
	"mediabot/internal/storage"
	"mediabot/internal/structures"
)

type ModeServiceInterface interface {
	Mode() models.Mode
	Sync(ctx context.Context) error
	SwitchMode(ctx context.Context, adminID int64, mode models.Mode) error
	GroupMode(ctx context.Context) (bool, *models.ChannelLocator)
	SetGroupMode(ctx context.Context, adminID int64, on bool) error
	SetPrimaryChannel(ctx context.Context, adminID int64, channel models.ChannelLocator) error
	Allows(ctx context.Context, userID int64, chat models.Chat) bool
}

// ModeService owns the process-wide operating mode. The persisted config is
// the source of truth; the atomic copy lets every call read the mode without
// touching storage.
type ModeService struct {
	repo      storage.RepositoryInterface
	auth      AuthServiceInterface
	publisher events.Publisher
	logger    providers.Logger
	current   atomic.String
}

func NewModeService(conf *structures.Config, repo storage.RepositoryInterface, auth AuthServiceInterface, publisher events.Publisher, logger providers.Logger) *ModeService {
	ms := &ModeService{repo: repo, auth: auth, publisher: publisher, logger: logger}
	mode, err := models.ParseMode(conf.Access.DefaultMode)
	if err != nil {
		mode = models.ModeDirectLogin
	}
	ms.current.Store(string(mode))
	return ms
}

func (ms *ModeService) Mode() models.Mode {
	return models.Mode(ms.current.Load())
}

// Sync reloads the mode from the persisted config.
func (ms *ModeService) Sync(ctx context.Context) error {
	cfg, err := ms.repo.LoadConfig(ctx)
	if err != nil {
		return err
	}
	ms.current.Store(string(cfg.Mode))
	ms.logger.Infof(providers.TypeApp, "Operating mode: %s", cfg.Mode)
	return nil
}

func (ms *ModeService) SwitchMode(ctx context.Context, adminID int64, mode models.Mode) error {
	if _, err := models.ParseMode(string(mode)); err != nil {
		return fmt.Errorf("%w: %s", errs.ErrInvalidInput, err)
	}
	if !ms.auth.IsAdmin(ctx, adminID) {
		return errs.ErrForbidden
	}

	var prev models.Mode
	_, err := ms.repo.UpdateConfig(ctx, func(cfg *models.OperatingConfig) error {
		prev = cfg.Mode
		cfg.Mode = mode
		return nil
	})
	if err != nil {
		return fmt.Errorf("switch mode: %w", err)
	}
	ms.current.Store(string(mode))
	ms.logger.Infof(providers.TypeApp, "Admin %d switched mode %s -> %s", adminID, prev, mode)

	publish(ctx, ms.publisher, ms.logger, events.KeyModeSwitched, events.ModeSwitched{
		AdminID: adminID,
		From:    string(prev),
		To:      string(mode),
	})
	return nil
}

func (ms *ModeService) GroupMode(ctx context.Context) (bool, *models.ChannelLocator) {
	cfg, err := ms.repo.LoadConfig(ctx)
	if err != nil {
		ms.logger.Errorf(providers.TypeApp, "Load group mode failed: %s", err)
		return false, nil
	}
	return cfg.GroupMode, cfg.PrimaryChannel
}

// SetGroupMode toggles the group restriction. Turning it off clears the
// primary channel.
func (ms *ModeService) SetGroupMode(ctx context.Context, adminID int64, on bool) error {
	if !ms.auth.IsAdmin(ctx, adminID) {
		return errs.ErrForbidden
	}
	_, err := ms.repo.UpdateConfig(ctx, func(cfg *models.OperatingConfig) error {
		cfg.GroupMode = on
		return nil
	})
	if err == nil {
		ms.logger.Infof(providers.TypeApp, "Admin %d set group mode to %t", adminID, on)
	}
	return err
}

// SetPrimaryChannel binds the bot to one chat (and thread) and turns the
// group restriction on.
func (ms *ModeService) SetPrimaryChannel(ctx context.Context, adminID int64, channel models.ChannelLocator) error {
	if !ms.auth.IsAdmin(ctx, adminID) {
		return errs.ErrForbidden
	}
	_, err := ms.repo.UpdateConfig(ctx, func(cfg *models.OperatingConfig) error {
		cfg.GroupMode = true
		ch := channel
		cfg.PrimaryChannel = &ch
		return nil
	})
	if err == nil {
		ms.logger.Infof(providers.TypeApp, "Admin %d bound the bot to chat %d thread %d", adminID, channel.ChatID, channel.ThreadID)
	}
	return err
}

// Allows reports whether the bot answers in chat. With the group restriction
// on and a primary channel bound, only that channel (and thread, when set)
// is served; admins keep their private chat for management.
func (ms *ModeService) Allows(ctx context.Context, userID int64, chat models.Chat) bool {
	on, primary := ms.GroupMode(ctx)
	if !on || primary == nil {
		return true
	}
	if chat.ID == primary.ChatID {
		return primary.ThreadID == 0 || chat.ThreadID == primary.ThreadID
	}
	return chat.Private && ms.auth.IsAdmin(ctx, userID)
}
