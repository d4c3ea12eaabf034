// Package jobs runs the bot's background work: startup restore, the shared
// session keepalive, gauge refresh and the shutdown flush.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"mediabot/internal/jobs/interfaces"
	"mediabot/internal/models"
	"mediabot/internal/providers"
	"mediabot/internal/services"
	"mediabot/internal/storage"
	storageif "mediabot/internal/storage/interfaces"
	"mediabot/internal/structures"
)

const jobTimeout = 30 * time.Second

type Scheduler struct {
	config   *structures.Config
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	repo     *storage.Repository
	queue    *storage.Queue
	store    storageif.StoreInterface
	modes    services.ModeServiceInterface
	sessions services.SessionServiceInterface
	cron     *gron.Cron
	opsMu    sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	if iv := s.config.Scheduler.KeepaliveInterval; iv > 0 {
		s.cron.AddFunc(gron.Every(iv), func() {
			s.opsMu.Lock()
			defer s.opsMu.Unlock()
			s.keepalive()
		})
	}
	if iv := s.config.Scheduler.StatsInterval; iv > 0 {
		s.cron.AddFunc(gron.Every(iv), func() {
			s.opsMu.Lock()
			defer s.opsMu.Unlock()
			s.refreshGauges()
		})
	}

	s.cron.Start()
}

// keepalive probes the shared session so that an expired cookie is renewed
// before a user needs it.
func (s *Scheduler) keepalive() {
	if s.modes.Mode() != models.ModeSharedSession {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.sessions.EnsureShared(ctx); err != nil {
		s.logger.Warnf(providers.TypeApp, "Shared session keepalive: %s", err)
		return
	}
	s.logger.Debugf(providers.TypeApp, "Shared session is alive")
}

func (s *Scheduler) refreshGauges() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	cfg, err := s.repo.LoadConfig(ctx)
	if err != nil {
		s.logger.Errorf(providers.TypeStorage, "Gauge refresh: %s", err)
		return
	}
	s.metrics.SetAllowListedUsers(cfg.AllowListedCount())

	n, err := s.repo.CountSessions(ctx)
	if err != nil {
		s.logger.Errorf(providers.TypeStorage, "Gauge refresh: %s", err)
		return
	}
	s.metrics.SetSessions(n)
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Restore migrates and seeds the operating config, then loads the mode.
func (s *Scheduler) Restore() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	cfg, err := s.repo.Bootstrap(ctx, s.config.Access.Whitelist)
	if err != nil {
		return err
	}
	s.logger.Infof(providers.TypeApp, "Restored operating config: mode=%s users=%d group=%t", cfg.Mode, len(cfg.Users), cfg.GroupMode)
	if err := s.modes.Sync(ctx); err != nil {
		return err
	}
	s.refreshGauges()
	return nil
}

// Persist drains pending writes and closes the record store.
func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Flushing pending writes...")
	s.queue.Close()
	if err := s.store.Close(); err != nil {
		s.logger.Errorf(providers.TypeStorage, "Error while closing store: %s", err)
		return err
	}
	return nil
}

func NewScheduler(
	config *structures.Config,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
	repo *storage.Repository,
	queue *storage.Queue,
	store storageif.StoreInterface,
	modes services.ModeServiceInterface,
	sessions services.SessionServiceInterface,
) interfaces.SchedulerInterface {
	return &Scheduler{
		config:   config,
		logger:   logger,
		metrics:  metrics,
		repo:     repo,
		queue:    queue,
		store:    store,
		modes:    modes,
		sessions: sessions,
	}
}
