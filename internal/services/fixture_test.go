package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mediabot/internal/models"
	"mediabot/internal/overseerr"
	"mediabot/internal/security"
	"mediabot/internal/storage"
	"mediabot/internal/structures"
	"mediabot/internal/testutil"
)

const (
	adminID int64 = 1
	userID  int64 = 2
	chatID  int64 = 500
)

type fixture struct {
	conf      *structures.Config
	store     *testutil.MemoryStore
	repo      *storage.Repository
	backend   *testutil.FakeBackend
	publisher *testutil.MockPublisher
	metrics   *testutil.MockMetrics
	logger    *testutil.MockLogger
	auth      *AuthService
	modes     *ModeService
	sessions  *SessionService
	media     *MediaService
}

func testConfig(backendURL string) *structures.Config {
	return &structures.Config{
		Backend: structures.BackendConfig{
			URL:               backendURL,
			APIKey:            testutil.FakeAPIKey,
			Timeout:           2 * time.Second,
			Enable4K:          true,
			NotificationTypes: 4062,
		},
		Access: structures.AccessConfig{
			Password:    "letmein",
			DefaultMode: string(models.ModeDirectLogin),
		},
		Security: structures.SecurityConfig{Secret: "0123456789abcdef0123"},
	}
}

func newFixture(t *testing.T, mutate ...func(*structures.Config)) *fixture {
	t.Helper()
	f := &fixture{
		store:     testutil.NewMemoryStore(),
		backend:   testutil.NewFakeBackend(t),
		publisher: &testutil.MockPublisher{},
		metrics:   testutil.NewMockMetrics(),
		logger:    &testutil.MockLogger{},
	}
	f.backend.Accounts = []testutil.FakeAccount{
		{ID: 10, Email: "ann@example.com", Password: "ann-pw", DisplayName: "Ann"},
		{ID: 11, Email: "owner@example.com", Password: "owner-pw", DisplayName: "Owner"},
	}
	f.conf = testConfig(f.backend.URL())
	for _, m := range mutate {
		m(f.conf)
	}

	q := storage.NewQueue(16)
	t.Cleanup(q.Close)
	f.repo = storage.NewRepository(f.store, q, f.conf, f.logger, f.metrics)

	sealer, err := security.NewSealer(f.conf)
	require.NoError(t, err)
	client := overseerr.NewClient(f.conf, f.logger, f.metrics)

	f.auth = NewAuthService(f.conf, f.repo, f.logger)
	f.modes = NewModeService(f.conf, f.repo, f.auth, f.publisher, f.logger)
	f.sessions = NewSessionService(f.conf, f.repo, client, sealer, f.modes, f.auth, f.logger, f.metrics)
	f.media = NewMediaService(f.conf, client, f.sessions, f.modes, f.publisher, f.logger)
	return f
}

// seedUsers writes allow-listed users; the first id is admin.
func (f *fixture) seedUsers(t *testing.T, ids ...int64) {
	t.Helper()
	_, err := f.repo.UpdateConfig(context.Background(), func(cfg *models.OperatingConfig) error {
		for i, id := range ids {
			cfg.Users[id] = &models.UserEntry{AllowListed: true, IsAdmin: i == 0}
		}
		return nil
	})
	require.NoError(t, err)
}

func (f *fixture) switchMode(t *testing.T, mode models.Mode) {
	t.Helper()
	require.NoError(t, f.modes.SwitchMode(context.Background(), adminID, mode))
}
