package controllers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mediabot/internal/menu"
	"mediabot/internal/models"
	"mediabot/internal/overseerr"
	"mediabot/internal/security"
	"mediabot/internal/services"
	"mediabot/internal/storage"
	"mediabot/internal/structures"
	"mediabot/internal/testutil"
)

const (
	adminID int64 = 1
	userID  int64 = 2
	groupID int64 = -100
)

type botFixture struct {
	conf     *structures.Config
	backend  *testutil.FakeBackend
	msgr     *testutil.FakeMessenger
	cache    *testutil.MockCache
	store    *testutil.MemoryStore
	repo     *storage.Repository
	auth     *services.AuthService
	modes    *services.ModeService
	sessions *services.SessionService
	bot      *BotController
	inbound  int
}

func newBotFixture(t *testing.T, mutate ...func(*structures.Config)) *botFixture {
	t.Helper()
	f := &botFixture{
		backend: testutil.NewFakeBackend(t),
		msgr:    &testutil.FakeMessenger{},
		cache:   testutil.NewMockCache(),
		store:   testutil.NewMemoryStore(),
		inbound: 1000,
	}
	f.backend.Accounts = []testutil.FakeAccount{
		{ID: 10, Email: "ann@example.com", Password: "ann-pw", DisplayName: "Ann"},
	}
	f.conf = &structures.Config{
		Backend: structures.BackendConfig{
			URL:               f.backend.URL(),
			APIKey:            testutil.FakeAPIKey,
			Timeout:           2 * time.Second,
			Enable4K:          true,
			NotificationTypes: 4062,
		},
		Access:   structures.AccessConfig{Password: "letmein", DefaultMode: "direct"},
		Security: structures.SecurityConfig{Secret: "0123456789abcdef0123"},
	}
	for _, m := range mutate {
		m(f.conf)
	}

	logger := &testutil.MockLogger{}
	metrics := testutil.NewMockMetrics()
	publisher := &testutil.MockPublisher{}
	q := storage.NewQueue(16)
	t.Cleanup(q.Close)
	f.repo = storage.NewRepository(f.store, q, f.conf, logger, metrics)

	sealer, err := security.NewSealer(f.conf)
	require.NoError(t, err)
	client := overseerr.NewClient(f.conf, logger, metrics)
	f.auth = services.NewAuthService(f.conf, f.repo, logger)
	f.modes = services.NewModeService(f.conf, f.repo, f.auth, publisher, logger)
	f.sessions = services.NewSessionService(f.conf, f.repo, client, sealer, f.modes, f.auth, logger, metrics)
	media := services.NewMediaService(f.conf, client, f.sessions, f.modes, publisher, logger)
	convs := services.NewConversationStore(f.cache, logger)

	f.bot = NewBotController(f.conf, f.auth, f.modes, f.sessions, media, convs, services.NewUserLocker(), f.msgr, logger, metrics)
	return f
}

// seedUsers allow-lists ids; the first one is admin.
func (f *botFixture) seedUsers(t *testing.T, ids ...int64) {
	t.Helper()
	_, err := f.repo.UpdateConfig(context.Background(), func(cfg *models.OperatingConfig) error {
		for i, id := range ids {
			cfg.Users[id] = &models.UserEntry{AllowListed: true, IsAdmin: i == 0}
		}
		return nil
	})
	require.NoError(t, err)
}

func dm(id int64) models.Chat {
	return models.Chat{ID: id, Private: true}
}

// say sends a text message from user in their private chat and returns its id.
func (f *botFixture) say(user int64, text string) int {
	return f.sayIn(user, dm(user), text)
}

func (f *botFixture) sayIn(user int64, chat models.Chat, text string) int {
	f.inbound++
	f.bot.Handle(context.Background(), models.Event{
		Kind:      models.EventText,
		From:      models.Sender{ID: user, DisplayName: fmt.Sprintf("user%d", user)},
		Chat:      chat,
		Text:      text,
		MessageID: f.inbound,
	})
	return f.inbound
}

// press taps a button on the bot's most recent message.
func (f *botFixture) press(user int64, data string) {
	f.pressOn(user, f.msgr.Last().MessageID, data)
}

func (f *botFixture) pressOn(user int64, messageID int, data string) {
	f.bot.Handle(context.Background(), models.Event{
		Kind:       models.EventButton,
		From:       models.Sender{ID: user, DisplayName: fmt.Sprintf("user%d", user)},
		Chat:       dm(user),
		Text:       data,
		MessageID:  messageID,
		CallbackID: fmt.Sprintf("cb-%d", messageID),
	})
}

func (f *botFixture) conv(user int64) *models.ConversationContext {
	return services.NewConversationStore(f.cache, &testutil.MockLogger{}).Get(user)
}

// callbacks flattens a keyboard into its payloads.
func callbacks(kb menu.Keyboard) []string {
	var out []string
	for _, row := range kb {
		for _, b := range row {
			out = append(out, b.Callback.Data())
		}
	}
	return out
}
