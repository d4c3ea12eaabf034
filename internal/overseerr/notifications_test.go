package overseerr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotificationSettings_EnableDisable(t *testing.T) {
	s := NotificationSettings{"telegramSendSilently": true}
	s.EnableTelegram(-100, 6)
	assert.True(t, s.TelegramEnabled())
	assert.Equal(t, "-100", s.TelegramChatID())
	assert.Equal(t, true, s["telegramSendSilently"], "existing preference is kept")

	s.DisableTelegram()
	assert.False(t, s.TelegramEnabled())
	assert.Equal(t, "-100", s.TelegramChatID())
}

func TestNotificationSettings_EmptyDocument(t *testing.T) {
	s := NotificationSettings{}
	assert.Zero(t, s.TelegramTypes())
	assert.False(t, s.TelegramEnabled())
	s.EnableTelegram(1, 2)
	assert.Equal(t, false, s["telegramSendSilently"])
}
