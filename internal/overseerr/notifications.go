package overseerr

import "strconv"

// NotificationSettings is the per-user notification document. It is kept as
// a generic map so that a read-modify-write round trip preserves fields the
// bot does not know about.
type NotificationSettings map[string]any

const (
	fieldNotificationTypes = "notificationTypes"
	fieldTelegramEnabled   = "telegramEnabled"
	fieldTelegramChatID    = "telegramChatId"
	fieldTelegramSilently  = "telegramSendSilently"
	agentTelegram          = "telegram"
)

// TelegramTypes returns the telegram notification bitmask.
func (s NotificationSettings) TelegramTypes() int {
	types, ok := s[fieldNotificationTypes].(map[string]any)
	if !ok {
		return 0
	}
	switch v := types[agentTelegram].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func (s NotificationSettings) TelegramChatID() string {
	id, _ := s[fieldTelegramChatID].(string)
	return id
}

// TelegramEnabled reports whether telegram notifications reach some chat.
func (s NotificationSettings) TelegramEnabled() bool {
	return s.TelegramTypes() != 0 && s.TelegramChatID() != ""
}

// EnableTelegram points telegram notifications at chatID with the given
// bitmask. The mask values are defined by the backend.
func (s NotificationSettings) EnableTelegram(chatID int64, mask int) {
	s.setTelegramTypes(mask)
	s[fieldTelegramEnabled] = true
	s[fieldTelegramChatID] = strconv.FormatInt(chatID, 10)
	if _, ok := s[fieldTelegramSilently]; !ok {
		s[fieldTelegramSilently] = false
	}
}

func (s NotificationSettings) DisableTelegram() {
	s.setTelegramTypes(0)
}

func (s NotificationSettings) setTelegramTypes(mask int) {
	types, ok := s[fieldNotificationTypes].(map[string]any)
	if !ok {
		types = make(map[string]any)
		s[fieldNotificationTypes] = types
	}
	types[agentTelegram] = mask
}
