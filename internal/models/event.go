package models

import "strings"

type EventKind int

const (
	EventText EventKind = iota + 1
	EventButton
)

func (k EventKind) String() string {
	if k == EventButton {
		return "button"
	}
	return "text"
}

// Sender is the chat user behind an event.
type Sender struct {
	ID          int64
	DisplayName string
}

// Chat addresses the conversation an event came from.
type Chat struct {
	ID       int64
	ThreadID int
	Private  bool
}

// Event is an inbound interaction resolved once at the transport boundary.
// Text carries the message body for EventText and the callback payload for
// EventButton.
type Event struct {
	Kind       EventKind
	From       Sender
	Chat       Chat
	Text       string
	MessageID  int
	CallbackID string
}

// Command splits "/check Venom" into ("check", "Venom"). The bot-name suffix
// of group commands ("/check@bot") is dropped.
func (e Event) Command() (string, string, bool) {
	if e.Kind != EventText || !strings.HasPrefix(e.Text, "/") {
		return "", "", false
	}
	name, args, _ := strings.Cut(strings.TrimPrefix(e.Text, "/"), " ")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return strings.ToLower(name), strings.TrimSpace(args), true
}
