package testutil

import (
	"context"
	"sync"

	"mediabot/internal/menu"
	"mediabot/internal/models"
)

// SentMessage is one outbound call recorded by FakeMessenger.
type SentMessage struct {
	Op        string
	ChatID    int64
	MessageID int
	Text      string
	Photo     string
	Keyboard  menu.Keyboard
}

// FakeMessenger implements telegram.Messenger in memory.
type FakeMessenger struct {
	mu       sync.Mutex
	nextID   int
	Sent     []SentMessage
	Deleted  []int
	Answers  []string
	EditErr  error
	PhotoErr error
}

func (f *FakeMessenger) SendText(_ context.Context, chat models.Chat, text string, kb menu.Keyboard) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.Sent = append(f.Sent, SentMessage{Op: "send", ChatID: chat.ID, MessageID: f.nextID, Text: text, Keyboard: kb})
	return f.nextID, nil
}

func (f *FakeMessenger) SendPhoto(_ context.Context, chat models.Chat, photoURL, caption string, kb menu.Keyboard) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PhotoErr != nil {
		return 0, f.PhotoErr
	}
	f.nextID++
	f.Sent = append(f.Sent, SentMessage{Op: "photo", ChatID: chat.ID, MessageID: f.nextID, Text: caption, Photo: photoURL, Keyboard: kb})
	return f.nextID, nil
}

func (f *FakeMessenger) EditText(_ context.Context, chat models.Chat, messageID int, text string, kb menu.Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.EditErr != nil {
		return f.EditErr
	}
	f.Sent = append(f.Sent, SentMessage{Op: "edit", ChatID: chat.ID, MessageID: messageID, Text: text, Keyboard: kb})
	return nil
}

func (f *FakeMessenger) Delete(_ context.Context, _ models.Chat, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, messageID)
	return nil
}

func (f *FakeMessenger) AnswerCallback(_ context.Context, _ string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Answers = append(f.Answers, text)
	return nil
}

// Last returns the most recent outbound message.
func (f *FakeMessenger) Last() SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Sent) == 0 {
		return SentMessage{}
	}
	return f.Sent[len(f.Sent)-1]
}

// LastAnswer returns the most recent callback answer.
func (f *FakeMessenger) LastAnswer() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Answers) == 0 {
		return ""
	}
	return f.Answers[len(f.Answers)-1]
}

func (f *FakeMessenger) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Sent)
}
