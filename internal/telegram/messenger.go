// Package telegram adapts the Telegram Bot API to the bot's abstract
// messenger and event model.
package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mediabot/internal/menu"
	"mediabot/internal/models"
	"mediabot/internal/providers"
	"mediabot/internal/structures"
)

// Messenger is the outbound side of the chat transport.
type Messenger interface {
	SendText(ctx context.Context, chat models.Chat, text string, kb menu.Keyboard) (int, error)
	SendPhoto(ctx context.Context, chat models.Chat, photoURL, caption string, kb menu.Keyboard) (int, error)
	EditText(ctx context.Context, chat models.Chat, messageID int, text string, kb menu.Keyboard) error
	Delete(ctx context.Context, chat models.Chat, messageID int) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

type BotMessenger struct {
	bot    *tgbotapi.BotAPI
	logger providers.Logger
}

// NewBotAPI authenticates the bot token against Telegram.
func NewBotAPI(conf *structures.Config, logger providers.Logger) (*tgbotapi.BotAPI, error) {
	if err := tgbotapi.SetLogger(botLogger{logger: logger}); err != nil {
		return nil, err
	}
	bot, err := tgbotapi.NewBotAPI(conf.Telegram.Token)
	if err != nil {
		return nil, err
	}
	bot.Debug = conf.Telegram.Debug
	logger.Infof(providers.TypeBot, "Authorized on account %s", bot.Self.UserName)
	return bot, nil
}

func NewBotMessenger(bot *tgbotapi.BotAPI, logger providers.Logger) *BotMessenger {
	return &BotMessenger{bot: bot, logger: logger}
}

func NewMessenger(m *BotMessenger) Messenger {
	return m
}

func markup(kb menu.Keyboard) *tgbotapi.InlineKeyboardMarkup {
	if len(kb) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Callback.Data()))
		}
		rows = append(rows, buttons)
	}
	m := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &m
}

func (m *BotMessenger) SendText(ctx context.Context, chat models.Chat, text string, kb menu.Keyboard) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chat.ID, text)
	if mk := markup(kb); mk != nil {
		msg.ReplyMarkup = mk
	}
	sent, err := m.bot.Send(msg)
	if err != nil {
		m.logger.Warnf(providers.TypeBot, "Send to chat %d failed: %s", chat.ID, err)
		return 0, err
	}
	return sent.MessageID, nil
}

func (m *BotMessenger) SendPhoto(ctx context.Context, chat models.Chat, photoURL, caption string, kb menu.Keyboard) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewPhoto(chat.ID, tgbotapi.FileURL(photoURL))
	msg.Caption = caption
	if mk := markup(kb); mk != nil {
		msg.ReplyMarkup = mk
	}
	sent, err := m.bot.Send(msg)
	if err != nil {
		m.logger.Warnf(providers.TypeBot, "Send photo to chat %d failed: %s", chat.ID, err)
		return 0, err
	}
	return sent.MessageID, nil
}

// EditText replaces the text and keyboard of a text message. Photo messages
// cannot be edited into text; callers fall back to sending a new message.
func (m *BotMessenger) EditText(ctx context.Context, chat models.Chat, messageID int, text string, kb menu.Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageText(chat.ID, messageID, text)
	edit.ReplyMarkup = markup(kb)
	_, err := m.bot.Request(edit)
	return err
}

func (m *BotMessenger) Delete(ctx context.Context, chat models.Chat, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := m.bot.Request(tgbotapi.NewDeleteMessage(chat.ID, messageID))
	return err
}

func (m *BotMessenger) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := m.bot.Request(tgbotapi.NewCallback(callbackID, text))
	return err
}

// botLogger routes the library's own log lines into the bot log.
type botLogger struct {
	logger providers.Logger
}

func (l botLogger) Println(v ...interface{}) {
	l.logger.Debugf(providers.TypeBot, "%s", fmtArgs(v))
}

func (l botLogger) Printf(format string, v ...interface{}) {
	l.logger.Debugf(providers.TypeBot, format, v...)
}
