package telegram

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mediabot/internal/models"
	"mediabot/internal/providers"
	"mediabot/internal/structures"
)

const handlerTimeout = 2 * time.Minute

// Handler consumes inbound events.
type Handler interface {
	Handle(ctx context.Context, ev models.Event)
}

// Poller long-polls Telegram. Updates of one user are handled one at a
// time in arrival order; different users are handled concurrently.
type Poller struct {
	bot     *tgbotapi.BotAPI
	timeout int
	logger  providers.Logger
}

func NewPoller(conf *structures.Config, bot *tgbotapi.BotAPI, logger providers.Logger) *Poller {
	return &Poller{bot: bot, timeout: conf.Telegram.PollTimeout, logger: logger}
}

// Run blocks until ctx is cancelled, then waits for in-flight handlers.
func (p *Poller) Run(ctx context.Context, h Handler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = p.timeout
	updates := p.bot.GetUpdatesChan(u)
	p.logger.Infof(providers.TypeBot, "Polling for updates")

	// handlers outlive ctx so that a shutdown does not cut replies in half
	base := context.WithoutCancel(ctx)
	d := newDispatcher(func(ev models.Event) { p.dispatch(base, h, ev) })
	for {
		select {
		case <-ctx.Done():
			p.bot.StopReceivingUpdates()
			d.Wait()
			p.logger.Infof(providers.TypeBot, "Polling stopped")
			return
		case upd, ok := <-updates:
			if !ok {
				d.Wait()
				return
			}
			if ev, ok := ToEvent(upd); ok {
				d.Submit(ev)
			}
		}
	}
}

func (p *Poller) dispatch(base context.Context, h Handler, ev models.Event) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Errorf(providers.TypeBot, "Handler panic for user %d: %v\n%s", ev.From.ID, r, debug.Stack())
		}
	}()
	ctx, cancel := context.WithTimeout(base, handlerTimeout)
	defer cancel()
	h.Handle(ctx, ev)
}

// ToEvent resolves an update into a text or button event. Updates the bot
// does not act on report false.
func ToEvent(upd tgbotapi.Update) (models.Event, bool) {
	switch {
	case upd.CallbackQuery != nil:
		cq := upd.CallbackQuery
		if cq.From == nil {
			return models.Event{}, false
		}
		ev := models.Event{
			Kind:       models.EventButton,
			From:       sender(cq.From),
			Text:       cq.Data,
			CallbackID: cq.ID,
		}
		if cq.Message != nil {
			ev.Chat = chat(cq.Message.Chat)
			ev.MessageID = cq.Message.MessageID
		}
		return ev, true
	case upd.Message != nil:
		msg := upd.Message
		if msg.From == nil || msg.Text == "" {
			return models.Event{}, false
		}
		return models.Event{
			Kind:      models.EventText,
			From:      sender(msg.From),
			Chat:      chat(msg.Chat),
			Text:      msg.Text,
			MessageID: msg.MessageID,
		}, true
	}
	return models.Event{}, false
}

func sender(u *tgbotapi.User) models.Sender {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	return models.Sender{ID: u.ID, DisplayName: name}
}

func chat(c *tgbotapi.Chat) models.Chat {
	if c == nil {
		return models.Chat{}
	}
	return models.Chat{ID: c.ID, Private: c.IsPrivate()}
}

func fmtArgs(v []interface{}) string {
	return strings.TrimSuffix(fmt.Sprintln(v...), "\n")
}
