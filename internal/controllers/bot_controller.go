package controllers

import (
	"context"

	"mediabot/internal/menu"
	"mediabot/internal/models"
	"mediabot/internal/providers"
	"mediabot/internal/services"
	"mediabot/internal/structures"
	"mediabot/internal/telegram"
)

// BotController drives the per-user conversation: it gates every event,
// advances the in-flight wizard and routes commands and button presses.
type BotController struct {
	auth       services.AuthServiceInterface
	modes      services.ModeServiceInterface
	sessions   services.SessionServiceInterface
	media      services.MediaServiceInterface
	convs      services.ConversationStoreInterface
	locker     *services.UserLocker
	messenger  telegram.Messenger
	posterBase string
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
}

func NewBotController(
	conf *structures.Config,
	auth services.AuthServiceInterface,
	modes services.ModeServiceInterface,
	sessions services.SessionServiceInterface,
	media services.MediaServiceInterface,
	convs services.ConversationStoreInterface,
	locker *services.UserLocker,
	messenger telegram.Messenger,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) *BotController {
	return &BotController{
		auth:       auth,
		modes:      modes,
		sessions:   sessions,
		media:      media,
		convs:      convs,
		locker:     locker,
		messenger:  messenger,
		posterBase: conf.Backend.PosterBaseURL,
		logger:     logger,
		metrics:    metrics,
	}
}

// NewHandler exposes the controller as the transport's event handler.
func NewHandler(bc *BotController) telegram.Handler {
	return bc
}

// turn is one event being handled together with the user's context.
type turn struct {
	ev   models.Event
	conv *models.ConversationContext
	// answer is the toast shown for a button press
	answer string
}

func (t *turn) userID() int64 {
	return t.ev.From.ID
}

// Handle processes one event. Events of the same user never run
// concurrently; the conversation context is loaded before and stored after.
func (bc *BotController) Handle(ctx context.Context, ev models.Event) {
	unlock := bc.locker.Lock(ev.From.ID)
	defer unlock()

	ctx = services.WithCorrelationID(ctx, "")
	bc.metrics.IncInteractions(ev.Kind.String())
	bc.logger.Debugf(providers.TypeBot, "[%s] %s from %d in %d", services.CorrelationID(ctx), ev.Kind, ev.From.ID, ev.Chat.ID)

	t := &turn{ev: ev, conv: bc.convs.Get(ev.From.ID)}
	if ev.Kind == models.EventButton {
		defer func() {
			if err := bc.messenger.AnswerCallback(ctx, ev.CallbackID, t.answer); err != nil {
				bc.logger.Debugf(providers.TypeBot, "Answer callback of %d failed: %s", ev.From.ID, err)
			}
		}()
	}

	if !bc.modes.Allows(ctx, ev.From.ID, ev.Chat) {
		bc.logger.Debugf(providers.TypeBot, "Ignoring %d outside the primary channel (chat %d)", ev.From.ID, ev.Chat.ID)
		return
	}

	if !bc.gate(ctx, t) {
		bc.saveConversation(ctx, t)
		return
	}
	if err := bc.auth.Touch(ctx, ev.From); err != nil {
		bc.logger.Warnf(providers.TypeApp, "Touch of user %d failed: %s", ev.From.ID, err)
	}

	switch ev.Kind {
	case models.EventText:
		bc.onText(ctx, t)
	case models.EventButton:
		bc.onButton(ctx, t)
	}
	bc.saveConversation(ctx, t)
}

// saveConversation stores the context and tells the user when it was lost.
func (bc *BotController) saveConversation(ctx context.Context, t *turn) {
	err := bc.convs.Save(t.userID(), t.conv)
	if err == nil {
		return
	}
	bc.logger.Errorf(providers.TypeBot, "Conversation of user %d lost: %s", t.userID(), err)
	if t.conv.Pending() {
		bc.send(ctx, t, msgContextLost, nil)
	}
}

// gate runs the password prompt. It returns true when the event may go on.
func (bc *BotController) gate(ctx context.Context, t *turn) bool {
	if bc.auth.IsAuthorized(ctx, t.userID()) {
		if t.conv.State == models.StateAwaitingPassword {
			t.conv.Reset()
		}
		return true
	}

	if t.conv.State != models.StateAwaitingPassword || t.ev.Kind != models.EventText {
		t.conv.Reset()
		t.conv.State = models.StateAwaitingPassword
		t.answer = msgPasswordRequired
		bc.send(ctx, t, msgPasswordPrompt, nil)
		return false
	}

	ok, err := bc.auth.Authorize(ctx, t.ev.From, t.ev.Text)
	bc.deleteBestEffort(ctx, t)
	switch {
	case err != nil:
		bc.logger.Errorf(providers.TypeApp, "Authorize user %d failed: %s", t.userID(), err)
		bc.send(ctx, t, msgTryLater, nil)
	case !ok:
		bc.send(ctx, t, msgWrongPassword, nil)
	case !bc.auth.IsAuthorized(ctx, t.userID()):
		t.conv.Reset()
		bc.send(ctx, t, msgBlocked, nil)
	default:
		t.conv.Reset()
		bc.send(ctx, t, msgAccessGranted, nil)
	}
	return false
}

func (bc *BotController) onText(ctx context.Context, t *turn) {
	if name, args, ok := t.ev.Command(); ok {
		if !t.conv.IsIdle() {
			bc.logger.Debugf(providers.TypeBot, "Command /%s aborts %s of user %d", name, t.conv.State, t.userID())
			t.conv.Reset()
		}
		bc.onCommand(ctx, t, name, args)
		return
	}

	switch t.conv.State {
	case models.StateAwaitingLoginEmail:
		bc.loginEmailStep(ctx, t)
	case models.StateAwaitingLoginPassword:
		bc.loginPasswordStep(ctx, t)
	case models.StateCreatingIdentity:
		bc.identityStep(ctx, t)
	case models.StateAwaitingIssueDescription:
		bc.issueStep(ctx, t)
	default:
		bc.send(ctx, t, msgHint, nil)
	}
}

func (bc *BotController) onButton(ctx context.Context, t *turn) {
	cb, err := menu.Parse(t.ev.Text)
	if err != nil {
		bc.logger.Warnf(providers.TypeBot, "User %d: %s", t.userID(), err)
		t.answer = msgInvalidAction
		return
	}

	switch cb.Action {
	case menu.ActionCancel:
		bc.cancel(ctx, t)
	case menu.ActionMore, menu.ActionBack:
		bc.pageResults(ctx, t, cb)
	case menu.ActionSelect:
		bc.selectResult(ctx, t, cb)
	case menu.ActionResults:
		bc.showResults(ctx, t)
	case menu.ActionConfirm:
		bc.confirm(ctx, t, cb)
	case menu.ActionReport:
		bc.report(ctx, t)
	case menu.ActionIssue:
		bc.issueType(ctx, t, cb)
	case menu.ActionSettings:
		bc.replaceSettings(ctx, t)
	case menu.ActionLogin:
		bc.startLogin(ctx, t, false)
	case menu.ActionLoginShared:
		bc.startLogin(ctx, t, true)
	case menu.ActionLogout:
		bc.logout(ctx, t, false)
	case menu.ActionLogoutShared:
		bc.logout(ctx, t, true)
	case menu.ActionMode:
		bc.switchMode(ctx, t, cb)
	case menu.ActionIdentityList:
		bc.listIdentities(ctx, t)
	case menu.ActionIdentityPage:
		bc.pageIdentities(ctx, t, cb)
	case menu.ActionIdentity:
		bc.selectIdentity(ctx, t, cb)
	case menu.ActionIdentityCreate:
		bc.startIdentity(ctx, t)
	case menu.ActionNotifyToggle:
		bc.toggleNotifications(ctx, t)
	case menu.ActionGroupToggle:
		bc.toggleGroup(ctx, t)
	case menu.ActionUsers:
		bc.listUsers(ctx, t, 0)
	case menu.ActionUserPage:
		bc.pageUsers(ctx, t, cb)
	case menu.ActionUserBlock, menu.ActionUserAdmin:
		bc.manageUser(ctx, t, cb)
	default:
		bc.logger.Warnf(providers.TypeBot, "User %d: unhandled action %s", t.userID(), cb.Action)
		t.answer = msgInvalidAction
	}
}

func (bc *BotController) cancel(ctx context.Context, t *turn) {
	t.conv.Reset()
	t.conv.Selected = nil
	bc.replace(ctx, t, msgCancelled, nil)
}

// send posts a new message and returns its id (0 on failure).
func (bc *BotController) send(ctx context.Context, t *turn, text string, kb menu.Keyboard) int {
	id, err := bc.messenger.SendText(ctx, t.ev.Chat, text, kb)
	if err != nil {
		bc.logger.Warnf(providers.TypeBot, "Reply to %d failed: %s", t.userID(), err)
	}
	return id
}

// replace edits the message a button belongs to and falls back to a new
// message for text events or messages that cannot be edited (photos).
func (bc *BotController) replace(ctx context.Context, t *turn, text string, kb menu.Keyboard) int {
	if t.ev.Kind == models.EventButton && t.ev.MessageID != 0 {
		err := bc.messenger.EditText(ctx, t.ev.Chat, t.ev.MessageID, text, kb)
		if err == nil {
			return t.ev.MessageID
		}
		bc.logger.Debugf(providers.TypeBot, "Edit of message %d failed, sending anew: %s", t.ev.MessageID, err)
		bc.deleteBestEffort(ctx, t)
	}
	return bc.send(ctx, t, text, kb)
}

func (bc *BotController) deleteBestEffort(ctx context.Context, t *turn) {
	if t.ev.MessageID == 0 {
		return
	}
	if err := bc.messenger.Delete(ctx, t.ev.Chat, t.ev.MessageID); err != nil {
		bc.logger.Debugf(providers.TypeBot, "Delete of message %d failed: %s", t.ev.MessageID, err)
	}
}

// fail reports err to the user and aborts any wizard back to Idle.
func (bc *BotController) fail(ctx context.Context, t *turn, op string, err error) {
	bc.logger.Warnf(providers.TypeApp, "%s for user %d failed: %s", op, t.userID(), err)
	t.conv.Reset()
	bc.send(ctx, t, bc.explain(err), nil)
}
