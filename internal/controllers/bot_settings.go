package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mediabot/internal/errs"
	"mediabot/internal/menu"
	"mediabot/internal/models"
	"mediabot/internal/providers"
	"mediabot/internal/services"
)

func (bc *BotController) sendSettings(ctx context.Context, t *turn) {
	text, kb := bc.settings(ctx, t.userID())
	t.conv.MenuMessageID = bc.send(ctx, t, text, kb)
}

func (bc *BotController) replaceSettings(ctx context.Context, t *turn) {
	text, kb := bc.settings(ctx, t.userID())
	t.conv.MenuMessageID = bc.replace(ctx, t, text, kb)
}

// settings builds the menu for the current mode. Admin rows are only shown
// to admins.
func (bc *BotController) settings(ctx context.Context, userID int64) (string, menu.Keyboard) {
	mode := bc.modes.Mode()
	admin := bc.auth.IsAdmin(ctx, userID)

	var b strings.Builder
	fmt.Fprintf(&b, "⚙️ Settings\nMode: %s\n", mode.Title())
	b.WriteString(bc.credentialLine(ctx, userID, mode))

	var kb menu.Keyboard
	switch mode {
	case models.ModeDirectLogin:
		if _, err := bc.sessions.Session(ctx, userID); err != nil {
			kb = append(kb, row("🔑 Log in", menu.Button(menu.ActionLogin)))
		} else {
			kb = append(kb, row("🚪 Log out", menu.Button(menu.ActionLogout)))
		}
	case models.ModeSharedSession:
		if admin {
			if _, err := bc.sessions.SharedSession(ctx); err != nil {
				kb = append(kb, row("🔑 Log in shared account", menu.Button(menu.ActionLoginShared)))
			} else {
				kb = append(kb, row("🚪 Log out shared account", menu.Button(menu.ActionLogoutShared)))
			}
		}
	case models.ModeKeyImpersonation:
		kb = append(kb, row("👥 Choose user", menu.Button(menu.ActionIdentityList)))
		kb = append(kb, row("➕ New user", menu.Button(menu.ActionIdentityCreate)))
		if sel, err := bc.sessions.Selection(ctx, userID); err == nil {
			label := "🔔 Notifications"
			if on, err := bc.sessions.NotificationsEnabled(ctx, sel.BackendUserID); err == nil {
				if on {
					label = "🔕 Turn notifications off"
				} else {
					label = "🔔 Turn notifications on"
				}
			}
			kb = append(kb, row(label, menu.Button(menu.ActionNotifyToggle)))
		}
	}

	if admin {
		var modes []menu.KeyButton
		for _, m := range []models.Mode{models.ModeDirectLogin, models.ModeSharedSession, models.ModeKeyImpersonation} {
			if m != mode {
				modes = append(modes, menu.KeyButton{Text: "↔️ " + m.Title(), Callback: menu.ButtonArg(menu.ActionMode, string(m))})
			}
		}
		kb = append(kb, modes)
		group := "👥 Group mode: off"
		if on, _ := bc.modes.GroupMode(ctx); on {
			group = "👥 Group mode: on"
		}
		kb = append(kb, []menu.KeyButton{
			{Text: group, Callback: menu.Button(menu.ActionGroupToggle)},
			{Text: "🧑‍🤝‍🧑 Users", Callback: menu.Button(menu.ActionUsers)},
		})
	}
	kb = append(kb, menu.CancelRow())
	return b.String(), kb
}

func row(text string, cb menu.Callback) []menu.KeyButton {
	return []menu.KeyButton{{Text: text, Callback: cb}}
}

func (bc *BotController) startLogin(ctx context.Context, t *turn, shared bool) {
	mode := bc.modes.Mode()
	switch {
	case mode == models.ModeKeyImpersonation:
		t.answer = bc.explain(errs.ErrConflictingState)
		return
	case shared && !bc.auth.IsAdmin(ctx, t.userID()):
		t.answer = bc.explain(errs.ErrForbidden)
		return
	case !shared && mode != models.ModeDirectLogin:
		t.answer = bc.explain(errs.ErrConflictingState)
		return
	}
	t.conv.BeginLogin(shared)
	bc.replace(ctx, t, msgLoginEmail, menu.Keyboard{menu.CancelRow()})
}

func (bc *BotController) loginEmailStep(ctx context.Context, t *turn) {
	email := strings.TrimSpace(t.ev.Text)
	if !looksLikeEmail(email) {
		bc.send(ctx, t, msgBadEmail, menu.Keyboard{menu.CancelRow()})
		return
	}
	t.conv.LoginEmail = email
	t.conv.State = models.StateAwaitingLoginPassword
	bc.send(ctx, t, msgLoginPassword, menu.Keyboard{menu.CancelRow()})
}

// loginPasswordStep ends the wizard whatever the outcome.
func (bc *BotController) loginPasswordStep(ctx context.Context, t *turn) {
	bc.deleteBestEffort(ctx, t)
	email, shared := t.conv.LoginEmail, t.conv.LoginShared
	t.conv.Reset()

	var sess *models.UserSession
	var err error
	if shared {
		sess, err = bc.sessions.LoginShared(ctx, t.userID(), email, t.ev.Text)
	} else {
		sess, err = bc.sessions.Login(ctx, t.userID(), email, t.ev.Text)
	}
	if err != nil {
		bc.fail(ctx, t, "login", err)
		return
	}
	bc.send(ctx, t, fmt.Sprintf("✅ Logged in as %s.", sessionName(sess)), nil)
}

func looksLikeEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t\n")
}

func (bc *BotController) logout(ctx context.Context, t *turn, shared bool) {
	var err error
	if shared {
		err = bc.sessions.LogoutShared(ctx, t.userID())
	} else {
		err = bc.sessions.Logout(ctx, t.userID())
	}
	if err != nil && !errors.Is(err, errs.ErrNotLoggedIn) {
		bc.fail(ctx, t, "logout", err)
		return
	}
	t.answer = msgLoggedOut
	bc.replaceSettings(ctx, t)
}

func (bc *BotController) switchMode(ctx context.Context, t *turn, cb menu.Callback) {
	mode, err := models.ParseMode(cb.Arg)
	if err != nil {
		bc.logger.Warnf(providers.TypeBot, "User %d: %s", t.userID(), err)
		t.answer = msgInvalidAction
		return
	}
	if err := bc.modes.SwitchMode(ctx, t.userID(), mode); err != nil {
		if errors.Is(err, errs.ErrForbidden) {
			t.answer = bc.explain(err)
			return
		}
		bc.fail(ctx, t, "switch mode", err)
		return
	}
	t.answer = "Mode: " + mode.Title()
	bc.replaceSettings(ctx, t)
}

func (bc *BotController) listIdentities(ctx context.Context, t *turn) {
	if bc.modes.Mode() != models.ModeKeyImpersonation {
		t.answer = bc.explain(errs.ErrConflictingState)
		return
	}
	ids, err := bc.media.Identities(ctx)
	if err != nil {
		bc.fail(ctx, t, "list identities", err)
		return
	}
	if len(ids) == 0 {
		bc.replace(ctx, t, msgNoIdentities, menu.Keyboard{row("➕ New user", menu.Button(menu.ActionIdentityCreate)), menu.CancelRow()})
		return
	}
	t.conv.Identities = ids
	t.conv.IdentityOffset = 0
	t.conv.MenuMessageID = bc.replace(ctx, t, identitiesText(ids, 0), identitiesKeyboard(ids, 0))
}

func identitiesText(ids []models.Identity, offset int) string {
	page := menu.Render(ids, offset, menu.IdentityPageSize)
	return fmt.Sprintf("%s (page %d/%d)", msgSelectIdentity,
		page.Offset/menu.IdentityPageSize+1, menu.PageCount(len(ids), menu.IdentityPageSize))
}

func identitiesKeyboard(ids []models.Identity, offset int) menu.Keyboard {
	page := menu.Render(ids, offset, menu.IdentityPageSize)
	return menu.PagedKeyboard(page, menu.IdentityPageSize, menu.IdentityNav, func(i int, id models.Identity) menu.KeyButton {
		return menu.KeyButton{Text: id.DisplayName, Callback: menu.ButtonInt(menu.ActionIdentity, i)}
	})
}

func (bc *BotController) pageIdentities(ctx context.Context, t *turn, cb menu.Callback) {
	offset, err := cb.Int()
	if err != nil {
		t.answer = msgInvalidAction
		return
	}
	if len(t.conv.Identities) == 0 {
		t.answer = msgNoSearch
		return
	}
	if offset >= len(t.conv.Identities) {
		t.answer = msgOutOfRange
		return
	}
	t.conv.IdentityOffset = offset
	t.conv.MenuMessageID = bc.replace(ctx, t, identitiesText(t.conv.Identities, offset), identitiesKeyboard(t.conv.Identities, offset))
}

func (bc *BotController) selectIdentity(ctx context.Context, t *turn, cb menu.Callback) {
	i, err := cb.Int()
	if err != nil {
		t.answer = msgInvalidAction
		return
	}
	if len(t.conv.Identities) == 0 {
		t.answer = msgNoSearch
		return
	}
	if i >= len(t.conv.Identities) {
		t.answer = msgOutOfRange
		return
	}
	id := t.conv.Identities[i]
	if err := bc.sessions.SelectIdentity(ctx, t.userID(), t.ev.Chat.ID, id); err != nil {
		bc.fail(ctx, t, "select identity", err)
		return
	}
	t.conv.Identities = nil
	t.conv.IdentityOffset = 0
	bc.replace(ctx, t, fmt.Sprintf("✅ You now act as %s.", id.DisplayName), nil)
}

func (bc *BotController) startIdentity(ctx context.Context, t *turn) {
	if bc.modes.Mode() != models.ModeKeyImpersonation {
		t.answer = bc.explain(errs.ErrConflictingState)
		return
	}
	t.conv.BeginIdentity()
	bc.replace(ctx, t, msgIdentityEmail, menu.Keyboard{menu.CancelRow()})
}

// identityStep fills the draft: email first, then display name, which
// completes the wizard.
func (bc *BotController) identityStep(ctx context.Context, t *turn) {
	if t.conv.Draft == nil {
		t.conv.Draft = &models.IdentityDraft{}
	}
	text := strings.TrimSpace(t.ev.Text)
	if t.conv.Draft.Email == "" {
		if !looksLikeEmail(text) {
			bc.send(ctx, t, msgBadEmail, menu.Keyboard{menu.CancelRow()})
			return
		}
		t.conv.Draft.Email = text
		bc.send(ctx, t, msgIdentityName, menu.Keyboard{menu.CancelRow()})
		return
	}
	if text == "" {
		bc.send(ctx, t, msgIdentityName, menu.Keyboard{menu.CancelRow()})
		return
	}

	draft := *t.conv.Draft
	draft.DisplayName = text
	t.conv.Reset()
	id, err := bc.media.CreateIdentity(ctx, t.userID(), t.ev.Chat.ID, draft)
	if err != nil {
		bc.fail(ctx, t, "create identity", err)
		return
	}
	bc.send(ctx, t, fmt.Sprintf("✅ Created %s. You now act as this user.", id.DisplayName), nil)
}

func (bc *BotController) toggleNotifications(ctx context.Context, t *turn) {
	if bc.modes.Mode() != models.ModeKeyImpersonation {
		t.answer = bc.explain(errs.ErrConflictingState)
		return
	}
	sel, err := bc.sessions.Selection(ctx, t.userID())
	if err != nil {
		t.answer = bc.explain(err)
		return
	}
	on, err := bc.sessions.NotificationsEnabled(ctx, sel.BackendUserID)
	if err == nil {
		err = bc.sessions.SetNotifications(ctx, sel.BackendUserID, t.ev.Chat.ID, !on)
	}
	if err != nil {
		bc.fail(ctx, t, "toggle notifications", err)
		return
	}
	if on {
		t.answer = "Notifications off"
	} else {
		t.answer = "Notifications on"
	}
	bc.replaceSettings(ctx, t)
}

func (bc *BotController) toggleGroup(ctx context.Context, t *turn) {
	on, _ := bc.modes.GroupMode(ctx)
	if err := bc.modes.SetGroupMode(ctx, t.userID(), !on); err != nil {
		if errors.Is(err, errs.ErrForbidden) {
			t.answer = bc.explain(err)
			return
		}
		bc.fail(ctx, t, "group mode", err)
		return
	}
	bc.replaceSettings(ctx, t)
}

func (bc *BotController) listUsers(ctx context.Context, t *turn, offset int) {
	if !bc.auth.IsAdmin(ctx, t.userID()) {
		t.answer = bc.explain(errs.ErrForbidden)
		return
	}
	users, err := bc.auth.ListUsers(ctx)
	if err != nil {
		bc.fail(ctx, t, "list users", err)
		return
	}
	if offset >= len(users) && offset > 0 {
		t.answer = msgOutOfRange
		return
	}
	// an open bot lets everyone in, so blocking would have no effect
	blockable := bc.auth.PasswordRequired()
	page := menu.Render(users, offset, menu.UserPageSize)
	kb := menu.PagedRows(page, menu.UserPageSize, menu.UserNav, func(_ int, u services.UserView) []menu.KeyButton {
		return userRow(u, blockable)
	})
	text := fmt.Sprintf("🧑‍🤝‍🧑 Users (%d). Tap a name to block or unblock, the crown to toggle admin.", len(users))
	if !blockable {
		text = fmt.Sprintf("🧑‍🤝‍🧑 Users (%d). Tap the crown to toggle admin.", len(users))
	}
	bc.replace(ctx, t, text, kb)
}

func userRow(u services.UserView, blockable bool) []menu.KeyButton {
	name := u.DisplayName
	if name == "" {
		name = fmt.Sprint(u.ID)
	}
	switch {
	case u.Blocked:
		name = "🚫 " + name
	case u.IsAdmin:
		name = "👑 " + name
	}
	crown := "👑 make admin"
	if u.IsAdmin {
		crown = "revoke admin"
	}
	admin := menu.KeyButton{Text: crown, Callback: menu.ButtonInt64(menu.ActionUserAdmin, u.ID)}
	if !blockable {
		admin.Text = name + " · " + crown
		return []menu.KeyButton{admin}
	}
	return []menu.KeyButton{
		{Text: name, Callback: menu.ButtonInt64(menu.ActionUserBlock, u.ID)},
		admin,
	}
}

func (bc *BotController) pageUsers(ctx context.Context, t *turn, cb menu.Callback) {
	offset, err := cb.Int()
	if err != nil {
		t.answer = msgInvalidAction
		return
	}
	bc.listUsers(ctx, t, offset)
}

// manageUser toggles the blocked or admin flag of another user.
func (bc *BotController) manageUser(ctx context.Context, t *turn, cb menu.Callback) {
	target, err := cb.Int64()
	if err != nil {
		t.answer = msgInvalidAction
		return
	}
	if cb.Action == menu.ActionUserBlock && !bc.auth.PasswordRequired() {
		t.answer = msgOpenBotNoBlock
		return
	}
	users, err := bc.auth.ListUsers(ctx)
	if err != nil {
		bc.fail(ctx, t, "manage user", err)
		return
	}
	var current *services.UserView
	for i := range users {
		if users[i].ID == target {
			current = &users[i]
			break
		}
	}
	if current == nil {
		t.answer = msgOutOfRange
		return
	}

	if cb.Action == menu.ActionUserBlock {
		err = bc.auth.SetBlocked(ctx, t.userID(), target, !current.Blocked)
	} else {
		err = bc.auth.SetAdmin(ctx, t.userID(), target, !current.IsAdmin)
	}
	if err != nil {
		t.answer = bc.explain(err)
		return
	}
	bc.listUsers(ctx, t, 0)
}
