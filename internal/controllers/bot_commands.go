package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mediabot/internal/errs"
	"mediabot/internal/models"
	"mediabot/internal/providers"
)

func (bc *BotController) onCommand(ctx context.Context, t *turn, name, args string) {
	switch name {
	case "start", "help":
		bc.send(ctx, t, msgWelcome, nil)
	case "check", "search":
		bc.search(ctx, t, args)
	case "settings":
		bc.sendSettings(ctx, t)
	case "cancel":
		t.conv.Reset()
		bc.send(ctx, t, msgCancelled, nil)
	case "setgroup":
		bc.setGroup(ctx, t)
	case "status":
		bc.status(ctx, t)
	default:
		bc.send(ctx, t, msgUnknownCommand, nil)
	}
}

func (bc *BotController) setGroup(ctx context.Context, t *turn) {
	if t.ev.Chat.Private {
		bc.send(ctx, t, msgGroupOnlyInGroup, nil)
		return
	}
	channel := models.ChannelLocator{ChatID: t.ev.Chat.ID, ThreadID: t.ev.Chat.ThreadID}
	if err := bc.modes.SetPrimaryChannel(ctx, t.userID(), channel); err != nil {
		bc.fail(ctx, t, "setgroup", err)
		return
	}
	bc.send(ctx, t, "✅ This chat is now the bot's primary channel. Group mode is on.", nil)
}

// status summarizes mode, login and identity for the caller.
func (bc *BotController) status(ctx context.Context, t *turn) {
	mode := bc.modes.Mode()
	var b strings.Builder
	fmt.Fprintf(&b, "Mode: %s\n", mode.Title())
	b.WriteString(bc.credentialLine(ctx, t.userID(), mode))
	if bc.auth.IsAdmin(ctx, t.userID()) {
		on, primary := bc.modes.GroupMode(ctx)
		switch {
		case on && primary != nil:
			fmt.Fprintf(&b, "\nGroup mode: on (chat %d)", primary.ChatID)
		case on:
			b.WriteString("\nGroup mode: on (no chat bound, use /setgroup)")
		default:
			b.WriteString("\nGroup mode: off")
		}
		b.WriteString("\nYou are an admin.")
	}
	bc.send(ctx, t, b.String(), nil)
}

// credentialLine describes what the caller's requests are attributed to.
func (bc *BotController) credentialLine(ctx context.Context, userID int64, mode models.Mode) string {
	switch mode {
	case models.ModeDirectLogin:
		sess, err := bc.sessions.Session(ctx, userID)
		if err != nil {
			return "Not logged in."
		}
		return fmt.Sprintf("Logged in as %s.", sessionName(sess))
	case models.ModeSharedSession:
		sess, err := bc.sessions.SharedSession(ctx)
		if err != nil {
			return "Shared account: not logged in."
		}
		return fmt.Sprintf("Shared account: %s.", sessionName(sess))
	case models.ModeKeyImpersonation:
		sel, err := bc.sessions.Selection(ctx, userID)
		if errors.Is(err, errs.ErrNoIdentity) {
			return "Acting as: nobody selected."
		}
		if err != nil {
			bc.logger.Warnf(providers.TypeStorage, "Load selection of %d failed: %s", userID, err)
			return "Acting as: unknown."
		}
		return fmt.Sprintf("Acting as %s.", sel.DisplayName)
	}
	return ""
}

func sessionName(s *models.UserSession) string {
	if s.BackendDisplayName != "" {
		return s.BackendDisplayName
	}
	return s.Email
}
