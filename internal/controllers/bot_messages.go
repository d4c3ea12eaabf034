package controllers

import (
	"errors"
	"fmt"

	"mediabot/internal/errs"
	"mediabot/internal/models"
)

const (
	msgPasswordPrompt   = "🔒 This bot is password protected. Please send the password."
	msgPasswordRequired = "Password required"
	msgWrongPassword    = "❌ Wrong password, try again."
	msgAccessGranted    = "✅ Access granted. Use /check <title> to search."
	msgBlocked          = "⛔ Your access has been blocked by an admin."
	msgHint             = "Use /check <title> to search, or /settings."
	msgInvalidAction    = "⚠️ Invalid action"
	msgCancelled        = "Cancelled."
	msgTryLater         = "⚠️ The media server is unavailable right now. Please try again later."
	msgSearchUsage      = "Usage: /check <title>"
	msgSelectResult     = "Please select a result:"
	msgNoSearch         = "This search has expired. Please run /check again."
	msgOpenBotNoBlock   = "Blocking needs a bot password."
	msgContextLost      = "⚠️ I lost track of this conversation. Please start again."
	msgOutOfRange       = "⚠️ That entry is no longer in the list."
	msgNotRequested     = "This title has not been requested yet, so there is nothing to report."
	msgPickIssueType    = "What kind of problem is it?"
	msgDescribeIssue    = "Please describe the problem."
	msgLoginEmail       = "📧 Please send the email address of your media server account."
	msgLoginPassword    = "🔑 Now send the password. The message will be deleted."
	msgBadEmail         = "That does not look like an email address, try again."
	msgIdentityEmail    = "📧 Email address of the new user?"
	msgIdentityName     = "👤 Display name of the new user?"
	msgNoIdentities     = "The media server has no users."
	msgSelectIdentity   = "Select the user to act as:"
	msgGroupOnlyInGroup = "Send /setgroup inside the group the bot should serve."
	msgUnknownCommand   = "Unknown command. " + msgHint
	msgLoggedOut        = "👋 Logged out."
)

const msgWelcome = `👋 Welcome! I can search the media server and request titles for you.

/check <title> — search (alias /search)
/settings — login, identity and admin options
/status — show the current mode and login
/cancel — abort the current step`

// explain turns an error into the reply shown to the user.
func (bc *BotController) explain(err error) string {
	switch {
	case errors.Is(err, errs.ErrForbidden):
		return "⛔ Only admins can do that."
	case errors.Is(err, errs.ErrInvalidCredentials):
		return "❌ Login failed: wrong email or password."
	case errors.Is(err, errs.ErrSessionExpired):
		return "⌛ Your session expired. Please log in again via /settings."
	case errors.Is(err, errs.ErrNotLoggedIn):
		if bc.modes.Mode() == models.ModeSharedSession {
			return "🔑 The shared account is not logged in yet. Ask an admin to log in via /settings."
		}
		return "🔑 You are not logged in. Use /settings to log in."
	case errors.Is(err, errs.ErrNoIdentity):
		return "👤 Pick the user to act as in /settings first."
	case errors.Is(err, errs.ErrConflictingState):
		return fmt.Sprintf("This is not available in %s mode.", bc.modes.Mode().Title())
	case errors.Is(err, errs.ErrInvalidInput):
		return msgInvalidAction
	case errors.Is(err, errs.ErrNotFound):
		return "Nothing found."
	}
	return msgTryLater
}
