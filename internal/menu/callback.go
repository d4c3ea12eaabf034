package menu

import (
	"fmt"
	"strconv"
	"strings"

	"mediabot/internal/errs"
)

// Action is the routing key carried by an inline button.
type Action string

// Actions that carry an argument, encoded as "<action>_<arg>".
const (
	ActionSelect       Action = "select"
	ActionMore         Action = "more"
	ActionBack         Action = "back"
	ActionConfirm      Action = "confirm"
	ActionIssue        Action = "issue"
	ActionMode         Action = "mode"
	ActionIdentityPage Action = "identity_page"
	ActionIdentity     Action = "identity"
	ActionUserPage     Action = "user_page"
	ActionUserBlock    Action = "user_block"
	ActionUserAdmin    Action = "user_admin"
)

// Actions without an argument.
const (
	ActionCancel         Action = "cancel"
	ActionResults        Action = "results"
	ActionReport         Action = "report"
	ActionSettings       Action = "settings"
	ActionLogin          Action = "login"
	ActionLogout         Action = "logout"
	ActionLoginShared    Action = "login_shared"
	ActionLogoutShared   Action = "logout_shared"
	ActionIdentityList   Action = "identity_list"
	ActionIdentityCreate Action = "identity_create"
	ActionNotifyToggle   Action = "notify_toggle"
	ActionGroupToggle    Action = "group_toggle"
	ActionUsers          Action = "users"
)

var exactActions = map[Action]struct{}{
	ActionCancel:         {},
	ActionResults:        {},
	ActionReport:         {},
	ActionSettings:       {},
	ActionLogin:          {},
	ActionLogout:         {},
	ActionLoginShared:    {},
	ActionLogoutShared:   {},
	ActionIdentityList:   {},
	ActionIdentityCreate: {},
	ActionNotifyToggle:   {},
	ActionGroupToggle:    {},
	ActionUsers:          {},
}

// longest prefixes first so "identity_page_" wins over "identity_".
var argActions = []Action{
	ActionIdentityPage,
	ActionUserBlock,
	ActionUserAdmin,
	ActionUserPage,
	ActionIdentity,
	ActionConfirm,
	ActionSelect,
	ActionIssue,
	ActionMore,
	ActionBack,
	ActionMode,
}

type Callback struct {
	Action Action
	Arg    string
}

func Button(action Action) Callback {
	return Callback{Action: action}
}

func ButtonArg(action Action, arg string) Callback {
	return Callback{Action: action, Arg: arg}
}

func ButtonInt(action Action, n int) Callback {
	return Callback{Action: action, Arg: strconv.Itoa(n)}
}

// Data encodes the callback for the transport.
func (c Callback) Data() string {
	if c.Arg == "" {
		return string(c.Action)
	}
	return string(c.Action) + "_" + c.Arg
}

// Int parses the argument as a non-negative integer.
func (c Callback) Int() (int, error) {
	n, err := strconv.Atoi(c.Arg)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s expects a number, got %q", errs.ErrInvalidInput, c.Action, c.Arg)
	}
	return n, nil
}

// Int64 parses the argument as a chat user id.
func (c Callback) Int64() (int64, error) {
	n, err := strconv.ParseInt(c.Arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s expects an id, got %q", errs.ErrInvalidInput, c.Action, c.Arg)
	}
	return n, nil
}

func ButtonInt64(action Action, n int64) Callback {
	return Callback{Action: action, Arg: strconv.FormatInt(n, 10)}
}

// Parse decodes a callback payload. Unknown or argument-less prefixed
// payloads yield errs.ErrInvalidInput.
func Parse(data string) (Callback, error) {
	if _, ok := exactActions[Action(data)]; ok {
		return Callback{Action: Action(data)}, nil
	}
	for _, a := range argActions {
		prefix := string(a) + "_"
		if arg, ok := strings.CutPrefix(data, prefix); ok {
			if arg == "" {
				break
			}
			return Callback{Action: a, Arg: arg}, nil
		}
	}
	return Callback{}, fmt.Errorf("%w: unroutable callback %q", errs.ErrInvalidInput, data)
}
