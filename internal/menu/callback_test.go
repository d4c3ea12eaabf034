package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediabot/internal/errs"
)

func TestParse_Exact(t *testing.T) {
	for _, data := range []string{"cancel", "results", "report", "settings", "login", "logout",
		"login_shared", "logout_shared", "identity_list", "identity_create", "notify_toggle", "group_toggle", "users"} {
		cb, err := Parse(data)
		require.NoError(t, err, data)
		assert.Equal(t, Action(data), cb.Action)
		assert.Empty(t, cb.Arg)
	}
}

func TestParse_Prefixed(t *testing.T) {
	tests := []struct {
		data   string
		action Action
		arg    string
	}{
		{"select_3", ActionSelect, "3"},
		{"more_5", ActionMore, "5"},
		{"back_0", ActionBack, "0"},
		{"confirm_4k", ActionConfirm, "4k"},
		{"issue_2", ActionIssue, "2"},
		{"mode_api", ActionMode, "api"},
		{"identity_page_9", ActionIdentityPage, "9"},
		{"identity_11", ActionIdentity, "11"},
		{"user_page_18", ActionUserPage, "18"},
		{"user_block_123456789", ActionUserBlock, "123456789"},
		{"user_admin_42", ActionUserAdmin, "42"},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			cb, err := Parse(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.action, cb.Action)
			assert.Equal(t, tt.arg, cb.Arg)
			assert.Equal(t, tt.data, cb.Data())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, data := range []string{"", "select_", "bogus", "more", "explode_1", "CANCEL"} {
		_, err := Parse(data)
		assert.ErrorIs(t, err, errs.ErrInvalidInput, data)
	}
}

func TestCallback_Int(t *testing.T) {
	n, err := ButtonInt(ActionSelect, 7).Int()
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = ButtonArg(ActionSelect, "x").Int()
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	_, err = ButtonArg(ActionSelect, "-1").Int()
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestCallback_Int64(t *testing.T) {
	id, err := ButtonInt64(ActionUserBlock, 5000000000).Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(5000000000), id)
}
