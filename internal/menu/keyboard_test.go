package menu

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberButton(i int, item int) KeyButton {
	return KeyButton{Text: fmt.Sprint(item), Callback: ButtonInt(ActionSelect, i)}
}

func TestPagedKeyboard_EmptyIsCancelOnly(t *testing.T) {
	kb := PagedKeyboard(Render([]int{}, 0, TitlePageSize), TitlePageSize, TitleNav, numberButton)
	require.Len(t, kb, 1)
	assert.Equal(t, ActionCancel, kb[0][0].Callback.Action)
}

func TestPagedKeyboard_FirstPageHasMoreOnly(t *testing.T) {
	kb := PagedKeyboard(Render(ints(7), 0, TitlePageSize), TitlePageSize, TitleNav, numberButton)
	require.Len(t, kb, 7) // 5 items, nav, cancel
	_, hasBack := kb.Find(ActionBack)
	more, hasMore := kb.Find(ActionMore)
	assert.False(t, hasBack)
	require.True(t, hasMore)
	assert.Equal(t, "more_5", more.Callback.Data())
	assert.Equal(t, ActionCancel, kb[len(kb)-1][0].Callback.Action)
}

func TestPagedKeyboard_LastPageHasBackOnly(t *testing.T) {
	kb := PagedKeyboard(Render(ints(7), 5, TitlePageSize), TitlePageSize, TitleNav, numberButton)
	back, hasBack := kb.Find(ActionBack)
	_, hasMore := kb.Find(ActionMore)
	require.True(t, hasBack)
	assert.False(t, hasMore)
	assert.Equal(t, "back_0", back.Callback.Data())
	assert.Equal(t, "select_5", kb[0][0].Callback.Data())
}

func TestPagedKeyboard_SinglePageHasNoNav(t *testing.T) {
	kb := PagedKeyboard(Render(ints(3), 0, TitlePageSize), TitlePageSize, TitleNav, numberButton)
	assert.Len(t, kb, 4)
}

func TestPagedKeyboard_IdentityPages(t *testing.T) {
	items := ints(12)
	first := PagedKeyboard(Render(items, 0, IdentityPageSize), IdentityPageSize, IdentityNav, numberButton)
	assert.Len(t, first, 11) // 9 items, nav, cancel
	nav := first[9]
	require.Len(t, nav, 1)
	assert.Equal(t, "identity_page_9", nav[0].Callback.Data())

	second := PagedKeyboard(Render(items, 9, IdentityPageSize), IdentityPageSize, IdentityNav, numberButton)
	assert.Len(t, second, 5) // 3 items, nav, cancel
	nav = second[3]
	require.Len(t, nav, 1)
	assert.Equal(t, "identity_page_0", nav[0].Callback.Data())
	assert.Equal(t, labelBack, nav[0].Text)
}

func TestPagedRows_MultipleButtonsPerItem(t *testing.T) {
	kb := PagedRows(Render(ints(2), 0, UserPageSize), UserPageSize, UserNav, func(i int, _ int) []KeyButton {
		return []KeyButton{
			{Text: "block", Callback: ButtonInt(ActionUserBlock, i)},
			{Text: "admin", Callback: ButtonInt(ActionUserAdmin, i)},
		}
	})
	require.Len(t, kb, 3)
	assert.Len(t, kb[0], 2)
}
