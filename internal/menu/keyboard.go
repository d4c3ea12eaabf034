package menu

// KeyButton is one inline button: a label plus its routing payload.
type KeyButton struct {
	Text     string
	Callback Callback
}

// Keyboard is a grid of rows.
type Keyboard [][]KeyButton

const (
	labelBack   = "⬅️ Back"
	labelMore   = "➡️ More"
	labelCancel = "❌ Cancel"
)

func CancelRow() []KeyButton {
	return []KeyButton{{Text: labelCancel, Callback: Button(ActionCancel)}}
}

// Nav names the callbacks used for the previous/next page buttons.
type Nav struct {
	Back Action
	More Action
}

var (
	TitleNav    = Nav{Back: ActionBack, More: ActionMore}
	IdentityNav = Nav{Back: ActionIdentityPage, More: ActionIdentityPage}
	UserNav     = Nav{Back: ActionUserPage, More: ActionUserPage}
)

// PagedKeyboard lays out one button row per page item, then a navigation row
// (back only past the first page, more only before the last) and a cancel row
// that is always present. button receives the absolute index of each item.
func PagedKeyboard[T any](page Page[T], pageSize int, nav Nav, button func(index int, item T) KeyButton) Keyboard {
	return PagedRows(page, pageSize, nav, func(index int, item T) []KeyButton {
		return []KeyButton{button(index, item)}
	})
}

// PagedRows is PagedKeyboard with a full row of buttons per item.
func PagedRows[T any](page Page[T], pageSize int, nav Nav, row func(index int, item T) []KeyButton) Keyboard {
	kb := make(Keyboard, 0, len(page.Items)+2)
	for i, item := range page.Items {
		kb = append(kb, row(page.Offset+i, item))
	}

	var navRow []KeyButton
	if page.HasPrev {
		navRow = append(navRow, KeyButton{Text: labelBack, Callback: ButtonInt(nav.Back, PrevOffset(page.Offset, pageSize))})
	}
	if page.HasNext {
		navRow = append(navRow, KeyButton{Text: labelMore, Callback: ButtonInt(nav.More, page.Offset+pageSize)})
	}
	if len(navRow) > 0 {
		kb = append(kb, navRow)
	}
	return append(kb, CancelRow())
}

// Find returns the first button with the given action, if any.
func (kb Keyboard) Find(action Action) (KeyButton, bool) {
	for _, row := range kb {
		for _, b := range row {
			if b.Callback.Action == action {
				return b, true
			}
		}
	}
	return KeyButton{}, false
}
