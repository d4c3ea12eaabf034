// Package menu maps result lists onto pages of selectable buttons and
// encodes the callback payloads those buttons carry.
package menu

const (
	TitlePageSize    = 5
	IdentityPageSize = 9
	UserPageSize     = 9
)

// Page is one window of a result list.
type Page[T any] struct {
	Items   []T
	Offset  int
	HasPrev bool
	HasNext bool
}

// Render returns the page of items starting at offset. Negative offsets are
// treated as 0 and offsets past the end snap to the last page start.
func Render[T any](items []T, offset, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = TitlePageSize
	}
	n := len(items)
	if n == 0 {
		return Page[T]{}
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= n {
		offset = ((n - 1) / pageSize) * pageSize
	}
	end := min(offset+pageSize, n)
	return Page[T]{
		Items:   items[offset:end],
		Offset:  offset,
		HasPrev: offset > 0,
		HasNext: end < n,
	}
}

// PageCount is ceil(n/pageSize).
func PageCount(n, pageSize int) int {
	if n <= 0 || pageSize <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}

// PrevOffset is the start of the page before offset.
func PrevOffset(offset, pageSize int) int {
	return max(offset-pageSize, 0)
}
