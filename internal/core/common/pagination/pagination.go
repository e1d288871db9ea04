// Package pagination holds the page envelope shared by listing endpoints.
package pagination

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Page is the listing envelope. LastPage is at least 1 so clients can always render a pager.
type Page[T any] struct {
	Data     []T   `json:"data"`
	Total    int64 `json:"total"`
	Page     int   `json:"current_page"`
	PerPage  int   `json:"per_page"`
	LastPage int   `json:"last_page"`
}

// Normalize clamps page to >= 1 and perPage to 1..MaxPerPage, falling back to DefaultPerPage.
func Normalize(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

func Offset(page, perPage int) int {
	return (page - 1) * perPage
}

func New[T any](data []T, total int64, page, perPage int) *Page[T] {
	if data == nil {
		data = []T{}
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	last := int((total + int64(perPage) - 1) / int64(perPage))
	if last < 1 {
		last = 1
	}
	return &Page[T]{Data: data, Total: total, Page: page, PerPage: perPage, LastPage: last}
}
