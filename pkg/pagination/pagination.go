package pagination

// DefaultPerPage is the window size used by the storefront: one product or
// cart line per screen.
const DefaultPerPage = 1

// Paginator is a window over an ordered slice. Pages are 1-based. The
// paginator does not clamp the requested page: callers are expected to keep
// it within [1, Pages()] and an out-of-range page simply yields no items.
type Paginator[T any] struct {
	items   []T
	page    int
	perPage int
}

// New creates a paginator with DefaultPerPage items per page.
func New[T any](items []T, page int) *Paginator[T] {
	return NewWithPerPage(items, page, DefaultPerPage)
}

// NewWithPerPage creates a paginator with the given page size. A non-positive
// size falls back to DefaultPerPage.
func NewWithPerPage[T any](items []T, page, perPage int) *Paginator[T] {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return &Paginator[T]{
		items:   items,
		page:    page,
		perPage: perPage,
	}
}

// Page returns the requested page number.
func (p *Paginator[T]) Page() int {
	return p.page
}

// Pages returns the number of pages, never less than 1 so that an empty
// sequence still renders as "page 1 of 1".
func (p *Paginator[T]) Pages() int {
	totalPages := len(p.items) / p.perPage
	if len(p.items)%p.perPage > 0 {
		totalPages++
	}
	if totalPages < 1 {
		return 1
	}
	return totalPages
}

// Items returns the items of the requested page, or an empty slice when the
// sequence is empty or the page is out of range.
func (p *Paginator[T]) Items() []T {
	if p.page < 1 {
		return []T{}
	}
	start := (p.page - 1) * p.perPage
	if start >= len(p.items) {
		return []T{}
	}
	end := start + p.perPage
	if end > len(p.items) {
		end = len(p.items)
	}
	return p.items[start:end]
}

// InRange reports whether the requested page has items.
func (p *Paginator[T]) InRange() bool {
	return len(p.Items()) > 0
}

// HasPrevious reports whether a page precedes the requested one.
func (p *Paginator[T]) HasPrevious() bool {
	return p.page > 1
}

// HasNext reports whether a page follows the requested one.
func (p *Paginator[T]) HasNext() bool {
	return p.page < p.Pages()
}
