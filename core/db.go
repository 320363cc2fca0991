package core

// Page describes a slice of a result set.
type Page struct {
	Number int // 1-based
	Size   int
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// Clean clamps the page to sane values.
func (p *Page) Clean() {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
}

// Paginate returns the items of the requested page and the total number of items.
func Paginate[T any](items []T, p Page) ([]T, int) {
	p.Clean()
	total := len(items)
	start := (p.Number - 1) * p.Size
	if start >= total {
		return []T{}, total
	}
	end := start + p.Size
	if end > total {
		end = total
	}
	return items[start:end], total
}
