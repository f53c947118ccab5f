package pagination

const (
	// DefaultPerPage is the standard page size when one is not provided.
	DefaultPerPage = 25
	// MaxPerPage caps how many rows any list query can request.
	MaxPerPage = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page    int
	PerPage int
}

// Normalize enforces the configured defaults and maximums.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PerPage
}

// Limit returns the normalized page size.
func (p Params) Limit() int {
	return p.Normalize().PerPage
}

// Page wraps a page of rows together with the unpaginated total, the shape
// every list endpoint responds with.
type Page[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
}

// NewPage builds a Page, never serializing items as JSON null.
func NewPage[T any](items []T, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, TotalCount: total}
}
