// Package pagination holds the page/limit window shared by list endpoints
// and the dashboard client.
package pagination

// MaxLimit caps the page size of every listing.
const MaxLimit = 100

// Page is a 1-based page number and a page size.
type Page struct {
	Number int
	Limit  int
}

// New clamps number to at least 1 and limit to [1, MaxLimit]. A limit <= 0
// takes defaultLimit.
func New(number, limit, defaultLimit int) Page {
	if number < 1 {
		number = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if limit < 1 {
		limit = 1
	}
	return Page{Number: number, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Info is the pagination block of a list response.
type Info struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	Total       int `json:"total"`
	Limit       int `json:"limit"`
}

// Info describes p within a listing of total rows.
func (p Page) Info(total int) *Info {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return &Info{CurrentPage: p.Number, TotalPages: pages, Total: total, Limit: p.Limit}
}

// Last reports whether i is the final page.
func (i *Info) Last() bool {
	return i == nil || i.CurrentPage >= i.TotalPages
}
