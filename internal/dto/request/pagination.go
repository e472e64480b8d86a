package request

const (
	DefaultPerPage = 10
	MaxPerPage     = 50
)

// PaginatedRequest is read from ?page=&per_page= on list endpoints.
type PaginatedRequest struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// Normalize clamps page to >= 1 and per_page to [1, MaxPerPage].
func (p *PaginatedRequest) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PerPage < 1:
		p.PerPage = DefaultPerPage
	case p.PerPage > MaxPerPage:
		p.PerPage = MaxPerPage
	}
}

func (p PaginatedRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}
