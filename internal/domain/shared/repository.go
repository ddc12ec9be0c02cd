package shared

// Filter carries common listing options for repository queries
type Filter struct {
	Offset   int
	Limit    int
	OrderBy  string
	OrderDir string
}

// DefaultFilter returns a filter with sane pagination defaults
func DefaultFilter() Filter {
	return Filter{
		Offset:   0,
		Limit:    50,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
}

// Paginated wraps a page of results with the total match count
type Paginated[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
}
