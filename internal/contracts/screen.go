package contracts

// Screen pagination bounds.
const (
	DefaultScreenLimit = 100
	MaxScreenLimit     = 500
)

// ScreenFilter is a single filter condition against a snapshot field.
// Value is a number, a string, or a 2-element number array depending on
// the operator; the screen engine validates the combination.
type ScreenFilter struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

// ScreenRequest is the filter/sort/paginate request for the screen endpoint.
type ScreenRequest struct {
	Filters []ScreenFilter `json:"filters"`
	SortBy  string         `json:"sort_by"`
	SortDir string         `json:"sort_dir"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

// Normalize applies request defaults and pagination bounds. Field and
// operator validation belongs to the screen engine's catalog, not here.
func (r *ScreenRequest) Normalize() {
	if r.SortBy == "" {
		r.SortBy = "market_cap"
	}
	if r.SortDir != "asc" {
		r.SortDir = "desc"
	}
	if r.Limit < 1 {
		r.Limit = DefaultScreenLimit
	}
	if r.Limit > MaxScreenLimit {
		r.Limit = MaxScreenLimit
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
}

// ScreenResponse is the screen result page. Results carry raw values
// (numbers or nulls); formatting is a frontend concern.
type ScreenResponse struct {
	Results []Snapshot `json:"results"`
	Total   int        `json:"total"`
	Limit   int        `json:"limit"`
	Offset  int        `json:"offset"`
}
