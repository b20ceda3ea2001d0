// Package store persists application records. Stores are pure I/O; domain
// rules live in the service layer.
package store

import "seva/internal/application/models"

// Filter narrows application listings. Zero values mean "no filter".
type Filter struct {
	Kind   models.Kind
	Search string
}

// LLFilter narrows LL application listings.
type LLFilter struct {
	Status models.Status
	Search string
}

// Patch is an ordered set of column updates resolved from a partial-update
// request. Only the service's allow-list produces column names; values are
// always bound as query parameters.
type Patch struct {
	columns []string
	values  []any
}

// Set appends a column assignment to the patch.
func (p *Patch) Set(column string, value any) {
	p.columns = append(p.columns, column)
	p.values = append(p.values, value)
}

// Empty reports whether the patch resolved zero columns.
func (p *Patch) Empty() bool { return len(p.columns) == 0 }

// Has reports whether the patch sets the given column.
func (p *Patch) Has(column string) bool {
	for _, c := range p.columns {
		if c == column {
			return true
		}
	}
	return false
}

// Stats are the counts behind GET /api/stats.
type Stats struct {
	Total int `json:"total"`
	PAN   int `json:"pan"`
	LL    int `json:"ll"`
}

// LLStats are the counts behind GET /api/ll-stats.
type LLStats struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Active  int `json:"active"`
	Passed  int `json:"passed"`
}
