// Package view builds the render model of the lake map page: the query
// owned by the root, the search input and the map display.
package view

// QueryParam is the URL parameter carrying the search query.
const QueryParam = "q"

// Root owns the search query. The zero value holds the empty query,
// meaning no filter.
type Root struct {
	query string
}

// SetQuery replaces the query as-is, without trimming or normalization.
func (r *Root) SetQuery(q string) {
	r.query = q
}

// Query returns the current query.
func (r *Root) Query() string {
	return r.query
}

// SearchInput returns the search input bound to this root.
func (r *Root) SearchInput() SearchInput {
	return SearchInput{
		Name:     QueryParam,
		Value:    r.query,
		OnSearch: r.SetQuery,
	}
}
