package request

import (
	"net/url"
)

// QueryView reads the query string of the request target.
type QueryView struct {
	raw   string
	scope *Scope
}

// Raw returns the encoded query string without the leading '?'.
func (q *QueryView) Raw() string {
	return q.raw
}

// Values parses the query string.
//
// On a malformed query the values that could be parsed are returned with the error.
func (q *QueryView) Values() (url.Values, error) {
	return url.ParseQuery(q.raw)
}

// Get returns the first value for name, or "".
func (q *QueryView) Get(name string) string {
	vals, _ := q.Values()
	return vals.Get(name)
}

// Has reports whether name is present in the query string.
func (q *QueryView) Has(name string) bool {
	vals, _ := q.Values()
	return vals.Has(name)
}

// Scope returns the request scope the view belongs to.
func (q *QueryView) Scope() *Scope {
	return q.scope
}
