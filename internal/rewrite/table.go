// Package rewrite maps the stable logical routes exposed to handlers onto
// the routes the upstream task microservice actually serves.
//
// FILES:
//   - table.go:   route table types, validation, default table
//   - rewrite.go: lookup and template substitution
//   - placer.go:  query/body parameter placement
package rewrite

import (
	"fmt"
	"regexp"
	"strings"
)

// Method is an HTTP method accepted by the gateway.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// RouteKey identifies a logical route as the handlers see it.
type RouteKey struct {
	Method Method
	Path   string // logical path template, no leading slash
}

// RouteTarget is the upstream route a logical route maps to.
// Trailing slashes are encoded here verbatim: the upstream 307-redirects
// slashless paths, and the extra round trip is not acceptable.
type RouteTarget struct {
	Method Method
	Path   string // upstream path template, no leading slash
}

// Entry binds a logical route to its upstream target.
type Entry struct {
	Key    RouteKey
	Target RouteTarget

	// UserIDInQuery duplicates user_id into the query string even on write
	// methods. Some upstream endpoints read identity from the query only.
	UserIDInQuery bool
}

// Table is the read-only route mapping. Built once at construction,
// never mutated, safe for concurrent lookups.
type Table struct {
	exact     map[RouteKey]Entry
	templated []Entry
}

var paramToken = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// templateParams returns the {name} tokens referenced in a path template.
func templateParams(path string) []string {
	var out []string
	for _, m := range paramToken.FindAllStringSubmatch(path, -1) {
		out = append(out, m[1])
	}
	return out
}

// NewTable builds a Table, rejecting entries whose target references a
// template parameter the logical path does not carry. A typo in a target
// template would otherwise surface only at call time as a missing-parameter
// failure; catching it at startup keeps dead mappings out of the table.
func NewTable(entries []Entry) (*Table, error) {
	t := &Table{exact: make(map[RouteKey]Entry, len(entries))}
	for _, e := range entries {
		keyParams := make(map[string]bool)
		for _, p := range templateParams(e.Key.Path) {
			keyParams[p] = true
		}
		for _, p := range templateParams(e.Target.Path) {
			if !keyParams[p] {
				return nil, fmt.Errorf("route %s %s: target %q references parameter {%s} absent from the logical path",
					e.Key.Method, e.Key.Path, e.Target.Path, p)
			}
		}
		if _, dup := t.exact[e.Key]; dup {
			return nil, fmt.Errorf("duplicate route %s %s", e.Key.Method, e.Key.Path)
		}
		t.exact[e.Key] = e
		if strings.Contains(e.Key.Path, "{") {
			t.templated = append(t.templated, e)
		}
	}
	return t, nil
}

func mustTable(entries []Entry) *Table {
	t, err := NewTable(entries)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultTable returns the route mapping for the current upstream contract.
// Targets carry trailing slashes exactly as the upstream requires them.
func DefaultTable() *Table {
	return mustTable([]Entry{
		{Key: RouteKey{MethodPost, "tasks"}, Target: RouteTarget{MethodPost, "tasks/"}},
		{Key: RouteKey{MethodGet, "tasks"}, Target: RouteTarget{MethodGet, "tasks/"}},
		// Filter queries arrive as POST-with-filters; the upstream only
		// serves GET-with-query-string.
		{Key: RouteKey{MethodPost, "tasks/query"}, Target: RouteTarget{MethodGet, "tasks/"}},
		{Key: RouteKey{MethodGet, "tasks/{task_id}"}, Target: RouteTarget{MethodGet, "tasks/{task_id}/"}},
		{Key: RouteKey{MethodPut, "tasks/{task_id}"}, Target: RouteTarget{MethodPut, "tasks/{task_id}/"}},
		{Key: RouteKey{MethodDelete, "tasks/{task_id}"}, Target: RouteTarget{MethodDelete, "tasks/{task_id}/"}},
		// Completion is an update on the task resource upstream.
		{Key: RouteKey{MethodPost, "tasks/{task_id}/complete"}, Target: RouteTarget{MethodPut, "tasks/{task_id}/"}},
		{Key: RouteKey{MethodPost, "tasks/top3/query"}, Target: RouteTarget{MethodGet, "tasks/top3/"}},
		{Key: RouteKey{MethodGet, "tasks/daily/{date}"}, Target: RouteTarget{MethodGet, "tasks/daily/{date}/"}},
		{
			Key:           RouteKey{MethodPost, "tasks/focus-status"},
			Target:        RouteTarget{MethodPost, "focus/sessions/"},
			UserIDInQuery: true,
		},
		{Key: RouteKey{MethodGet, "tasks/pomodoro-count"}, Target: RouteTarget{MethodGet, "pomodoros/count/"}},
		{Key: RouteKey{MethodGet, "health"}, Target: RouteTarget{MethodGet, "health/"}},
	})
}
