package rewrite

import (
	"fmt"
	"strings"
)

// Target is the resolved upstream route for one call.
type Target struct {
	Method Method
	Path   string // concrete upstream path, no leading slash

	// UserIDInQuery carries the per-route placement flag to the placer.
	UserIDInQuery bool

	// Converted is true when the upstream method differs from the logical
	// method, which triggers body-to-query migration in the placer.
	Converted bool
}

// MissingParamError reports a template parameter with no supplied value.
// This is a caller programming bug, not bad request input, and is kept
// distinct from request-validation failures.
type MissingParamError struct {
	Template string
	Param    string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("path template %q: no value for parameter {%s}", e.Template, e.Param)
}

// Rewrite resolves (method, logicalPath) through the table and substitutes
// template parameters. A lookup miss is not an error: the original
// method/path pass through unchanged, which lets endpoints migrate to the
// table incrementally.
func (t *Table) Rewrite(method Method, logicalPath string, pathParams map[string]string) (Target, error) {
	logicalPath = strings.TrimPrefix(logicalPath, "/")

	entry, matched, extracted := t.lookup(method, logicalPath)
	if !matched {
		path, err := substitute(logicalPath, pathParams)
		if err != nil {
			return Target{}, err
		}
		return Target{Method: method, Path: path}, nil
	}

	params := pathParams
	if len(extracted) > 0 {
		params = make(map[string]string, len(pathParams)+len(extracted))
		for k, v := range extracted {
			params[k] = v
		}
		// Explicit pathParams win over values parsed out of the path.
		for k, v := range pathParams {
			params[k] = v
		}
	}

	path, err := substitute(entry.Target.Path, params)
	if err != nil {
		return Target{}, err
	}
	return Target{
		Method:        entry.Target.Method,
		Path:          path,
		UserIDInQuery: entry.UserIDInQuery,
		Converted:     entry.Target.Method != method,
	}, nil
}

// lookup finds the table entry for a logical route. Exact string match on
// the given path wins over template matching, so a literal route like
// tasks/top3/query can never be shadowed by tasks/{task_id}.
func (t *Table) lookup(method Method, logicalPath string) (Entry, bool, map[string]string) {
	if e, ok := t.exact[RouteKey{method, logicalPath}]; ok {
		return e, true, nil
	}
	for _, e := range t.templated {
		if e.Key.Method != method {
			continue
		}
		if params, ok := matchTemplate(e.Key.Path, logicalPath); ok {
			return e, true, params
		}
	}
	return Entry{}, false, nil
}

// matchTemplate matches a concrete path against a template segment-wise,
// extracting {name} values.
func matchTemplate(template, path string) (map[string]string, bool) {
	tsegs := strings.Split(template, "/")
	psegs := strings.Split(path, "/")
	if len(tsegs) != len(psegs) {
		return nil, false
	}
	params := make(map[string]string)
	for i, ts := range tsegs {
		if m := paramToken.FindStringSubmatch(ts); m != nil && ts == m[0] {
			if psegs[i] == "" {
				return nil, false
			}
			params[m[1]] = psegs[i]
			continue
		}
		if ts != psegs[i] {
			return nil, false
		}
	}
	return params, true
}

// substitute fills {name} tokens from params, failing fast on a missing one.
func substitute(template string, params map[string]string) (string, error) {
	if !strings.Contains(template, "{") {
		return template, nil
	}
	var missing *MissingParamError
	out := paramToken.ReplaceAllStringFunc(template, func(tok string) string {
		name := tok[1 : len(tok)-1]
		if v, ok := params[name]; ok && v != "" {
			return v
		}
		if missing == nil {
			missing = &MissingParamError{Template: template, Param: name}
		}
		return tok
	})
	if missing != nil {
		return "", missing
	}
	return out, nil
}
