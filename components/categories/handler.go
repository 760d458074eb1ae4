package categories

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tmcc-dev/designform/pkg/catalogue"
)

var (
	// ErrUnauthenticated makes the handler answer 401. Any other guard error
	// answers 403.
	ErrUnauthenticated = errors.New("categories: authentication required")
	// ErrUnknownGroup reports a group filter naming no top-level category.
	ErrUnknownGroup = errors.New("categories: unknown group")
)

// QueryError reports a malformed picker query parameter.
type QueryError struct {
	Param string
	Value string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("categories: invalid %s %q: %v", e.Param, e.Value, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Query is one parsed picker request.
type Query struct {
	Text string
	// Group restricts results to one top-level category and its
	// subcategories, by slug or display name.
	Group string
	Limit int
}

// Page is the picker payload. Total counts every match before the limit so
// the picker can tell the user the list was cut.
type Page struct {
	Data  []Option `json:"data"`
	Total int      `json:"total"`
}

type problem struct {
	Error string `json:"error"`
}

// Handler builds a handler with default options plus overrides.
func Handler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...))
}

// HandlerWithOptions answers GET and HEAD with the ranked picker options.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead:
		default:
			w.Header().Set("Allow", "GET, HEAD")
			reply(w, r, http.StatusMethodNotAllowed, problem{Error: "categories are read-only"})
			return
		}

		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				status := http.StatusForbidden
				if errors.Is(err, ErrUnauthenticated) {
					status = http.StatusUnauthorized
				}
				reply(w, r, status, problem{Error: err.Error()})
				return
			}
		}

		q, err := ParseQuery(r, opts)
		if err != nil {
			reply(w, r, http.StatusBadRequest, problem{Error: err.Error()})
			return
		}
		result, err := Lookup(opts.Source(), q, opts)
		if err != nil {
			reply(w, r, http.StatusNotFound, problem{Error: err.Error()})
			return
		}
		reply(w, r, http.StatusOK, result)
	})
}

// ParseQuery reads the search, group and limit parameters. A limit must be a
// non-negative integer; zero or absent selects the default.
func ParseQuery(r *http.Request, opts Options) (Query, error) {
	values := r.URL.Query()
	q := Query{
		Text:  strings.TrimSpace(values.Get(opts.SearchParam)),
		Group: strings.TrimSpace(values.Get(opts.GroupParam)),
	}
	if raw := strings.TrimSpace(values.Get(opts.LimitParam)); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err == nil && limit < 0 {
			err = errors.New("must not be negative")
		}
		if err != nil {
			return Query{}, &QueryError{Param: opts.LimitParam, Value: raw, Err: err}
		}
		q.Limit = limit
	}
	return q, nil
}

// Lookup flattens tree, narrows it to q.Group and ranks the remainder.
func Lookup(tree []catalogue.Category, q Query, opts Options) (Page, error) {
	options := Flatten(tree)
	if q.Group != "" {
		var ok bool
		if options, ok = InGroup(options, q.Group); !ok {
			return Page{Data: []Option{}}, fmt.Errorf("%w: %q", ErrUnknownGroup, q.Group)
		}
	}

	ranked := Rank(options, q.Text, opts.EmptySearchMode)
	limit := clampLimit(q.Limit, opts)
	out := Page{Data: []Option{}, Total: len(ranked)}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out.Data = append(out.Data, ranked...)
	return out, nil
}

func reply(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
