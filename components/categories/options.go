package categories

import (
	"net/http"

	"github.com/tmcc-dev/designform/pkg/catalogue"
)

// EmptySearchMode controls what an empty query returns.
type EmptySearchMode string

const (
	EmptySearchNone EmptySearchMode = "none"
	EmptySearchAll  EmptySearchMode = "all"
)

// GuardFunc rejects a request by returning an error. Wrap
// ErrUnauthenticated to answer 401 instead of 403.
type GuardFunc func(r *http.Request) error

// Source returns the current category tree. It is called per request so a
// reloaded catalogue is picked up.
type Source func() []catalogue.Category

type Options struct {
	RoutePath       string
	SearchParam     string
	GroupParam      string
	LimitParam      string
	DefaultLimit    int
	MaxLimit        int
	EmptySearchMode EmptySearchMode
	Guard           GuardFunc
	Source          Source
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:       "/api/categories",
		SearchParam:     "q",
		GroupParam:      "group",
		LimitParam:      "limit",
		DefaultLimit:    100,
		MaxLimit:        500,
		EmptySearchMode: EmptySearchAll,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn != nil {
			fn(&opts)
		}
	}
	defaults := DefaultOptions()
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = defaults.DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = defaults.MaxLimit
	}
	if opts.EmptySearchMode == "" {
		opts.EmptySearchMode = defaults.EmptySearchMode
	}
	if opts.RoutePath == "" {
		opts.RoutePath = defaults.RoutePath
	}
	if opts.SearchParam == "" {
		opts.SearchParam = defaults.SearchParam
	}
	if opts.GroupParam == "" {
		opts.GroupParam = defaults.GroupParam
	}
	if opts.LimitParam == "" {
		opts.LimitParam = defaults.LimitParam
	}
	if opts.Source == nil {
		opts.Source = catalogue.DefaultCategories
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) { o.RoutePath = path }
}

func WithSearchParam(name string) OptionFn {
	return func(o *Options) { o.SearchParam = name }
}

func WithGroupParam(name string) OptionFn {
	return func(o *Options) { o.GroupParam = name }
}

func WithLimitParam(name string) OptionFn {
	return func(o *Options) { o.LimitParam = name }
}

func WithDefaultLimit(limit int) OptionFn {
	return func(o *Options) { o.DefaultLimit = limit }
}

func WithMaxLimit(limit int) OptionFn {
	return func(o *Options) { o.MaxLimit = limit }
}

func WithEmptySearchMode(mode EmptySearchMode) OptionFn {
	return func(o *Options) { o.EmptySearchMode = mode }
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) { o.Guard = guard }
}

// WithSource reads categories from source, typically a catalogue's
// Categories method.
func WithSource(source Source) OptionFn {
	return func(o *Options) { o.Source = source }
}

// WithCategories serves a fixed category tree.
func WithCategories(list []catalogue.Category) OptionFn {
	fixed := append([]catalogue.Category(nil), list...)
	return func(o *Options) {
		o.Source = func() []catalogue.Category { return fixed }
	}
}

func clampLimit(limit int, opts Options) int {
	if limit < 0 {
		return 0
	}
	if limit == 0 {
		limit = opts.DefaultLimit
	}
	if opts.MaxLimit > 0 && limit > opts.MaxLimit {
		return opts.MaxLimit
	}
	return limit
}
