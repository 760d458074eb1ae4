package categories

import (
	"errors"
	"net/http"
	"strings"
)

// Mux is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Component bundles options with the handler and route helpers.
type Component struct {
	opts Options
}

// New constructs a component with default options plus overrides.
func New(fns ...OptionFn) *Component {
	return &Component{opts: NewOptions(fns...)}
}

// Handler returns the component's handler.
func (c *Component) Handler() http.Handler {
	return HandlerWithOptions(c.opts)
}

// RegisterRoutes mounts the handler under basePath and returns the pattern.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	if mux == nil {
		return "", errors.New("categories: missing mux")
	}
	pattern := MountPath(basePath, c.opts.RoutePath)
	mux.Handle(pattern, c.Handler())
	return pattern, nil
}

// MountPath joins basePath and routePath with single slashes.
func MountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}
	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	return strings.TrimRight(basePath, "/") + routePath
}
