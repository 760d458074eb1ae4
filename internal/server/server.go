// Package server exposes the submission API, the rendered form page and the
// design catalogue over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tmcc-dev/designform/components/categories"
	"github.com/tmcc-dev/designform/pkg/apidoc"
	"github.com/tmcc-dev/designform/pkg/catalogue"
	"github.com/tmcc-dev/designform/pkg/form"
	"github.com/tmcc-dev/designform/pkg/render"
	"github.com/tmcc-dev/designform/pkg/validation"
)

const (
	defaultRequestTimeout = 10 * time.Second
	defaultShutdownGrace  = 5 * time.Second
	maxBodyBytes          = 1 << 20
)

// Authorizer decides whether a bearer token may submit. auth.Gate satisfies
// it.
type Authorizer interface {
	Authorized(ctx context.Context, accessToken string) bool
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context, accessToken string) bool

func (f AuthorizerFunc) Authorized(ctx context.Context, accessToken string) bool {
	return f(ctx, accessToken)
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAuthorizer guards the submission routes. Without one every guarded
// request is forbidden.
func WithAuthorizer(a Authorizer) Option {
	return func(s *Server) {
		s.authorizer = a
	}
}

// WithCatalogue serves designs from c.
func WithCatalogue(c *catalogue.Catalogue) Option {
	return func(s *Server) {
		if c != nil {
			s.catalogue = c
		}
	}
}

// WithSink receives accepted submissions. The default logs them.
func WithSink(sink form.Sink) Option {
	return func(s *Server) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithTheme styles the rendered page.
func WithTheme(t *render.Theme) Option {
	return func(s *Server) {
		s.theme = t
	}
}

// WithTemplateDir overrides built-in page templates with the files in dir.
func WithTemplateDir(dir string) Option {
	return func(s *Server) {
		s.templateDir = dir
	}
}

// WithSchema replaces the default validation rules.
func WithSchema(schema validation.Schema) Option {
	return func(s *Server) {
		s.schema = schema
	}
}

// WithRequestTimeout bounds each request, sink delivery included.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithShutdownGrace bounds how long Serve waits for in-flight requests.
func WithShutdownGrace(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.grace = d
		}
	}
}

// WithWatch reloads the catalogue file while serving.
func WithWatch(enabled bool) Option {
	return func(s *Server) {
		s.watch = enabled
	}
}

// Server is the HTTP front end. It keeps no per-user state: every validation
// is computed from the posted record.
type Server struct {
	logger      *zap.Logger
	authorizer  Authorizer
	catalogue   *catalogue.Catalogue
	sink        form.Sink
	theme       *render.Theme
	templateDir string
	schema      validation.Schema
	timeout     time.Duration
	grace       time.Duration
	watch       bool

	page       *render.Page
	apidoc     http.Handler
	categories *categories.Component
	handler    http.Handler

	deliveries sync.WaitGroup
}

// New wires the routes. It fails when the embedded templates or API document
// do not load.
func New(options ...Option) (*Server, error) {
	s := &Server{
		logger:  zap.NewNop(),
		schema:  validation.DefaultSchema(),
		timeout: defaultRequestTimeout,
		grace:   defaultShutdownGrace,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.catalogue == nil {
		s.catalogue = catalogue.New(catalogue.Document{})
	}
	if s.sink == nil {
		s.sink = form.LogSink{Logger: s.logger}
	}

	page, err := render.NewPage(render.WithTheme(s.theme), render.WithTemplateDir(s.templateDir))
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s.page = page

	doc, err := apidoc.Load(context.Background())
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	if s.apidoc, err = apidoc.Handler(doc); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	s.categories = categories.New(categories.WithSource(s.catalogue.Categories))
	s.handler = s.routes()
	return s, nil
}

// Handler returns the root handler with logging and timeouts applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /designs", s.handleSearch)
	mux.HandleFunc("GET /designs/{slug}", s.handleDesign)
	mux.Handle("GET /designs/new", s.guard(http.HandlerFunc(s.handleNewPage)))
	mux.HandleFunc("POST /api/designs/validate", s.handleValidate)
	mux.Handle("POST /api/designs", s.guard(http.HandlerFunc(s.handleSubmit)))
	mux.Handle("GET /openapi.json", s.apidoc)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if _, err := s.categories.RegisterRoutes(mux, ""); err != nil {
		s.logger.Error("mount categories", zap.Error(err))
	}
	return s.withRequestID(s.withLogging(s.withTimeout(mux)))
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully and waits for pending sink deliveries. The catalogue watcher
// runs alongside when enabled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.timeout,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.grace)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		s.deliveries.Wait()
		if err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	})
	if s.watch {
		group.Go(func() error {
			if err := s.catalogue.Watch(gctx); err != nil {
				s.logger.Warn("catalogue watch stopped", zap.Error(err))
			}
			return nil
		})
	}
	return group.Wait()
}
