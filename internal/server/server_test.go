package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tmcc-dev/designform/pkg/catalogue"
	"github.com/tmcc-dev/designform/pkg/design"
	"github.com/tmcc-dev/designform/pkg/form"
	"github.com/tmcc-dev/designform/pkg/render"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func validSubmission() design.Submission {
	sub := design.NewSubmission()
	sub.Title = "Iron Farm"
	sub.Categories = "Agriculture"
	sub.Description = "A compact iron farm for the overworld."
	sub.Designers[0] = design.Person{Name: "Ilmango", URL: "https://youtube.com/@ilmango", Contributions: "Main design, Testing"}
	sub.Versions[0].StartVersion = "19"
	sub.Rates.Variants[0].Drops[0] = design.Drop{Name: "Iron Ingot", RateValue: "93360", RateUnit: design.RateUnitHour}
	return sub
}

type recordingSink struct {
	mu       sync.Mutex
	accepted []string
}

func (s *recordingSink) Accept(_ context.Context, sub design.Submission, versions string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accepted = append(s.accepted, sub.Title+" "+versions)
	return nil
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	cat := catalogue.New(catalogue.Document{Designs: []catalogue.Entry{
		{ID: 1, Slug: "iron-farm", Title: "Iron Farm", Category: "Iron", Designers: []catalogue.Contributor{{Name: "Ilmango"}}},
		{ID: 2, Slug: "gold-farm", Title: "Gold Farm", Category: "Gold"},
	}})
	base := []Option{
		WithCatalogue(cat),
		WithAuthorizer(AuthorizerFunc(func(_ context.Context, token string) bool {
			return token == "archiver"
		})),
	}
	srv, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return srv
}

func do(t *testing.T, srv *Server, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	switch v := body.(type) {
	case nil:
		reader = strings.NewReader("")
	case string:
		reader = strings.NewReader(v)
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestValidate_Accepts(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/designs/validate", "", validSubmission())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	require.Equal(t, true, body["valid"])
	require.Equal(t, "1.19+", body["versionString"])
	require.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestValidate_RejectsWithErrorTree(t *testing.T) {
	srv := newTestServer(t)

	sub := validSubmission()
	sub.Title = ""
	sub.Rates.Variants[0].Drops[0].Name = "iron ingot"

	rec := do(t, srv, http.MethodPost, "/api/designs/validate", "", sub)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	require.Equal(t, false, body["valid"])

	tree, ok := body["errors"].(map[string]any)
	require.True(t, ok, "errors should be an object: %v", body["errors"])
	require.Contains(t, tree, "title")
	require.Contains(t, tree, "rates")
	require.NotContains(t, tree, "designers")

	issues, ok := body["issues"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, issues)
}

func TestValidate_BadPayload(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/designs/validate", "", "{not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decode(t, rec)["error"], "invalid submission payload")

	rec = do(t, srv, http.MethodPost, "/api/designs/validate", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmit_Guarded(t *testing.T) {
	sink := &recordingSink{}
	srv := newTestServer(t, WithSink(sink))

	rec := do(t, srv, http.MethodPost, "/api/designs", "", validSubmission())
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")

	rec = do(t, srv, http.MethodPost, "/api/designs", "member", validSubmission())
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/designs", "archiver", validSubmission())
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	require.Equal(t, "1.19+", decode(t, rec)["versionString"])

	invalid := validSubmission()
	invalid.Designers = nil
	rec = do(t, srv, http.MethodPost, "/api/designs", "archiver", invalid)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	srv.deliveries.Wait()
	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Equal(t, []string{"Iron Farm 1.19+"}, sink.accepted)
}

func TestSubmit_NoAuthorizerForbids(t *testing.T) {
	srv, err := New()
	require.NoError(t, err)

	rec := do(t, srv, http.MethodPost, "/api/designs", "archiver", validSubmission())
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestNewPage(t *testing.T) {
	selector, err := render.NewManifestSelector(render.DefaultManifest())
	require.NoError(t, err)
	theme, err := render.SelectTheme(selector, "designform", "dark")
	require.NoError(t, err)
	srv := newTestServer(t, WithTheme(theme))

	rec := do(t, srv, http.MethodGet, "/designs/new", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, srv, http.MethodGet, "/designs/new", "archiver", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	html := rec.Body.String()
	require.Contains(t, html, `action="/api/designs"`)
	require.Contains(t, html, `data-variant="dark"`)
}

func TestNewPage_TemplateDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.tpl"), []byte(`<form action="{{ action }}">custom</form>`), 0o644))
	srv := newTestServer(t, WithTemplateDir(dir))

	rec := do(t, srv, http.MethodGet, "/designs/new", "archiver", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, `<form action="/api/designs">custom</form>`, rec.Body.String())

	_, err := New(WithTemplateDir(filepath.Join(dir, "absent")))
	require.Error(t, err)
}

func TestSearchAndGet(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/designs?q=iron", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].([]any)
	require.Len(t, data, 1)
	require.Equal(t, "iron-farm", data[0].(map[string]any)["slug"])

	rec = do(t, srv, http.MethodGet, "/designs?category=gold", "", nil)
	require.Len(t, decode(t, rec)["data"], 1)

	rec = do(t, srv, http.MethodGet, "/designs?category=nether", "", nil)
	require.Equal(t, []any{}, decode(t, rec)["data"])

	rec = do(t, srv, http.MethodGet, "/designs?limit=-1", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/designs/gold-farm", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Gold Farm", decode(t, rec)["title"])

	rec = do(t, srv, http.MethodGet, "/designs/missing", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoriesAndDocs(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/categories?q=slime", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].([]any)
	require.NotEmpty(t, data)
	require.Equal(t, "slime", data[0].(map[string]any)["value"])

	rec = do(t, srv, http.MethodGet, "/openapi.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	paths := decode(t, rec)["paths"].(map[string]any)
	require.Contains(t, paths, "/api/designs/validate")

	rec = do(t, srv, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, "ok", rec.Body.String())
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	sink := &recordingSink{}
	srv := newTestServer(t, WithSink(sink), WithShutdownGrace(time.Second))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	client.CloseIdleConnections()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
