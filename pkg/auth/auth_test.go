package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newDiscord(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/@me/guilds/guild-1/member" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GuildRoles(t *testing.T) {
	srv := newDiscord(t, http.StatusOK, `{"roles":["archiver","helper"],"joined_at":"2021-01-01T00:00:00Z"}`)
	client := NewClient(WithAPIBase(srv.URL+"/"), WithHTTPClient(srv.Client()))

	got := client.GuildRoles(context.Background(), "token-1", "guild-1")
	if diff := cmp.Diff([]string{"archiver", "helper"}, got); diff != "" {
		t.Fatalf("roles mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_GuildRolesFailureIsEmpty(t *testing.T) {
	srv := newDiscord(t, http.StatusForbidden, `{"message":"Missing Access"}`)
	core, logs := observer.New(zap.WarnLevel)
	client := NewClient(WithAPIBase(srv.URL), WithLogger(zap.New(core)))

	got := client.GuildRoles(context.Background(), "token-1", "guild-1")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty role set, got %#v", got)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected failure to be logged, got %d entries", logs.Len())
	}

	if _, err := client.Member(context.Background(), "wrong", "guild-1"); err == nil {
		t.Fatalf("expected error for rejected token")
	}
}

func TestRoleHelpers(t *testing.T) {
	roles := []string{"a", "b"}
	if !HasRole(roles, "a") || HasRole(roles, "c") {
		t.Fatalf("HasRole mismatch")
	}
	if !HasAnyRole(roles, []string{"c", "b"}) || HasAnyRole(roles, []string{"c"}) || HasAnyRole(roles, nil) {
		t.Fatalf("HasAnyRole mismatch")
	}
	if !HasAllRoles(roles, []string{"a", "b"}) || HasAllRoles(roles, []string{"a", "c"}) || !HasAllRoles(roles, nil) {
		t.Fatalf("HasAllRoles mismatch")
	}
}

type staticRoles []string

func (s staticRoles) GuildRoles(context.Context, string, string) []string { return s }

func TestGate_Authorized(t *testing.T) {
	gate := Gate{Roles: staticRoles{"archiver"}, GuildID: "g", RequiredRoleID: "archiver"}
	if !gate.Authorized(context.Background(), "tok") {
		t.Fatalf("expected archiver to be authorized")
	}
	if gate.Authorized(context.Background(), "") {
		t.Fatalf("empty token must be denied")
	}

	gate.RequiredRoleID = "moderator"
	if gate.Authorized(context.Background(), "tok") {
		t.Fatalf("missing role must be denied")
	}

	srv := newDiscord(t, http.StatusOK, `{"roles":["archiver"]}`)
	live := Gate{Roles: NewClient(WithAPIBase(srv.URL)), GuildID: "guild-1", RequiredRoleID: "archiver"}
	if !live.Authorized(context.Background(), "token-1") {
		t.Fatalf("expected live lookup to authorize")
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"":             "",
		"Bearer":       "",
	}
	for header, want := range tests {
		if got := BearerToken(header); got != want {
			t.Errorf("BearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}
