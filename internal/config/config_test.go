package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "designform.yaml")
	body := strings.Join([]string{
		"listen: 127.0.0.1:9000",
		"discord:",
		"  guild_id: \"433618741528625152\"",
		"  archiver_role_id: \"1\"",
		"catalogue:",
		"  path: designs.yaml",
		"  watch: false",
		"request_timeout: 3s",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(EnvArchiverRoleID, "archiver")
	t.Setenv(EnvThemeVariant, "dark")
	t.Setenv(EnvTemplates, "/srv/designform/templates")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := &Config{
		Listen: "127.0.0.1:9000",
		Discord: DiscordConfig{
			APIBase:        "https://discord.com/api/v10",
			GuildID:        "433618741528625152",
			ArchiverRoleID: "archiver",
		},
		Catalogue:      CatalogueConfig{Path: "designs.yaml"},
		Theme:          ThemeConfig{Name: "designform", Variant: "dark", Templates: "/srv/designform/templates"},
		RequestTimeout: "3s",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.Timeout() != 3*time.Second {
		t.Fatalf("timeout = %v", cfg.Timeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvGuildID, "g")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":8080" || cfg.Discord.GuildID != "g" || !cfg.Catalogue.Watch {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("listen: [unterminated"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Listen = ""
	cfg.Discord.APIBase = "discord"
	cfg.RequestTimeout = "soon"

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"listen", "api_base", "guild_id", "archiver_role_id", "request_timeout"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s", err, want)
		}
	}
	if cfg.Timeout() != 10*time.Second {
		t.Fatalf("fallback timeout = %v", cfg.Timeout())
	}
}
