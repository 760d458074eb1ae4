// Package config loads the designform server configuration from a YAML file
// with DESIGNFORM_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tmcc-dev/designform/pkg/auth"
)

// Environment variables that override file values.
const (
	EnvListen         = "DESIGNFORM_LISTEN"
	EnvDiscordAPI     = "DESIGNFORM_DISCORD_API"
	EnvGuildID        = "DESIGNFORM_GUILD_ID"
	EnvArchiverRoleID = "DESIGNFORM_ARCHIVER_ROLE_ID"
	EnvCatalogue      = "DESIGNFORM_CATALOGUE"
	EnvTheme          = "DESIGNFORM_THEME"
	EnvThemeVariant   = "DESIGNFORM_THEME_VARIANT"
	EnvTemplates      = "DESIGNFORM_TEMPLATES"
	EnvRequestTimeout = "DESIGNFORM_REQUEST_TIMEOUT"
)

const defaultRequestTimeout = 10 * time.Second

// Config is the server configuration.
type Config struct {
	Listen         string          `yaml:"listen"`
	Discord        DiscordConfig   `yaml:"discord"`
	Catalogue      CatalogueConfig `yaml:"catalogue"`
	Theme          ThemeConfig     `yaml:"theme"`
	RequestTimeout string          `yaml:"request_timeout"`
}

// DiscordConfig locates the guild and role that gate submissions.
type DiscordConfig struct {
	APIBase        string `yaml:"api_base"`
	GuildID        string `yaml:"guild_id"`
	ArchiverRoleID string `yaml:"archiver_role_id"`
}

// CatalogueConfig points at the published designs file. An empty path serves
// an empty catalogue.
type CatalogueConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// ThemeConfig selects the page theme. Templates names a directory whose .tpl
// files replace the built-in page templates of the same name.
type ThemeConfig struct {
	Name      string `yaml:"name"`
	Variant   string `yaml:"variant"`
	Templates string `yaml:"templates"`
}

// Default returns a configuration that serves on :8080 against the public
// Discord API. Guild and role ids have no default.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		Discord: DiscordConfig{
			APIBase: auth.DefaultAPIBase,
		},
		Catalogue: CatalogueConfig{
			Watch: true,
		},
		Theme: ThemeConfig{
			Name: "designform",
		},
		RequestTimeout: defaultRequestTimeout.String(),
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error; an empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Listen, EnvListen)
	set(&c.Discord.APIBase, EnvDiscordAPI)
	set(&c.Discord.GuildID, EnvGuildID)
	set(&c.Discord.ArchiverRoleID, EnvArchiverRoleID)
	set(&c.Catalogue.Path, EnvCatalogue)
	set(&c.Theme.Name, EnvTheme)
	set(&c.Theme.Variant, EnvThemeVariant)
	set(&c.Theme.Templates, EnvTemplates)
	set(&c.RequestTimeout, EnvRequestTimeout)
}

// Timeout returns RequestTimeout as a duration, falling back to ten seconds
// when it does not parse.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return defaultRequestTimeout
	}
	return d
}

// Validate reports every missing or malformed value.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Listen) == "" {
		errs = append(errs, errors.New("config: listen address is required"))
	}
	if u, err := url.Parse(c.Discord.APIBase); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("config: discord api_base %q is not an absolute URL", c.Discord.APIBase))
	}
	if strings.TrimSpace(c.Discord.GuildID) == "" {
		errs = append(errs, fmt.Errorf("config: discord guild_id is required (set %s)", EnvGuildID))
	}
	if strings.TrimSpace(c.Discord.ArchiverRoleID) == "" {
		errs = append(errs, fmt.Errorf("config: discord archiver_role_id is required (set %s)", EnvArchiverRoleID))
	}
	if c.RequestTimeout != "" {
		if d, err := time.ParseDuration(c.RequestTimeout); err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("config: request_timeout %q is not a positive duration", c.RequestTimeout))
		}
	}
	return errors.Join(errs...)
}
