// Package auth resolves whether a Discord user may submit designs, based on
// their roles in the community guild.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultAPIBase is the Discord REST API root.
const DefaultAPIBase = "https://discord.com/api/v10"

// ErrUnexpectedStatus is wrapped when Discord answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("auth: unexpected status")

// RoleSource returns the role ids a user holds in a guild.
type RoleSource interface {
	GuildRoles(ctx context.Context, accessToken, guildID string) []string
}

// Member is the subset of the guild member payload the gate needs.
type Member struct {
	Roles    []string `json:"roles"`
	Nick     string   `json:"nick,omitempty"`
	JoinedAt string   `json:"joined_at"`
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithAPIBase points the client at another API root (tests, proxies).
func WithAPIBase(base string) ClientOption {
	return func(c *Client) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			c.base = base
		}
	}
}

// WithTimeout bounds each lookup.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger used to report failed lookups.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client looks up guild membership through the Discord API.
type Client struct {
	http    *http.Client
	base    string
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient returns a Client using http.DefaultClient and DefaultAPIBase.
func NewClient(options ...ClientOption) *Client {
	c := &Client{
		http:    http.DefaultClient,
		base:    DefaultAPIBase,
		timeout: 10 * time.Second,
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Member fetches the caller's member record in guildID.
func (c *Client) Member(ctx context.Context, accessToken, guildID string) (Member, error) {
	if accessToken == "" {
		return Member{}, errors.New("auth: access token is required")
	}
	if guildID == "" {
		return Member{}, errors.New("auth: guild id is required")
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if c.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	url := c.base + "/users/@me/guilds/" + guildID + "/member"
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return Member{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Member{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Member{}, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	var member Member
	if err := json.NewDecoder(resp.Body).Decode(&member); err != nil {
		return Member{}, fmt.Errorf("auth: decode member: %w", err)
	}
	return member, nil
}

// GuildRoles returns the caller's roles in guildID. Any failure is logged and
// reported as an empty role set, which denies every role check.
func (c *Client) GuildRoles(ctx context.Context, accessToken, guildID string) []string {
	member, err := c.Member(ctx, accessToken, guildID)
	if err != nil {
		c.logger.Warn("fetch guild roles", zap.String("guild", guildID), zap.Error(err))
		return []string{}
	}
	if member.Roles == nil {
		return []string{}
	}
	return member.Roles
}
