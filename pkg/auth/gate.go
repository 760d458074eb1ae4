package auth

import (
	"context"
	"slices"
	"strings"
)

// HasRole reports whether roles contains required.
func HasRole(roles []string, required string) bool {
	return slices.Contains(roles, required)
}

// HasAnyRole reports whether roles contains at least one of required.
func HasAnyRole(roles []string, required []string) bool {
	for _, id := range required {
		if HasRole(roles, id) {
			return true
		}
	}
	return false
}

// HasAllRoles reports whether roles contains every id in required. An empty
// requirement is satisfied.
func HasAllRoles(roles []string, required []string) bool {
	for _, id := range required {
		if !HasRole(roles, id) {
			return false
		}
	}
	return true
}

// Gate grants submission access to members holding RequiredRoleID.
type Gate struct {
	Roles          RoleSource
	GuildID        string
	RequiredRoleID string
}

// Authorized reports whether the holder of accessToken may submit.
func (g Gate) Authorized(ctx context.Context, accessToken string) bool {
	if g.Roles == nil || g.RequiredRoleID == "" || strings.TrimSpace(accessToken) == "" {
		return false
	}
	return HasRole(g.Roles.GuildRoles(ctx, accessToken, g.GuildID), g.RequiredRoleID)
}

// BearerToken extracts the token from an "Authorization: Bearer ..." value.
func BearerToken(header string) string {
	const prefix = "bearer "
	header = strings.TrimSpace(header)
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
