// Package access holds the role model used to gate mutating entry points.
package access

import (
	"context"
	"strings"

	"github.com/mmdatafocus/commerce_backend/appctx"
	"github.com/mmdatafocus/commerce_backend/models"
)

type Role uint8

const (
	SuperAdmin Role = 1 << iota
	Admin
	Editor
	Customer
)

var roleSlugs = []struct {
	role Role
	slug string
}{
	{SuperAdmin, models.RoleSlugSuperAdmin},
	{Admin, models.RoleSlugAdmin},
	{Editor, models.RoleSlugEditor},
	{Customer, models.RoleSlugCustomer},
}

// RoleSet is a bitset of roles.
type RoleSet uint8

// Staff may manage the catalog.
const (
	Staff    = RoleSet(SuperAdmin | Admin | Editor)
	Managers = RoleSet(SuperAdmin | Admin)
	Anyone   = RoleSet(0)
)

func Of(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s |= RoleSet(r)
	}
	return s
}

// ParseRoles maps role slugs to a set. Unknown slugs are ignored.
func ParseRoles(slugs []string) RoleSet {
	var s RoleSet
	for _, slug := range slugs {
		if r, ok := RoleFromSlug(slug); ok {
			s |= RoleSet(r)
		}
	}
	return s
}

func RoleFromSlug(slug string) (Role, bool) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	slug = strings.ReplaceAll(slug, "_", "-")
	for _, rs := range roleSlugs {
		if rs.slug == slug {
			return rs.role, true
		}
	}
	return 0, false
}

func (s RoleSet) Has(r Role) bool { return s&RoleSet(r) != 0 }

// Any reports whether the two sets share at least one role.
func (s RoleSet) Any(other RoleSet) bool { return s&other != 0 }

func (s RoleSet) IsEmpty() bool { return s == 0 }

func (s RoleSet) Slugs() []string {
	out := make([]string, 0, 4)
	for _, rs := range roleSlugs {
		if s.Has(rs.role) {
			out = append(out, rs.slug)
		}
	}
	return out
}

func (s RoleSet) String() string { return strings.Join(s.Slugs(), ",") }

// Principal is whatever can present a role set.
type Principal interface {
	Authenticated() bool
	Roles() RoleSet
}

// Authorize uses "any of" semantics. An empty required set admits every
// authenticated principal.
func Authorize(p Principal, required RoleSet) error {
	if p == nil || !p.Authenticated() {
		return models.Unauthenticated("authentication required")
	}
	if required.IsEmpty() {
		return nil
	}
	if !p.Roles().Any(required) {
		return models.Forbidden("requires one of roles: %s", required)
	}
	return nil
}

type contextPrincipal struct {
	userId int
	roles  RoleSet
}

func (c contextPrincipal) Authenticated() bool { return c.userId > 0 }
func (c contextPrincipal) Roles() RoleSet      { return c.roles }

// FromContext builds the principal the session middleware stored on ctx.
func FromContext(ctx context.Context) Principal {
	userId, _ := appctx.UserId(ctx)
	return contextPrincipal{userId: userId, roles: ParseRoles(appctx.Roles(ctx))}
}

// Require authorizes the principal found on ctx.
func Require(ctx context.Context, required RoleSet) error {
	return Authorize(FromContext(ctx), required)
}
