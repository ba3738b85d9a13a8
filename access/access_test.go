package access

import (
	"context"
	"errors"
	"testing"

	"github.com/mmdatafocus/commerce_backend/appctx"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/stretchr/testify/assert"
)

type fakePrincipal struct {
	authed bool
	roles  RoleSet
}

func (f fakePrincipal) Authenticated() bool { return f.authed }
func (f fakePrincipal) Roles() RoleSet      { return f.roles }

func TestAuthorizeAnyOf(t *testing.T) {
	tests := []struct {
		name     string
		p        Principal
		required RoleSet
		want     error
	}{
		{"nil principal", nil, Staff, models.ErrUnauthenticated},
		{"anonymous", fakePrincipal{}, Staff, models.ErrUnauthenticated},
		{"editor allowed for staff", fakePrincipal{true, Of(Editor)}, Staff, nil},
		{"customer denied for staff", fakePrincipal{true, Of(Customer)}, Staff, models.ErrForbidden},
		{"no roles denied", fakePrincipal{true, 0}, Managers, models.ErrForbidden},
		{"any authenticated", fakePrincipal{true, 0}, Anyone, nil},
		{"one of many", fakePrincipal{true, Of(Customer, Admin)}, Of(SuperAdmin, Admin), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.p, tt.required)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestUnauthenticatedAndForbiddenAreDistinct(t *testing.T) {
	err := Authorize(fakePrincipal{}, Managers)
	assert.False(t, errors.Is(err, models.ErrForbidden))
	err = Authorize(fakePrincipal{true, Of(Customer)}, Managers)
	assert.False(t, errors.Is(err, models.ErrUnauthenticated))
}

func TestParseRoles(t *testing.T) {
	s := ParseRoles([]string{"super_admin", "Editor", "unknown"})
	assert.True(t, s.Has(SuperAdmin))
	assert.True(t, s.Has(Editor))
	assert.False(t, s.Has(Admin))
	assert.Equal(t, []string{"super-admin", "editor"}, s.Slugs())
}

func TestRequireFromContext(t *testing.T) {
	ctx := appctx.SetUser(context.Background(), 7, "Ada", []string{"admin"}, "tok")
	assert.NoError(t, Require(ctx, Managers))
	assert.ErrorIs(t, Require(context.Background(), Managers), models.ErrUnauthenticated)
}
