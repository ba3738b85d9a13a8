package service

import (
	"errors"
	"testing"

	"github.com/mmdatafocus/commerce_backend/appctx"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginLogout(t *testing.T) {
	f := newFixture(t)
	ctx := tenantContext(f.tenant)

	payload, err := f.svc.Auth.Register(ctx, &models.NewUser{
		Name: "Ada", Email: " Ada@Example.com ", Phone: "+1 650-253-0000", Password: "lovelace1815",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", payload.User.Email)
	assert.Equal(t, "+16502530000", payload.User.Phone)
	assert.Equal(t, []string{models.RoleSlugCustomer}, payload.User.RoleSlugs())

	_, err = f.svc.Auth.Login(ctx, models.LoginInput{Email: "ada@example.com", Password: "wrong"})
	assert.True(t, errors.Is(err, models.ErrUnauthenticated))

	login, err := f.svc.Auth.Login(ctx, models.LoginInput{Email: "ADA@example.com", Password: "lovelace1815"})
	require.NoError(t, err)

	claims, err := f.svc.Auth.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, payload.User.ID, claims.UserId)

	signedIn := appctx.SetUser(ctx, claims.UserId, claims.Name, claims.Roles, claims.Id)
	me, err := f.svc.Auth.Me(signedIn)
	require.NoError(t, err)
	assert.Equal(t, "Ada", me.Name)

	ok, err := f.svc.Auth.Logout(signedIn)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = f.svc.Auth.Authenticate(ctx, login.Token)
	assert.True(t, errors.Is(err, models.ErrUnauthenticated), "revoked token: %v", err)

	// the registration token is still live
	_, err = f.svc.Auth.Authenticate(ctx, payload.Token)
	assert.NoError(t, err)
}

func TestAuthenticateReloadsAccount(t *testing.T) {
	f := newFixture(t)
	ctx := tenantContext(f.tenant)
	login := func(email string) string {
		payload, err := f.svc.Auth.Login(ctx, models.LoginInput{Email: email, Password: "password123"})
		require.NoError(t, err)
		return payload.Token
	}

	demoted, err := f.svc.Users.CreateAdminUser(f.admin, &models.NewUser{
		Name: "Dee", Email: "dee@example.com", Password: "password123", Roles: []string{"admin"},
	})
	require.NoError(t, err)
	token := login("dee@example.com")
	_, err = f.svc.Users.UpdateAdminUser(f.admin, demoted.ID, &models.NewUser{
		Name: "Dee", Email: "dee@example.com", Roles: []string{"editor"},
	})
	require.NoError(t, err)
	claims, err := f.svc.Auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, []string{"editor"}, claims.Roles)

	disabled := false
	_, err = f.svc.Users.UpdateAdminUser(f.admin, demoted.ID, &models.NewUser{
		Name: "Dee", Email: "dee@example.com", Roles: []string{"editor"}, IsActive: &disabled,
	})
	require.NoError(t, err)
	_, err = f.svc.Auth.Authenticate(ctx, token)
	assert.True(t, errors.Is(err, models.ErrUnauthenticated), "disabled account: %v", err)

	deleted, err := f.svc.Users.CreateAdminUser(f.admin, &models.NewUser{
		Name: "Del", Email: "del@example.com", Password: "password123", Roles: []string{"admin"},
	})
	require.NoError(t, err)
	token = login("del@example.com")
	_, err = f.svc.Users.DeleteAdminUser(f.admin, deleted.ID)
	require.NoError(t, err)
	_, err = f.svc.Auth.Authenticate(ctx, token)
	assert.True(t, errors.Is(err, models.ErrUnauthenticated), "deleted account: %v", err)
}

func TestTokenIsBoundToTenant(t *testing.T) {
	f := newFixture(t)
	payload, err := f.svc.Auth.Register(tenantContext(f.tenant), &models.NewUser{
		Name: "Bob", Email: "bob@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	other := f.newTenant(t, "soylent", "USD")
	_, err = f.svc.Auth.Authenticate(tenantContext(other), payload.Token)
	assert.True(t, errors.Is(err, models.ErrUnauthenticated))

	_, err = f.svc.Auth.Authenticate(tenantContext(f.tenant), "not-a-jwt")
	assert.True(t, errors.Is(err, models.ErrUnauthenticated))
}

func TestDuplicateEmailConflictsPerTenant(t *testing.T) {
	f := newFixture(t)
	input := func() *models.NewUser {
		return &models.NewUser{Name: "Cy", Email: "cy@example.com", Password: "password123"}
	}
	_, err := f.svc.Users.CreateCustomer(tenantContext(f.tenant), input())
	require.NoError(t, err)
	_, err = f.svc.Users.CreateCustomer(tenantContext(f.tenant), input())
	assert.True(t, errors.Is(err, models.ErrConflict))

	other := f.newTenant(t, "wonka", "USD")
	_, err = f.svc.Users.CreateCustomer(tenantContext(other), input())
	assert.NoError(t, err)
}

func TestAdminUserRoles(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Users.CreateAdminUser(f.admin, &models.NewUser{
		Name: "Ed", Email: "ed@example.com", Password: "password123", Roles: []string{"customer"},
	})
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = f.svc.Users.CreateAdminUser(f.admin, &models.NewUser{
		Name: "Sue", Email: "sue@example.com", Password: "password123", Roles: []string{"super-admin"},
	})
	assert.True(t, errors.Is(err, models.ErrForbidden), "only a super admin grants super admin: %v", err)

	editor, err := f.svc.Users.CreateAdminUser(f.admin, &models.NewUser{
		Name: "Ed", Email: "ed@example.com", Password: "password123", Roles: []string{"editor"},
	})
	require.NoError(t, err)

	updated, err := f.svc.Users.UpdateAdminUser(f.admin, editor.ID, &models.NewUser{
		Name: "Edward", Email: "ed@example.com", Roles: []string{"admin", "editor"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"admin", "editor"}, updated.RoleSlugs())

	staff, err := f.svc.Users.AdminUsers(f.admin)
	require.NoError(t, err)
	assert.Len(t, staff, 1)

	_, customer := f.customer(t)
	_, err = f.svc.Users.UpdateAdminUser(f.admin, customer.ID, &models.NewUser{
		Name: "X", Email: "x@example.com", Roles: []string{"editor"},
	})
	assert.True(t, errors.Is(err, models.ErrNotFound), "customers are not admin users: %v", err)

	self := appctx.SetUser(tenantContext(f.tenant), editor.ID, editor.Name, []string{"admin"}, "")
	_, err = f.svc.Users.DeleteAdminUser(self, editor.ID)
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = f.svc.Users.DeleteAdminUser(f.admin, editor.ID)
	require.NoError(t, err)
}
