package directives

import (
	"context"
	"errors"
	"testing"

	"github.com/mmdatafocus/commerce_backend/appctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

func resolved(ctx context.Context) (interface{}, error) { return "ok", nil }

func TestAuthRejectsGuests(t *testing.T) {
	_, err := Auth(context.Background(), nil, resolved, nil)

	var gqlErr *gqlerror.Error
	require.True(t, errors.As(err, &gqlErr))
	assert.Equal(t, "UNAUTHENTICATED", gqlErr.Extensions["code"])
}

func TestAuthEmptyRolesAdmitsAnyUser(t *testing.T) {
	ctx := appctx.SetUser(context.Background(), 7, "kim", []string{"customer"}, "tok")

	res, err := Auth(ctx, nil, resolved, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
}

func TestAuthRoleMismatchIsForbidden(t *testing.T) {
	ctx := appctx.SetUser(context.Background(), 7, "kim", []string{"customer"}, "tok")

	_, err := Auth(ctx, nil, resolved, []string{"super-admin", "admin"})

	var gqlErr *gqlerror.Error
	require.True(t, errors.As(err, &gqlErr))
	assert.Equal(t, "FORBIDDEN", gqlErr.Extensions["code"])

	ctx = appctx.SetUser(context.Background(), 8, "ana", []string{"admin"}, "tok")
	res, err := Auth(ctx, nil, resolved, []string{"super-admin", "admin"})
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
}
