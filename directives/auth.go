package directives

import (
	"context"

	"github.com/99designs/gqlgen/graphql"
	"github.com/mmdatafocus/commerce_backend/access"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Auth implements @auth(roles: [...]). The caller must be signed in and, when
// roles is non-empty, hold at least one of them.
func Auth(ctx context.Context, obj interface{}, next graphql.Resolver, roles []string) (interface{}, error) {
	if err := access.Require(ctx, access.ParseRoles(roles)); err != nil {
		return nil, &gqlerror.Error{
			Message: models.PublicMessage(err),
			Extensions: map[string]interface{}{
				"code": string(models.KindOf(err)),
			},
		}
	}
	return next(ctx)
}
