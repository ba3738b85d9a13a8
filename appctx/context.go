package appctx

import "context"

// ContextKey is the shared type for all context keys in this codebase.
// Keeping it in a tiny package avoids import cycles (config <-> service).
type ContextKey string

func (c ContextKey) String() string { return string(c) }

var (
	ContextKeyTenantId      = ContextKey("TenantId")
	ContextKeyTenantSlug    = ContextKey("TenantSlug")
	ContextKeyUserId        = ContextKey("UserId")
	ContextKeyUserName      = ContextKey("UserName")
	ContextKeyRoles         = ContextKey("Roles")
	ContextKeyTokenId       = ContextKey("TokenId")
	ContextKeyCartSession   = ContextKey("CartSession")
	ContextKeyCorrelationId = ContextKey("CorrelationId")

	// ContextKeyIsAdmin is true for platform operators. Used for tenant-scope bypass.
	ContextKeyIsAdmin = ContextKey("IsAdmin")

	// ContextKeySkipTenantScope forces tenant scoping to be disabled for the request.
	// Use sparingly (seeding and ops tooling only).
	ContextKeySkipTenantScope = ContextKey("SkipTenantScope")
)

func GetString(ctx context.Context, key ContextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok
}

func GetBool(ctx context.Context, key ContextKey) (bool, bool) {
	v, ok := ctx.Value(key).(bool)
	return v, ok
}

func GetInt(ctx context.Context, key ContextKey) (int, bool) {
	v, ok := ctx.Value(key).(int)
	return v, ok
}

func GetStrings(ctx context.Context, key ContextKey) ([]string, bool) {
	v, ok := ctx.Value(key).([]string)
	return v, ok
}

func Set(ctx context.Context, key ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}

// SetTenant binds the resolved tenant to the request.
func SetTenant(ctx context.Context, id int, slug string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyTenantId, id)
	return context.WithValue(ctx, ContextKeyTenantSlug, slug)
}

func TenantId(ctx context.Context) (int, bool) {
	v, ok := GetInt(ctx, ContextKeyTenantId)
	return v, ok && v > 0
}

// SetUser binds the authenticated user, its role slugs and the token id.
func SetUser(ctx context.Context, userId int, name string, roles []string, tokenId string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUserId, userId)
	ctx = context.WithValue(ctx, ContextKeyUserName, name)
	ctx = context.WithValue(ctx, ContextKeyRoles, roles)
	return context.WithValue(ctx, ContextKeyTokenId, tokenId)
}

func UserId(ctx context.Context) (int, bool) {
	v, ok := GetInt(ctx, ContextKeyUserId)
	return v, ok && v > 0
}

func Roles(ctx context.Context) []string {
	v, _ := GetStrings(ctx, ContextKeyRoles)
	return v
}

func CorrelationId(ctx context.Context) string {
	v, _ := GetString(ctx, ContextKeyCorrelationId)
	return v
}
