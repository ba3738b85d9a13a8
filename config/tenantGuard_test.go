package config

import (
	"context"
	"testing"

	"github.com/mmdatafocus/commerce_backend/appctx"
	"gorm.io/gorm/clause"
)

func TestWhereHasTenantID(t *testing.T) {
	tests := []struct {
		name string
		expr clause.Expression
		want bool
	}{
		{"eq column", clause.Eq{Column: clause.Column{Name: "tenant_id"}, Value: 1}, true},
		{"eq string", clause.Eq{Column: "products.tenant_id", Value: 1}, true},
		{"raw expr", clause.Expr{SQL: "tenant_id = ? AND slug = ?"}, true},
		{"other column", clause.Eq{Column: clause.Column{Name: "slug"}, Value: "x"}, false},
		{"nested and", clause.AndConditions{Exprs: []clause.Expression{clause.Expr{SQL: "id = ?"}, clause.Eq{Column: "tenant_id"}}}, true},
	}
	for _, tt := range tests {
		got := whereHasTenantID(clause.Clause{Expression: clause.Where{Exprs: []clause.Expression{tt.expr}}})
		if got != tt.want {
			t.Fatalf("%s: got %v want %v", tt.name, got, tt.want)
		}
	}
	if whereHasTenantID(clause.Clause{}) {
		t.Fatalf("empty clause must not report a tenant filter")
	}
}

func TestShouldBypassTenantScope(t *testing.T) {
	ctx := context.Background()
	if shouldBypassTenantScope(ctx) {
		t.Fatalf("plain context must not bypass")
	}
	if !shouldBypassTenantScope(appctx.Set(ctx, appctx.ContextKeySkipTenantScope, true)) {
		t.Fatalf("skip flag must bypass")
	}
	if !shouldBypassTenantScope(appctx.Set(ctx, appctx.ContextKeyIsAdmin, true)) {
		t.Fatalf("admin flag must bypass")
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := SplitAndTrim(" https://a.com, ,https://b.com ")
	if len(got) != 2 || got[0] != "https://a.com" || got[1] != "https://b.com" {
		t.Fatalf("unexpected %v", got)
	}
	if SplitAndTrim("  ") != nil {
		t.Fatalf("blank input must give nil")
	}
}
