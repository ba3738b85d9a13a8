package utils

import (
	"errors"
	"testing"

	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/shopspring/decimal"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Blue Cotton Shirt", "blue-cotton-shirt"},
		{"  Café Crème  ", "cafe-creme"},
		{"100% Wool -- Scarf!", "100-wool-scarf"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSkuFromName(t *testing.T) {
	if got := SkuFromName("Blue Cotton Shirt"); got != "BLUE-COTTON-SHIRT" {
		t.Fatalf("got %q", got)
	}
}

func TestRoundMoneyHalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1"},
		{"2.675", "2.68"},
		{"228", "228"},
	}
	for _, tt := range tests {
		got := RoundMoney(decimal.RequireFromString(tt.in))
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Fatalf("RoundMoney(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestPercentOf(t *testing.T) {
	got := PercentOf(decimal.NewFromInt(200), decimal.RequireFromString("15.5"))
	if !got.Equal(decimal.NewFromInt(31)) {
		t.Fatalf("got %s", got)
	}
}

func TestValidateStruct(t *testing.T) {
	err := ValidateStruct(models.NewExchangeRate{CodeFrom: "US", CodeTo: "EUR"})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := ValidateStruct(models.NewExchangeRate{CodeFrom: "USD", CodeTo: "EUR"}); err != nil {
		t.Fatalf("unexpected %v", err)
	}
}

func TestJwtRoundTrip(t *testing.T) {
	token, id, _, err := JwtGenerate(5, 2, "Ada", []string{"admin"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := JwtValidate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserId != 5 || claims.TenantId != 2 || claims.Id != id || len(claims.Roles) != 1 {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if _, err := JwtValidate(token + "x"); err == nil {
		t.Fatalf("tampered token must fail")
	}
}

func TestPasswordHash(t *testing.T) {
	h, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := ComparePassword(h, "s3cret-pass"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := ComparePassword(h, "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
}
