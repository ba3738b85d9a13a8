package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/99designs/gqlgen/graphql"
	"github.com/shopspring/decimal"
)

func MarshalDecimal(d decimal.Decimal) graphql.Marshaler {
	return graphql.WriterFunc(func(w io.Writer) {
		w.Write([]byte(d.String()))
	})
}

func UnmarshalDecimal(i interface{}) (decimal.Decimal, error) {
	switch v := i.(type) {
	case string:
		return parseFormattedDecimal(v)
	case json.Number:
		return decimal.NewFromString(v.String())
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case decimal.Decimal:
		return v, nil
	default:
		return decimal.Zero, fmt.Errorf("%T is not a valid Decimal", i)
	}
}

// parseFormattedDecimal accepts storefront-formatted amounts such as
// "1,299.00", "USD 15.99", "$ -20" or "20000 Ks": thousands separators and a
// currency code or symbol on either side are dropped.
func parseFormattedDecimal(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsSpace(r) || unicode.Is(unicode.Sc, r)
	})
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimLeftFunc(strings.TrimPrefix(s, "-"), func(r rune) bool {
			return unicode.IsSpace(r) || unicode.Is(unicode.Sc, r) || unicode.IsLetter(r)
		})
	}
	if s == "" {
		return decimal.Zero, fmt.Errorf("invalid value")
	}
	if neg {
		s = "-" + s
	}
	return decimal.NewFromString(s)
}
