package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify lower-cases, strips accents and joins words with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFKD.String(s) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if r > unicode.MaxASCII {
				continue
			}
			b.WriteRune(unicode.ToLower(r))
			dash = false
		default:
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// SkuFromName turns "Blue Cotton Shirt" into "BLUE-COTTON-SHIRT".
func SkuFromName(name string) string {
	sku := strings.ToUpper(Slugify(name))
	if len(sku) > 64 {
		sku = strings.TrimSuffix(sku[:64], "-")
	}
	return sku
}
