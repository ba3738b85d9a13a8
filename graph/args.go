package graph

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
)

// args are the coerced arguments of one field, keyed by GraphQL name.
type args map[string]interface{}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decode binds args[name] into out. Input object keys are camelCase in the
// schema and snake_case in the models' json tags.
func (a args) decode(name string, out interface{}) error {
	raw, ok := a[name]
	if !ok || raw == nil {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook:       mapstructure.DecodeHookFuncType(decimalHook),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(snakeKeys(raw))
}

func (a args) int(name string) (int, error) {
	var n int
	err := a.decode(name, &n)
	return n, err
}

func (a args) string(name string) (string, error) {
	var s string
	err := a.decode(name, &s)
	return s, err
}

func decimalHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != decimalType || from == decimalType {
		return data, nil
	}
	return UnmarshalDecimal(data)
}

func snakeKeys(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[snakeCase(k)] = snakeKeys(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = snakeKeys(val)
		}
		return out
	default:
		return v
	}
}

// snakeCase maps a GraphQL field name to its json tag: shippingMethodId ->
// shipping_method_id.
func snakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
