package graph

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/introspection"
	"github.com/mmdatafocus/commerce_backend/config"
	"github.com/mmdatafocus/commerce_backend/middlewares"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/shopspring/decimal"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

//go:embed schema.graphqls
var sourceData string

var parsedSchema = gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphqls", Input: sourceData, BuiltIn: false})

type rootField func(ctx context.Context, a args) (interface{}, error)

type objectField func(ctx context.Context, obj interface{}, a args) (interface{}, error)

// NewExecutableSchema serves schema.graphqls. Root fields dispatch through
// the bindings in bindings.go; object fields are read from the models by json
// tag unless a computed field is registered for them.
func NewExecutableSchema(cfg Config) graphql.ExecutableSchema {
	if cfg.Resolvers.Logger == nil {
		cfg.Resolvers.Logger = config.GetLogger()
	}
	es := &executableSchema{
		resolvers:  cfg.Resolvers,
		directives: cfg.Directives,
	}
	es.roots = map[string]map[string]rootField{
		"Query":    queryFields(cfg.Resolvers.Query()),
		"Mutation": mutationFields(cfg.Resolvers.Mutation()),
	}
	es.objects = map[string]map[string]objectField{
		"Product": productFields(cfg.Resolvers.Product()),
	}
	return es
}

type executableSchema struct {
	resolvers  *Resolver
	directives DirectiveRoot
	roots      map[string]map[string]rootField
	objects    map[string]map[string]objectField
}

func (e *executableSchema) Schema() *ast.Schema {
	return parsedSchema
}

func (e *executableSchema) Complexity(typeName, field string, childComplexity int, rawArgs map[string]interface{}) (int, bool) {
	return 0, false
}

func (e *executableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	rc := graphql.GetOperationContext(ctx)
	ec := &executionContext{OperationContext: rc, executableSchema: e}

	var root string
	switch rc.Operation.Operation {
	case ast.Query:
		root = "Query"
	case ast.Mutation:
		root = "Mutation"
	default:
		return graphql.OneShot(graphql.ErrorResponse(ctx, "unsupported GraphQL operation"))
	}

	first := true
	return func(ctx context.Context) *graphql.Response {
		if !first {
			return nil
		}
		first = false
		if middlewares.For(ctx) == nil {
			ctx = middlewares.WithLoaders(ctx, middlewares.NewLoaders(e.resolvers.Services.Catalog))
		}
		data := ec.root(ctx, root, rc.Operation.SelectionSet)
		return &graphql.Response{Data: data, Errors: ec.errors}
	}
}

type executionContext struct {
	*graphql.OperationContext
	*executableSchema

	mu     sync.Mutex
	errors gqlerror.List
}

// root resolves the top-level fields one after another, which is what the
// mutation contract requires and keeps queries simple.
func (ec *executionContext) root(ctx context.Context, typeName string, sel ast.SelectionSet) json.RawMessage {
	fields := graphql.CollectFields(ec.OperationContext, sel, []string{typeName})

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(field.Alias))
		buf.WriteByte(':')

		path := ast.Path{ast.PathName(field.Alias)}
		if field.Name == "__typename" {
			buf.WriteString(strconv.Quote(typeName))
			continue
		}

		var (
			res interface{}
			err error
		)
		if strings.HasPrefix(field.Name, "__") {
			res, err = ec.introspect(field)
		} else {
			res, err = ec.resolveRoot(ctx, typeName, field)
		}
		if err != nil {
			ec.addError(path, err)
			if field.Definition.Type.NonNull {
				return json.RawMessage("null")
			}
			buf.WriteString("null")
			continue
		}
		raw, ok := ec.value(ctx, field.Definition.Type, res, field.Selections, path)
		if !ok {
			return json.RawMessage("null")
		}
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

func (ec *executionContext) resolveRoot(ctx context.Context, typeName string, field graphql.CollectedField) (res interface{}, err error) {
	resolve, ok := ec.roots[typeName][field.Name]
	if !ok {
		return nil, fmt.Errorf("%s.%s has no resolver", typeName, field.Name)
	}
	argMap := field.ArgumentMap(ec.Variables)

	fc := &graphql.FieldContext{
		Object:     typeName,
		Field:      field,
		Args:       argMap,
		IsMethod:   true,
		IsResolver: true,
	}
	ctx = graphql.WithFieldContext(ctx, fc)

	defer func() {
		if r := recover(); r != nil {
			config.LogError(ec.resolvers.Logger, "graph", typeName+"."+field.Name, "panic", argMap, fmt.Errorf("%v", r))
			res, err = nil, fmt.Errorf("internal system error")
		}
	}()

	next := func(ctx context.Context) (interface{}, error) {
		return resolve(ctx, args(argMap))
	}
	directive := next
	if d := field.Definition.Directives.ForName("auth"); d != nil && ec.directives.Auth != nil {
		roles := directiveRoles(d, ec.Variables)
		directive = func(ctx context.Context) (interface{}, error) {
			return ec.directives.Auth(ctx, nil, next, roles)
		}
	}
	if ec.ResolverMiddleware == nil {
		return directive(ctx)
	}
	return ec.ResolverMiddleware(ctx, directive)
}

// introspect serves __schema and __type from gqlgen's introspection types.
func (ec *executionContext) introspect(field graphql.CollectedField) (interface{}, error) {
	if ec.DisableIntrospection {
		return nil, gqlerror.Errorf("introspection disabled")
	}
	switch field.Name {
	case "__schema":
		return introspection.WrapSchema(ec.Schema()), nil
	case "__type":
		name, _ := field.ArgumentMap(ec.Variables)["name"].(string)
		return introspection.WrapTypeFromDef(ec.Schema(), ec.Schema().Types[name]), nil
	default:
		return nil, fmt.Errorf("unknown field %s", field.Name)
	}
}

// introspectionField reads a field of an introspection value. Those types
// expose most of their data through methods, some taking includeDeprecated.
func introspectionField(rv reflect.Value, field graphql.CollectedField, vars map[string]interface{}) (interface{}, bool) {
	name := strings.ToUpper(field.Name[:1]) + field.Name[1:]
	ptr := reflect.New(rv.Type())
	ptr.Elem().Set(rv)
	if m := ptr.MethodByName(name); m.IsValid() {
		var in []reflect.Value
		if m.Type().NumIn() == 1 {
			include, _ := field.ArgumentMap(vars)["includeDeprecated"].(bool)
			in = append(in, reflect.ValueOf(include))
		}
		return m.Call(in)[0].Interface(), true
	}
	if f := rv.FieldByName(name); f.IsValid() && f.CanInterface() {
		return f.Interface(), true
	}
	return nil, false
}

func directiveRoles(d *ast.Directive, vars map[string]interface{}) []string {
	raw, _ := d.ArgumentMap(vars)["roles"].([]interface{})
	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}

// value renders v as typ. ok is false when a non-null position ended up null,
// telling the caller to null itself out.
func (ec *executionContext) value(ctx context.Context, typ *ast.Type, v interface{}, sel ast.SelectionSet, path ast.Path) (json.RawMessage, bool) {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && (rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			rv = reflect.Value{}
			break
		}
		rv = rv.Elem()
	}

	if typ.Elem != nil {
		if rv.IsValid() && rv.Kind() == reflect.Slice && rv.IsNil() && typ.NonNull {
			return json.RawMessage("[]"), true
		}
		if !rv.IsValid() || (rv.Kind() == reflect.Slice && rv.IsNil()) {
			return ec.null(typ, path)
		}
		return ec.list(ctx, typ, rv, sel, path)
	}
	if !rv.IsValid() {
		return ec.null(typ, path)
	}

	def := ec.Schema().Types[typ.NamedType]
	switch def.Kind {
	case ast.Object:
		return ec.object(ctx, def, v, rv, sel, path)
	case ast.Scalar, ast.Enum:
		return ec.leaf(rv, path)
	default:
		ec.addError(path, fmt.Errorf("unsupported output type %s", def.Name))
		return ec.null(typ, path)
	}
}

func (ec *executionContext) null(typ *ast.Type, path ast.Path) (json.RawMessage, bool) {
	if typ.NonNull {
		ec.addError(path, &gqlerror.Error{Message: "must not be null"})
		return nil, false
	}
	return json.RawMessage("null"), true
}

// list resolves elements concurrently so the dataloaders see one batch per
// field across the whole list.
func (ec *executionContext) list(ctx context.Context, typ *ast.Type, rv reflect.Value, sel ast.SelectionSet, path ast.Path) (json.RawMessage, bool) {
	n := rv.Len()
	raws := make([]json.RawMessage, n)
	oks := make([]bool, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		itemPath := append(append(ast.Path{}, path...), ast.PathIndex(i))
		item := rv.Index(i).Interface()
		if n == 1 {
			raws[i], oks[i] = ec.value(ctx, typ.Elem, item, sel, itemPath)
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					config.LogError(ec.resolvers.Logger, "graph", itemPath.String(), "panic", nil, fmt.Errorf("%v", r))
					ec.addError(itemPath, &gqlerror.Error{Message: "internal system error"})
					oks[i] = false
				}
			}()
			raws[i], oks[i] = ec.value(ctx, typ.Elem, item, sel, itemPath)
		}(i)
	}
	wg.Wait()

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := range raws {
		if !oks[i] {
			return ec.null(typ, path)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(raws[i])
	}
	buf.WriteByte(']')
	return buf.Bytes(), true
}

func (ec *executionContext) object(ctx context.Context, def *ast.Definition, obj interface{}, rv reflect.Value, sel ast.SelectionSet, path ast.Path) (json.RawMessage, bool) {
	fields := graphql.CollectFields(ec.OperationContext, sel, []string{def.Name})
	computed := ec.objects[def.Name]

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(field.Alias))
		buf.WriteByte(':')

		if field.Name == "__typename" {
			buf.WriteString(strconv.Quote(def.Name))
			continue
		}

		fieldPath := append(append(ast.Path{}, path...), ast.PathName(field.Alias))
		var child interface{}
		if resolve, ok := computed[field.Name]; ok {
			res, err := resolve(ctx, obj, args(field.ArgumentMap(ec.Variables)))
			if err != nil {
				ec.addError(fieldPath, err)
				if field.Definition.Type.NonNull {
					return nil, false
				}
				buf.WriteString("null")
				continue
			}
			child = res
		} else if strings.HasPrefix(def.Name, "__") {
			res, ok := introspectionField(rv, field, ec.Variables)
			if !ok {
				ec.addError(fieldPath, fmt.Errorf("%s.%s is not supported", def.Name, field.Name))
				buf.WriteString("null")
				continue
			}
			child = res
		} else if idx, ok := jsonField(rv.Type(), snakeCase(field.Name)); ok {
			child = rv.FieldByIndex(idx).Interface()
		} else {
			ec.addError(fieldPath, fmt.Errorf("%s.%s is not backed by %s", def.Name, field.Name, rv.Type()))
			buf.WriteString("null")
			continue
		}

		raw, ok := ec.value(ctx, field.Definition.Type, child, field.Selections, fieldPath)
		if !ok {
			return nil, false
		}
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), true
}

func (ec *executionContext) leaf(rv reflect.Value, path ast.Path) (json.RawMessage, bool) {
	var buf bytes.Buffer
	switch v := rv.Interface().(type) {
	case decimal.Decimal:
		MarshalDecimal(v).MarshalGQL(&buf)
	case time.Time:
		graphql.MarshalTime(v).MarshalGQL(&buf)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			ec.addError(path, err)
			return json.RawMessage("null"), true
		}
		return raw, true
	}
	return buf.Bytes(), true
}

func (ec *executionContext) addError(path ast.Path, err error) {
	gqlErr, ok := err.(*gqlerror.Error)
	if !ok {
		kind := models.KindOf(err)
		if kind == models.KindInternal {
			config.LogError(ec.resolvers.Logger, "graph", path.String(), ec.OperationName, nil, err)
		}
		gqlErr = &gqlerror.Error{
			Message:    models.PublicMessage(err),
			Extensions: map[string]interface{}{"code": string(kind)},
		}
	}
	if gqlErr.Path == nil {
		gqlErr.Path = path
	}

	ec.mu.Lock()
	ec.errors = append(ec.errors, gqlErr)
	ec.mu.Unlock()
}

var jsonFieldCache sync.Map

// jsonField finds the struct field (embedded structs included) whose json tag
// is key.
func jsonField(t reflect.Type, key string) ([]int, bool) {
	if t.Kind() != reflect.Struct {
		return nil, false
	}
	var index map[string][]int
	if cached, ok := jsonFieldCache.Load(t); ok {
		index = cached.(map[string][]int)
	} else {
		index = make(map[string][]int)
		indexJSONFields(t, nil, index)
		jsonFieldCache.Store(t, index)
	}
	idx, ok := index[key]
	return idx, ok
}

func indexJSONFields(t reflect.Type, prefix []int, index map[string][]int) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" && !f.Anonymous {
			continue
		}
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "-" {
			continue
		}
		path := append(append([]int{}, prefix...), i)
		if name == "" && f.Anonymous && f.Type.Kind() == reflect.Struct {
			indexJSONFields(f.Type, path, index)
			continue
		}
		if name == "" {
			name = f.Name
		}
		if _, taken := index[name]; !taken {
			index[name] = path
		}
	}
}
