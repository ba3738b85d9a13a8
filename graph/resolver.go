package graph

import (
	"context"

	"github.com/99designs/gqlgen/graphql"
	_ "github.com/99designs/gqlgen/plugin"
	"github.com/mmdatafocus/commerce_backend/service"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

//go:generate go run github.com/99designs/gqlgen
// This file will not be regenerated automatically.
//
// It serves as dependency injection for your app, add any dependencies you require here.

type Resolver struct {
	Services *service.Services
	Tracer   trace.Tracer
	Logger   *logrus.Logger
}

type DirectiveRoot struct {
	Auth func(ctx context.Context, obj interface{}, next graphql.Resolver, roles []string) (res interface{}, err error)
}

type Config struct {
	Resolvers  *Resolver
	Directives DirectiveRoot
}

type queryResolver struct{ *Resolver }

type mutationResolver struct{ *Resolver }

type productResolver struct{ *Resolver }

func (r *Resolver) Query() *queryResolver { return &queryResolver{r} }

func (r *Resolver) Mutation() *mutationResolver { return &mutationResolver{r} }

func (r *Resolver) Product() *productResolver { return &productResolver{r} }
