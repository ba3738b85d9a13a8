package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/commerce_backend/config"
	"github.com/mmdatafocus/commerce_backend/directives"
	"github.com/mmdatafocus/commerce_backend/graph"
	"github.com/mmdatafocus/commerce_backend/handlers"
	"github.com/mmdatafocus/commerce_backend/middlewares"
	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/repository"
	"github.com/mmdatafocus/commerce_backend/service"
	"github.com/mmdatafocus/commerce_backend/workflow"
	"github.com/ravilushqa/otelgqlgen"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

const defaultPort = "8080"

var tracer = otel.Tracer("commerce-backend")

// Cache backs automatic persisted queries.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// RateLimiter is a fixed-window counter per client.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

const apqPrefix = "apq:"

func NewCache(client redis.UniversalClient, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Add(ctx context.Context, key string, value interface{}) {
	c.client.Set(ctx, apqPrefix+key, value, c.ttl)
}

func (c *Cache) Get(ctx context.Context, key string) (interface{}, bool) {
	s, err := c.client.Get(ctx, apqPrefix+key).Result()
	if err != nil {
		return struct{}{}, false
	}
	return s, true
}

// Defining the Graphql handler
func graphqlHandler(svc *service.Services, logger *logrus.Logger, rdb *redis.Client) gin.HandlerFunc {
	c := graph.Config{Resolvers: &graph.Resolver{
		Services: svc,
		Tracer:   tracer,
		Logger:   logger,
	}}
	c.Directives.Auth = directives.Auth

	h := handler.New(graph.NewExecutableSchema(c))
	h.Use(extension.Introspection{})
	h.Use(otelgqlgen.Middleware())
	h.AddTransport(transport.Options{})
	h.AddTransport(transport.GET{})
	h.AddTransport(transport.POST{})
	// APQ is optional; without Redis the server runs without it.
	if rdb != nil {
		h.Use(extension.AutomaticPersistedQuery{Cache: NewCache(rdb, 24*time.Hour)})
	} else {
		logger.WithFields(logrus.Fields{
			"field": "graphqlHandler",
		}).Warn("APQ redis cache disabled (redis not connected)")
	}
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Defining the Playground handler
func playgroundHandler() gin.HandlerFunc {
	h := playground.Handler("GraphQL", "/query")

	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "route not found"})
}

func corsMiddleware() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	// Production requires an explicit allowlist. Patterns use path.Match
	// syntax, e.g. https://*.vercel.app for preview deployments.
	allowed := config.SplitAndTrim(os.Getenv("CORS_ALLOWED_ORIGINS"))
	patterns := config.SplitAndTrim(os.Getenv("CORS_ALLOWED_ORIGIN_PATTERNS"))
	if len(patterns) == 0 {
		patterns = []string{"https://*.vercel.app"}
	}
	if config.IsProduction() {
		corsConfig.AllowOriginFunc = func(origin string) bool {
			return originAllowed(origin, allowed, patterns)
		}
	} else {
		corsConfig.AllowOriginFunc = func(string) bool { return true }
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization",
		middlewares.TenantHeader, middlewares.CartSessionHeader, "x-correlation-id")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", "x-correlation-id")
	corsConfig.AllowCredentials = true
	return cors.New(corsConfig)
}

func originAllowed(origin string, allowed, patterns []string) bool {
	for _, o := range allowed {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	for _, p := range patterns {
		if ok, _ := path.Match(p, strings.ToLower(origin)); ok {
			return true
		}
	}
	return false
}

// newRouter wires the HTTP surface. rdb may be nil.
func newRouter(svc *service.Services, logger *logrus.Logger, rdb *redis.Client) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(corsMiddleware())
	r.Use(customErrorLogger(logger))

	r.GET("/healthz", handlers.Healthz)
	r.GET("/", playgroundHandler())

	tenant := r.Group("/")
	if rdb != nil && envBool("RATE_LIMIT_ENABLED") {
		tenant.Use(NewRateLimiter(rdb,
			envInt64("RATE_LIMIT_MAX_REQUESTS", 600),
			time.Duration(envInt64("RATE_LIMIT_WINDOW_SECONDS", 60))*time.Second,
		).RateLimitMiddleware)
	}
	tenant.Use(middlewares.TenantMiddleware(svc.Tenants))
	tenant.Use(middlewares.AuthMiddleware(svc.Auth))
	tenant.Use(middlewares.SessionMiddleware())
	tenant.Use(middlewares.LoaderMiddleware(svc.Catalog))
	gql := graphqlHandler(svc, logger, rdb)
	tenant.POST("/query", gql)
	tenant.GET("/query", gql)

	h := handlers.New(svc, logger)
	api := tenant.Group("/api")
	h.RegisterStorefront(api)
	h.RegisterAdmin(api.Group("/admin"))

	r.NoRoute(customNotFoundHandler)
	return r
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return v
}

func envInt64(key string, def int64) int64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start listening before dependencies are ready. Until the router is
	// built, everything but /healthz answers 503.
	var app atomic.Pointer[gin.Engine]
	srv := &http.Server{
		Addr: ":" + port,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if r := app.Load(); r != nil {
				r.ServeHTTP(w, req)
				return
			}
			if req.URL.Path == "/healthz" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			w.WriteHeader(http.StatusServiceUnavailable)
		}),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can block tables; allow running it as a separate job instead.
	if !envBool("SKIP_MIGRATIONS") {
		if err := models.MigrateTable(db); err != nil {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Fatal(err.Error())
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	// Redis is optional; without it sessions and locks stay in-process.
	redisCtx, cancelRedis := context.WithTimeout(sigCtx, 20*time.Second)
	config.ConnectRedisWithRetry(redisCtx)
	cancelRedis()
	rdb := config.GetRedisDB()

	opts := service.Options{
		Store:                     repository.New(db),
		Logger:                    logger,
		ShippingBasePriceFallback: config.ShippingBasePriceFallback(),
		DefaultTenantSlug:         config.DefaultTenantSlug(),
	}
	if rdb != nil {
		opts.Sessions = config.NewRedisSessions(rdb)
		if config.CartRedisLock() {
			opts.Locker = config.NewRedisLocker(config.GetRedisLock(), 30*time.Second)
		}
	}
	svc := service.New(opts)

	// Outbox dispatcher publishes committed events after the fact.
	dispatcherCtx, cancelDispatcher := context.WithCancel(context.Background())
	defer cancelDispatcher()
	if config.OutboxDispatcherEnabled() {
		publisher, err := config.NewEventPublisher(sigCtx)
		switch {
		case err != nil:
			logger.WithFields(logrus.Fields{"field": "outbox"}).Error("event publisher unavailable: " + err.Error())
		case publisher == nil:
			logger.WithFields(logrus.Fields{"field": "outbox"}).Warn("EVENT_BROKER not set; outbox dispatcher not started")
		default:
			defer publisher.Close()
			go workflow.NewOutboxDispatcher(opts.Store.Outbox(), publisher, logger).Run(dispatcherCtx)
		}
	}

	app.Store(newRouter(svc, logger, rdb))
	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("connect to http://localhost:", port, "/ for GraphQL playground")
	log.Println("Server started successfully")

	// Block until shutdown or server error.
	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Stop background workers first so they don't start new work while we're draining.
	cancelDispatcher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb != nil {
		_ = rdb.Close()
	}
}

// customErrorLogger is a custom Gin middleware that logs only errors
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// RateLimitMiddleware counts requests per client IP and tenant header.
func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	key := "ratelimit:" + c.GetHeader(middlewares.TenantHeader) + ":" + c.ClientIP()

	count, err := rl.client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if count == 1 {
		if err := rl.client.Expire(c.Request.Context(), key, rl.window).Err(); err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
	}
	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success": false,
			"message": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())),
		})
		return
	}

	c.Next()
}
