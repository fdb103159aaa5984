package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	_ "saveeat/docs"
	"saveeat/internal/caching"
	"saveeat/internal/config"
	"saveeat/internal/handlers"
	"saveeat/internal/jobs"
	"saveeat/internal/jobs/background"
	"saveeat/internal/middleware"
	"saveeat/internal/repositories"
	"saveeat/internal/services"
	"saveeat/internal/telemetry"
	"saveeat/internal/viewengine"
	"saveeat/pkg/database"
)

const (
	pushTimeout = 30 * time.Second
	llmTimeout  = 60 * time.Second
)

// app holds the connections and services shared by the serve and notify commands
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	pool    *pgxpool.Pool
	redis   *redis.Client
	cache   caching.CacheService
	storage services.MinioService

	pantry  services.PantryService
	push    services.PushService
	recipes services.RecipeService
	posts   services.PostService
	media   services.MediaService
	follows services.FollowService

	shutdownTracing telemetry.ShutdownFunc
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing, version)
	if err != nil {
		return nil, err
	}
	a.shutdownTracing = shutdownTracing

	if a.pool, err = database.NewPool(ctx, cfg.Database.URL, logger); err != nil {
		a.close()
		return nil, err
	}

	a.redis = caching.NewRedisClient(cfg.Redis, logger)
	a.cache = caching.NewRedisCacheService(a.redis)

	if a.storage, err = services.NewMinioService(cfg.Storage); err != nil {
		a.close()
		return nil, err
	}
	if err := a.storage.EnsureBucketExists(ctx); err != nil {
		logger.Warn("object storage unavailable, media uploads will fail", zap.Error(err))
	}

	engine := viewengine.NewEngine(cfg.Inventory.Locale)
	alerts := jobs.NewExpiryAlertService(engine)

	a.pantry = services.NewPantryService(repositories.NewPantryItemRepo(a.pool), a.cache, engine, alerts,
		cfg.Inventory.CacheTTL, logger)

	var sender services.PushSender
	if cfg.PushEnabled() {
		sender = services.NewWebPushSender(cfg.Push, telemetry.HTTPClient(pushTimeout))
	} else {
		logger.Warn("VAPID keys not configured, push delivery disabled")
	}
	a.push = services.NewPushService(repositories.NewPushSubscriptionRepo(a.pool), a.pantry, alerts, sender,
		cfg.Push, logger)

	llm, err := services.NewGeminiClient(ctx, cfg.Recipes, telemetry.HTTPClient(llmTimeout))
	if err != nil {
		a.close()
		return nil, err
	}
	if llm == nil {
		logger.Warn("GEMINI_API_KEY not configured, recipe suggestions disabled")
	}
	a.recipes = services.NewRecipeService(llm, a.pantry, engine, a.cache, cfg.Recipes.HourlyLimit, logger)

	a.media = services.NewMediaService(a.storage, cfg.Storage.MaxUploadMB, logger)
	a.posts = services.NewPostService(repositories.NewPostRepo(a.pool), a.media, logger)
	a.follows = services.NewFollowService(repositories.NewFollowRepo(a.pool))

	return a, nil
}

func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis client", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdownTracing(ctx); err != nil {
			a.logger.Warn("failed to flush traces", zap.Error(err))
		}
	}
}

// router builds the Echo instance with every route mounted
func (a *app) router(auth *middleware.Authenticator) (*echo.Echo, error) {
	loc, err := time.LoadLocation(a.cfg.Push.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", a.cfg.Push.Timezone, err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: a.cfg.Server.AllowOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.BodyLimit(fmt.Sprintf("%dM", a.cfg.Storage.MaxUploadMB+1)))
	e.Use(requestLogger(a.logger))

	versions := middleware.NewVersions()
	e.Pre(versions.Resolver())

	handlers.NewHealthHandlers(a.pool, a.cache, a.storage, version).Register(e)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := versions.Group(e, "v1")
	optional := v1.Group("", auth.OptionalAuth())
	protected := v1.Group("", auth.RequireAuth())

	handlers.NewPantryHandlers(a.pantry, loc).Register(protected)
	handlers.NewPushHandlers(a.push, a.cfg.Push.CronToken, a.cfg.Push.DefaultDays, a.logger).Register(v1, protected)
	handlers.NewRecipeHandlers(a.recipes).Register(protected)
	handlers.NewPostHandlers(a.posts, a.media).Register(optional, protected)
	handlers.NewFollowHandlers(a.follows).Register(protected)

	return e, nil
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echoMiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				logger.Error("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}

func runServe(ctx context.Context, configPath string) error {
	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	auth, err := middleware.NewAuthenticator(ctx, cfg.Auth, logger)
	if err != nil {
		return err
	}
	defer auth.Close()

	e, err := a.router(auth)
	if err != nil {
		return err
	}

	if cfg.PushEnabled() {
		scheduler, err := background.NewJobScheduler(a.push, a.cache, cfg.Push, logger)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop() //nolint:errcheck
		logger.Info("expiry sweep scheduled", zap.Strings("jobs", scheduler.Jobs()))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           telemetry.Handler(e, cfg.Tracing.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
