package setup

import (
	"context"
	"io"

	"github.com/threadly-dev/threadly/backend/internal/cache"
	"github.com/threadly-dev/threadly/backend/internal/handler"
	"github.com/threadly-dev/threadly/backend/internal/service"
	"github.com/threadly-dev/threadly/backend/internal/storage/pg"
	"github.com/threadly-dev/threadly/backend/internal/utils"
	"github.com/threadly-dev/threadly/shared/config"
	"github.com/threadly-dev/threadly/shared/jwt"
	"github.com/threadly-dev/threadly/shared/logger"
	"github.com/threadly-dev/threadly/shared/markdown"
	mw "github.com/threadly-dev/threadly/shared/middleware"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Storage        *pg.Storage
	ViewCache      cache.Store
	Handler        *handler.Handler
	AuthMiddleware *mw.Auth
	ChildrenRepair *service.ChildrenRepair
	Config         *config.Config

	closers []func() error
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	deps := &Dependencies{Storage: storage, Config: cfg, closers: []func() error{storage.Cleanup}}

	viewCache, err := newViewCache(ctx, cfg)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.ViewCache = viewCache
	if c, ok := viewCache.(io.Closer); ok {
		deps.closers = append(deps.closers, c.Close)
	}

	profileValidator := utils.NewProfileValidator()
	user := service.NewUser(storage, profileValidator, viewCache, &cfg.Public)
	community := service.NewCommunity(storage, profileValidator, &cfg.Public)
	thread := service.NewThread(storage, utils.NewTextValidator(&cfg.Public), viewCache)
	feed := service.NewFeed(storage, &cfg.Public)
	activity := service.NewActivity(storage)

	deps.Handler = handler.New(user, community, thread, feed, activity, storage, markdown.New(), cfg)
	deps.AuthMiddleware = mw.NewAuth(jwt.New(cfg.IdentityKey()))
	deps.ChildrenRepair = service.NewChildrenRepair(storage)
	return deps, nil
}

// newViewCache falls back to a cache that never hits when no Redis is configured.
func newViewCache(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	if cfg.Private.RedisURL == "" {
		logger.Log.Warn("redis_url not set, view cache disabled")
		return cache.Nop{}, nil
	}
	redisCache, err := cache.NewRedis(ctx, cfg.Private.RedisURL, cfg.Public.ViewCacheTTL)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("view cache connected", "ttl", cfg.Public.ViewCacheTTL)
	return redisCache, nil
}

// Close releases connections in reverse order of creation.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			logger.Log.Error("failed to close dependency", "error", err)
		}
	}
}
