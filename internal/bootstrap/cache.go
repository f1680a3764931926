package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/masasa123jp/docshub/internal/cache"
	"github.com/masasa123jp/docshub/internal/config"
	"github.com/masasa123jp/docshub/internal/models"
)

// initializeCaches builds the client-registry cache and the metrics gauge
// cache on the configured backend. Redis mode shares cached state across
// instances; memory mode is single-instance only.
func (app *Application) initializeCaches() error {
	switch app.Config.CacheMode {
	case config.CacheModeRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		clientCache, err := cache.NewRueidisCache[models.Client](
			ctx,
			app.Config.RedisAddr,
			app.Config.RedisPassword,
			app.Config.RedisDB,
			app.Config.CacheKeyPrefix,
		)
		if err != nil {
			return fmt.Errorf("failed to connect client cache: %w", err)
		}

		metricsCache, err := cache.NewRueidisCache[int64](
			ctx,
			app.Config.RedisAddr,
			app.Config.RedisPassword,
			app.Config.RedisDB,
			app.Config.CacheKeyPrefix+"metrics:",
		)
		if err != nil {
			_ = clientCache.Close()
			return fmt.Errorf("failed to connect metrics cache: %w", err)
		}

		app.ClientCache = clientCache
		app.MetricsCache = metricsCache
		app.cacheClosers = append(app.cacheClosers, clientCache.Close, metricsCache.Close)
		log.Printf("Cache backend: redis (%s)", app.Config.RedisAddr)

	default: // memory
		clientCache := cache.NewMemoryCache[models.Client]()
		metricsCache := cache.NewMemoryCache[int64]()
		app.ClientCache = clientCache
		app.MetricsCache = metricsCache
		app.cacheClosers = append(app.cacheClosers, clientCache.Close, metricsCache.Close)
		log.Println("Cache backend: memory (single instance only)")
	}

	return nil
}
