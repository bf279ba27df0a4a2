package fx

import (
	"context"
	"valorant-scout/internal/cache"
	"valorant-scout/internal/config"
	"valorant-scout/internal/constants"
	"valorant-scout/internal/database"
	"valorant-scout/internal/logger"
	"valorant-scout/internal/repository"
	"valorant-scout/internal/server"
	"valorant-scout/internal/service"
	"valorant-scout/internal/vlr"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// ProvideStore picks the cache backend. The SQLite backend is closed with the
// app, which drops the in-memory database.
func ProvideStore(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (cache.Store, error) {
	if cfg.CacheBackend != constants.SQLiteCacheBackend {
		logger.Info().Msg("using in-memory cache store")
		return cache.NewMemoryStore(), nil
	}

	sqlDB, err := database.Open(cfg.DBPath, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := sqlDB.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
				return err
			}
			return nil
		},
	})

	logger.Info().Msg("using sqlite cache store")
	return repository.NewStatsRepository(sqlDB, logger), nil
}

func ProvideFetcher(c *vlr.Client) service.DocumentFetcher {
	return c
}

func ProvideStatsLinker(c *vlr.Client) server.StatsLinker {
	return c
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	// cache
	fx.Provide(ProvideStore),
	// stats site client
	fx.Provide(vlr.NewClient),
	fx.Provide(ProvideFetcher),
	fx.Provide(ProvideStatsLinker),
	// svc
	fx.Provide(service.NewScout),
	// server
	fx.Provide(server.NewScoutServer),
)
