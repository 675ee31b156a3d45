package report

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/opportunity-analyst/internal/config"
	"github.com/ignite/opportunity-analyst/internal/pkg/logger"
)

// Setup builds the Reporter described by cfg. The redis client is nil when
// the cache is disabled or unreachable; otherwise the caller closes it.
func Setup(ctx context.Context, cfg *config.Config) (*Reporter, *redis.Client, error) {
	gen, err := NewGenerator(ctx, cfg.Report)
	if err != nil {
		return nil, nil, err
	}

	opts := []Option{WithTimeout(cfg.Report.Timeout())}

	var client *redis.Client
	if cfg.Redis.Enabled && cfg.Redis.URL != "" {
		client, err = ConnectRedis(ctx, cfg.Redis.URL)
		if err != nil {
			// Reports still work uncached.
			logger.Warn("report cache disabled", "redis_url", cfg.Redis.URL, "error", err.Error())
			client = nil
		} else {
			opts = append(opts, WithCache(NewRedisCache(client), cfg.Report.CacheTTL()))
		}
	}

	logger.Info("report generator ready", "generator", gen.Name(), "cached", client != nil)
	return NewReporter(gen, opts...), client, nil
}
