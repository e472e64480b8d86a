package cmd

import (
	"context"
	"fmt"
	"time"

	"service-marketplace/internal/data/repository"
	"service-marketplace/internal/matching"
	"service-marketplace/internal/realtime"
	"service-marketplace/internal/storage"
	"service-marketplace/internal/usecase"
	"service-marketplace/internal/wire"
	"service-marketplace/pkg/middleware"
	"service-marketplace/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// janitorInterval is how often expired sessions and idle rate-limit entries are dropped.
const janitorInterval = 10 * time.Minute

// BuildDeps connects redis, kafka and file storage. cleanup releases them in
// reverse order and drains queued events first.
func BuildDeps(ctx context.Context, config *utils.Config, log *zap.Logger) (deps wire.Deps, cleanup func(), err error) {
	var closers []func()
	cleanup = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	defer func() {
		if err != nil {
			cleanup()
		}
	}()

	// 1. Redis pub/sub untuk live stream
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})
	closers = append(closers, func() { _ = rdb.Close() })

	if pingErr := rdb.Ping(ctx).Err(); pingErr != nil {
		return deps, cleanup, fmt.Errorf("connect redis: %w", pingErr)
	}
	redisPusher := realtime.NewRedisPusher(rdb, log)
	pushers := realtime.MultiPusher{redisPusher}

	// 2. Kafka optional
	if len(config.Kafka.Brokers) > 0 {
		kafkaPusher := realtime.NewKafkaPusher(config.Kafka.Brokers, config.Kafka.NotificationTopic, log)
		closers = append(closers, func() {
			if closeErr := kafkaPusher.Close(); closeErr != nil {
				log.Warn("Failed to close kafka writer", zap.Error(closeErr))
			}
		})
		pushers = append(pushers, kafkaPusher)
		log.Info("Kafka notifications enabled", zap.Strings("brokers", config.Kafka.Brokers))
	}

	dispatcher := realtime.NewDispatcher(pushers, config.Notify.Workers, config.Notify.QueueSize, log)
	dispatcher.Start()
	closers = append(closers, dispatcher.Close)

	// 3. File storage
	files, uploadsDir, err := newFileStore(config.Storage)
	if err != nil {
		return deps, cleanup, err
	}

	deps = wire.Deps{
		Infra: usecase.Infra{
			Files:     files,
			Publisher: dispatcher,
			Selector:  matching.RandomSelector{},
		},
		Stream:     redisPusher,
		Limiter:    middleware.NewRateLimiter(config.RateLimit.RPS, config.RateLimit.Burst),
		UploadsDir: uploadsDir,
	}
	return deps, cleanup, nil
}

func newFileStore(config utils.StorageConfig) (storage.FileStore, string, error) {
	switch config.Driver {
	case "cloudinary":
		store, err := storage.NewCloudinaryStore(config.CloudinaryURL)
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	case "local", "":
		store := storage.NewLocalStore(config.LocalDir, config.PublicBaseURL)
		return store, store.Dir(), nil
	default:
		return nil, "", fmt.Errorf("unknown storage driver %q", config.Driver)
	}
}

// RunJanitor periodically removes expired sessions and idle limiter entries.
func RunJanitor(ctx context.Context, repo *repository.Repository, limiter *middleware.RateLimiter, log *zap.Logger) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := repo.Session.CleanExpiredSessions(ctx); err != nil {
				log.Warn("Failed to clean expired sessions", zap.Error(err))
			}
			if limiter != nil {
				limiter.Sweep(now)
			}
		}
	}
}
