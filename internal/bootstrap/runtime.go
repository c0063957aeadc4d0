// Package bootstrap connects the external resources a process needs.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"blizz/internal/cache"
	"blizz/internal/config"
	"blizz/internal/database"
	"blizz/internal/events"
	"blizz/internal/middleware"
	"blizz/internal/server"
	"blizz/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Runtime holds connected resources. Close releases them.
type Runtime struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Media    storage.MediaStore
	MediaDir string
	Events   events.Publisher
}

// InitRuntime connects Postgres and Redis, then picks the media store and
// event publisher. MinIO is used when MINIO_ENDPOINT is set and a local
// directory otherwise; Kafka is used when KAFKA_BROKERS is set and events
// are dropped otherwise.
func InitRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// A nil client leaves caching, rate limiting and notifications off.
	cache.InitRedis(cfg.RedisURL)

	rt := &Runtime{DB: db, Redis: cache.GetClient()}

	if rt.Media, rt.MediaDir, err = newMediaStore(ctx, cfg); err != nil {
		rt.Close()
		return nil, err
	}

	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		rt.Events = events.NewKafkaPublisher(brokers, cfg.KafkaTopic)
		middleware.Logger.Info("kafka event publisher enabled",
			slog.Any("brokers", brokers),
			slog.String("topic", cfg.KafkaTopic),
		)
	} else {
		rt.Events = events.Nop{}
	}

	return rt, nil
}

func newMediaStore(ctx context.Context, cfg *config.Config) (storage.MediaStore, string, error) {
	if cfg.MinioEndpoint != "" {
		store, err := storage.NewMinioStore(storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		})
		if err != nil {
			return nil, "", fmt.Errorf("minio client: %w", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, "", fmt.Errorf("minio bucket: %w", err)
		}
		middleware.Logger.Info("media stored in minio",
			slog.String("endpoint", cfg.MinioEndpoint),
			slog.String("bucket", cfg.MinioBucket),
		)
		return store, "", nil
	}

	store, err := storage.NewDiskStore(cfg.MediaDir, "/media")
	if err != nil {
		return nil, "", err
	}
	middleware.Logger.Info("media stored on disk", slog.String("dir", store.Root()))
	return store, store.Root(), nil
}

// ServerDeps exposes the runtime as server dependencies.
func (rt *Runtime) ServerDeps() server.Deps {
	return server.Deps{
		DB:       rt.DB,
		Redis:    rt.Redis,
		Media:    rt.Media,
		MediaDir: rt.MediaDir,
		Events:   rt.Events,
	}
}

// Close closes the database and Redis connections. The event publisher is
// closed by whoever owns the server.
func (rt *Runtime) Close() {
	if rt.DB != nil {
		if sqlDB, err := rt.DB.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
			}
		}
	}
	if rt.Redis != nil {
		if err := rt.Redis.Close(); err != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", err.Error()))
		}
	}
}
