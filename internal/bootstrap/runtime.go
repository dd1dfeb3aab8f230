// Package bootstrap wires the process-wide dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"inkpost/internal/config"
	"inkpost/internal/database"
	"inkpost/internal/middleware"
	"inkpost/internal/redisclient"
	"inkpost/internal/repository"
	"inkpost/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DefaultDemoPosts is the number of generated posts used when Options.DemoPosts is unset.
const DefaultDemoPosts = 5

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty post table with generated posts.
	SeedDemo  bool
	DemoPosts int
}

// InitRuntime connects to the database, applies the schema, connects to Redis
// and optionally seeds demo content. The Redis client is nil when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := Prepare(ctx, db, cfg, opts); err != nil {
		_ = database.Close(db)
		return nil, nil, err
	}

	return db, redisclient.Connect(ctx, cfg.RedisURL), nil
}

// Prepare applies the schema to db and runs the optional demo seed.
func Prepare(ctx context.Context, db *gorm.DB, cfg *config.Config, opts Options) error {
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	if !opts.SeedDemo {
		return nil
	}

	repo := repository.NewPostRepository(db)
	total, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count posts: %w", err)
	}
	if total > 0 {
		middleware.Logger.InfoContext(ctx, "skipping demo seed, posts already present", slog.Int64("posts", total))
		return nil
	}

	n := opts.DemoPosts
	if n <= 0 {
		n = DefaultDemoPosts
	}
	if _, err := seed.NewSeeder(repo, 0).Demo(ctx, n); err != nil {
		return fmt.Errorf("seed demo posts: %w", err)
	}
	return nil
}
