package container

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"pathscategories/resolver/internal/client"
	"pathscategories/resolver/internal/config"
	"pathscategories/resolver/internal/queue"
	"pathscategories/resolver/internal/repository"
	"pathscategories/resolver/internal/server"
	"pathscategories/resolver/internal/service"
	"pathscategories/resolver/internal/state"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	Client     client.CategoryClient
	Repository repository.SelectionRepository
	Queue      queue.Queue
	Fields     state.FieldStore

	Service *service.Service
	Server  *server.Server

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	container.db = db

	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	selectionRepo := repository.NewSelectionRepository(db)
	container.Repository = selectionRepo

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})
	container.redis = rdb

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("✅ Connected to Redis successfully")

	redisQueue, err := queue.NewRedisQueue(ctx, rdb, cfg.Redis)
	if err != nil {
		container.Close()
		return nil, err
	}
	container.Queue = redisQueue

	fields := state.NewRedisFieldStore(rdb)
	container.Fields = fields

	categoryClient := client.NewCategoryClient(cfg.Categories)
	container.Client = categoryClient

	container.Service = service.NewService(
		categoryClient,
		service.NewHostNotifier(fields, redisQueue),
		fields,
		redisQueue,
		selectionRepo,
		cfg.Redis.ConsumerGroup,
		cfg.Redis.MinIdleTime,
		cfg.Categories.RefreshInterval,
	)

	container.Server = server.New(container.Service, cfg.Server)

	return container, nil
}

// Run loads categories, serves HTTP and persists selections until ctx is done
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.Service.Run(ctx)
	})

	g.Go(func() error {
		return c.Service.RunWorkers(ctx, c.Config.Redis.Workers)
	})

	g.Go(func() error {
		return c.Server.ListenAndServe(ctx)
	})

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return fmt.Errorf("failed to close Redis client: %w", err)
		}
	}

	log.Info("Container shut down successfully")
	return nil
}
