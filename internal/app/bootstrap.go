// Package app wires configuration, storage and services for the API server and the CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-escalation/internal/clock"
	"github.com/spec-kit/ticket-escalation/internal/config"
	"github.com/spec-kit/ticket-escalation/internal/events"
	"github.com/spec-kit/ticket-escalation/internal/mail"
	"github.com/spec-kit/ticket-escalation/internal/observability"
	"github.com/spec-kit/ticket-escalation/internal/persistence"
	"github.com/spec-kit/ticket-escalation/internal/priority"
	"github.com/spec-kit/ticket-escalation/internal/repository"
	"github.com/spec-kit/ticket-escalation/internal/service"
	"github.com/spec-kit/ticket-escalation/internal/worker"
)

// Container holds the wired application.
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Clock      clock.Clock
	Metrics    *observability.Metrics
	Postgres   *persistence.Postgres
	Redis      *persistence.Redis
	Users      repository.UserRepository
	Engine     *priority.Engine
	Dispatcher events.Dispatcher
	Tickets    *service.TicketService
}

// NewEngine builds the rule chain from escalation settings.
func NewEngine(cfg config.EscalationConfig, clk clock.Clock) *priority.Engine {
	return priority.NewDefaultEngine(clk, priority.Config{
		AgeThreshold: cfg.AgeThreshold,
		Keywords:     cfg.Keywords,
	})
}

// Build connects to Postgres and Redis, applies migrations when enabled and
// assembles the ticket service. Callers must Close the container.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			pg.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)

	clk := clock.Real()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartEventWorker(dispatcher, logger, metrics)

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	directory := repository.NewCachedUserDirectory(userRepo, redis.ClientHandle(), cfg.Redis.UserCacheTTL(), logger)
	engine := NewEngine(cfg.Escalation, clk)
	transport, err := mail.NewTransport(cfg.Notification, logger)
	if err != nil {
		redis.Close()
		pg.Close()
		return nil, fmt.Errorf("configure mail transport: %w", err)
	}
	notifier := service.NewNotificationService(transport, logger)

	tickets := service.NewTicketService(service.TicketDependencies{
		Users:      directory,
		Tickets:    repository.NewTicketRepository(pool),
		Priorities: engine,
		Notifier:   notifier,
		Dispatcher: dispatcher,
		Clock:      clk,
		Logger:     logger,
	})

	logger.Info("escalation rules loaded",
		zap.Strings("rules", engine.Rules()),
		zap.Duration("age_threshold", cfg.Escalation.AgeThreshold),
		zap.Strings("keywords", cfg.Escalation.Keywords))

	return &Container{
		Config:     cfg,
		Logger:     logger,
		Clock:      clk,
		Metrics:    metrics,
		Postgres:   pg,
		Redis:      redis,
		Users:      userRepo,
		Engine:     engine,
		Dispatcher: dispatcher,
		Tickets:    tickets,
	}, nil
}

// Close releases connections.
func (c *Container) Close() {
	c.Redis.Close()
	c.Postgres.Close()
}
