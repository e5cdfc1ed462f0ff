package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/autoservice-bot/core/bootstrap"
	corecmd "github.com/m3rciful/autoservice-bot/core/cmd"
	coredatabase "github.com/m3rciful/autoservice-bot/core/database"
	"github.com/m3rciful/autoservice-bot/core/logger"
	tg "github.com/m3rciful/autoservice-bot/core/telegram"
	"github.com/m3rciful/autoservice-bot/core/telegram/router"
	"github.com/m3rciful/autoservice-bot/core/telegram/state"
	"github.com/m3rciful/autoservice-bot/core/telegram/ui"
	"github.com/m3rciful/autoservice-bot/internal/config"
	"github.com/m3rciful/autoservice-bot/internal/conversation"
	"github.com/m3rciful/autoservice-bot/internal/storage"
)

const (
	sessionKeyPrefix = "autoservice:session:"
	redisWait        = 10 * time.Second
)

// App owns the infrastructure of a running bot.
type App struct {
	cfg      *config.Config
	db       *sqlx.DB
	redis    *redis.Client
	handlers *Handlers
}

// Bootstrap prepares logging, the database, the session store and the
// conversation engine. It matches the cmd runner's bootstrap hook.
func Bootstrap(ctx context.Context, carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*config.Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("bot: unexpected config type %T", carrier)
	}

	var seeders []bootstrap.Seeder
	if cfg.Seed.File != "" {
		seeders = append(seeders, storage.FileSeeder{Path: cfg.Seed.File})
	}
	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
		Seeders:  seeders,
	})
	if err != nil {
		return nil, err
	}

	app := &App{cfg: cfg, db: res.DB}
	sessions, err := app.openSessions(ctx)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	engine := conversation.New(conversation.Options{
		Repo:       storage.New(res.DB),
		Sessions:   sessions,
		AskService: cfg.Appointments.AskService,
	})
	app.handlers = NewHandlers(engine)
	return app, nil
}

// openSessions picks Redis when an address is configured, process memory otherwise.
func (a *App) openSessions(ctx context.Context) (state.Store, error) {
	ttl := a.cfg.Session.TTL
	if !a.cfg.Redis.Enabled() {
		logger.Info(ctx, logger.CompSession, "session.store",
			slog.String("backend", "memory"),
			slog.Duration("ttl", ttl),
		)
		return state.NewMemoryStore(ttl), nil
	}

	a.redis = redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	err := coredatabase.WaitReady(ctx, func(ctx context.Context) error {
		return a.redis.Ping(ctx).Err()
	}, redisWait, 500*time.Millisecond)
	if err != nil {
		logger.Error(ctx, logger.CompSession, "session.store",
			slog.String("backend", "redis"),
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("bot: redis %s: %w", a.cfg.Redis.Addr, err)
	}
	logger.Info(ctx, logger.CompSession, "session.store",
		slog.String("backend", "redis"),
		slog.String("status", "ok"),
		slog.String("addr", a.cfg.Redis.Addr),
		slog.Duration("ttl", ttl),
	)
	return state.NewRedisStore(a.redis, sessionKeyPrefix, ttl), nil
}

// TelegramRunOptions wires commands, buttons, text routing and middleware.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()
	if err := a.handlers.Register(reg); err != nil {
		return tg.RunOptions{}, err
	}

	textOpts := ui.Install(reg, fallbacks{})

	routes := router.CommandRoutes(reg)
	routes = append(routes, router.CallbackRoute(reg))
	routes = append(routes, router.TextRoutes(a.handlers, reg, textOpts)...)

	core := a.cfg.CoreConfig()
	return tg.RunOptions{
		Config:      core,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(core, middlewareHooks()),
		Routes:      routes,
		OnStop: func(context.Context, tg.Runtime) error {
			return a.Close()
		},
	}, nil
}

// Close releases the database pool and the Redis client.
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
