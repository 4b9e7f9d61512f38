// Package app assembles the process: config, logging, storage, the
// submission flow and the Telegram transport.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"relaybot/internal/bot"
	"relaybot/internal/config"
	"relaybot/internal/database"
	"relaybot/internal/flow"
	"relaybot/internal/logger"
	"relaybot/internal/publisher"
	"relaybot/internal/ratelimit"
	"relaybot/internal/render"
	"relaybot/internal/session"
	"relaybot/internal/telegram"
	"relaybot/internal/telegram/middleware"
	"log/slog"
)

// App owns the long-lived components of the relay bot.
type App struct {
	cfg     *config.Config
	db      *sqlx.DB
	bot     *tele.Bot
	engine  *flow.Engine
	janitor *flow.Janitor
}

// New builds the application from configuration: connects to Postgres,
// applies migrations and wires the flow engine to the Telegram transport.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("app: database connect: %w", err)
	}
	if err := database.RunMigrations(cfg.Database); err != nil {
		db.Close()
		return nil, fmt.Errorf("app: migrations: %w", err)
	}

	b, err := telegram.NewBot(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	limiter := ratelimit.NewPostgres(db, cfg.CooldownWindow())
	store := session.NewMemoryStore()
	pub := publisher.NewChannel(b, cfg.Channel.ID)
	engine := flow.NewEngine(limiter, store, pub)
	janitor := flow.NewJanitor(engine, cfg.SessionTTL(),
		time.Duration(cfg.Session.SweepMinutes)*time.Minute)

	return &App{
		cfg:     cfg,
		db:      db,
		bot:     b,
		engine:  engine,
		janitor: janitor,
	}, nil
}

// Run starts the bot and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	rend := render.New(a.bot)
	handlers := bot.NewHandlers(a.engine, rend, a.cfg.Submission)

	floodExclude := make(map[string]struct{}, len(a.cfg.Flood.ExcludeUpdates))
	for _, kind := range a.cfg.Flood.ExcludeUpdates {
		floodExclude[kind] = struct{}{}
	}

	opts := telegram.RunOptions{
		Config: a.cfg,
		Middlewares: []telegram.Middleware{
			{Name: "recover", Use: middleware.Recover},
			{Name: "private_only", Use: middleware.PrivateOnly},
			{Name: "logging", Use: middleware.Logging},
			{Name: "flood", Use: middleware.Flood(middleware.FloodOptions{
				Interval: time.Duration(a.cfg.Flood.IntervalMS) * time.Millisecond,
				Exclude:  floodExclude,
			})},
		},
		Routes: []telegram.Route{
			{Endpoint: "/start", Handler: middleware.Summarize("start", handlers.Start)},
			{Endpoint: tele.OnText, Handler: middleware.Summarize("text", handlers.OnText)},
			{Endpoint: tele.OnPhoto, Handler: middleware.Summarize("photo", handlers.OnPhoto)},
		},
		OnStart: func(ctx context.Context) error {
			return a.janitor.Start()
		},
		OnStop: func(ctx context.Context) error {
			a.janitor.Stop()
			return nil
		},
	}

	// Content kinds the flow cannot publish share one handler.
	for _, ep := range []string{
		tele.OnDocument,
		tele.OnSticker,
		tele.OnVideo,
		tele.OnVideoNote,
		tele.OnVoice,
		tele.OnAudio,
		tele.OnAnimation,
		tele.OnContact,
		tele.OnLocation,
	} {
		opts.Routes = append(opts.Routes, telegram.Route{
			Endpoint: ep,
			Handler:  middleware.Summarize("unsupported", handlers.OnUnsupported),
		})
	}

	return telegram.Run(ctx, a.bot, opts)
}

// Close releases resources held by the application.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			logger.Error(context.Background(), "app", "db.close",
				slog.String("err", err.Error()),
			)
		}
	}
}
