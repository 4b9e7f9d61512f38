package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"relaybot/internal/config"
	"relaybot/internal/logger"
	"log/slog"
)

// Middleware describes a global bot middleware registered via bot.Use.
type Middleware struct {
	Name string
	Use  tele.MiddlewareFunc
}

// Route binds a single handler to an endpoint. Endpoint values are passed
// directly to tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls the behaviour of Run.
type RunOptions struct {
	Config *config.Config

	Middlewares []Middleware
	Routes      []Route

	DisableWebhookCleanup bool

	OnStart func(ctx context.Context) error
	OnStop  func(ctx context.Context) error
}

// NewBot builds the bot client from configuration. The caller wires
// handlers and starts it via Run.
func NewBot(cfg *config.Config) (*tele.Bot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("telegram: nil config provided")
	}

	poller := BuildPoller(cfg)

	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: poller,
		Client: BuildHTTPClient(),
	}

	start := time.Now()
	bot, err := tele.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}

	switch p := poller.(type) {
	case *tele.Webhook:
		logger.Info(context.Background(), "tg", "tg.mode",
			slog.String("mode", "webhook"),
			slog.String("listen", p.Listen),
			slog.String("public_url", p.Endpoint.PublicURL),
			slog.Duration("duration", logger.Took(start)),
		)
	case *tele.LongPoller:
		logger.Info(context.Background(), "tg", "tg.mode",
			slog.String("mode", "polling"),
			slog.Duration("timeout", p.Timeout),
			slog.Duration("duration", logger.Took(start)),
		)
	}

	return bot, nil
}

// Run registers middlewares and routes, then runs the bot until the
// provided context is done.
func Run(ctx context.Context, bot *tele.Bot, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}
	cfg := opts.Config

	if !opts.DisableWebhookCleanup && strings.EqualFold(cfg.Telegram.RunMode, config.RunModeLongpoll) {
		if err := deleteWebhook(cfg.Telegram.Token, false); err != nil {
			logger.Warn(ctx, "tg", "tg.delete_webhook",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		} else {
			logger.Info(ctx, "tg", "tg.delete_webhook",
				slog.String("status", "ok"),
			)
		}
	}

	for _, mw := range opts.Middlewares {
		if mw.Use == nil {
			continue
		}
		bot.Use(mw.Use)
	}
	for _, route := range opts.Routes {
		if route.Endpoint == nil || route.Handler == nil {
			continue
		}
		bot.Handle(route.Endpoint, route.Handler)
	}

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx); err != nil {
			return err
		}
	}

	runDone := make(chan struct{})
	go func() {
		bot.Start()
		close(runDone)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		bot.Stop()
		<-runDone
		runErr = ctx.Err()
	case <-runDone:
	}

	var stopErr error
	if opts.OnStop != nil {
		stopErr = opts.OnStop(context.Background())
	}

	if stopErr != nil {
		return stopErr
	}
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return nil
		}
		return runErr
	}
	return nil
}

func deleteWebhook(token string, dropPending bool) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("empty token")
	}
	url := fmt.Sprintf("https://api.telegram.org/bot%s/deleteWebhook", token)
	body := "drop_pending_updates=false"
	if dropPending {
		body = "drop_pending_updates=true"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deleteWebhook status: %s", resp.Status)
	}
	return nil
}
