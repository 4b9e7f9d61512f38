package telegram

import (
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"

	"relaybot/internal/config"
)

func TestBuildPollerLongpollDefaults(t *testing.T) {
	cfg := &config.Config{}
	cfg.Telegram.RunMode = config.RunModeLongpoll

	p, ok := BuildPoller(cfg).(*tele.LongPoller)
	if !ok {
		t.Fatalf("expected *tele.LongPoller, got %T", BuildPoller(cfg))
	}
	if p.Timeout != defaultLongPollTimeout {
		t.Fatalf("timeout = %v, want %v", p.Timeout, defaultLongPollTimeout)
	}
}

func TestBuildPollerLongpollTimeout(t *testing.T) {
	cfg := &config.Config{}
	cfg.Telegram.RunMode = config.RunModeLongpoll
	cfg.Telegram.LongPollTimeoutSeconds = 25

	p, ok := BuildPoller(cfg).(*tele.LongPoller)
	if !ok {
		t.Fatalf("expected *tele.LongPoller, got %T", BuildPoller(cfg))
	}
	if p.Timeout != 25*time.Second {
		t.Fatalf("timeout = %v, want 25s", p.Timeout)
	}
}

func TestBuildPollerWebhook(t *testing.T) {
	cfg := &config.Config{}
	cfg.Telegram.RunMode = config.RunModeWebhook
	cfg.Webhook = config.WebhookConfig{
		URL:    "https://bot.example.com/hook",
		Listen: "0.0.0.0",
		Port:   8443,
	}

	wh, ok := BuildPoller(cfg).(*tele.Webhook)
	if !ok {
		t.Fatalf("expected *tele.Webhook, got %T", BuildPoller(cfg))
	}
	if wh.Listen != "0.0.0.0:8443" {
		t.Fatalf("listen = %q, want %q", wh.Listen, "0.0.0.0:8443")
	}
	if wh.Endpoint.PublicURL != "https://bot.example.com/hook" {
		t.Fatalf("public url = %q", wh.Endpoint.PublicURL)
	}
}
