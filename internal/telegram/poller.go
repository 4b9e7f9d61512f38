package telegram

import (
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"relaybot/internal/config"
)

const defaultLongPollTimeout = 10 * time.Second

// BuildPoller selects the update source from configuration: a webhook
// listener, or long polling with the configured timeout.
func BuildPoller(cfg *config.Config) tele.Poller {
	if strings.EqualFold(cfg.Telegram.RunMode, config.RunModeWebhook) {
		return &tele.Webhook{
			Listen:   fmt.Sprintf("%s:%d", cfg.Webhook.Listen, cfg.Webhook.Port),
			Endpoint: &tele.WebhookEndpoint{PublicURL: cfg.Webhook.URL},
		}
	}

	timeout := defaultLongPollTimeout
	if cfg.Telegram.LongPollTimeoutSeconds > 0 {
		timeout = time.Duration(cfg.Telegram.LongPollTimeoutSeconds) * time.Second
	}
	return &tele.LongPoller{Timeout: timeout}
}
