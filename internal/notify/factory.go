package notify

import (
	"fmt"

	"healthtrack/internal/config"
	"healthtrack/internal/health"
)

// NewNotifierFromConfig creates the notifier selected by cfg.Type.
func NewNotifierFromConfig(cfg config.NotifyConfig, logger health.Logger) (health.Notifier, error) {
	switch cfg.Type {
	case "", "log":
		return NewLogNotifier(logger), nil
	case "none":
		return NopNotifier{}, nil
	case "telegram":
		if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
			return nil, fmt.Errorf("telegram notifier requires telegram_token and telegram_chat_id")
		}
		n, err := NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID, logger)
		if err != nil {
			return nil, err
		}
		return n, nil
	case "discord":
		if cfg.DiscordToken == "" || cfg.DiscordChannelID == "" {
			return nil, fmt.Errorf("discord notifier requires discord_token and discord_channel_id")
		}
		n, err := NewDiscordNotifier(cfg.DiscordToken, cfg.DiscordChannelID, logger)
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unknown notifier type: %q", cfg.Type)
	}
}
