package telegram

import (
	"fmt"
	"sync"

	tba "github.com/go-telegram-bot-api/telegram-bot-api"
)

const (
	EnvBotToken           = "TELEGRAM_BOT_TOKEN"
	EnvTelegramWebhookKey = "TELEGRAM_WEBHOOK_KEY"
)

var (
	botAPI     *tba.BotAPI
	onceBot    sync.Once
	botInitErr error
)

// Init connects the bot once per process.
func Init(token string) error {
	onceBot.Do(func() {
		if token == "" {
			botInitErr = fmt.Errorf("bot token not set (%s)", EnvBotToken)
			return
		}
		botAPI, botInitErr = tba.NewBotAPI(token)
	})
	if botInitErr != nil {
		return fmt.Errorf("bot API initialization error: %w", botInitErr)
	}
	return nil
}
