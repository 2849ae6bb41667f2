package smarthome

import (
	"context"
	"os"

	"cloud.google.com/go/pubsub"

	ps "github.com/ISim/Arduino/smarthome/pubsub"
	"github.com/ISim/Arduino/smarthome/telegram"
)

// PlainTelegramMessage delivers a PlainMessage from Pub/Sub to its chats.
func PlainTelegramMessage(ctx context.Context, m pubsub.Message) error {
	msgRequest, err := ps.DecodePlainMessage(m.Data)
	if err != nil {
		return err
	}

	if err := telegram.Init(os.Getenv(telegram.EnvBotToken)); err != nil {
		return err
	}

	return telegram.NewSender().Send(msgRequest.Chats, msgRequest.Message)
}
