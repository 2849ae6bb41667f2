package telegram

import (
	"errors"
	"fmt"

	tba "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/rs/zerolog/log"
)

// Sender delivers plain text alerts through the bot set up by Init.
type Sender struct {
}

func NewSender() *Sender {
	return &Sender{}
}

// Send delivers msg to every chat. A failing chat does not stop delivery to
// the others; all failures are returned together.
func (s *Sender) Send(chats []int64, msg string) error {
	if botAPI == nil {
		return errors.New("telegram bot not initialized")
	}

	var errs []error
	for _, c := range chats {
		if _, err := botAPI.Send(tba.NewMessage(c, msg)); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", c, err))
			continue
		}
		log.Debug().Int64("chat", c).Msg("Telegram message sent")
	}
	return errors.Join(errs...)
}
