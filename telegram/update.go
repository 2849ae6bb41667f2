package telegram

import (
	"encoding/json"
	"fmt"
	"io"

	tba "github.com/go-telegram-bot-api/telegram-bot-api"
)

type Update struct {
	u *tba.Update
}

func NewUpdate(r io.Reader) (*Update, error) {
	var u tba.Update

	if err := json.NewDecoder(r).Decode(&u); err != nil {
		return nil, fmt.Errorf("bot update unmarshal error: %w", err)
	}
	if u.Message == nil {
		return nil, fmt.Errorf("bot update %d carries no message", u.UpdateID)
	}

	return &Update{
		u: &u,
	}, nil

}

// Command returns the bot command and the rest of the line. Both are empty
// when the message is not a command.
func (u *Update) Command() (string, string) {
	return u.u.Message.Command(), u.u.Message.CommandArguments()
}

func (u *Update) FromUser() string {
	return u.u.Message.Chat.UserName
}

func (u *Update) ChatID() int64 {
	return u.u.Message.Chat.ID
}

func (u *Update) SendImage(chatID int64, name string, img io.Reader, size int64) error {
	fr := tba.FileReader{
		Name:   name,
		Reader: img,
		Size:   size,
	}
	uploader := tba.NewPhotoUpload(chatID, fr)
	uploader.DisableNotification = true
	_, err := botAPI.Send(uploader)
	return err
}

// SendText replies with a plain message.
func (u *Update) SendText(chatID int64, text string) error {
	_, err := botAPI.Send(tba.NewMessage(chatID, text))
	return err
}
