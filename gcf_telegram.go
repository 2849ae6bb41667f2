package smarthome

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ISim/Arduino/smarthome/chart"
	"github.com/ISim/Arduino/smarthome/firestore"
	"github.com/ISim/Arduino/smarthome/home"
	"github.com/ISim/Arduino/smarthome/telegram"
)

const (
	UrlParamTelegramKey = "k"

	envProject = "GOOGLE_CLOUD_PROJECT"
)

type telegramUpdate struct {
	botRq interface {
		FromUser() string
		ChatID() int64
		Command() (string, string)
		SendImage(chatID int64, name string, img io.Reader, size int64) error
		SendText(chatID int64, text string) error
	}
	storage interface {
		AddChat(ctx context.Context, chatID int64, username string) error
		Readings(ctx context.Context, kind home.SensorKind) (home.Readings, bool, error)
	}
}

// TelegramHTTPReceiver is the webhook of the telegram bot.
func TelegramHTTPReceiver(w http.ResponseWriter, r *http.Request) {

	if k := r.URL.Query().Get(UrlParamTelegramKey); k == "" || k != os.Getenv(telegram.EnvTelegramWebhookKey) {
		log.Warn().Str("host", r.Host).Msg("Unauthorized webhook request")
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	w.WriteHeader(http.StatusNoContent)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()

	msg, err := telegram.NewUpdate(r.Body)
	if err != nil {
		log.Error().Err(err).Msg("Telegram update error")
		return
	}

	if err := telegram.Init(os.Getenv(telegram.EnvBotToken)); err != nil {
		log.Error().Err(err).Msg("Telegram initialization failed")
		return
	}

	storage, err := firestore.New(ctx, os.Getenv(envProject), "")
	if err != nil {
		log.Error().Err(err).Msg("Firestore initialization failed")
		return
	}
	defer storage.Close()

	tMsg := &telegramUpdate{
		botRq:   msg,
		storage: storage,
	}

	if err := tMsg.handle(ctx); err != nil {
		log.Error().Err(err).Msg("Telegram message processing failed")
		return
	}
}

func (a *telegramUpdate) handle(ctx context.Context) error {
	cmd, _ := a.botRq.Command()

	switch cmd {
	case "register":
		return a.cmdRegister(ctx)
	case "temperature":
		return a.cmdChart(ctx, home.Temperature)
	case "humidity":
		return a.cmdChart(ctx, home.Humidity)
	}
	return nil
}

func (a *telegramUpdate) cmdRegister(ctx context.Context) error {
	if err := a.storage.AddChat(ctx, a.botRq.ChatID(), a.botRq.FromUser()); err != nil {
		return err
	}
	return a.botRq.SendText(a.botRq.ChatID(), "✅ registered for alerts")
}

func (a *telegramUpdate) cmdChart(ctx context.Context, kind home.SensorKind) error {
	readings, ok, err := a.storage.Readings(ctx, kind)
	if err != nil {
		return err
	}
	if !ok {
		return a.botRq.SendText(a.botRq.ChatID(), fmt.Sprintf("no %s data", kind))
	}

	png := bytes.NewBuffer(nil)
	err = renderReadings(kind, readings, png)
	if errors.Is(err, chart.ErrNotEnoughData) {
		return a.botRq.SendText(a.botRq.ChatID(), fmt.Sprintf("not enough %s readings yet", kind))
	}
	if err != nil {
		return fmt.Errorf("graph creation failed: %w", err)
	}

	return a.botRq.SendImage(a.botRq.ChatID(), kind.String(), png, int64(png.Len()))
}

func renderReadings(kind home.SensorKind, readings home.Readings, w io.Writer) error {
	c := chart.New(kind.String()+"-graph", kind.AxisLabel(), kind.Title())
	labels, data := readings.Series()
	c.Update(labels, data)
	return c.Render(w)
}
