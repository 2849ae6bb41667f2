package smarthome

import (
	"context"
	"fmt"
	"os"
	"time"

	gps "cloud.google.com/go/pubsub"
	"github.com/rs/zerolog/log"

	"github.com/ISim/Arduino/smarthome/firestore"
	"github.com/ISim/Arduino/smarthome/home"
	"github.com/ISim/Arduino/smarthome/pubsub"
)

const (
	envStaleAfter     = "STALE_AFTER"
	defaultStaleAfter = 15 * time.Minute
)

type watchdog struct {
	ctx        context.Context
	now        time.Time
	staleAfter time.Duration
	storage    interface {
		Readings(ctx context.Context, kind home.SensorKind) (home.Readings, bool, error)
		AllChats(ctx context.Context) ([]int64, error)
	}
	publish interface {
		PlainMessage(ctx context.Context, chats []int64, msg string) error
	}
}

// Watchdog is run by a scheduled Pub/Sub message and reports sensors that
// stopped sending readings.
func Watchdog(ctx context.Context, m gps.Message) error {

	// payload is irrelevant, the message is only a trigger
	_ = m

	projectID := os.Getenv(envProject)

	c, err := firestore.New(ctx, projectID, "")
	if err != nil {
		return fmt.Errorf("can't initialize firestore client: %w", err)
	}
	defer c.Close()

	pub, err := pubsub.NewPublisher(projectID, "")
	if err != nil {
		return err
	}

	w := &watchdog{
		ctx:        ctx,
		now:        time.Now(),
		staleAfter: staleAfter(),
		storage:    c,
		publish:    pub,
	}

	return w.handle()
}

func staleAfter() time.Duration {
	if v := os.Getenv(envStaleAfter); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil && d > 0 {
			return d
		}
		log.Warn().Str(envStaleAfter, v).Msg("Invalid duration, using default")
	}
	return defaultStaleAfter
}

func (w *watchdog) handle() error {
	limit := w.now.Add(-w.staleAfter)

	var alerts []string
	for _, kind := range home.SensorKinds {
		readings, ok, err := w.storage.Readings(w.ctx, kind)
		if err != nil {
			return fmt.Errorf("can't retrieve %s readings: %w", kind, err)
		}

		last, hasLast := readings.Last()
		switch {
		case !ok:
			alerts = append(alerts, fmt.Sprintf("⚠️ sensor %s has no document", kind))
		case !hasLast:
			alerts = append(alerts, fmt.Sprintf("⚠️ sensor %s has no readings yet", kind))
		case last.At.Before(limit):
			alerts = append(alerts, fmt.Sprintf("⚠️ sensor %s silent since %s, last value %s",
				kind,
				last.At.In(home.TZ).Format("2.1. 15:04"),
				kind.Label(last.Value),
			))
		}
	}

	if len(alerts) == 0 {
		return nil
	}

	chats, err := w.storage.AllChats(w.ctx)
	if err != nil {
		return err
	}
	if len(chats) == 0 {
		return nil
	}

	for _, msg := range alerts {
		if err := w.publish.PlainMessage(w.ctx, chats, msg); err != nil {
			return fmt.Errorf("can't publish watchdog alert: %w", err)
		}
	}
	return nil
}
