package dashboard

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ISim/Arduino/smarthome/home"
)

const notifyTimeout = 10 * time.Second

// Notifier delivers an alert text to whoever subscribed to alerts.
type Notifier interface {
	Notify(ctx context.Context, msg string) error
}

// Threshold raises an alert when a sensor's latest value rises above max.
// It fires once per crossing and re-arms when the value drops back. A failed
// delivery leaves it armed, so the next reading above max tries again.
type Threshold struct {
	kind     home.SensorKind
	max      float64
	notifier Notifier

	mu    sync.Mutex
	above bool
}

func NewThreshold(kind home.SensorKind, max float64, n Notifier) *Threshold {
	return &Threshold{kind: kind, max: max, notifier: n}
}

// Observe checks one reading and reports whether an alert was sent.
func (t *Threshold) Observe(ctx context.Context, r home.Reading) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if math.IsNaN(r.Value) {
		return false
	}
	if r.Value <= t.max {
		t.above = false
		return false
	}
	if t.above {
		return false
	}

	msg := fmt.Sprintf("⚠️ %s %s exceeds %s (%s)",
		t.kind,
		t.kind.Label(r.Value),
		t.kind.Label(t.max),
		r.At.In(home.TZ).Format("2.1. 15:04:05"),
	)

	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if err := t.notifier.Notify(ctx, msg); err != nil {
		log.Error().Err(err).Str("sensor", t.kind.String()).Msg("Alert delivery failed")
		return false
	}
	t.above = true
	log.Warn().Str("sensor", t.kind.String()).Float64("value", r.Value).Float64("max", t.max).Msg("Threshold alert sent")
	return true
}

// ChatNotifier publishes alerts for every registered chat.
type ChatNotifier struct {
	Chats interface {
		AllChats(ctx context.Context) ([]int64, error)
	}
	Publisher interface {
		PlainMessage(ctx context.Context, chats []int64, msg string) error
	}
}

func (n *ChatNotifier) Notify(ctx context.Context, msg string) error {
	chats, err := n.Chats.AllChats(ctx)
	if err != nil {
		return fmt.Errorf("can't load alert recipients: %w", err)
	}
	if len(chats) == 0 {
		log.Debug().Msg("No chats registered, alert dropped")
		return nil
	}
	return n.Publisher.PlainMessage(ctx, chats, msg)
}
