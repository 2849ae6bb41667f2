package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ISim/Arduino/smarthome/home"
)

const defaultRetryAfter = 5 * time.Second

// Subscription is a live listener on one document. It runs until Stop is
// called or the context it was started with is cancelled.
type Subscription struct {
	id     string
	path   string
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *Subscription) ID() string {
	return s.id
}

func (s *Subscription) Path() string {
	return s.path
}

// Stop cancels the listener and waits for its goroutine to exit.
func (s *Subscription) Stop() {
	s.cancel()
	<-s.done
}

// SetRetryInterval changes how long a broken listener waits before it is
// re-opened.
func (c *Client) SetRetryInterval(d time.Duration) {
	if d > 0 {
		c.retryAfter = d
	}
}

// WatchSensor delivers every snapshot of sensor/<kind>: the initial read and
// each later change. exists is false when the document is absent.
func (c *Client) WatchSensor(ctx context.Context, kind home.SensorKind, fn func(readings home.Readings, exists bool)) *Subscription {
	return c.watch(ctx, c.sensorDoc(kind), func(snap *firestore.DocumentSnapshot) {
		if !snap.Exists() {
			fn(nil, false)
			return
		}
		fn(decodeReadings(snap.Data()), true)
	})
}

// WatchActuators delivers every snapshot of rtstate/actuators.
func (c *Client) WatchActuators(ctx context.Context, fn func(state home.ActuatorState, exists bool)) *Subscription {
	return c.watch(ctx, c.actuatorsDoc(), func(snap *firestore.DocumentSnapshot) {
		if !snap.Exists() {
			fn(home.ActuatorState{}, false)
			return
		}
		fn(decodeActuators(snap.Data()), true)
	})
}

func (c *Client) watch(ctx context.Context, ref *firestore.DocumentRef, fn func(*firestore.DocumentSnapshot)) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		id:     uuid.NewString(),
		path:   ref.Path,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	logger := log.With().Str("subscription", s.id).Str("doc", ref.ID).Logger()

	go func() {
		defer close(s.done)
		for {
			err := follow(ctx, ref, fn)
			if ctx.Err() != nil {
				logger.Debug().Msg("Subscription stopped")
				return
			}
			logger.Warn().Err(err).Dur("retry_after", c.retryAfter).Msg("Snapshot listener broke, reopening")

			select {
			case <-ctx.Done():
				return
			case <-time.After(c.retryAfter):
			}
		}
	}()

	logger.Info().Msg("Subscribed to document")
	return s
}

func follow(ctx context.Context, ref *firestore.DocumentRef, fn func(*firestore.DocumentSnapshot)) error {
	it := ref.Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err == iterator.Done || status.Code(err) == codes.Canceled {
			return nil
		}
		if err != nil {
			return err
		}
		fn(snap)
	}
}
