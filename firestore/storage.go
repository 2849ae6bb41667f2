package firestore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ISim/Arduino/smarthome/home"
)

type Client struct {
	c          *firestore.Client
	retryAfter time.Duration
}

type Chat struct {
	Username  string
	CreatedAt time.Time
}

// Readings reads the sensor document once. ok is false when the document
// does not exist.
func (c *Client) Readings(ctx context.Context, kind home.SensorKind) (readings home.Readings, ok bool, err error) {
	d, err := c.sensorDoc(kind).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s readings failed: %w", kind, err)
	}
	return decodeReadings(d.Data()), true, nil
}

// Actuators reads the actuator state document once.
func (c *Client) Actuators(ctx context.Context) (home.ActuatorState, bool, error) {
	d, err := c.actuatorsDoc().Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return home.ActuatorState{}, false, nil
		}
		return home.ActuatorState{}, false, fmt.Errorf("read actuator state failed: %w", err)
	}
	return decodeActuators(d.Data()), true, nil
}

// AddChat registers a telegram chat as an alert recipient.
func (c *Client) AddChat(ctx context.Context, chatID int64, username string) error {
	_, err := c.c.Collection(collectionChats).Doc(strconv.FormatInt(chatID, 10)).Set(ctx, Chat{
		Username:  username,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("register chat %d failed: %w", chatID, err)
	}
	return nil
}

func (c *Client) AllChats(ctx context.Context) ([]int64, error) {
	iter := c.c.Collection(collectionChats).Documents(ctx)
	defer iter.Stop()

	var chats []int64
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("retrieve all chats failed: %w", err)
		}
		if id, err := strconv.ParseInt(doc.Ref.ID, 10, 64); err == nil {
			chats = append(chats, id)
		}
	}
	return chats, nil
}
