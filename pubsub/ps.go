package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"cloud.google.com/go/pubsub"

	"github.com/ISim/Arduino/smarthome/home"
)

var (
	client          *pubsub.Client
	onceClient      sync.Once
	clientInitError error
)

// PubSub publishes alert messages for the telegram sender.
type PubSub struct {
	topic string
}

// NewPublisher returns a publisher on the process-wide Pub/Sub client of
// projectID. An empty topic means home.PlainMessageTopic.
func NewPublisher(projectID, topic string) (*PubSub, error) {
	onceClient.Do(func() {
		client, clientInitError = pubsub.NewClient(context.Background(), projectID)
	})
	if clientInitError != nil {
		return nil, fmt.Errorf("pub/sub client initialization error: %w", clientInitError)
	}
	if topic == "" {
		topic = home.PlainMessageTopic
	}
	return &PubSub{topic: topic}, nil
}

func (p *PubSub) PlainMessage(ctx context.Context, chats []int64, msg string) error {
	raw, err := EncodePlainMessage(chats, msg)
	if err != nil {
		return err
	}

	res := client.Topic(p.topic).Publish(ctx, &pubsub.Message{
		Data: raw,
	})

	_, err = res.Get(ctx)

	if err != nil {
		return fmt.Errorf("publish to %q failed: %w", p.topic, err)
	}
	return nil
}

func EncodePlainMessage(chats []int64, msg string) ([]byte, error) {
	raw, err := json.Marshal(home.PlainMessage{
		Chats:   chats,
		Message: msg,
	})
	if err != nil {
		return nil, fmt.Errorf("can't marshal data for pub/sub: %w", err)
	}
	return raw, nil
}

// DecodePlainMessage is the inverse of EncodePlainMessage.
func DecodePlainMessage(data []byte) (home.PlainMessage, error) {
	var m home.PlainMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("can't unmarshal %q as %T: %w", string(data), m, err)
	}
	return m, nil
}
