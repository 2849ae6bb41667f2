package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/option"
)

const (
	collectionSensor  = "sensor"
	collectionRTState = "rtstate"
	collectionChats   = "chats"

	docActuators = "actuators"
)

// New connects to Firestore of the given Firebase project. An empty
// credentialsFile falls back to application default credentials.
func New(ctx context.Context, projectID, credentialsFile string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("can't connect to firebase: %w", err)
	}

	c, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client initialization error: %w", err)
	}
	return &Client{c: c, retryAfter: defaultRetryAfter}, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.c.Close()
}

func (c *Client) sensorDoc(kind fmt.Stringer) *firestore.DocumentRef {
	return c.c.Collection(collectionSensor).Doc(kind.String())
}

func (c *Client) actuatorsDoc() *firestore.DocumentRef {
	return c.c.Collection(collectionRTState).Doc(docActuators)
}
