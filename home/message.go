package home

import "time"

// PlainMessageTopic is the Pub/Sub topic carrying PlainMessage payloads to the
// telegram sender.
const PlainMessageTopic = "plain-message"

// TZ is used when printing times in alerts.
var TZ = time.Local

type PlainMessage struct {
	Chats   []int64 `json:"chats"`
	Message string  `json:"message"`
}
