package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const commandUpdate = `{
  "update_id": 10,
  "message": {
    "message_id": 1,
    "date": 1700000000,
    "chat": {"id": 4242, "type": "private", "username": "alice"},
    "text": "/temperature now",
    "entities": [{"type": "bot_command", "offset": 0, "length": 12}]
  }
}`

func TestNewUpdateCommand(t *testing.T) {
	u, err := NewUpdate(strings.NewReader(commandUpdate))
	require.NoError(t, err)

	cmd, args := u.Command()
	assert.Equal(t, "temperature", cmd)
	assert.Equal(t, "now", args)
	assert.Equal(t, int64(4242), u.ChatID())
	assert.Equal(t, "alice", u.FromUser())
}

func TestNewUpdateWithoutMessage(t *testing.T) {
	_, err := NewUpdate(strings.NewReader(`{"update_id": 11}`))
	require.Error(t, err)
}

func TestNewUpdateInvalidJSON(t *testing.T) {
	_, err := NewUpdate(strings.NewReader(`{`))
	require.Error(t, err)
}
