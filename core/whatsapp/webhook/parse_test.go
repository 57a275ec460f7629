package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayloadRootMessages(t *testing.T) {
	body := []byte(`{
		"messages": [{
			"from": "79991234567",
			"id": "wamid.1",
			"timestamp": "1234567890",
			"type": "text",
			"text": {"body": "  старт  "}
		}]
	}`)

	events, statuses, err := ParsePayload(body)
	require.NoError(t, err)
	assert.Zero(t, statuses)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "79991234567", ev.From)
	assert.Equal(t, "wamid.1", ev.MsgID)
	assert.Equal(t, "text", ev.Type)
	assert.Equal(t, "старт", ev.Text)
	assert.False(t, ev.IsCallback())
}

func TestParsePayloadEntryChanges(t *testing.T) {
	body := []byte(`{
		"entry": [{
			"changes": [{
				"value": {
					"messages": [{
						"from": "79991234567",
						"id": "wamid.2",
						"type": "interactive",
						"interactive": {
							"type": "button_reply",
							"button_reply": {"id": "menu:work", "title": "🚜 Работа"}
						}
					}]
				}
			}]
		}]
	}`)

	events, _, err := ParsePayload(body)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "menu:work", ev.ButtonID)
	assert.Equal(t, "🚜 Работа", ev.Title)
	assert.True(t, ev.IsCallback())
	assert.Equal(t, "menu:work", ev.CallbackID())
}

func TestParsePayloadListReply(t *testing.T) {
	body := []byte(`{
		"messages": [{
			"from": "79991234567",
			"id": "wamid.3",
			"type": "interactive",
			"interactive": {
				"type": "list_reply",
				"list_reply": {"id": "wt_field", "title": "Поле"}
			}
		}]
	}`)

	events, _, err := ParsePayload(body)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "wt_field", events[0].ListID)
	assert.Equal(t, "wt_field", events[0].CallbackID())
}

func TestParsePayloadStatusesOnly(t *testing.T) {
	body := []byte(`{"statuses": [{"id": "wamid.4", "status": "delivered"}]}`)

	events, statuses, err := ParsePayload(body)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, 1, statuses)
}

func TestParsePayloadSkipsSenderlessMessages(t *testing.T) {
	body := []byte(`{"messages": [{"id": "wamid.5", "type": "text", "text": {"body": "hi"}}]}`)

	events, _, err := ParsePayload(body)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestParsePayloadRejectsGarbage(t *testing.T) {
	_, _, err := ParsePayload([]byte("not json"))
	assert.Error(t, err)

	_, _, err = ParsePayload(nil)
	assert.Error(t, err)
}
