package webhook

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Event is a normalized inbound message ready for dispatch.
type Event struct {
	From     string
	MsgID    string
	Type     string
	Text     string
	ButtonID string
	ListID   string
	Title    string
}

// IsCallback reports whether the event carries an interactive reply.
func (e Event) IsCallback() bool {
	return e.ButtonID != "" || e.ListID != ""
}

// CallbackID returns the interactive reply identifier regardless of its kind.
func (e Event) CallbackID() string {
	if e.ButtonID != "" {
		return e.ButtonID
	}
	return e.ListID
}

type inboundReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type inboundInteractive struct {
	Type        string        `json:"type"`
	ButtonReply *inboundReply `json:"button_reply"`
	ListReply   *inboundReply `json:"list_reply"`
}

type inboundText struct {
	Body string `json:"body"`
}

type inboundMessage struct {
	From        string              `json:"from"`
	ID          string              `json:"id"`
	Timestamp   string              `json:"timestamp"`
	Type        string              `json:"type"`
	Text        *inboundText        `json:"text"`
	Interactive *inboundInteractive `json:"interactive"`
}

type changeValue struct {
	Messages []inboundMessage `json:"messages"`
}

type entryChange struct {
	Value changeValue `json:"value"`
}

type payloadEntry struct {
	Changes []entryChange `json:"changes"`
}

// payload accepts the two shapes the gateway delivers: messages at the
// root, or nested under entry/changes/value.
type payload struct {
	Messages []inboundMessage  `json:"messages"`
	Entry    []payloadEntry    `json:"entry"`
	Statuses []json.RawMessage `json:"statuses"`
}

// ParsePayload extracts normalized events from a webhook request body.
// Delivery status updates are counted but not turned into events.
func ParsePayload(body []byte) ([]Event, int, error) {
	if len(body) == 0 {
		return nil, 0, fmt.Errorf("empty payload")
	}
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, 0, fmt.Errorf("decode payload: %w", err)
	}

	messages := p.Messages
	if len(messages) == 0 {
		for _, e := range p.Entry {
			for _, ch := range e.Changes {
				messages = append(messages, ch.Value.Messages...)
			}
		}
	}

	events := make([]Event, 0, len(messages))
	for _, m := range messages {
		if m.From == "" {
			continue
		}
		ev := Event{
			From:  m.From,
			MsgID: m.ID,
			Type:  m.Type,
		}
		switch {
		case m.Type == "text" && m.Text != nil:
			ev.Text = strings.TrimSpace(m.Text.Body)
		case m.Interactive != nil && m.Interactive.ButtonReply != nil:
			ev.ButtonID = m.Interactive.ButtonReply.ID
			ev.Title = m.Interactive.ButtonReply.Title
		case m.Interactive != nil && m.Interactive.ListReply != nil:
			ev.ListID = m.Interactive.ListReply.ID
			ev.Title = m.Interactive.ListReply.Title
		}
		events = append(events, ev)
	}
	return events, len(p.Statuses), nil
}
