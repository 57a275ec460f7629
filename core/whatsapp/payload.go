package whatsapp

// Outbound message payloads in the 360dialog wire format.

// Button is a single reply button shown under a message.
type Button struct {
	ID    string
	Title string
}

// ListRow is one selectable row inside a list section.
type ListRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ListSection groups rows under an optional section title.
type ListSection struct {
	Title string    `json:"title,omitempty"`
	Rows  []ListRow `json:"rows"`
}

type textBody struct {
	Body string `json:"body"`
}

type textMessage struct {
	RecipientType string   `json:"recipient_type"`
	To            string   `json:"to"`
	Type          string   `json:"type"`
	Text          textBody `json:"text"`
}

type replyButton struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type buttonComponent struct {
	Type  string      `json:"type"`
	Reply replyButton `json:"reply"`
}

type buttonAction struct {
	Buttons []buttonComponent `json:"buttons"`
}

type listAction struct {
	Button   string        `json:"button"`
	Sections []ListSection `json:"sections"`
}

type interactivePayload struct {
	Type   string   `json:"type"`
	Body   textBody `json:"body"`
	Action any      `json:"action"`
}

type interactiveMessage struct {
	RecipientType string             `json:"recipient_type"`
	To            string             `json:"to"`
	Type          string             `json:"type"`
	Interactive   interactivePayload `json:"interactive"`
}

func newTextMessage(to, text string) textMessage {
	return textMessage{
		RecipientType: "individual",
		To:            to,
		Type:          "text",
		Text:          textBody{Body: text},
	}
}

func newButtonMessage(to, text string, buttons []Button) interactiveMessage {
	if len(buttons) > MaxButtons {
		buttons = buttons[:MaxButtons]
	}
	components := make([]buttonComponent, 0, len(buttons))
	for _, b := range buttons {
		components = append(components, buttonComponent{
			Type: "reply",
			Reply: replyButton{
				ID:    b.ID,
				Title: truncateTitle(b.Title),
			},
		})
	}
	return interactiveMessage{
		RecipientType: "individual",
		To:            to,
		Type:          "interactive",
		Interactive: interactivePayload{
			Type:   "button",
			Body:   textBody{Body: text},
			Action: buttonAction{Buttons: components},
		},
	}
}

func newListMessage(to, text, buttonText string, sections []ListSection) interactiveMessage {
	return interactiveMessage{
		RecipientType: "individual",
		To:            to,
		Type:          "interactive",
		Interactive: interactivePayload{
			Type:   "list",
			Body:   textBody{Body: text},
			Action: listAction{Button: buttonText, Sections: sections},
		},
	}
}

// MaxButtons is the WhatsApp limit on reply buttons per message.
const MaxButtons = 3

// maxButtonTitleRunes is the WhatsApp limit on a reply button title.
const maxButtonTitleRunes = 20

func truncateTitle(title string) string {
	r := []rune(title)
	if len(r) <= maxButtonTitleRunes {
		return title
	}
	return string(r[:maxButtonTitleRunes])
}