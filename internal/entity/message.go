package entity

import (
	"time"
)

// RawMessage is one inbound email as handed over by the transport layer.
// It is treated as read-only once decoded.
type RawMessage struct {
	From       string    `json:"from"`
	Subject    string    `json:"subject"`
	TextBody   string    `json:"text_body"`
	HTMLBody   string    `json:"html_body"`
	OCRText    string    `json:"ocr_text,omitempty"`
	MessageID  *string   `json:"message_id"`
	ReceivedAt time.Time `json:"received_at"`
}

// ID returns the external message id, or "" when the transport had none.
func (m RawMessage) ID() string {
	if m.MessageID == nil {
		return ""
	}
	return *m.MessageID
}
