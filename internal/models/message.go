package models

import (
	"encoding/json"
	"time"
)

// Message types. SYSTEM messages carry a JSON SystemPayload in Content and are
// stored opaquely; rendering is a client concern.
const (
	MessageTypeText   = "TEXT"
	MessageTypeSystem = "SYSTEM"
)

// System event types carried by SYSTEM messages.
const (
	EventPurchaseRequest     = "PURCHASE_REQUEST"
	EventTransactionComplete = "TRANSACTION_COMPLETE"
)

// Message is one entry in a chat room's log.
type Message struct {
	ID       int       `db:"id" json:"id"`
	RoomID   int       `db:"room_id" json:"room_id"`
	SenderID int       `db:"sender_id" json:"sender_id"`
	Content  string    `db:"content" json:"content"`
	Type     string    `db:"message_type" json:"type"`
	IsRead   bool      `db:"is_read" json:"is_read"`
	SentAt   time.Time `db:"sent_at" json:"sent_at"`
}

// MessageView decorates a message for API responses.
type MessageView struct {
	Message
	SenderName string `db:"sender_name" json:"sender_name"`
	IsMine     bool   `json:"is_mine"`
}

// SystemPayload is the structured body of a SYSTEM message.
type SystemPayload struct {
	Type      string `json:"type"`
	ProductID int    `json:"product_id"`
	Title     string `json:"title"`
	Price     int    `json:"price"`
	RequestID int    `json:"request_id,omitempty"`
	Message   string `json:"message"`
}

// Encode serializes the payload for storage in a message row.
func (p SystemPayload) Encode() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// PreviewText extracts the human-readable text from a message for list
// previews, unwrapping SYSTEM payloads when they parse.
func PreviewText(content, messageType string) string {
	if messageType != MessageTypeSystem {
		return content
	}
	var payload SystemPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil || payload.Message == "" {
		return content
	}
	return payload.Message
}
