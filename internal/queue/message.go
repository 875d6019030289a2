package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MessageVersion is the current payload version.
const MessageVersion = 1

// Message is the payload sent to batch workers.
type Message struct {
	BatchID    string `json:"batchId"`
	RequestID  string `json:"requestId"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

// NewMessage builds a message for batchID. An empty requestID gets a fresh one.
func NewMessage(batchID, requestID string, now time.Time) Message {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return Message{
		BatchID:    batchID,
		RequestID:  requestID,
		EnqueuedAt: now.UTC().Format(time.RFC3339),
		Version:    MessageVersion,
	}
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
