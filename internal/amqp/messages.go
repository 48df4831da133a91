package amqp

import (
	"encoding/json"
	"time"
)

// Message kinds carried on the sync queue.
const (
	KindSync   = "sync"
	KindDelete = "delete"
)

// SyncMessage is a lightweight pointer to a transaction that needs exporting.
// The worker fetches the full row from the database, so the payload carries
// only the ID and the version whose state triggered the message.
type SyncMessage struct {
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSyncMessage creates a message for a created or updated transaction.
func NewSyncMessage(id, version int64) *SyncMessage {
	return &SyncMessage{
		Kind:      KindSync,
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// NewDeleteMessage creates a message for a soft-deleted transaction.
func NewDeleteMessage(id, version int64) *SyncMessage {
	return &SyncMessage{
		Kind:      KindDelete,
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *SyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SyncMessageFromJSON creates a message from JSON bytes.
func SyncMessageFromJSON(data []byte) (*SyncMessage, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
