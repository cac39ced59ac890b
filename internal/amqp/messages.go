package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Schedule change actions carried on the wire.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionOverride = "override"
)

// ScheduleChangedMessage announces that the schedule of one month changed.
// It carries only identifiers, the worker fetches current data itself, so a
// stale or duplicated delivery is harmless.
type ScheduleChangedMessage struct {
	EventID       string    `json:"event_id"`
	TransactionID int64     `json:"transaction_id"`
	Month         string    `json:"month"` // YYYY-MM
	Action        string    `json:"action"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewScheduleChangedMessage creates a schedule change event for a transaction
// and the month it affects.
func NewScheduleChangedMessage(transactionID int64, month, action string) *ScheduleChangedMessage {
	return &ScheduleChangedMessage{
		EventID:       uuid.NewString(),
		TransactionID: transactionID,
		Month:         month,
		Action:        action,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ScheduleChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ScheduleChangedMessageFromJSON creates a message from JSON bytes
func ScheduleChangedMessageFromJSON(data []byte) (*ScheduleChangedMessage, error) {
	var msg ScheduleChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
