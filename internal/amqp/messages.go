package amqp

import (
	"encoding/json"
	"time"
)

const (
	RecordExpense = "expense"
	RecordIncome  = "income"
)

// RecordSyncMessage tells the sync worker that a record was created and
// should be appended to the backup spreadsheet. It carries only the type and
// id; the worker fetches the full record from the database.
type RecordSyncMessage struct {
	RecordType string    `json:"recordType"`
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewRecordSyncMessage(recordType, id string) *RecordSyncMessage {
	return &RecordSyncMessage{
		RecordType: recordType,
		ID:         id,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordSyncMessageFromJSON creates a message from JSON bytes.
func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
