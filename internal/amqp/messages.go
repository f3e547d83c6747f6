package amqp

import (
	"encoding/json"
	"time"
)

// Message kinds carried in the AMQP Type property. The consumer dispatches
// on them; an empty type is read as a sync message.
const (
	TypeExpenseSync   = "expense.sync"
	TypeExpenseDelete = "expense.delete"
)

// ExpenseSyncMessage asks the worker to export one expense to the
// spreadsheet. It carries only the ID and version; the worker fetches the
// full expense from the database.
type ExpenseSyncMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseSyncMessage creates a new sync message with just ID and version
func NewExpenseSyncMessage(id, version int64) *ExpenseSyncMessage {
	return &ExpenseSyncMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseSyncMessageFromJSON creates a message from JSON bytes
func ExpenseSyncMessageFromJSON(data []byte) (*ExpenseSyncMessage, error) {
	var msg ExpenseSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ExpenseDeleteMessage tells the worker an expense was deleted locally so
// it can retract the exported row where the exporter supports that.
type ExpenseDeleteMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseDeleteMessage creates a delete message for the given expense ID
func NewExpenseDeleteMessage(id int64) *ExpenseDeleteMessage {
	return &ExpenseDeleteMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseDeleteMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseDeleteMessageFromJSON creates a message from JSON bytes
func ExpenseDeleteMessageFromJSON(data []byte) (*ExpenseDeleteMessage, error) {
	var msg ExpenseDeleteMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
