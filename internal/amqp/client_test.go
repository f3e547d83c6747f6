package amqp

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
		{15, 30 * time.Second}, // capped at 30s
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"connection closed", errors.New("connection closed"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"other error", errors.New("some other error"), false},
		{"validation error", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isConnectionError(tt.err)
			if result != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, result, tt.expected)
			}
		})
	}
}

func TestExpenseSyncMessageJSON(t *testing.T) {
	msg := NewExpenseSyncMessage(42, 3)

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	decoded, err := ExpenseSyncMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}
	if decoded.ID != 42 || decoded.Version != 3 {
		t.Errorf("decoded = %+v, want ID=42 Version=3", decoded)
	}
	if decoded.Timestamp.IsZero() {
		t.Error("decoded timestamp is zero")
	}
}

func TestExpenseSyncMessageFromJSONInvalid(t *testing.T) {
	if _, err := ExpenseSyncMessageFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestExpenseDeleteMessageJSON(t *testing.T) {
	msg := NewExpenseDeleteMessage(42)

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	decoded, err := ExpenseDeleteMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}
	if decoded.ID != 42 {
		t.Errorf("decoded ID = %d, want 42", decoded.ID)
	}
	if decoded.Timestamp.IsZero() {
		t.Error("decoded timestamp is zero")
	}
}

func TestExpenseDeleteMessageFromJSONInvalid(t *testing.T) {
	if _, err := ExpenseDeleteMessageFromJSON([]byte("{")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
