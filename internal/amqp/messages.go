package amqp

import (
	"encoding/json"
	"time"
)

// ReminderMessage carries a fired expense reminder to the delivery worker.
// Tag is the expense id and exists for de-duplication at the delivery end;
// there is no application-level catalog of outstanding reminders.
type ReminderMessage struct {
	Tag          string    `json:"tag"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	DaysUntilDue int       `json:"daysUntilDue"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewReminderMessage builds a reminder message for an expense.
func NewReminderMessage(tag, title, body string, daysUntilDue int) *ReminderMessage {
	return &ReminderMessage{
		Tag:          tag,
		Title:        title,
		Body:         body,
		DaysUntilDue: daysUntilDue,
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReminderMessageFromJSON creates a message from JSON bytes
func ReminderMessageFromJSON(data []byte) (*ReminderMessage, error) {
	var msg ReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
