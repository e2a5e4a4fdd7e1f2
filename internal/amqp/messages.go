package amqp

import (
	"encoding/json"
	"time"
)

// DueReminderMessage notifies downstream consumers that a projected
// occurrence is due soon (or already overdue). It carries enough for a
// notification without another database read.
type DueReminderMessage struct {
	UserID       string    `json:"userId"`
	TemplateID   int64     `json:"templateId"`
	Description  string    `json:"description"`
	AmountCents  int64     `json:"amountCents"`
	NextDate     string    `json:"nextDate"`
	DaysUntilDue int       `json:"daysUntilDue"`
	DueMessage   string    `json:"dueMessage"`
	Timestamp    time.Time `json:"timestamp"`
}

func (m *DueReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DueReminderMessageFromJSON(data []byte) (*DueReminderMessage, error) {
	var msg DueReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
