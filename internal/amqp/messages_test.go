package amqp

import (
	"testing"
	"time"
)

func TestDueReminderMessageRoundTrip(t *testing.T) {
	in := &DueReminderMessage{
		UserID:       "u1",
		TemplateID:   42,
		Description:  "Renta",
		AmountCents:  50000,
		NextDate:     "2024-03-15",
		DaysUntilDue: 14,
		DueMessage:   "Vence en 2 semanas",
		Timestamp:    time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	data, err := in.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	out, err := DueReminderMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if *out != *in {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestDueReminderMessageFromJSONInvalid(t *testing.T) {
	if _, err := DueReminderMessageFromJSON([]byte("{not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
