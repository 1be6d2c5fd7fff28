package amqp

import (
	"encoding/json"
	"time"

	"moneylog/internal/session"
)

// TransactionPayload is the wire form of a ledger transaction.
type TransactionPayload struct {
	ID       string    `json:"id"`
	Amount   int64     `json:"amount_yen"`
	Category string    `json:"category"`
	Memo     string    `json:"memo,omitempty"`
	Date     time.Time `json:"date"`
	IsIncome bool      `json:"is_income"`
}

// ProgressPayload carries the progression state after a gamified save.
type ProgressPayload struct {
	Level     int `json:"level"`
	CurrentXP int `json:"current_xp"`
	Streak    int `json:"streak"`
}

// EventMessage is published once per session event.
type EventMessage struct {
	Kind        string              `json:"kind"`
	Variant     string              `json:"variant"`
	OccurredAt  time.Time           `json:"occurred_at"`
	Transaction *TransactionPayload `json:"transaction,omitempty"`
	Budget      int64               `json:"budget_yen,omitempty"`
	Achievement string              `json:"achievement,omitempty"`
	Progress    *ProgressPayload    `json:"progress,omitempty"`
}

// NewEventMessage converts a session event.
func NewEventMessage(ev session.Event) *EventMessage {
	msg := &EventMessage{
		Kind:        string(ev.Kind),
		Variant:     string(ev.Variant),
		OccurredAt:  ev.At,
		Budget:      int64(ev.Budget),
		Achievement: ev.Achievement,
	}
	if msg.OccurredAt.IsZero() {
		msg.OccurredAt = time.Now()
	}
	if tx := ev.Transaction; tx != nil {
		msg.Transaction = &TransactionPayload{
			ID:       tx.ID.String(),
			Amount:   int64(tx.Amount),
			Category: string(tx.Category),
			Memo:     tx.Memo,
			Date:     tx.Date,
			IsIncome: tx.IsIncome,
		}
	}
	if p := ev.Progress; p != nil {
		msg.Progress = &ProgressPayload{
			Level:     p.Level,
			CurrentXP: p.CurrentXP,
			Streak:    p.Streak,
		}
	}
	return msg
}

// ToJSON converts the message to JSON bytes
func (m *EventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EventMessageFromJSON(data []byte) (*EventMessage, error) {
	var msg EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
