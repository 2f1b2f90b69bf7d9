package events

import "time"

const (
	PayrollGenerationRequestedTopic     = "payroll.generation.requested.v1"
	PayrollGenerationRequestedEventType = "payroll.generation.requested"
)

// PayrollGenerationRequestedEvent asks the consumer process to run a bulk
// payroll generation for Month/Year.
type PayrollGenerationRequestedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id,omitempty"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	RequestedBy string    `json:"requested_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}
