package events

import "time"

const (
	EmployeeCreatedTopic     = "payroll.employee.lifecycle.v1"
	EmployeeCreatedEventType = "employee.created"
)

type EmployeeCreatedEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id,omitempty"`
	EmployeeID     string    `json:"employee_id"`
	EmployeeNumber string    `json:"employee_number"`
	FullName       string    `json:"full_name"`
	OccurredAt     time.Time `json:"occurred_at"`
}
