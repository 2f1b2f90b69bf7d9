package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"go-payroll/internal/bootstrap"
	"go-payroll/internal/events"
	"go-payroll/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const auditEmployeeCreated = "EMPLOYEE_CREATED"

func ConsumeEmployeeCreated(
	ctx context.Context,
	reader MessageReader,
	audit bootstrap.AuditLogger,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.employee_created")
	Run(ctx, reader, EmployeeCreatedHandler(audit), log)
}

// EmployeeCreatedHandler writes one audit entry per onboarded employee.
func EmployeeCreatedHandler(audit bootstrap.AuditLogger) HandlerFunc {
	return func(ctx context.Context, msg kafkago.Message) error {
		var event events.EmployeeCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("%w: decode employee created event: %v", ErrUnprocessable, err)
		}
		if event.EventType != events.EmployeeCreatedEventType {
			return fmt.Errorf("%w: unexpected event type %q", ErrUnprocessable, event.EventType)
		}
		if event.EmployeeID == "" {
			return fmt.Errorf("%w: employee_id missing", ErrUnprocessable)
		}

		rid := event.RequestID
		if rid == "" {
			rid = header(msg, "request_id")
		}

		audit.Log(contextutil.WithRequestID(ctx, rid), bootstrap.AuditLog{
			Action:  auditEmployeeCreated,
			Message: fmt.Sprintf("Employee %s (%s) created", event.EmployeeNumber, event.FullName),
			Meta: map[string]any{
				"employee_id":     event.EmployeeID,
				"employee_number": event.EmployeeNumber,
				"occurred_at":     event.OccurredAt,
			},
		})
		return nil
	}
}
