package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"go-payroll/internal/events"
	"go-payroll/internal/payroll"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type PayrollGenerator interface {
	GeneratePayroll(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.GeneratePayrollResponse, error)
}

func ConsumePayrollGenerationRequested(
	ctx context.Context,
	reader MessageReader,
	generator PayrollGenerator,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.payroll_generation")
	Run(ctx, reader, PayrollGenerationHandler(generator, log), log)
}

// PayrollGenerationHandler runs one bulk generation per event and logs the
// outcome of every employee that failed.
func PayrollGenerationHandler(generator PayrollGenerator, log *zap.Logger) HandlerFunc {
	return func(ctx context.Context, msg kafkago.Message) error {
		var event events.PayrollGenerationRequestedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("%w: decode payroll generation event: %v", ErrUnprocessable, err)
		}
		if event.EventType != "" && event.EventType != events.PayrollGenerationRequestedEventType {
			return fmt.Errorf("%w: unexpected event type %q", ErrUnprocessable, event.EventType)
		}

		rid := event.RequestID
		if rid == "" {
			rid = header(msg, "request_id")
		}
		ctx = contextutil.WithRequestID(ctx, rid)

		resp, err := generator.GeneratePayroll(ctx, payroll.GeneratePayrollRequest{Month: event.Month, Year: event.Year})
		if err != nil {
			if !apperror.IsInternal(err) {
				return fmt.Errorf("%w: %v", ErrUnprocessable, err)
			}
			return err
		}

		for _, r := range resp.Results {
			if r.Status != payroll.ResultError {
				continue
			}
			log.Warn("employee payroll failed",
				zap.String("request_id", rid),
				zap.String("month", resp.Month),
				zap.String("employee_id", r.EmployeeID),
				zap.String("employee_name", r.EmployeeName),
				zap.String("error", r.Error),
			)
		}

		log.Info("payroll generation completed",
			zap.String("request_id", rid),
			zap.String("month", resp.Month),
			zap.String("requested_by", event.RequestedBy),
			zap.Int("success_count", resp.SuccessCount),
			zap.Int("error_count", resp.ErrorCount),
		)
		return nil
	}
}
