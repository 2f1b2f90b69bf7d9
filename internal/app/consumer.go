package app

import (
	"context"
	"fmt"
	"sync"

	"go-payroll/internal/attendance"
	"go-payroll/internal/bootstrap"
	"go-payroll/internal/config"
	"go-payroll/internal/employee"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka/consumer"
	"go-payroll/internal/payroll"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	payrollGenerationGroup = "go-payroll-payroll-generation"
	employeeAuditGroup     = "go-payroll-employee-audit"
)

func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

	gormDB, sqlDB, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	// Generation triggered from a consumed event has nothing further to
	// publish, so the service runs without an outbox.
	payrollService := payroll.NewService(
		sqlDB,
		payroll.NewRepository(gormDB),
		employee.NewRepository(gormDB),
		attendance.NewRepository(gormDB),
		nil,
	)
	auditLogger := bootstrap.NewStdoutAuditLogger()

	payrollReader := newReader(cfg.KafkaBroker, events.PayrollGenerationRequestedTopic, payrollGenerationGroup)
	defer payrollReader.Close()
	employeeReader := newReader(cfg.KafkaBroker, events.EmployeeCreatedTopic, employeeAuditGroup)
	defer employeeReader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		consumer.ConsumePayrollGenerationRequested(ctx, payrollReader, payrollService, logger)
	}()
	go func() {
		defer wg.Done()
		consumer.ConsumeEmployeeCreated(ctx, employeeReader, auditLogger, logger)
	}()

	waitForSignal()

	logger.Info("consumer shutting down")
	cancel()
	wg.Wait()

	return nil
}

func newReader(broker, topic, groupID string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          topic,
		GroupID:        groupID,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
}
