package payroll

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-payroll/internal/attendance"
	"go-payroll/internal/employee"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EmployeeReader is the part of the employee store payroll reads from.
type EmployeeReader interface {
	FindByID(ctx context.Context, id string) (*employee.Employee, error)
	FindAllByStatus(ctx context.Context, status string) ([]employee.Employee, error)
}

// AttendanceReader returns an employee's attendance rows for a "YYYY-MM"
// month.
type AttendanceReader interface {
	FindByEmployeeAndMonth(ctx context.Context, employeeID, month string) ([]attendance.Attendance, error)
}

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	Calculate(ctx context.Context, employeeID string, req CalculateSalaryRequest) (CalculateSalaryResponse, error)
	GeneratePayroll(ctx context.Context, req GeneratePayrollRequest) (GeneratePayrollResponse, error)
	RequestGeneration(ctx context.Context, req GeneratePayrollRequest, requestedBy string) (GenerationRequestedResponse, error)
	GetAll(ctx context.Context, filter SalaryQueryFilter) ([]SalaryResponse, int64, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]SalaryResponse, error)
	GetByID(ctx context.Context, id string) (SalaryResponse, error)
	Update(ctx context.Context, id string, req UpdateSalaryRequest) (SalaryResponse, error)
	MarkPaid(ctx context.Context, id string, req MarkPaidRequest) (SalaryResponse, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, month string) ([]byte, error)
	Payslip(ctx context.Context, id string) ([]byte, string, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	employees   EmployeeReader
	attendances AttendanceReader
	outbox      kafka.OutboxRepository
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(
	db *sql.DB,
	repo Repository,
	employees EmployeeReader,
	attendances AttendanceReader,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		employees:   employees,
		attendances: attendances,
		outbox:      outbox,
		logger:      l,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Calculate(ctx context.Context, employeeID string, req CalculateSalaryRequest) (CalculateSalaryResponse, error) {
	month, err := validatePeriod(req.Month, req.Year)
	if err != nil {
		return CalculateSalaryResponse{}, err
	}
	if _, err := uuid.Parse(employeeID); err != nil {
		return CalculateSalaryResponse{}, payrollerrors.ErrInvalidEmployeeID
	}

	emp, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CalculateSalaryResponse{}, payrollerrors.ErrEmployeeNotFound
		}
		s.logger.Error("load employee failed", zap.String("employee_id", employeeID), zap.Error(err))
		return CalculateSalaryResponse{}, err
	}

	saved, calc, rows, err := s.calculateFor(ctx, *emp, month)
	if err != nil {
		return CalculateSalaryResponse{}, err
	}

	return CalculateSalaryResponse{
		Salary:      mapToResponse(*saved),
		Calculation: calc,
		Attendance:  countStatuses(rows),
	}, nil
}

// GeneratePayroll calculates every active employee's salary for the month,
// one after another. A failure for one employee is recorded in its result
// and does not stop the run.
func (s *service) GeneratePayroll(ctx context.Context, req GeneratePayrollRequest) (GeneratePayrollResponse, error) {
	month, err := validatePeriod(req.Month, req.Year)
	if err != nil {
		return GeneratePayrollResponse{}, err
	}

	employees, err := s.employees.FindAllByStatus(ctx, employee.StatusActive)
	if err != nil {
		s.logger.Error("load active employees failed", zap.String("month", month), zap.Error(err))
		return GeneratePayrollResponse{}, err
	}

	resp := GeneratePayrollResponse{
		Month:   month,
		Results: make([]GenerationResult, 0, len(employees)),
	}
	for _, emp := range employees {
		result := GenerationResult{
			EmployeeID:   emp.ID.String(),
			EmployeeName: emp.FullName,
		}

		saved, _, _, err := s.calculateFor(ctx, emp, month)
		if err != nil {
			s.logger.Warn("payroll generation failed for employee",
				zap.String("month", month),
				zap.String("employee_id", result.EmployeeID),
				zap.Error(err),
			)
			result.Status = ResultError
			result.Error = apperror.ToHTTP(err).Message
			resp.ErrorCount++
		} else {
			out := mapToResponse(*saved)
			result.Status = ResultSuccess
			result.Salary = &out
			resp.SuccessCount++
		}
		resp.Results = append(resp.Results, result)
	}

	s.logger.Info("payroll generated",
		zap.String("month", month),
		zap.Int("success_count", resp.SuccessCount),
		zap.Int("error_count", resp.ErrorCount),
	)
	return resp, nil
}

// calculateFor runs the calculator over emp's attendance for month and
// upserts the result.
func (s *service) calculateFor(ctx context.Context, emp employee.Employee, month string) (*Salary, SalaryCalculation, []attendance.Attendance, error) {
	rows, err := s.attendances.FindByEmployeeAndMonth(ctx, emp.ID.String(), month)
	if err != nil {
		return nil, SalaryCalculation{}, nil, err
	}

	calc := Calculate(CalculationInput{
		BaseSalary: emp.Salary,
		SalaryType: emp.SalaryType,
		Records:    toEntries(rows),
		MonthYear:  month,
	})

	row := &Salary{
		ID:            uuid.New(),
		EmployeeID:    emp.ID,
		Month:         month,
		BaseSalary:    emp.Salary,
		BasicSalary:   calc.BasicSalary,
		OvertimeHours: calc.OvertimeHours,
		OvertimePay:   calc.OvertimePay,
		Bonus:         calc.Bonus,
		Deductions:    calc.Deductions,
		NetSalary:     calc.NetSalary,
		WorkingDays:   calc.AttendanceSummary.WorkingDays,
		Status:        StatusPending,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, SalaryCalculation{}, nil, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Upsert(ctx, row); err != nil {
		s.logger.Error("salary upsert failed",
			zap.String("employee_id", emp.ID.String()),
			zap.String("month", month),
			zap.Error(err),
		)
		return nil, SalaryCalculation{}, nil, err
	}

	saved, err := qtx.FindByEmployeeAndMonth(ctx, emp.ID.String(), month)
	if err != nil {
		return nil, SalaryCalculation{}, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, SalaryCalculation{}, nil, err
	}

	s.logger.Debug("salary calculated",
		zap.String("employee_id", emp.ID.String()),
		zap.String("month", month),
		zap.Float64("net_salary", saved.NetSalary),
	)
	return saved, calc, rows, nil
}

// RequestGeneration queues a bulk run for the consumer process instead of
// running it inline.
func (s *service) RequestGeneration(ctx context.Context, req GeneratePayrollRequest, requestedBy string) (GenerationRequestedResponse, error) {
	month, err := validatePeriod(req.Month, req.Year)
	if err != nil {
		return GenerationRequestedResponse{}, err
	}
	if s.outbox == nil {
		return GenerationRequestedResponse{}, payrollerrors.ErrGenerationQueueUnavailable
	}

	rid := contextutil.GetRequestID(ctx)
	if rid == "" {
		rid = uuid.NewString()
	}

	event := events.PayrollGenerationRequestedEvent{
		EventType:   events.PayrollGenerationRequestedEventType,
		RequestID:   rid,
		Month:       req.Month,
		Year:        req.Year,
		RequestedBy: requestedBy,
		OccurredAt:  s.now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return GenerationRequestedResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return GenerationRequestedResponse{}, err
	}
	defer tx.Rollback()

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "payroll",
		AggregateID:   month,
		EventType:     event.EventType,
		Topic:         events.PayrollGenerationRequestedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("queue payroll generation failed", zap.String("month", month), zap.Error(err))
		return GenerationRequestedResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return GenerationRequestedResponse{}, err
	}

	s.logger.Info("payroll generation queued",
		zap.String("request_id", rid),
		zap.String("month", month),
		zap.String("requested_by", requestedBy),
	)
	return GenerationRequestedResponse{RequestID: rid, Month: month, Status: "queued"}, nil
}

func (s *service) GetAll(ctx context.Context, filter SalaryQueryFilter) ([]SalaryResponse, int64, error) {
	if filter.Month != "" {
		if _, _, err := ParseMonthKey(filter.Month); err != nil {
			return nil, 0, payrollerrors.ErrInvalidMonthKey
		}
	}
	if filter.Status != "" && !isValidStatus(filter.Status) {
		return nil, 0, payrollerrors.ErrInvalidStatus
	}
	if filter.EmployeeID != "" {
		if _, err := uuid.Parse(filter.EmployeeID); err != nil {
			return nil, 0, payrollerrors.ErrInvalidEmployeeID
		}
	}

	rows, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return mapToListResponse(rows), total, nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string) ([]SalaryResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, payrollerrors.ErrInvalidEmployeeID
	}

	rows, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) GetByID(ctx context.Context, id string) (SalaryResponse, error) {
	row, err := s.findByID(ctx, s.repo, id)
	if err != nil {
		return SalaryResponse{}, err
	}
	return mapToResponse(*row), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateSalaryRequest) (SalaryResponse, error) {
	if (req.Bonus != nil && *req.Bonus < 0) || (req.Deductions != nil && *req.Deductions < 0) {
		return SalaryResponse{}, payrollerrors.ErrNegativeAmount
	}
	if req.Status != nil && !isValidStatus(*req.Status) {
		return SalaryResponse{}, payrollerrors.ErrInvalidStatus
	}
	paidDate, err := parsePaidDate(req.PaidDate)
	if err != nil {
		return SalaryResponse{}, err
	}

	return s.mutate(ctx, id, func(row *Salary) {
		if req.Bonus != nil {
			row.Bonus = round2(*req.Bonus)
		}
		if req.Deductions != nil {
			row.Deductions = round2(*req.Deductions)
		}
		if req.Status != nil {
			row.Status = *req.Status
		}
		if paidDate != nil {
			row.PaidDate = paidDate
		}
		if row.Status == StatusPaid && row.PaidDate == nil {
			row.PaidDate = s.today()
		}
		row.NetSalary = round2(row.BasicSalary + row.OvertimePay + row.Bonus - row.Deductions)
	})
}

func (s *service) MarkPaid(ctx context.Context, id string, req MarkPaidRequest) (SalaryResponse, error) {
	paidDate, err := parsePaidDate(req.PaidDate)
	if err != nil {
		return SalaryResponse{}, err
	}
	if paidDate == nil {
		paidDate = s.today()
	}

	return s.mutate(ctx, id, func(row *Salary) {
		row.Status = StatusPaid
		row.PaidDate = paidDate
	})
}

func (s *service) mutate(ctx context.Context, id string, apply func(row *Salary)) (SalaryResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SalaryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row, err := s.findByID(ctx, qtx, id)
	if err != nil {
		return SalaryResponse{}, err
	}
	apply(row)

	if err := qtx.Update(ctx, row); err != nil {
		s.logger.Error("salary update failed", zap.String("salary_id", id), zap.Error(err))
		return SalaryResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return SalaryResponse{}, err
	}

	s.logger.Info("salary updated", zap.String("salary_id", id), zap.String("status", row.Status))
	return mapToResponse(*row), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return payrollerrors.ErrInvalidSalaryID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("salary deleted", zap.String("salary_id", id))
	return nil
}

func (s *service) Export(ctx context.Context, month string) ([]byte, error) {
	if _, _, err := ParseMonthKey(month); err != nil {
		return nil, payrollerrors.ErrInvalidMonthKey
	}

	rows, err := s.repo.FindAllByMonth(ctx, month)
	if err != nil {
		return nil, err
	}

	out, err := buildSalaryWorkbook(month, rows)
	if err != nil {
		s.logger.Error("build salary workbook failed", zap.String("month", month), zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (s *service) Payslip(ctx context.Context, id string) ([]byte, string, error) {
	row, err := s.findByID(ctx, s.repo, id)
	if err != nil {
		return nil, "", err
	}

	pdf, err := buildPayslipPDF(payslipLines(*row))
	if err != nil {
		return nil, "", err
	}

	name := row.EmployeeID.String()
	if row.Employee != nil && row.Employee.EmployeeNumber != "" {
		name = row.Employee.EmployeeNumber
	}
	return pdf, fmt.Sprintf("payslip-%s-%s.pdf", name, row.Month), nil
}

func (s *service) findByID(ctx context.Context, repo Repository, id string) (*Salary, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, payrollerrors.ErrInvalidSalaryID
	}
	row, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return row, nil
}

func (s *service) today() *time.Time {
	y, m, d := s.now().UTC().Date()
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func validatePeriod(month, year int) (string, error) {
	if month < 1 || month > 12 {
		return "", payrollerrors.ErrInvalidMonth
	}
	if year < 1900 || year > 9999 {
		return "", payrollerrors.ErrInvalidYear
	}
	return MonthKey(year, month), nil
}

func parsePaidDate(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *v)
	if err != nil {
		return nil, payrollerrors.ErrInvalidPaidDate
	}
	return &t, nil
}

func isValidStatus(v string) bool {
	switch v {
	case StatusPending, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

func toEntries(rows []attendance.Attendance) []AttendanceEntry {
	entries := make([]AttendanceEntry, len(rows))
	for i, r := range rows {
		entries[i] = AttendanceEntry{Status: r.Status.String(), HoursWorked: r.HoursWorked}
	}
	return entries
}

func countStatuses(rows []attendance.Attendance) AttendanceCounts {
	var c AttendanceCounts
	for _, r := range rows {
		switch r.Status {
		case attendance.StatusPresent:
			c.Present++
		case attendance.StatusAbsent:
			c.Absent++
		case attendance.StatusHalfDay:
			c.HalfDay++
		case attendance.StatusLeave:
			c.Leave++
		case attendance.StatusLate:
			c.Late++
		case attendance.StatusEarlyLeave:
			c.EarlyLeave++
		}
	}
	return c
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return payrollerrors.ErrSalaryNotFound
	}
	return err
}

func mapToResponse(s Salary) SalaryResponse {
	resp := SalaryResponse{
		ID:            s.ID.String(),
		EmployeeID:    s.EmployeeID.String(),
		Month:         s.Month,
		BaseSalary:    s.BaseSalary,
		BasicSalary:   s.BasicSalary,
		OvertimeHours: s.OvertimeHours,
		OvertimePay:   s.OvertimePay,
		Bonus:         s.Bonus,
		Deductions:    s.Deductions,
		NetSalary:     s.NetSalary,
		WorkingDays:   s.WorkingDays,
		Status:        s.Status,
		UpdatedAt:     s.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if s.Employee != nil {
		resp.EmployeeNumber = s.Employee.EmployeeNumber
		resp.EmployeeName = s.Employee.FullName
		resp.Department = s.Employee.Department
		resp.Position = s.Employee.Position
	}
	if s.PaidDate != nil {
		v := s.PaidDate.Format("2006-01-02")
		resp.PaidDate = &v
	}
	return resp
}

func mapToListResponse(rows []Salary) []SalaryResponse {
	res := make([]SalaryResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res
}
