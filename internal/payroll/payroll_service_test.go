package payroll

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-payroll/internal/attendance"
	"go-payroll/internal/employee"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	kafkamock "go-payroll/internal/messaging/kafka/mock"
	payrollerrors "go-payroll/internal/payroll/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

// memRepo keeps salaries keyed by employee and month so Upsert behaves like
// the ON CONFLICT statement.
type memRepo struct {
	rows      map[string]*Salary
	upsertErr error
	updated   *Salary
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[string]*Salary{}}
}

func key(employeeID, month string) string { return employeeID + "|" + month }

func (m *memRepo) WithTx(tx *sql.Tx) Repository { return m }
func (m *memRepo) Upsert(ctx context.Context, s *Salary) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	k := key(s.EmployeeID.String(), s.Month)
	if existing, ok := m.rows[k]; ok {
		existing.BaseSalary = s.BaseSalary
		existing.BasicSalary = s.BasicSalary
		existing.OvertimeHours = s.OvertimeHours
		existing.OvertimePay = s.OvertimePay
		existing.Bonus = s.Bonus
		existing.Deductions = s.Deductions
		existing.NetSalary = s.NetSalary
		existing.WorkingDays = s.WorkingDays
		return nil
	}
	cp := *s
	m.rows[k] = &cp
	return nil
}
func (m *memRepo) FindAll(ctx context.Context, filter SalaryQueryFilter) ([]Salary, int64, error) {
	var out []Salary
	for _, r := range m.rows {
		if filter.Month == "" || r.Month == filter.Month {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}
func (m *memRepo) FindAllByMonth(ctx context.Context, month string) ([]Salary, error) {
	out, _, err := m.FindAll(ctx, SalaryQueryFilter{Month: month})
	return out, err
}
func (m *memRepo) FindByEmployee(ctx context.Context, employeeID string) ([]Salary, error) {
	var out []Salary
	for _, r := range m.rows {
		if r.EmployeeID.String() == employeeID {
			out = append(out, *r)
		}
	}
	return out, nil
}
func (m *memRepo) FindByEmployeeAndMonth(ctx context.Context, employeeID, month string) (*Salary, error) {
	r, ok := m.rows[key(employeeID, month)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}
func (m *memRepo) FindByID(ctx context.Context, id string) (*Salary, error) {
	for _, r := range m.rows {
		if r.ID.String() == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *memRepo) Update(ctx context.Context, s *Salary) error {
	cp := *s
	m.rows[key(s.EmployeeID.String(), s.Month)] = &cp
	m.updated = &cp
	return nil
}
func (m *memRepo) Delete(ctx context.Context, id string) error {
	for k, r := range m.rows {
		if r.ID.String() == id {
			delete(m.rows, k)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeEmployees struct {
	byID    map[string]employee.Employee
	active  []employee.Employee
	listErr error
}

func (f *fakeEmployees) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}
func (f *fakeEmployees) FindAllByStatus(ctx context.Context, status string) ([]employee.Employee, error) {
	return f.active, f.listErr
}

type fakeAttendance struct {
	rows map[string][]attendance.Attendance
	errs map[string]error
}

func (f *fakeAttendance) FindByEmployeeAndMonth(ctx context.Context, employeeID, month string) ([]attendance.Attendance, error) {
	if err := f.errs[employeeID]; err != nil {
		return nil, err
	}
	return f.rows[employeeID], nil
}

func monthlyEmployee(name string, base float64) employee.Employee {
	return employee.Employee{
		ID:             uuid.New(),
		EmployeeNumber: "EMP-" + name,
		FullName:       name,
		Salary:         base,
		SalaryType:     employee.SalaryTypeMonthly,
		Status:         employee.StatusActive,
	}
}

func attendanceRows(status attendance.Status, n int, hours float64) []attendance.Attendance {
	rows := make([]attendance.Attendance, n)
	for i := range rows {
		h := hours
		rows[i] = attendance.Attendance{Status: status, HoursWorked: &h}
	}
	return rows
}

func february2024() []attendance.Attendance {
	var rows []attendance.Attendance
	rows = append(rows, attendanceRows(attendance.StatusPresent, 20, 8)...)
	rows = append(rows, attendanceRows(attendance.StatusHalfDay, 2, 4)...)
	rows = append(rows, attendance.Attendance{Status: attendance.StatusAbsent})
	rows = append(rows, attendanceRows(attendance.StatusLate, 1, 7)...)
	return rows
}

type testDeps struct {
	repo      *memRepo
	employees *fakeEmployees
	att       *fakeAttendance
	outbox    kafka.OutboxRepository
}

func newTestService(t *testing.T, deps testDeps) (*service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	if deps.repo == nil {
		deps.repo = newMemRepo()
	}
	if deps.employees == nil {
		deps.employees = &fakeEmployees{}
	}
	if deps.att == nil {
		deps.att = &fakeAttendance{}
	}

	svc := NewService(db, deps.repo, deps.employees, deps.att, deps.outbox).(*service)
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 23, 30, 0, 0, time.UTC) }
	return svc, mock
}

func TestService_Calculate_Validation(t *testing.T) {
	svc, mock := newTestService(t, testDeps{})
	ctx := context.Background()
	id := uuid.New().String()

	tests := []struct {
		name string
		req  CalculateSalaryRequest
		want error
	}{
		{"month zero", CalculateSalaryRequest{Month: 0, Year: 2024}, payrollerrors.ErrInvalidMonth},
		{"month thirteen", CalculateSalaryRequest{Month: 13, Year: 2024}, payrollerrors.ErrInvalidMonth},
		{"year too small", CalculateSalaryRequest{Month: 1, Year: 1899}, payrollerrors.ErrInvalidYear},
		{"year too large", CalculateSalaryRequest{Month: 1, Year: 10000}, payrollerrors.ErrInvalidYear},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Calculate(ctx, id, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := svc.Calculate(ctx, "not-a-uuid", CalculateSalaryRequest{Month: 1, Year: 2024})
	assert.ErrorIs(t, err, payrollerrors.ErrInvalidEmployeeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Calculate_EmployeeNotFound(t *testing.T) {
	svc, _ := newTestService(t, testDeps{})

	_, err := svc.Calculate(context.Background(), uuid.New().String(), CalculateSalaryRequest{Month: 2, Year: 2024})

	assert.ErrorIs(t, err, payrollerrors.ErrEmployeeNotFound)
}

func TestService_Calculate_February2024(t *testing.T) {
	emp := monthlyEmployee("Alice", 3000)
	repo := newMemRepo()
	svc, mock := newTestService(t, testDeps{
		repo:      repo,
		employees: &fakeEmployees{byID: map[string]employee.Employee{emp.ID.String(): emp}},
		att:       &fakeAttendance{rows: map[string][]attendance.Attendance{emp.ID.String(): february2024()}},
	})
	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.Calculate(context.Background(), emp.ID.String(), CalculateSalaryRequest{Month: 2, Year: 2024})

	assert.NoError(t, err)
	assert.Equal(t, "2024-02", resp.Salary.Month)
	assert.Equal(t, StatusPending, resp.Salary.Status)
	assert.Equal(t, 2172.41, resp.Salary.BasicSalary)
	assert.Equal(t, 10.34, resp.Salary.Deductions)
	assert.Equal(t, 2162.07, resp.Salary.NetSalary)
	assert.Equal(t, 21.0, resp.Salary.WorkingDays)
	assert.Equal(t, 29, resp.Calculation.AttendanceSummary.TotalDays)
	assert.Equal(t, AttendanceCounts{Present: 20, Absent: 1, HalfDay: 2, Late: 1}, resp.Attendance)
	assert.Len(t, repo.rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Calculate_IsIdempotentAndKeepsPaidStatus(t *testing.T) {
	emp := monthlyEmployee("Bob", 3000)
	att := &fakeAttendance{rows: map[string][]attendance.Attendance{emp.ID.String(): attendanceRows(attendance.StatusPresent, 10, 8)}}
	repo := newMemRepo()
	svc, mock := newTestService(t, testDeps{
		repo:      repo,
		employees: &fakeEmployees{byID: map[string]employee.Employee{emp.ID.String(): emp}},
		att:       att,
	})
	ctx := context.Background()
	req := CalculateSalaryRequest{Month: 4, Year: 2024}

	mock.ExpectBegin()
	mock.ExpectCommit()
	first, err := svc.Calculate(ctx, emp.ID.String(), req)
	assert.NoError(t, err)
	assert.Equal(t, 1000.0, first.Salary.BasicSalary)

	repo.rows[key(emp.ID.String(), "2024-04")].Status = StatusPaid

	att.rows[emp.ID.String()] = attendanceRows(attendance.StatusPresent, 15, 8)
	mock.ExpectBegin()
	mock.ExpectCommit()
	second, err := svc.Calculate(ctx, emp.ID.String(), req)
	assert.NoError(t, err)

	assert.Len(t, repo.rows, 1)
	assert.Equal(t, first.Salary.ID, second.Salary.ID)
	assert.Equal(t, 1500.0, second.Salary.BasicSalary)
	assert.Equal(t, StatusPaid, second.Salary.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Calculate_StoreErrorPropagates(t *testing.T) {
	emp := monthlyEmployee("Carol", 3000)
	repo := newMemRepo()
	repo.upsertErr = errors.New("connection reset")
	svc, mock := newTestService(t, testDeps{
		repo:      repo,
		employees: &fakeEmployees{byID: map[string]employee.Employee{emp.ID.String(): emp}},
	})
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Calculate(context.Background(), emp.ID.String(), CalculateSalaryRequest{Month: 4, Year: 2024})

	assert.EqualError(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GeneratePayroll_IsolatesFailures(t *testing.T) {
	a := monthlyEmployee("A", 3000)
	b := monthlyEmployee("B", 3000)
	c := monthlyEmployee("C", 6000)
	repo := newMemRepo()
	svc, mock := newTestService(t, testDeps{
		repo:      repo,
		employees: &fakeEmployees{active: []employee.Employee{a, b, c}},
		att: &fakeAttendance{
			rows: map[string][]attendance.Attendance{
				a.ID.String(): attendanceRows(attendance.StatusPresent, 30, 8),
				c.ID.String(): attendanceRows(attendance.StatusPresent, 15, 8),
			},
			errs: map[string]error{b.ID.String(): errors.New("timeout")},
		},
	})
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.GeneratePayroll(context.Background(), GeneratePayrollRequest{Month: 4, Year: 2024})

	assert.NoError(t, err)
	assert.Equal(t, "2024-04", resp.Month)
	assert.Equal(t, 2, resp.SuccessCount)
	assert.Equal(t, 1, resp.ErrorCount)
	assert.Len(t, resp.Results, 3)

	assert.Equal(t, ResultSuccess, resp.Results[0].Status)
	assert.Equal(t, 3000.0, resp.Results[0].Salary.NetSalary)

	assert.Equal(t, ResultError, resp.Results[1].Status)
	assert.Equal(t, b.ID.String(), resp.Results[1].EmployeeID)
	assert.Equal(t, "B", resp.Results[1].EmployeeName)
	assert.Equal(t, "Internal server error", resp.Results[1].Error)
	assert.Nil(t, resp.Results[1].Salary)

	assert.Equal(t, ResultSuccess, resp.Results[2].Status)
	assert.Equal(t, 3000.0, resp.Results[2].Salary.NetSalary)
	assert.Len(t, repo.rows, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GeneratePayroll_EmployeeListError(t *testing.T) {
	svc, _ := newTestService(t, testDeps{employees: &fakeEmployees{listErr: errors.New("db down")}})

	_, err := svc.GeneratePayroll(context.Background(), GeneratePayrollRequest{Month: 4, Year: 2024})

	assert.EqualError(t, err, "db down")
}

func TestService_GeneratePayroll_NoEmployees(t *testing.T) {
	svc, _ := newTestService(t, testDeps{})

	resp, err := svc.GeneratePayroll(context.Background(), GeneratePayrollRequest{Month: 4, Year: 2024})

	assert.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.NotNil(t, resp.Results)
}

func seededSalary(repo *memRepo) *Salary {
	s := &Salary{
		ID:          uuid.New(),
		EmployeeID:  uuid.New(),
		Month:       "2024-02",
		BasicSalary: 2172.41,
		OvertimePay: 20,
		Deductions:  10.34,
		NetSalary:   2182.07,
		Status:      StatusPending,
		Employee:    &EmployeeRef{EmployeeNumber: "EMP-000001", FullName: "Alice (Ops)"},
	}
	repo.rows[key(s.EmployeeID.String(), s.Month)] = s
	return s
}

func TestService_MarkPaid(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to today utc", func(t *testing.T) {
		repo := newMemRepo()
		s := seededSalary(repo)
		svc, mock := newTestService(t, testDeps{repo: repo})
		mock.ExpectBegin()
		mock.ExpectCommit()

		resp, err := svc.MarkPaid(ctx, s.ID.String(), MarkPaidRequest{})

		assert.NoError(t, err)
		assert.Equal(t, StatusPaid, resp.Status)
		assert.Equal(t, "2024-03-05", *resp.PaidDate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("explicit date", func(t *testing.T) {
		repo := newMemRepo()
		s := seededSalary(repo)
		svc, mock := newTestService(t, testDeps{repo: repo})
		mock.ExpectBegin()
		mock.ExpectCommit()

		d := "2024-03-01"
		resp, err := svc.MarkPaid(ctx, s.ID.String(), MarkPaidRequest{PaidDate: &d})

		assert.NoError(t, err)
		assert.Equal(t, d, *resp.PaidDate)
	})

	t.Run("bad date", func(t *testing.T) {
		svc, _ := newTestService(t, testDeps{})
		d := "03/01/2024"
		_, err := svc.MarkPaid(ctx, uuid.New().String(), MarkPaidRequest{PaidDate: &d})
		assert.ErrorIs(t, err, payrollerrors.ErrInvalidPaidDate)
	})

	t.Run("missing row", func(t *testing.T) {
		svc, mock := newTestService(t, testDeps{})
		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := svc.MarkPaid(ctx, uuid.New().String(), MarkPaidRequest{})
		assert.ErrorIs(t, err, payrollerrors.ErrSalaryNotFound)
	})
}

func TestService_Update_RecomputesNet(t *testing.T) {
	repo := newMemRepo()
	s := seededSalary(repo)
	svc, mock := newTestService(t, testDeps{repo: repo})
	mock.ExpectBegin()
	mock.ExpectCommit()

	bonus, deductions, status := 100.0, 50.0, StatusOverdue
	resp, err := svc.Update(context.Background(), s.ID.String(), UpdateSalaryRequest{
		Bonus:      &bonus,
		Deductions: &deductions,
		Status:     &status,
	})

	assert.NoError(t, err)
	assert.Equal(t, 2242.41, resp.NetSalary)
	assert.Equal(t, StatusOverdue, resp.Status)
	assert.Nil(t, resp.PaidDate)

	neg := -1.0
	_, err = svc.Update(context.Background(), s.ID.String(), UpdateSalaryRequest{Bonus: &neg})
	assert.ErrorIs(t, err, payrollerrors.ErrNegativeAmount)

	bad := "void"
	_, err = svc.Update(context.Background(), s.ID.String(), UpdateSalaryRequest{Status: &bad})
	assert.ErrorIs(t, err, payrollerrors.ErrInvalidStatus)
}

func TestService_Delete(t *testing.T) {
	repo := newMemRepo()
	s := seededSalary(repo)
	svc, mock := newTestService(t, testDeps{repo: repo})

	mock.ExpectBegin()
	mock.ExpectCommit()
	assert.NoError(t, svc.Delete(context.Background(), s.ID.String()))
	assert.Empty(t, repo.rows)

	mock.ExpectBegin()
	mock.ExpectRollback()
	assert.ErrorIs(t, svc.Delete(context.Background(), s.ID.String()), payrollerrors.ErrSalaryNotFound)
}

func TestService_RequestGeneration(t *testing.T) {
	ctx := context.Background()

	t.Run("writes outbox event", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		outbox := kafkamock.NewMockOutboxRepository(ctrl)
		svc, mock := newTestService(t, testDeps{outbox: outbox})

		outbox.EXPECT().WithTx(gomock.Any()).Return(outbox)
		outbox.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, ev kafka.OutboxEvent) error {
			assert.Equal(t, events.PayrollGenerationRequestedTopic, ev.Topic)
			assert.Equal(t, "2024-04", ev.AggregateID)

			var payload events.PayrollGenerationRequestedEvent
			assert.NoError(t, json.Unmarshal(ev.Payload, &payload))
			assert.Equal(t, 4, payload.Month)
			assert.Equal(t, 2024, payload.Year)
			assert.Equal(t, "user-1", payload.RequestedBy)
			return nil
		})
		mock.ExpectBegin()
		mock.ExpectCommit()

		resp, err := svc.RequestGeneration(ctx, GeneratePayrollRequest{Month: 4, Year: 2024}, "user-1")

		assert.NoError(t, err)
		assert.Equal(t, "queued", resp.Status)
		assert.NotEmpty(t, resp.RequestID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no outbox configured", func(t *testing.T) {
		svc, _ := newTestService(t, testDeps{})
		_, err := svc.RequestGeneration(ctx, GeneratePayrollRequest{Month: 4, Year: 2024}, "user-1")
		assert.ErrorIs(t, err, payrollerrors.ErrGenerationQueueUnavailable)
	})
}

func TestService_Export(t *testing.T) {
	repo := newMemRepo()
	seededSalary(repo)
	svc, _ := newTestService(t, testDeps{repo: repo})

	out, err := svc.Export(context.Background(), "2024-02")
	assert.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	assert.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	assert.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, "Employee No.", rows[0][0])
	assert.Equal(t, "EMP-000001", rows[1][0])
	assert.Equal(t, "Total 2024-02", rows[2][11])

	_, err = svc.Export(context.Background(), "Feb 2024")
	assert.ErrorIs(t, err, payrollerrors.ErrInvalidMonthKey)
}

func TestService_Payslip(t *testing.T) {
	repo := newMemRepo()
	s := seededSalary(repo)
	svc, _ := newTestService(t, testDeps{repo: repo})

	pdf, name, err := svc.Payslip(context.Background(), s.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, "payslip-EMP-000001-2024-02.pdf", name)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-1.4")))
	assert.True(t, bytes.HasSuffix(pdf, []byte("%%EOF")))
	assert.Contains(t, string(pdf), `Alice \(Ops\)`)
	assert.Contains(t, string(pdf), "2182.07")
}
