package attendance

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	attendanceerrors "go-payroll/internal/attendance/errors"
	"go-payroll/internal/shared/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	uniqueEmployeeDate = "uq_attendance_employee_date"

	// Working-day boundaries, UTC.
	lateAfterHour, lateAfterMinute = 9, 15
	dayEndHour                     = 17
)

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	Mark(ctx context.Context, req MarkAttendanceRequest) (AttendanceResponse, error)
	GetAll(ctx context.Context, filter AttendanceQueryFilter) ([]AttendanceResponse, int64, error)
	GetByEmployee(ctx context.Context, employeeID, month string) ([]AttendanceResponse, error)
	Update(ctx context.Context, id string, req UpdateAttendanceRequest) (AttendanceResponse, error)
	Delete(ctx context.Context, id string) error
	CheckIn(ctx context.Context, employeeID string, req CheckInRequest) (AttendanceResponse, error)
	CheckOut(ctx context.Context, employeeID string, req CheckOutRequest) (AttendanceResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		logger: l,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Mark(ctx context.Context, req MarkAttendanceRequest) (AttendanceResponse, error) {
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}
	date, err := parseDate(req.AttendanceDate)
	if err != nil {
		return AttendanceResponse{}, err
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		return AttendanceResponse{}, err
	}
	checkIn, err := parseTimestamp(req.CheckIn)
	if err != nil {
		return AttendanceResponse{}, err
	}
	checkOut, err := parseTimestamp(req.CheckOut)
	if err != nil {
		return AttendanceResponse{}, err
	}

	row := &Attendance{
		ID:             uuid.New(),
		EmployeeID:     employeeID,
		AttendanceDate: date,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		Status:         status,
		Notes:          req.Notes,
	}
	if err := applyHours(row, req.HoursWorked); err != nil {
		return AttendanceResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	exists, err := qtx.EmployeeExists(ctx, req.EmployeeID)
	if err != nil {
		return AttendanceResponse{}, err
	}
	if !exists {
		return AttendanceResponse{}, attendanceerrors.ErrEmployeeNotFound
	}

	if err := qtx.Create(ctx, row); err != nil {
		if database.IsUniqueViolation(err, uniqueEmployeeDate) {
			return AttendanceResponse{}, attendanceerrors.ErrAttendanceAlreadyMarked
		}
		s.logger.Error("mark attendance persist failed", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return AttendanceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	s.logger.Info("attendance marked",
		zap.String("employee_id", req.EmployeeID),
		zap.String("date", req.AttendanceDate),
		zap.String("status", status.String()),
	)
	return mapToResponse(*row), nil
}

func (s *service) GetAll(ctx context.Context, filter AttendanceQueryFilter) ([]AttendanceResponse, int64, error) {
	if filter.Date != "" {
		if _, err := parseDate(filter.Date); err != nil {
			return nil, 0, err
		}
	}
	if filter.Month != "" {
		if err := validateMonth(filter.Month); err != nil {
			return nil, 0, err
		}
	}
	if filter.Status != "" {
		st, err := ParseStatus(filter.Status)
		if err != nil {
			return nil, 0, err
		}
		filter.Status = st.String()
	}
	if filter.EmployeeID != "" {
		if _, err := uuid.Parse(filter.EmployeeID); err != nil {
			return nil, 0, attendanceerrors.ErrInvalidEmployeeID
		}
	}

	rows, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return mapToListResponse(rows), total, nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID, month string) ([]AttendanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, attendanceerrors.ErrInvalidEmployeeID
	}

	if month != "" {
		if err := validateMonth(month); err != nil {
			return nil, err
		}
		rows, err := s.repo.FindByEmployeeAndMonth(ctx, employeeID, month)
		if err != nil {
			return nil, err
		}
		return mapToListResponse(rows), nil
	}

	rows, _, err := s.repo.FindAll(ctx, AttendanceQueryFilter{EmployeeID: employeeID})
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateAttendanceRequest) (AttendanceResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidAttendanceID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row, err := qtx.FindByID(ctx, id)
	if err != nil {
		return AttendanceResponse{}, mapRepositoryError(err)
	}

	if req.Status != nil {
		status, err := ParseStatus(*req.Status)
		if err != nil {
			return AttendanceResponse{}, err
		}
		row.Status = status
	}
	if req.CheckIn != nil {
		if row.CheckIn, err = parseTimestamp(req.CheckIn); err != nil {
			return AttendanceResponse{}, err
		}
	}
	if req.CheckOut != nil {
		if row.CheckOut, err = parseTimestamp(req.CheckOut); err != nil {
			return AttendanceResponse{}, err
		}
	}
	if req.Notes != nil {
		row.Notes = req.Notes
	}
	if err := applyHours(row, req.HoursWorked); err != nil {
		return AttendanceResponse{}, err
	}

	if err := qtx.Update(ctx, row); err != nil {
		return AttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	s.logger.Info("attendance updated", zap.String("attendance_id", id))
	return mapToResponse(*row), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return attendanceerrors.ErrInvalidAttendanceID
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
	s.logger.Info("attendance deleted", zap.String("attendance_id", id))
	return nil
}

func (s *service) CheckIn(ctx context.Context, employeeID string, req CheckInRequest) (AttendanceResponse, error) {
	if employeeID == "" {
		return AttendanceResponse{}, attendanceerrors.ErrEmployeeRequired
	}
	empUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.now()
	today := startOfDay(now)

	_, err = qtx.FindByEmployeeAndDate(ctx, employeeID, today)
	if err == nil {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedIn
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return AttendanceResponse{}, err
	}

	status := StatusPresent
	if now.Hour() > lateAfterHour || (now.Hour() == lateAfterHour && now.Minute() > lateAfterMinute) {
		status = StatusLate
	}

	row := &Attendance{
		ID:             uuid.New(),
		EmployeeID:     empUUID,
		AttendanceDate: today,
		CheckIn:        &now,
		Status:         status,
		Notes:          req.Notes,
	}

	if err := qtx.Create(ctx, row); err != nil {
		if database.IsUniqueViolation(err, uniqueEmployeeDate) {
			return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedIn
		}
		return AttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	s.logger.Info("employee checked in",
		zap.String("employee_id", employeeID),
		zap.String("status", status.String()),
	)
	return mapToResponse(*row), nil
}

func (s *service) CheckOut(ctx context.Context, employeeID string, req CheckOutRequest) (AttendanceResponse, error) {
	if employeeID == "" {
		return AttendanceResponse{}, attendanceerrors.ErrEmployeeRequired
	}
	if _, err := uuid.Parse(employeeID); err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.now()

	row, err := qtx.FindByEmployeeAndDate(ctx, employeeID, startOfDay(now))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, attendanceerrors.ErrCheckInNotFound
		}
		return AttendanceResponse{}, err
	}
	if row.CheckIn == nil {
		return AttendanceResponse{}, attendanceerrors.ErrCheckInNotFound
	}
	if row.CheckOut != nil {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyCheckedOut
	}

	row.CheckOut = &now
	row.HoursWorked = hoursBetween(*row.CheckIn, now)
	if row.Status == StatusPresent && now.Hour() < dayEndHour {
		row.Status = StatusEarlyLeave
	}
	if req.Notes != nil {
		row.Notes = req.Notes
	}

	if err := qtx.Update(ctx, row); err != nil {
		return AttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	s.logger.Info("employee checked out",
		zap.String("employee_id", employeeID),
		zap.Float64p("hours_worked", row.HoursWorked),
	)
	return mapToResponse(*row), nil
}

// applyHours sets HoursWorked from an explicit value, or derives it from the
// check-in/check-out pair when both are present.
func applyHours(row *Attendance, explicit *float64) error {
	if row.CheckIn != nil && row.CheckOut != nil && row.CheckOut.Before(*row.CheckIn) {
		return attendanceerrors.ErrCheckOutBeforeCheckIn
	}
	if explicit != nil {
		v := *explicit
		row.HoursWorked = &v
		return nil
	}
	if row.CheckIn != nil && row.CheckOut != nil {
		row.HoursWorked = hoursBetween(*row.CheckIn, *row.CheckOut)
	}
	return nil
}

func hoursBetween(from, to time.Time) *float64 {
	h := math.Round(to.Sub(from).Hours()*100) / 100
	return &h
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, attendanceerrors.ErrInvalidDate
	}
	return t, nil
}

func validateMonth(v string) error {
	if _, err := time.Parse("2006-01", v); err != nil {
		return attendanceerrors.ErrInvalidMonth
	}
	return nil
}

func parseTimestamp(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *v)
	if err != nil {
		return nil, attendanceerrors.ErrInvalidTime
	}
	t = t.UTC()
	return &t, nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return attendanceerrors.ErrAttendanceNotFound
	}
	return err
}

func mapToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:             a.ID.String(),
		EmployeeID:     a.EmployeeID.String(),
		AttendanceDate: a.AttendanceDate.Format("2006-01-02"),
		HoursWorked:    a.HoursWorked,
		Status:         a.Status.String(),
		Notes:          a.Notes,
	}
	if a.Employee != nil {
		resp.EmployeeNumber = a.Employee.EmployeeNumber
		resp.EmployeeName = a.Employee.FullName
	}
	if a.CheckIn != nil {
		v := a.CheckIn.UTC().Format(time.RFC3339)
		resp.CheckIn = &v
	}
	if a.CheckOut != nil {
		v := a.CheckOut.UTC().Format(time.RFC3339)
		resp.CheckOut = &v
	}
	return resp
}

func mapToListResponse(rows []Attendance) []AttendanceResponse {
	res := make([]AttendanceResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res
}
