package leave

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-payroll/internal/attendance"
	"go-payroll/internal/domain"
	leaveerrors "go-payroll/internal/leave/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor domain.Actor, req CreateLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context, actor domain.Actor, filter LeaveQueryFilter) ([]LeaveResponse, int64, error)
	GetByID(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error)
	Approve(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error)
	Reject(ctx context.Context, actor domain.Actor, id, reason string) (LeaveResponse, error)
	Cancel(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db             *sql.DB
	repo           Repository
	attendanceRepo attendance.Repository
	logger         *zap.Logger
	now            func() time.Time
}

func NewService(db *sql.DB, repo Repository, attendanceRepo attendance.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:             db,
		repo:           repo,
		attendanceRepo: attendanceRepo,
		logger:         l,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Create(ctx context.Context, actor domain.Actor, req CreateLeaveRequest) (LeaveResponse, error) {
	employeeID := strings.TrimSpace(req.EmployeeID)
	if actor.IsEmployee() || employeeID == "" {
		if actor.EmployeeID == "" {
			return LeaveResponse{}, leaveerrors.ErrEmployeeRequired
		}
		employeeID = actor.EmployeeID
	}

	empUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}
	if !isValidType(req.LeaveType) {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveType
	}
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	exists, err := qtx.EmployeeExists(ctx, employeeID)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !exists {
		return LeaveResponse{}, leaveerrors.ErrEmployeeNotFound
	}

	overlap, err := qtx.HasOverlappingPeriod(ctx, employeeID, start, end, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	if overlap {
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	l := &Leave{
		ID:          uuid.New(),
		EmployeeID:  empUUID,
		LeaveType:   req.LeaveType,
		StartDate:   start,
		EndDate:     end,
		TotalDays:   len(daysInRange(start, end)),
		Reason:      strings.TrimSpace(req.Reason),
		Status:      StatusPending,
		RequestedBy: parseOptionalUUID(actor.UserID),
	}
	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.String("employee_id", employeeID), zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, err
	}

	s.logger.Info("leave requested",
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", employeeID),
		zap.String("leave_type", l.LeaveType),
		zap.Int("total_days", l.TotalDays),
	)
	return mapToResponse(*l), nil
}

func (s *service) GetAll(ctx context.Context, actor domain.Actor, filter LeaveQueryFilter) ([]LeaveResponse, int64, error) {
	if actor.IsEmployee() {
		if actor.EmployeeID == "" {
			return nil, 0, leaveerrors.ErrEmployeeRequired
		}
		filter.EmployeeID = actor.EmployeeID
	}
	if filter.EmployeeID != "" {
		if _, err := uuid.Parse(filter.EmployeeID); err != nil {
			return nil, 0, leaveerrors.ErrInvalidEmployeeID
		}
	}
	if filter.Status != "" {
		filter.Status = strings.ToLower(filter.Status)
		if !isValidStatus(filter.Status) {
			return nil, 0, leaveerrors.ErrInvalidStatusFilter
		}
	}

	leaves, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return mapToListResponse(leaves), total, nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if err := checkOwnership(actor, l); err != nil {
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

// Approve marks the request approved and records a leave attendance row for
// every day it covers, in one transaction.
func (s *service) Approve(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if l.Status != StatusPending {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotPending
	}

	now := s.now()
	l.Status = StatusApproved
	l.ApprovedBy = parseOptionalUUID(actor.UserID)
	l.ApprovedAt = &now
	l.RejectionReason = nil

	if err := qtx.Update(ctx, l); err != nil {
		return LeaveResponse{}, err
	}

	notes := fmt.Sprintf("%s leave", l.LeaveType)
	if err := s.attendanceRepo.WithTx(tx).UpsertLeaveDays(ctx, l.EmployeeID, daysInRange(l.StartDate, l.EndDate), notes); err != nil {
		s.logger.Error("approve leave attendance sync failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, err
	}

	s.logger.Info("leave approved",
		zap.String("leave_id", id),
		zap.String("employee_id", l.EmployeeID.String()),
		zap.String("approved_by", actor.UserID),
	)
	return mapToResponse(*l), nil
}

func (s *service) Reject(ctx context.Context, actor domain.Actor, id, reason string) (LeaveResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return LeaveResponse{}, leaveerrors.ErrRejectionReasonRequired
	}

	return s.transition(ctx, id, func(l *Leave) error {
		l.Status = StatusRejected
		l.RejectionReason = &reason
		l.ApprovedBy = parseOptionalUUID(actor.UserID)
		return nil
	})
}

func (s *service) Cancel(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error) {
	return s.transition(ctx, id, func(l *Leave) error {
		if err := checkOwnership(actor, l); err != nil {
			return err
		}
		l.Status = StatusCancelled
		return nil
	})
}

// transition applies mutate to a pending request under a row lock.
func (s *service) transition(ctx context.Context, id string, mutate func(l *Leave) error) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	if l.Status != StatusPending {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotPending
	}
	if err := mutate(l); err != nil {
		return LeaveResponse{}, err
	}

	if err := qtx.Update(ctx, l); err != nil {
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, err
	}

	s.logger.Info("leave status changed", zap.String("leave_id", id), zap.String("status", l.Status))
	return mapToResponse(*l), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return leaveerrors.ErrInvalidLeaveID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if l.Status == StatusApproved {
		return leaveerrors.ErrApprovedLeaveDelete
	}
	if err := qtx.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("leave deleted", zap.String("leave_id", id))
	return nil
}

func checkOwnership(actor domain.Actor, l *Leave) error {
	if !actor.IsEmployee() {
		return nil
	}
	if actor.EmployeeID == "" {
		return leaveerrors.ErrEmployeeRequired
	}
	if l.EmployeeID.String() != actor.EmployeeID {
		return leaveerrors.ErrForbiddenLeave
	}
	return nil
}

func isValidType(t string) bool {
	switch t {
	case TypeAnnual, TypeSick, TypeUnpaid:
		return true
	}
	return false
}

func isValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

func parseRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := parseDate(startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate(endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return start, end, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

// daysInRange lists every calendar day from start to end inclusive.
func daysInRange(start, end time.Time) []time.Time {
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func parseOptionalUUID(v string) *uuid.UUID {
	id, err := uuid.Parse(v)
	if err != nil {
		return nil
	}
	return &id
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}
	return err
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:              l.ID.String(),
		EmployeeID:      l.EmployeeID.String(),
		LeaveType:       l.LeaveType,
		StartDate:       l.StartDate.Format("2006-01-02"),
		EndDate:         l.EndDate.Format("2006-01-02"),
		TotalDays:       l.TotalDays,
		Reason:          l.Reason,
		Status:          l.Status,
		RejectionReason: l.RejectionReason,
		CreatedAt:       l.CreatedAt.UTC().Format(time.RFC3339),
	}
	if l.Employee != nil {
		resp.EmployeeName = l.Employee.FullName
		resp.EmployeeNumber = l.Employee.EmployeeNumber
	}
	if l.RequestedBy != nil {
		v := l.RequestedBy.String()
		resp.RequestedBy = &v
	}
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.UTC().Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	res := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		res[i] = mapToResponse(l)
	}
	return res
}
