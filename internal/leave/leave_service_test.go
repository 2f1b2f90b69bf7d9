package leave

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	attendancemock "go-payroll/internal/attendance/mock"
	"go-payroll/internal/domain"
	leaveerrors "go-payroll/internal/leave/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type fakeRepo struct {
	createFn         func(ctx context.Context, l *Leave) error
	findAllFn        func(ctx context.Context, filter LeaveQueryFilter) ([]Leave, int64, error)
	findByIDFn       func(ctx context.Context, id string) (*Leave, error)
	updateFn         func(ctx context.Context, l *Leave) error
	deleteFn         func(ctx context.Context, id string) error
	employeeExistsFn func(ctx context.Context, employeeID string) (bool, error)
	hasOverlappingFn func(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) (bool, error)
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f }
func (f *fakeRepo) Create(ctx context.Context, l *Leave) error {
	if f.createFn != nil {
		return f.createFn(ctx, l)
	}
	return nil
}
func (f *fakeRepo) FindAll(ctx context.Context, filter LeaveQueryFilter) ([]Leave, int64, error) {
	return f.findAllFn(ctx, filter)
}
func (f *fakeRepo) FindByID(ctx context.Context, id string) (*Leave, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeRepo) FindByIDForUpdate(ctx context.Context, id string) (*Leave, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeRepo) Update(ctx context.Context, l *Leave) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, l)
	}
	return nil
}
func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}
func (f *fakeRepo) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	if f.employeeExistsFn != nil {
		return f.employeeExistsFn(ctx, employeeID)
	}
	return true, nil
}
func (f *fakeRepo) HasOverlappingPeriod(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) (bool, error) {
	if f.hasOverlappingFn != nil {
		return f.hasOverlappingFn(ctx, employeeID, start, end, excludeID)
	}
	return false, nil
}

func newTestService(t *testing.T, repo Repository, attRepo *attendancemock.MockRepository) (*service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewService(db, repo, attRepo).(*service)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC) }
	return svc, mock
}

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func pendingLeave(employeeID uuid.UUID) *Leave {
	return &Leave{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		LeaveType:  TypeAnnual,
		StartDate:  date("2024-03-04"),
		EndDate:    date("2024-03-06"),
		TotalDays:  3,
		Status:     StatusPending,
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()
	self := domain.Actor{UserID: uuid.New().String(), EmployeeID: employeeID.String(), Role: domain.RoleEmployee}

	t.Run("employee files for themselves", func(t *testing.T) {
		var saved Leave
		repo := &fakeRepo{createFn: func(ctx context.Context, l *Leave) error { saved = *l; return nil }}
		svc, mock := newTestService(t, repo, nil)
		mock.ExpectBegin()
		mock.ExpectCommit()

		resp, err := svc.Create(ctx, self, CreateLeaveRequest{
			EmployeeID: uuid.New().String(),
			LeaveType:  TypeAnnual,
			StartDate:  "2024-03-04",
			EndDate:    "2024-03-06",
			Reason:     " family trip ",
		})

		assert.NoError(t, err)
		assert.Equal(t, employeeID, saved.EmployeeID)
		assert.Equal(t, 3, resp.TotalDays)
		assert.Equal(t, StatusPending, resp.Status)
		assert.Equal(t, "family trip", resp.Reason)
		assert.NotNil(t, resp.RequestedBy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("single day leave counts one day", func(t *testing.T) {
		svc, mock := newTestService(t, &fakeRepo{}, nil)
		mock.ExpectBegin()
		mock.ExpectCommit()

		resp, err := svc.Create(ctx, self, CreateLeaveRequest{LeaveType: TypeSick, StartDate: "2024-03-04", EndDate: "2024-03-04"})

		assert.NoError(t, err)
		assert.Equal(t, 1, resp.TotalDays)
	})

	t.Run("overlap is a conflict", func(t *testing.T) {
		repo := &fakeRepo{hasOverlappingFn: func(ctx context.Context, id string, start, end time.Time, excludeID *string) (bool, error) {
			assert.Equal(t, date("2024-03-04"), start)
			assert.Nil(t, excludeID)
			return true, nil
		}}
		svc, mock := newTestService(t, repo, nil)
		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := svc.Create(ctx, self, CreateLeaveRequest{LeaveType: TypeAnnual, StartDate: "2024-03-04", EndDate: "2024-03-05"})

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveOverlap)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("end before start", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeRepo{}, nil)
		_, err := svc.Create(ctx, self, CreateLeaveRequest{LeaveType: TypeAnnual, StartDate: "2024-03-06", EndDate: "2024-03-04"})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
	})

	t.Run("bad date", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeRepo{}, nil)
		_, err := svc.Create(ctx, self, CreateLeaveRequest{LeaveType: TypeAnnual, StartDate: "04/03/2024", EndDate: "2024-03-04"})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateFormat)
	})

	t.Run("unknown type", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeRepo{}, nil)
		_, err := svc.Create(ctx, self, CreateLeaveRequest{LeaveType: "ANNUAL", StartDate: "2024-03-04", EndDate: "2024-03-04"})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidLeaveType)
	})

	t.Run("account without employee", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeRepo{}, nil)
		_, err := svc.Create(ctx, domain.Actor{Role: domain.RoleEmployee}, CreateLeaveRequest{LeaveType: TypeAnnual, StartDate: "2024-03-04", EndDate: "2024-03-04"})
		assert.ErrorIs(t, err, leaveerrors.ErrEmployeeRequired)
	})

	t.Run("hr files for unknown employee", func(t *testing.T) {
		repo := &fakeRepo{employeeExistsFn: func(ctx context.Context, id string) (bool, error) { return false, nil }}
		svc, mock := newTestService(t, repo, nil)
		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := svc.Create(ctx, domain.Actor{Role: domain.RoleHR}, CreateLeaveRequest{
			EmployeeID: uuid.New().String(),
			LeaveType:  TypeUnpaid,
			StartDate:  "2024-03-04",
			EndDate:    "2024-03-04",
		})
		assert.ErrorIs(t, err, leaveerrors.ErrEmployeeNotFound)
	})
}

func TestService_GetAll_ScopesEmployees(t *testing.T) {
	employeeID := uuid.New().String()
	repo := &fakeRepo{findAllFn: func(ctx context.Context, filter LeaveQueryFilter) ([]Leave, int64, error) {
		assert.Equal(t, employeeID, filter.EmployeeID)
		assert.Equal(t, StatusPending, filter.Status)
		return []Leave{*pendingLeave(uuid.MustParse(employeeID))}, 1, nil
	}}
	svc, _ := newTestService(t, repo, nil)

	resp, total, err := svc.GetAll(context.Background(),
		domain.Actor{EmployeeID: employeeID, Role: domain.RoleEmployee},
		LeaveQueryFilter{EmployeeID: uuid.New().String(), Status: "PENDING"},
	)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, resp, 1)

	_, _, err = svc.GetAll(context.Background(), domain.Actor{Role: domain.RoleHR}, LeaveQueryFilter{Status: "done"})
	assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusFilter)
}

func TestService_Approve(t *testing.T) {
	ctx := context.Background()
	hr := domain.Actor{UserID: uuid.New().String(), Role: domain.RoleHR}

	t.Run("writes one leave day per date", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		att := attendancemock.NewMockRepository(ctrl)

		l := pendingLeave(uuid.New())
		repo := &fakeRepo{findByIDFn: func(ctx context.Context, id string) (*Leave, error) { return l, nil }}
		svc, mock := newTestService(t, repo, att)

		att.EXPECT().WithTx(gomock.Any()).Return(att)
		att.EXPECT().
			UpsertLeaveDays(gomock.Any(), l.EmployeeID, []time.Time{date("2024-03-04"), date("2024-03-05"), date("2024-03-06")}, "annual leave").
			Return(nil)

		mock.ExpectBegin()
		mock.ExpectCommit()

		resp, err := svc.Approve(ctx, hr, l.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, StatusApproved, resp.Status)
		assert.Equal(t, hr.UserID, *resp.ApprovedBy)
		assert.Equal(t, "2024-03-01T08:00:00Z", *resp.ApprovedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("attendance failure rolls back", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		att := attendancemock.NewMockRepository(ctrl)

		l := pendingLeave(uuid.New())
		repo := &fakeRepo{findByIDFn: func(ctx context.Context, id string) (*Leave, error) { return l, nil }}
		svc, mock := newTestService(t, repo, att)

		att.EXPECT().WithTx(gomock.Any()).Return(att)
		att.EXPECT().UpsertLeaveDays(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("db down"))

		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := svc.Approve(ctx, hr, l.ID.String())

		assert.EqualError(t, err, "db down")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("only pending can be approved", func(t *testing.T) {
		l := pendingLeave(uuid.New())
		l.Status = StatusCancelled
		repo := &fakeRepo{findByIDFn: func(ctx context.Context, id string) (*Leave, error) { return l, nil }}
		svc, mock := newTestService(t, repo, nil)
		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := svc.Approve(ctx, hr, l.ID.String())
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotPending)
	})

	t.Run("not found", func(t *testing.T) {
		repo := &fakeRepo{findByIDFn: func(ctx context.Context, id string) (*Leave, error) { return nil, gorm.ErrRecordNotFound }}
		svc, mock := newTestService(t, repo, nil)
		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := svc.Approve(ctx, hr, uuid.New().String())
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeRepo{}, nil)
		_, err := svc.Approve(ctx, hr, "nope")
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidLeaveID)
	})
}

func TestService_Reject(t *testing.T) {
	ctx := context.Background()
	hr := domain.Actor{UserID: uuid.New().String(), Role: domain.RoleHR}

	t.Run("reason required", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeRepo{}, nil)
		_, err := svc.Reject(ctx, hr, uuid.New().String(), "   ")
		assert.ErrorIs(t, err, leaveerrors.ErrRejectionReasonRequired)
	})

	t.Run("rejected with reason", func(t *testing.T) {
		l := pendingLeave(uuid.New())
		repo := &fakeRepo{findByIDFn: func(ctx context.Context, id string) (*Leave, error) { return l, nil }}
		svc, mock := newTestService(t, repo, nil)
		mock.ExpectBegin()
		mock.ExpectCommit()

		resp, err := svc.Reject(ctx, hr, l.ID.String(), "busy period")

		assert.NoError(t, err)
		assert.Equal(t, StatusRejected, resp.Status)
		assert.Equal(t, "busy period", *resp.RejectionReason)
	})
}

func TestService_Cancel(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	tests := []struct {
		name    string
		actor   domain.Actor
		status  string
		wantErr error
	}{
		{"owner cancels pending", domain.Actor{EmployeeID: owner.String(), Role: domain.RoleEmployee}, StatusPending, nil},
		{"hr cancels for employee", domain.Actor{Role: domain.RoleHR}, StatusPending, nil},
		{"other employee", domain.Actor{EmployeeID: uuid.New().String(), Role: domain.RoleEmployee}, StatusPending, leaveerrors.ErrForbiddenLeave},
		{"already approved", domain.Actor{EmployeeID: owner.String(), Role: domain.RoleEmployee}, StatusApproved, leaveerrors.ErrLeaveNotPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := pendingLeave(owner)
			l.Status = tt.status
			repo := &fakeRepo{findByIDFn: func(ctx context.Context, id string) (*Leave, error) { return l, nil }}
			svc, mock := newTestService(t, repo, nil)
			mock.ExpectBegin()
			if tt.wantErr == nil {
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			resp, err := svc.Cancel(ctx, tt.actor, l.ID.String())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, StatusCancelled, resp.Status)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("approved leave is kept", func(t *testing.T) {
		l := pendingLeave(uuid.New())
		l.Status = StatusApproved
		repo := &fakeRepo{
			findByIDFn: func(ctx context.Context, id string) (*Leave, error) { return l, nil },
			deleteFn:   func(ctx context.Context, id string) error {
				t.Fatal("delete must not be called")
				return nil
			},
		}
		svc, mock := newTestService(t, repo, nil)
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.ErrorIs(t, svc.Delete(ctx, l.ID.String()), leaveerrors.ErrApprovedLeaveDelete)
	})

	t.Run("rejected leave is removed", func(t *testing.T) {
		l := pendingLeave(uuid.New())
		l.Status = StatusRejected
		deleted := ""
		repo := &fakeRepo{
			findByIDFn: func(ctx context.Context, id string) (*Leave, error) { return l, nil },
			deleteFn:   func(ctx context.Context, id string) error { deleted = id; return nil },
		}
		svc, mock := newTestService(t, repo, nil)
		mock.ExpectBegin()
		mock.ExpectCommit()

		assert.NoError(t, svc.Delete(ctx, l.ID.String()))
		assert.Equal(t, l.ID.String(), deleted)
	})
}

func TestDaysInRange(t *testing.T) {
	days := daysInRange(date("2024-02-28"), date("2024-03-01"))
	assert.Equal(t, []time.Time{date("2024-02-28"), date("2024-02-29"), date("2024-03-01")}, days)
	assert.Empty(t, daysInRange(date("2024-03-02"), date("2024-03-01")))
}
