package leaveerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeValidation,
		"invalid leave id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeValidation,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeValidation,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeValidation,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeValidation,
		"leave_type must be one of annual, sick, unpaid",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeValidation,
		"status must be one of pending, approved, rejected, cancelled",
		http.StatusBadRequest,
	)
	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeValidation,
		"rejection reason is required",
		http.StatusBadRequest,
	)
	ErrEmployeeRequired = apperror.New(
		apperror.CodeForbidden,
		"account is not linked to an employee",
		http.StatusForbidden,
	)
	ErrForbiddenLeave = apperror.New(
		apperror.CodeForbidden,
		"leave request belongs to another employee",
		http.StatusForbidden,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave not found",
		http.StatusNotFound,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"leave period overlaps with an existing request",
		http.StatusConflict,
	)
	ErrLeaveNotPending = apperror.New(
		apperror.CodeInvalidState,
		"only pending leave requests can be changed",
		http.StatusUnprocessableEntity,
	)
	ErrApprovedLeaveDelete = apperror.New(
		apperror.CodeInvalidState,
		"approved leave cannot be deleted",
		http.StatusUnprocessableEntity,
	)
)
