package attendanceerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrAttendanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"attendance record not found",
		http.StatusNotFound,
	)
	// Duplicate marks are reported as 400 to stay compatible with existing
	// clients of the mark endpoint.
	ErrAttendanceAlreadyMarked = apperror.New(
		apperror.CodeConflict,
		"attendance already marked for this employee and date",
		http.StatusBadRequest,
	)
	ErrAlreadyCheckedIn = apperror.New(
		apperror.CodeConflict,
		"already checked in for today",
		http.StatusBadRequest,
	)
	ErrAlreadyCheckedOut = apperror.New(
		apperror.CodeConflict,
		"already checked out for today",
		http.StatusBadRequest,
	)
	ErrCheckInNotFound = apperror.New(
		apperror.CodeNotFound,
		"check-in not found for today",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrEmployeeRequired = apperror.New(
		apperror.CodeForbidden,
		"account is not linked to an employee",
		http.StatusForbidden,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeValidation,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidAttendanceID = apperror.New(
		apperror.CodeValidation,
		"invalid attendance id",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeValidation,
		"invalid attendance status",
		http.StatusBadRequest,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeValidation,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidMonth = apperror.New(
		apperror.CodeValidation,
		"invalid month format, expected YYYY-MM",
		http.StatusBadRequest,
	)
	ErrInvalidTime = apperror.New(
		apperror.CodeValidation,
		"invalid time format, expected RFC3339",
		http.StatusBadRequest,
	)
	ErrCheckOutBeforeCheckIn = apperror.New(
		apperror.CodeValidation,
		"check_out must be after check_in",
		http.StatusBadRequest,
	)
)
