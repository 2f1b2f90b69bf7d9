package payrollerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrInvalidSalaryID = apperror.New(
		apperror.CodeValidation,
		"invalid salary id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeValidation,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidMonth = apperror.New(
		apperror.CodeValidation,
		"month must be between 1 and 12",
		http.StatusBadRequest,
	)
	ErrInvalidYear = apperror.New(
		apperror.CodeValidation,
		"year must be between 1900 and 9999",
		http.StatusBadRequest,
	)
	ErrInvalidMonthKey = apperror.New(
		apperror.CodeValidation,
		"invalid month format, expected YYYY-MM",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeValidation,
		"status must be one of pending, paid, overdue",
		http.StatusBadRequest,
	)
	ErrInvalidPaidDate = apperror.New(
		apperror.CodeValidation,
		"invalid paid_date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrNegativeAmount = apperror.New(
		apperror.CodeValidation,
		"bonus and deductions cannot be negative",
		http.StatusBadRequest,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrSalaryNotFound = apperror.New(
		apperror.CodeNotFound,
		"salary record not found",
		http.StatusNotFound,
	)
	ErrGenerationQueueUnavailable = apperror.New(
		apperror.CodeServiceUnavailable,
		"payroll generation queue is not configured",
		http.StatusServiceUnavailable,
	)
)
