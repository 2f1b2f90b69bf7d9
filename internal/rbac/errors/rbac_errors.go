package rbacerrors

import (
	"go-payroll/internal/shared/apperror"
	"net/http"
)

var (
	ErrRoleNotFound = apperror.New(
		apperror.CodeNotFound,
		"Role not found",
		http.StatusNotFound,
	)
	ErrInvalidEnforceRequest = apperror.New(
		apperror.CodeValidation,
		"role, resource and action are required",
		http.StatusBadRequest,
	)
)
