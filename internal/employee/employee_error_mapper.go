package employee

import (
	"errors"

	employeeerrors "go-payroll/internal/employee/errors"
	"go-payroll/internal/shared/database"

	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	switch {
	case database.IsUniqueViolation(err, "uq_employee_number"):
		return employeeerrors.ErrEmployeeNumberAlreadyExists
	case database.IsUniqueViolation(err, "uq_employee_email"):
		return employeeerrors.ErrEmployeeAlreadyExists
	}

	return err
}
