package apperror

import (
	"errors"
	"net/http"
)

// HTTPError is the client-facing shape of an error.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

// ToHTTP maps err to its client-facing form. Errors that are not *AppError
// become a generic 500 so store or runtime details never reach the client.
func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return HTTPError{
			Status:  appErr.HTTPStatus,
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	}

	return HTTPError{
		Status:  ErrInternal.HTTPStatus,
		Code:    ErrInternal.Code,
		Message: ErrInternal.Message,
	}
}

// IsInternal reports whether err would be rendered as a 5xx.
func IsInternal(err error) bool {
	return ToHTTP(err).Status >= http.StatusInternalServerError
}
