package attendance

import (
	"strings"

	attendanceerrors "go-payroll/internal/attendance/errors"
)

// Status is the attendance vocabulary shared by attendance rows, leave
// approval and payroll.
type Status string

const (
	StatusPresent    Status = "present"
	StatusAbsent     Status = "absent"
	StatusLate       Status = "late"
	StatusHalfDay    Status = "half-day"
	StatusLeave      Status = "leave"
	StatusEarlyLeave Status = "early-leave"
)

var legacyStatuses = map[string]Status{
	"halfday":     StatusHalfDay,
	"half_day":    StatusHalfDay,
	"earlyleave":  StatusEarlyLeave,
	"early_leave": StatusEarlyLeave,
}

// ParseStatus normalises v into a Status. Legacy spellings such as HALF_DAY,
// halfday or early_leave are accepted.
func ParseStatus(v string) (Status, error) {
	s := strings.ToLower(strings.TrimSpace(v))
	if legacy, ok := legacyStatuses[s]; ok {
		return legacy, nil
	}

	switch st := Status(s); st {
	case StatusPresent, StatusAbsent, StatusLate, StatusHalfDay, StatusLeave, StatusEarlyLeave:
		return st, nil
	}
	return "", attendanceerrors.ErrInvalidStatus
}

func (s Status) String() string {
	return string(s)
}
