package attendance

import (
	"testing"

	attendanceerrors "go-payroll/internal/attendance/errors"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"present", StatusPresent},
		{"PRESENT", StatusPresent},
		{" absent ", StatusAbsent},
		{"late", StatusLate},
		{"half-day", StatusHalfDay},
		{"halfday", StatusHalfDay},
		{"HALF_DAY", StatusHalfDay},
		{"half_day", StatusHalfDay},
		{"leave", StatusLeave},
		{"early-leave", StatusEarlyLeave},
		{"early_leave", StatusEarlyLeave},
		{"EARLY_LEAVE", StatusEarlyLeave},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "holiday", "half day"} {
		_, err := ParseStatus(bad)
		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidStatus, bad)
	}
}
