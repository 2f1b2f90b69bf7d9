package payroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func hours(v float64) *float64 { return &v }

func entries(status string, n int, h *float64) []AttendanceEntry {
	out := make([]AttendanceEntry, n)
	for i := range out {
		out[i] = AttendanceEntry{Status: status, HoursWorked: h}
	}
	return out
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month int
		want  int
	}{
		{"leap february", 2024, 2, 29},
		{"non-leap february", 2023, 2, 28},
		{"century non-leap", 1900, 2, 28},
		{"quad-century leap", 2000, 2, 29},
		{"thirty-one days", 2024, 1, 31},
		{"thirty days", 2024, 4, 30},
		{"december", 2024, 12, 31},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysInMonth(tt.year, tt.month))
		})
	}
}

func TestCalculate_MonthlyFebruaryLeapYear(t *testing.T) {
	var records []AttendanceEntry
	records = append(records, entries(entryPresent, 20, hours(8))...)
	records = append(records, entries(entryHalfDay, 2, hours(4))...)
	records = append(records, entries(entryAbsent, 1, nil)...)

	got := Calculate(CalculationInput{
		BaseSalary: 3000,
		SalaryType: SalaryTypeMonthly,
		Records:    records,
		MonthYear:  "2024-02",
	})

	assert.Equal(t, 29, got.AttendanceSummary.TotalDays)
	assert.Equal(t, 21.0, got.AttendanceSummary.WorkingDays)
	assert.Equal(t, 20, got.AttendanceSummary.PresentDays)
	assert.Equal(t, 2, got.AttendanceSummary.HalfDays)
	assert.Equal(t, 1, got.AttendanceSummary.AbsentDays)
	assert.Equal(t, 2172.41, got.BasicSalary)
	assert.Equal(t, 10.34, got.Deductions)
	assert.Equal(t, 0.0, got.OvertimePay)
	assert.Equal(t, 0.0, got.OvertimeHours)
	assert.Equal(t, 0.0, got.Bonus)
	assert.Equal(t, 2162.07, got.NetSalary)
}

func TestCalculate_MonthlyProRata(t *testing.T) {
	tests := []struct {
		name    string
		base    float64
		month   string
		present int
		half    int
		want    float64
	}{
		{"full april", 3000, "2024-04", 30, 0, 3000},
		{"half of april", 3000, "2024-04", 15, 0, 1500},
		{"half days only", 3100, "2024-01", 0, 2, 100},
		{"nothing worked", 3000, "2023-02", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := append(entries(entryPresent, tt.present, nil), entries(entryHalfDay, tt.half, nil)...)
			got := Calculate(CalculationInput{BaseSalary: tt.base, SalaryType: SalaryTypeMonthly, Records: records, MonthYear: tt.month})
			assert.Equal(t, tt.want, got.BasicSalary)
			assert.Equal(t, 0.0, got.Deductions)
		})
	}
}

func TestCalculate_OvertimeThreshold(t *testing.T) {
	tests := []struct {
		name  string
		hours *float64
		want  float64
	}{
		{"under threshold", hours(7.5), 0},
		{"exactly eight", hours(8), 0},
		{"ten hours", hours(10), 2},
		{"missing hours", nil, 0},
		{"negative hours", hours(-3), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(CalculationInput{
				BaseSalary: 2400,
				SalaryType: SalaryTypeMonthly,
				Records:    []AttendanceEntry{{Status: entryPresent, HoursWorked: tt.hours}},
				MonthYear:  "2024-06",
			})
			assert.Equal(t, tt.want, got.OvertimeHours)
		})
	}
}

func TestCalculate_MonthlyOvertimePay(t *testing.T) {
	// 2400 / (30 * 8) = 10 per hour; 2 overtime hours at 1.5x.
	got := Calculate(CalculationInput{
		BaseSalary: 2400,
		SalaryType: SalaryTypeMonthly,
		Records:    []AttendanceEntry{{Status: entryPresent, HoursWorked: hours(10)}},
		MonthYear:  "2024-06",
	})

	assert.Equal(t, 80.0, got.BasicSalary)
	assert.Equal(t, 30.0, got.OvertimePay)
	assert.Equal(t, 110.0, got.NetSalary)
}

func TestCalculate_HourlyCountsOvertimeTwice(t *testing.T) {
	got := Calculate(CalculationInput{
		BaseSalary: 20,
		SalaryType: SalaryTypeHourly,
		Records: []AttendanceEntry{
			{Status: entryPresent, HoursWorked: hours(10)},
			{Status: entryPresent, HoursWorked: hours(6)},
		},
		MonthYear: "2024-03",
	})

	assert.Equal(t, 320.0, got.BasicSalary)
	assert.Equal(t, 2.0, got.OvertimeHours)
	assert.Equal(t, 60.0, got.OvertimePay)
	assert.Equal(t, 380.0, got.NetSalary)
}

func TestCalculate_Deductions(t *testing.T) {
	got := Calculate(CalculationInput{
		BaseSalary: 3000,
		SalaryType: SalaryTypeMonthly,
		Records:    entries(entryAbsent, 3, nil),
		MonthYear:  "2024-04",
	})

	assert.Equal(t, 30.0, got.Deductions)
	assert.Equal(t, -30.0, got.NetSalary)
	assert.Equal(t, 3, got.AttendanceSummary.AbsentDays)
}

func TestCalculate_LeaveAndOtherStatuses(t *testing.T) {
	records := []AttendanceEntry{
		{Status: entryLeave},
		{Status: entryLeave},
		{Status: "late", HoursWorked: hours(8)},
		{Status: "early-leave", HoursWorked: hours(5)},
	}

	got := Calculate(CalculationInput{BaseSalary: 3000, SalaryType: SalaryTypeMonthly, Records: records, MonthYear: "2024-04"})

	assert.Equal(t, 2, got.AttendanceSummary.LeaveDays)
	assert.Equal(t, 0, got.AttendanceSummary.PresentDays)
	assert.Equal(t, 0.0, got.BasicSalary)
}

func TestCalculate_DegenerateInputs(t *testing.T) {
	t.Run("unknown salary type", func(t *testing.T) {
		got := Calculate(CalculationInput{BaseSalary: 3000, SalaryType: "weekly", Records: entries(entryPresent, 5, hours(9)), MonthYear: "2024-04"})
		assert.Equal(t, 0.0, got.BasicSalary)
		// 5 overtime hours at 3000 / (30 * 8) = 12.5 per hour.
		assert.Equal(t, 93.75, got.OvertimePay)
	})

	t.Run("empty attendance", func(t *testing.T) {
		got := Calculate(CalculationInput{BaseSalary: 3000, SalaryType: SalaryTypeMonthly, MonthYear: "2024-04"})
		assert.Equal(t, SalaryCalculation{AttendanceSummary: AttendanceSummary{TotalDays: 30}}, got)
	})

	t.Run("negative base salary", func(t *testing.T) {
		got := Calculate(CalculationInput{BaseSalary: -3000, SalaryType: SalaryTypeMonthly, Records: entries(entryPresent, 30, nil), MonthYear: "2024-04"})
		assert.Equal(t, -3000.0, got.BasicSalary)
	})

	t.Run("unparsable month", func(t *testing.T) {
		got := Calculate(CalculationInput{BaseSalary: 3000, SalaryType: SalaryTypeMonthly, Records: entries(entryPresent, 3, nil), MonthYear: "04/2024"})
		assert.Equal(t, 0, got.AttendanceSummary.TotalDays)
		assert.Equal(t, 0.0, got.BasicSalary)
	})
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.01, round2(1.005000001))
	assert.Equal(t, 2.5, round2(2.4999999))
	assert.Equal(t, -1.23, round2(-1.234))
	assert.Equal(t, -1.24, round2(-1.235000001))
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2024-02", MonthKey(2024, 2))

	y, m, err := ParseMonthKey("2023-11")
	assert.NoError(t, err)
	assert.Equal(t, 2023, y)
	assert.Equal(t, 11, m)

	_, _, err = ParseMonthKey("2023-13")
	assert.Error(t, err)
}
