package payroll

import (
	"fmt"
	"math"
	"time"
)

const (
	SalaryTypeMonthly = "monthly"
	SalaryTypeHourly  = "hourly"

	standardWorkHours  = 8.0
	overtimeMultiplier = 1.5
	absenceDeduction   = 0.1
)

// Attendance status values the calculator counts. They mirror
// attendance.Status; payroll keeps its own copy so the calculator has no
// dependency on the attendance package.
const (
	entryPresent = "present"
	entryHalfDay = "half-day"
	entryAbsent  = "absent"
	entryLeave   = "leave"
)

// AttendanceEntry is the slice of an attendance row the calculator needs.
type AttendanceEntry struct {
	Status      string
	HoursWorked *float64
}

type CalculationInput struct {
	BaseSalary float64
	SalaryType string
	Records    []AttendanceEntry
	MonthYear  string // YYYY-MM
}

type AttendanceSummary struct {
	TotalDays   int     `json:"total_days"`
	PresentDays int     `json:"present_days"`
	HalfDays    int     `json:"half_days"`
	AbsentDays  int     `json:"absent_days"`
	LeaveDays   int     `json:"leave_days"`
	WorkingDays float64 `json:"working_days"`
}

type SalaryCalculation struct {
	BasicSalary       float64           `json:"basic_salary"`
	Bonus             float64           `json:"bonus"`
	Deductions        float64           `json:"deductions"`
	OvertimeHours     float64           `json:"overtime_hours"`
	OvertimePay       float64           `json:"overtime_pay"`
	NetSalary         float64           `json:"net_salary"`
	AttendanceSummary AttendanceSummary `json:"attendance_summary"`
}

// Calculate computes a month's salary breakdown. It never fails: unknown
// salary types contribute no basic salary and an unparsable month behaves as
// a month with zero days.
func Calculate(in CalculationInput) SalaryCalculation {
	daysInMonth := 0
	if year, month, err := ParseMonthKey(in.MonthYear); err == nil {
		daysInMonth = DaysInMonth(year, month)
	}

	var present, half, absent, leave int
	var overtimeHours, totalHours float64
	for _, r := range in.Records {
		switch r.Status {
		case entryPresent:
			present++
		case entryHalfDay:
			half++
		case entryAbsent:
			absent++
		case entryLeave:
			leave++
		}

		hours := hoursOf(r)
		totalHours += hours
		if hours > standardWorkHours {
			overtimeHours += hours - standardWorkHours
		}
	}

	workingDays := float64(present) + 0.5*float64(half)
	dailyRate := safeDiv(in.BaseSalary, float64(daysInMonth))

	var basicSalary, hourlyRate float64
	switch in.SalaryType {
	case SalaryTypeMonthly:
		basicSalary = dailyRate * workingDays
	case SalaryTypeHourly:
		// Overtime hours are part of totalHours and are paid again below.
		basicSalary = in.BaseSalary * totalHours
	}

	if in.SalaryType == SalaryTypeHourly {
		hourlyRate = in.BaseSalary
	} else {
		hourlyRate = safeDiv(in.BaseSalary, float64(daysInMonth)*standardWorkHours)
	}

	overtimePay := overtimeHours * hourlyRate * overtimeMultiplier
	bonus := 0.0
	deductions := float64(absent) * dailyRate * absenceDeduction
	netSalary := basicSalary + overtimePay + bonus - deductions

	return SalaryCalculation{
		BasicSalary:   round2(basicSalary),
		Bonus:         round2(bonus),
		Deductions:    round2(deductions),
		OvertimeHours: round2(overtimeHours),
		OvertimePay:   round2(overtimePay),
		NetSalary:     round2(netSalary),
		AttendanceSummary: AttendanceSummary{
			TotalDays:   daysInMonth,
			PresentDays: present,
			HalfDays:    half,
			AbsentDays:  absent,
			LeaveDays:   leave,
			WorkingDays: workingDays,
		},
	}
}

// DaysInMonth returns the number of days in month of year, leap years
// included: day 0 of the following month is the last day of this one.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthKey formats a year/month pair as YYYY-MM.
func MonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// ParseMonthKey parses YYYY-MM.
func ParseMonthKey(v string) (year, month int, err error) {
	t, err := time.Parse("2006-01", v)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q, expected YYYY-MM", v)
	}
	return t.Year(), int(t.Month()), nil
}

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func hoursOf(e AttendanceEntry) float64 {
	if e.HoursWorked == nil || *e.HoursWorked < 0 {
		return 0
	}
	return *e.HoursWorked
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
