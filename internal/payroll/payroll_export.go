package payroll

import (
	"bytes"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Payroll"

var exportHeaders = []string{
	"Employee No.",
	"Name",
	"Department",
	"Position",
	"Month",
	"Base Salary",
	"Working Days",
	"Basic Salary",
	"Overtime Hours",
	"Overtime Pay",
	"Bonus",
	"Deductions",
	"Net Salary",
	"Status",
	"Paid Date",
}

// buildSalaryWorkbook writes one row per salary plus a totals row.
func buildSalaryWorkbook(month string, rows []Salary) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"305496"}},
	})
	if err != nil {
		return nil, err
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}

	if err := f.SetColStyle(exportSheet, "F:M", moneyStyle); err != nil {
		return nil, err
	}

	header := make([]any, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
	if err := f.SetCellStyle(exportSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, err
	}

	var totalNet float64
	for i, s := range rows {
		var number, name, dept, position string
		if s.Employee != nil {
			number, name = s.Employee.EmployeeNumber, s.Employee.FullName
			dept, position = s.Employee.Department, s.Employee.Position
		}
		paid := ""
		if s.PaidDate != nil {
			paid = s.PaidDate.Format("2006-01-02")
		}

		row := []any{
			number, name, dept, position, s.Month,
			s.BaseSalary, s.WorkingDays, s.BasicSalary, s.OvertimeHours, s.OvertimePay,
			s.Bonus, s.Deductions, s.NetSalary, s.Status, paid,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
		totalNet += s.NetSalary
	}

	totalRow := len(rows) + 2
	labelCell, _ := excelize.CoordinatesToCellName(12, totalRow)
	totalCell, _ := excelize.CoordinatesToCellName(13, totalRow)
	if err := f.SetCellValue(exportSheet, labelCell, "Total "+month); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(exportSheet, totalCell, round2(totalNet)); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(exportSheet, "A", lastCol, 16); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
