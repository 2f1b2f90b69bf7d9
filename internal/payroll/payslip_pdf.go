package payroll

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	payslipFontSize   = 11
	payslipLineHeight = 16
)

func payslipLines(s Salary) []string {
	name, number, dept, position := "-", "-", "-", "-"
	if s.Employee != nil {
		name = s.Employee.FullName
		number = s.Employee.EmployeeNumber
		dept = orDash(s.Employee.Department)
		position = orDash(s.Employee.Position)
	}
	paid := "-"
	if s.PaidDate != nil {
		paid = s.PaidDate.Format("2006-01-02")
	}

	return []string{
		"PAYSLIP " + s.Month,
		"",
		"Employee:       " + name,
		"Employee No.:   " + number,
		"Department:     " + dept,
		"Position:       " + position,
		"",
		"Base salary:    " + money(s.BaseSalary),
		fmt.Sprintf("Working days:   %.1f", s.WorkingDays),
		"Basic salary:   " + money(s.BasicSalary),
		fmt.Sprintf("Overtime hours: %.2f", s.OvertimeHours),
		"Overtime pay:   " + money(s.OvertimePay),
		"Bonus:          " + money(s.Bonus),
		"Deductions:    -" + money(s.Deductions),
		"",
		"NET SALARY:     " + money(s.NetSalary),
		"",
		"Status:         " + s.Status,
		"Paid date:      " + paid,
	}
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

// buildPayslipPDF renders lines as a single A4 page in a monospaced font.
func buildPayslipPDF(lines []string) ([]byte, error) {
	if len(lines) == 0 {
		lines = []string{"Payslip"}
	}

	var content strings.Builder
	content.WriteString(fmt.Sprintf("BT\n/F1 %d Tf\n%d TL\n50 790 Td\n", payslipFontSize, payslipLineHeight))
	for i, line := range lines {
		if i > 0 {
			content.WriteString("T* ")
		}
		content.WriteString(fmt.Sprintf("(%s) Tj\n", pdfEscape(line)))
	}
	content.WriteString("ET")

	stream := content.String()
	objects := []string{
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n",
		"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n",
		"3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>\nendobj\n",
		"4 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Courier >>\nendobj\n",
		fmt.Sprintf("5 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(stream), stream),
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := []int{0}
	for _, obj := range objects {
		offsets = append(offsets, out.Len())
		out.WriteString(obj)
	}

	xrefStart := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", len(offsets))
	out.WriteString("0000000000 65535 f \n")
	for _, off := range offsets[1:] {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", len(offsets), xrefStart)

	return out.Bytes(), nil
}

func pdfEscape(v string) string {
	replacer := strings.NewReplacer("\\", "\\\\", "(", "\\(", ")", "\\)")
	return replacer.Replace(v)
}
