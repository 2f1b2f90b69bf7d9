package payroll

type CalculateSalaryRequest struct {
	Month int `json:"month" binding:"required"`
	Year  int `json:"year" binding:"required"`
}

type GeneratePayrollRequest struct {
	Month int `json:"month" binding:"required"`
	Year  int `json:"year" binding:"required"`
}

type UpdateSalaryRequest struct {
	Bonus      *float64 `json:"bonus"`
	Deductions *float64 `json:"deductions"`
	Status     *string  `json:"status" binding:"omitempty,oneof=pending paid overdue"`
	PaidDate   *string  `json:"paid_date"`
}

type MarkPaidRequest struct {
	PaidDate *string `json:"paid_date"`
}

type SalaryQueryFilter struct {
	Month      string
	Status     string
	EmployeeID string
	Page       int
	Limit      int
}

type SalaryResponse struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	EmployeeNumber string  `json:"employee_number,omitempty"`
	EmployeeName   string  `json:"employee_name,omitempty"`
	Department     string  `json:"department,omitempty"`
	Position       string  `json:"position,omitempty"`
	Month          string  `json:"month"`
	BaseSalary     float64 `json:"base_salary"`
	BasicSalary    float64 `json:"basic_salary"`
	OvertimeHours  float64 `json:"overtime_hours"`
	OvertimePay    float64 `json:"overtime_pay"`
	Bonus          float64 `json:"bonus"`
	Deductions     float64 `json:"deductions"`
	NetSalary      float64 `json:"net_salary"`
	WorkingDays    float64 `json:"working_days"`
	Status         string  `json:"status"`
	PaidDate       *string `json:"paid_date,omitempty"`
	UpdatedAt      string  `json:"updated_at"`
}

// AttendanceCounts is the per-status day count shown next to a calculation.
type AttendanceCounts struct {
	Present    int `json:"present"`
	Absent     int `json:"absent"`
	HalfDay    int `json:"half_day"`
	Leave      int `json:"leave"`
	Late       int `json:"late"`
	EarlyLeave int `json:"early_leave"`
}

type CalculateSalaryResponse struct {
	Salary      SalaryResponse    `json:"salary"`
	Calculation SalaryCalculation `json:"calculation"`
	Attendance  AttendanceCounts  `json:"attendance"`
}

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

type GenerationResult struct {
	EmployeeID   string          `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	Status       string          `json:"status"`
	Salary       *SalaryResponse `json:"salary,omitempty"`
	Error        string          `json:"error,omitempty"`
}

type GeneratePayrollResponse struct {
	Month        string             `json:"month"`
	Results      []GenerationResult `json:"results"`
	SuccessCount int                `json:"success_count"`
	ErrorCount   int                `json:"error_count"`
}

type GenerationRequestedResponse struct {
	RequestID string `json:"request_id"`
	Month     string `json:"month"`
	Status    string `json:"status"`
}
