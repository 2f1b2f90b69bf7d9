package attendance

type MarkAttendanceRequest struct {
	EmployeeID     string   `json:"employee_id" binding:"required,uuid"`
	AttendanceDate string   `json:"attendance_date" binding:"required"`
	CheckIn        *string  `json:"check_in"`
	CheckOut       *string  `json:"check_out"`
	HoursWorked    *float64 `json:"hours_worked" binding:"omitempty,gte=0,lte=24"`
	Status         string   `json:"status" binding:"required"`
	Notes          *string  `json:"notes"`
}

type UpdateAttendanceRequest struct {
	CheckIn     *string  `json:"check_in"`
	CheckOut    *string  `json:"check_out"`
	HoursWorked *float64 `json:"hours_worked" binding:"omitempty,gte=0,lte=24"`
	Status      *string  `json:"status"`
	Notes       *string  `json:"notes"`
}

type CheckInRequest struct {
	Notes *string `json:"notes"`
}

type CheckOutRequest struct {
	Notes *string `json:"notes"`
}

type AttendanceQueryFilter struct {
	Date       string
	Month      string
	Status     string
	EmployeeID string
	Page       int
	Limit      int
}

type AttendanceResponse struct {
	ID             string   `json:"id"`
	EmployeeID     string   `json:"employee_id"`
	EmployeeNumber string   `json:"employee_number,omitempty"`
	EmployeeName   string   `json:"employee_name,omitempty"`
	AttendanceDate string   `json:"attendance_date"`
	CheckIn        *string  `json:"check_in,omitempty"`
	CheckOut       *string  `json:"check_out,omitempty"`
	HoursWorked    *float64 `json:"hours_worked"`
	Status         string   `json:"status"`
	Notes          *string  `json:"notes,omitempty"`
}
