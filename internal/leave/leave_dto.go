package leave

type CreateLeaveRequest struct {
	// Optional for employees, who always file for themselves.
	EmployeeID string `json:"employee_id" binding:"omitempty,uuid"`
	LeaveType  string `json:"leave_type" binding:"required,oneof=annual sick unpaid"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
	Reason     string `json:"reason" binding:"max=1000"`
}

type RejectLeaveRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

type LeaveQueryFilter struct {
	EmployeeID string
	Status     string
	Page       int
	Limit      int
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    string  `json:"employee_name,omitempty"`
	EmployeeNumber  string  `json:"employee_number,omitempty"`
	LeaveType       string  `json:"leave_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	TotalDays       int     `json:"total_days"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	RequestedBy     *string `json:"requested_by,omitempty"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
}
