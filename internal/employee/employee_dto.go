package employee

type CreateEmployeeRequest struct {
	EmployeeNumber string  `json:"employee_number" binding:"omitempty,max=20"`
	FullName       string  `json:"full_name" binding:"required,max=150"`
	Email          string  `json:"email" binding:"required,email"`
	Phone          string  `json:"phone" binding:"omitempty,max=30"`
	Department     string  `json:"department" binding:"omitempty,max=100"`
	Position       string  `json:"position" binding:"omitempty,max=100"`
	HireDate       string  `json:"hire_date" binding:"required"`
	Salary         float64 `json:"salary" binding:"gte=0"`
	SalaryType     string  `json:"salary_type" binding:"omitempty,oneof=monthly hourly"`
	Status         string  `json:"status" binding:"omitempty,oneof=active inactive terminated"`
}

type UpdateEmployeeRequest struct {
	EmployeeNumber string  `json:"employee_number" binding:"omitempty,max=20"`
	FullName       string  `json:"full_name" binding:"required,max=150"`
	Email          string  `json:"email" binding:"required,email"`
	Phone          string  `json:"phone" binding:"omitempty,max=30"`
	Department     string  `json:"department" binding:"omitempty,max=100"`
	Position       string  `json:"position" binding:"omitempty,max=100"`
	HireDate       string  `json:"hire_date" binding:"required"`
	Salary         float64 `json:"salary" binding:"gte=0"`
	SalaryType     string  `json:"salary_type" binding:"required,oneof=monthly hourly"`
	Status         string  `json:"status" binding:"required,oneof=active inactive terminated"`
}

type EmployeeQueryFilter struct {
	Q      string
	Status string
	Page   int
	Limit  int
}

type EmployeeResponse struct {
	ID             string  `json:"id"`
	EmployeeNumber string  `json:"employee_number"`
	FullName       string  `json:"full_name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone,omitempty"`
	Department     string  `json:"department,omitempty"`
	Position       string  `json:"position,omitempty"`
	HireDate       string  `json:"hire_date"`
	Salary         float64 `json:"salary"`
	SalaryType     string  `json:"salary_type"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"created_at,omitempty"`
	UpdatedAt      string  `json:"updated_at,omitempty"`
}

type EmployeeOptionResponse struct {
	ID             string `json:"id"`
	EmployeeNumber string `json:"employee_number"`
	FullName       string `json:"full_name"`
}
