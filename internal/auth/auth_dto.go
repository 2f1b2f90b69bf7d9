package auth

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest creates a login for an existing employee, or a staff
// account without one. employee_id is mandatory for the employee role.
type RegisterRequest struct {
	EmployeeID string `json:"employee_id" binding:"omitempty,uuid"`
	Email      string `json:"email" binding:"required,email"`
	Name       string `json:"name" binding:"required,max=255"`
	Password   string `json:"password" binding:"required,min=8,max=72"`
	Role       string `json:"role" binding:"required,oneof=admin hr employee"`
}

type AuthResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id,omitempty"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
}

type LoginResponse struct {
	User        AuthResponse `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
}
