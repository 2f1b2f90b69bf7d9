package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	autherrors "go-payroll/internal/auth/errors"
	"go-payroll/internal/domain"
	"go-payroll/internal/employee"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/database"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenTypeBearer = "Bearer"

// EmployeeReader is the slice of the employee repository auth needs.
type EmployeeReader interface {
	FindByID(ctx context.Context, id string) (*employee.Employee, error)
}

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	GetMe(ctx context.Context, userID string) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	EnsureAdmin(ctx context.Context, email, password string) error
}

type service struct {
	repo      Repository
	employees EmployeeReader
	secret    []byte
	tokenTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(
	repo Repository,
	employees EmployeeReader,
	secret string,
	tokenTTL time.Duration,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &service{
		repo:      repo,
		employees: employees,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
		logger:    l,
		now:       time.Now,
	}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, autherrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, autherrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, autherrors.ErrUserInactive
	}

	token, err := s.generateToken(user)
	if err != nil {
		s.logger.Error("sign token failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, autherrors.ErrTokenGenerationFailed
	}

	return &LoginResponse{
		User:        mapToResponse(user),
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(s.tokenTTL / time.Second),
	}, nil
}

func (s *service) GetMe(ctx context.Context, userID string) (*AuthResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, autherrors.ErrInvalidUserID
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, autherrors.ErrUserNotFound
		}
		return nil, err
	}

	resp := mapToResponse(user)
	return &resp, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if !isValidRole(role) {
		return nil, autherrors.ErrInvalidRole
	}

	var employeeID *uuid.UUID
	if raw := strings.TrimSpace(req.EmployeeID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperror.InvalidField("employee_id")
		}
		if _, err := s.employees.FindByID(ctx, id.String()); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, autherrors.ErrEmployeeNotFound
			}
			return nil, err
		}
		employeeID = &id
	}
	if role == domain.RoleEmployee && employeeID == nil {
		return nil, autherrors.ErrEmployeeRequired
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		Name:       strings.TrimSpace(req.Name),
		Email:      req.Email,
		Password:   string(hashed),
		Role:       role,
		IsActive:   true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err, "") {
			return nil, autherrors.ErrEmailAlreadyExists
		}
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", role),
	)

	resp := mapToResponse(user)
	return &resp, nil
}

// EnsureAdmin creates the bootstrap admin account when no user owns email
// yet. An existing account is left untouched.
func (s *service) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	_, err = s.Register(ctx, RegisterRequest{
		Email:    email,
		Name:     "Administrator",
		Password: password,
		Role:     domain.RoleAdmin,
	})
	if errors.Is(err, autherrors.ErrEmailAlreadyExists) {
		return nil
	}
	return err
}

func (s *service) generateToken(user *User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenTTL).Unix(),
	}
	if user.EmployeeID != nil {
		claims["employee_id"] = user.EmployeeID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func isValidRole(role string) bool {
	switch role {
	case domain.RoleAdmin, domain.RoleHR, domain.RoleEmployee:
		return true
	}
	return false
}

func mapToResponse(u *User) AuthResponse {
	resp := AuthResponse{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
	if u.EmployeeID != nil {
		resp.EmployeeID = u.EmployeeID.String()
	}
	return resp
}
