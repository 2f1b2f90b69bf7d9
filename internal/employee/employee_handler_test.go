package employee_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-payroll/internal/employee"
	employeeerrors "go-payroll/internal/employee/errors"
	"go-payroll/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEmployeeService struct {
	CreateFn     func(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error)
	GetAllFn     func(ctx context.Context, filter employee.EmployeeQueryFilter) ([]employee.EmployeeResponse, int64, error)
	GetOptionsFn func(ctx context.Context) ([]employee.EmployeeOptionResponse, error)
	GetByIDFn    func(ctx context.Context, id string) (employee.EmployeeResponse, error)
	UpdateFn     func(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error)
	DeleteFn     func(ctx context.Context, id string) error
}

func (f *fakeEmployeeService) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	return f.CreateFn(ctx, req)
}
func (f *fakeEmployeeService) GetAll(ctx context.Context, filter employee.EmployeeQueryFilter) ([]employee.EmployeeResponse, int64, error) {
	return f.GetAllFn(ctx, filter)
}
func (f *fakeEmployeeService) GetOptions(ctx context.Context) ([]employee.EmployeeOptionResponse, error) {
	return f.GetOptionsFn(ctx)
}
func (f *fakeEmployeeService) GetByID(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	return f.GetByIDFn(ctx, id)
}
func (f *fakeEmployeeService) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	return f.UpdateFn(ctx, id, req)
}
func (f *fakeEmployeeService) Delete(ctx context.Context, id string) error {
	return f.DeleteFn(ctx, id)
}

type apiEnvelope struct {
	Ok   bool            `json:"ok"`
	Data json.RawMessage `json:"data"`
	Meta *struct {
		Total      int64 `json:"total"`
		TotalPages int   `json:"totalPages"`
		Page       int   `json:"page"`
		PageSize   int   `json:"pageSize"`
	} `json:"meta"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func decode(t *testing.T, w *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

const createBody = `{"full_name":"Jane Doe","email":"jane@example.com","hire_date":"2023-01-15","salary":3000}`

func TestEmployeeHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"created", createBody, nil, http.StatusCreated, ""},
		{"missing full_name", `{"email":"jane@example.com","hire_date":"2023-01-15"}`, nil, http.StatusBadRequest, apperror.CodeValidation},
		{"bad salary type", `{"full_name":"J","email":"j@example.com","hire_date":"2023-01-15","salary_type":"weekly"}`, nil, http.StatusBadRequest, apperror.CodeValidation},
		{"duplicate email", createBody, employeeerrors.ErrEmployeeAlreadyExists, http.StatusConflict, apperror.CodeConflict},
		{"unexpected error", createBody, errors.New("db down"), http.StatusInternalServerError, apperror.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEmployeeService{
				CreateFn: func(_ context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
					if tt.serviceErr != nil {
						return employee.EmployeeResponse{}, tt.serviceErr
					}
					return employee.EmployeeResponse{ID: uuid.NewString(), FullName: req.FullName, EmployeeNumber: "EMP-000001"}, nil
				},
			}
			h := employee.NewHandler(svc, zap.NewNop())
			r := setupRouter()
			r.POST("/employees", h.Create)

			req := httptest.NewRequest(http.MethodPost, "/employees", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			env := decode(t, w)
			if tt.wantCode == "" {
				assert.True(t, env.Ok)
				return
			}
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
			assert.NotContains(t, w.Body.String(), "db down")
		})
	}
}

func TestEmployeeHandler_GetAll(t *testing.T) {
	var got employee.EmployeeQueryFilter
	svc := &fakeEmployeeService{
		GetAllFn: func(_ context.Context, filter employee.EmployeeQueryFilter) ([]employee.EmployeeResponse, int64, error) {
			got = filter
			return []employee.EmployeeResponse{{FullName: "Jane Doe"}}, 21, nil
		},
	}
	h := employee.NewHandler(svc, zap.NewNop())
	r := setupRouter()
	r.GET("/employees", h.GetAll)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/employees?q=%20jane%20&status=ACTIVE&page=2&limit=10", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, employee.EmployeeQueryFilter{Q: "jane", Status: "active", Page: 2, Limit: 10}, got)

	env := decode(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(21), env.Meta.Total)
	assert.Equal(t, 3, env.Meta.TotalPages)
	assert.Equal(t, 2, env.Meta.Page)
}

func TestEmployeeHandler_GetOptions(t *testing.T) {
	svc := &fakeEmployeeService{
		GetOptionsFn: func(context.Context) ([]employee.EmployeeOptionResponse, error) {
			return []employee.EmployeeOptionResponse{{ID: "1", EmployeeNumber: "EMP-000001", FullName: "Jane"}}, nil
		},
	}
	h := employee.NewHandler(svc, zap.NewNop())
	r := setupRouter()
	r.GET("/employees/options", h.GetOptions)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/employees/options", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "EMP-000001")
}

func TestEmployeeHandler_GetByID(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"found", nil, http.StatusOK},
		{"invalid id", employeeerrors.ErrInvalidEmployeeID, http.StatusBadRequest},
		{"not found", employeeerrors.ErrEmployeeNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEmployeeService{
				GetByIDFn: func(_ context.Context, id string) (employee.EmployeeResponse, error) {
					assert.Equal(t, "abc", id)
					return employee.EmployeeResponse{ID: id}, tt.err
				},
			}
			h := employee.NewHandler(svc, zap.NewNop())
			r := setupRouter()
			r.GET("/employees/:id", h.GetByID)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/employees/abc", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestEmployeeHandler_Update(t *testing.T) {
	id := uuid.NewString()
	svc := &fakeEmployeeService{
		UpdateFn: func(_ context.Context, gotID string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
			assert.Equal(t, id, gotID)
			assert.Equal(t, employee.SalaryTypeHourly, req.SalaryType)
			return employee.EmployeeResponse{ID: gotID, SalaryType: req.SalaryType, Salary: req.Salary}, nil
		},
	}
	h := employee.NewHandler(svc, zap.NewNop())
	r := setupRouter()
	r.PUT("/employees/:id", h.Update)

	t.Run("success", func(t *testing.T) {
		body := `{"full_name":"Jane","email":"jane@example.com","hire_date":"2023-01-15","salary":25,"salary_type":"hourly","status":"active"}`
		req := httptest.NewRequest(http.MethodPut, "/employees/"+id, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("status required", func(t *testing.T) {
		body := `{"full_name":"Jane","email":"jane@example.com","hire_date":"2023-01-15","salary":25,"salary_type":"hourly"}`
		req := httptest.NewRequest(http.MethodPut, "/employees/"+id, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestEmployeeHandler_Delete(t *testing.T) {
	svc := &fakeEmployeeService{
		DeleteFn: func(_ context.Context, id string) error {
			if id == "missing" {
				return employeeerrors.ErrEmployeeNotFound
			}
			return nil
		},
	}
	h := employee.NewHandler(svc, zap.NewNop())
	r := setupRouter()
	r.DELETE("/employees/:id", h.Delete)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/employees/some-id", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"data":{"deleted":true}}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/employees/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
