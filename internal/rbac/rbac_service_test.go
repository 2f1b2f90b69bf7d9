package rbac

import (
	"testing"

	"go-payroll/internal/domain"
	rbacerrors "go-payroll/internal/rbac/errors"
	"go-payroll/internal/rbac/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()

	enforcer, err := infra.NewEnforcer()
	require.NoError(t, err)

	policy, err := DefaultPolicy()
	require.NoError(t, err)

	svc, err := NewService(enforcer, policy, zap.NewNop())
	require.NoError(t, err)
	return svc
}

func TestService_Enforce(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		role, resource, action string
		want                   bool
	}{
		{domain.RoleEmployee, "attendance", "check", true},
		{domain.RoleEmployee, "leave", "create", true},
		{domain.RoleEmployee, "leave", "cancel", true},
		{domain.RoleEmployee, "leave", "approve", false},
		{domain.RoleEmployee, "salary", "read", false},
		{domain.RoleEmployee, "employee", "read", false},
		{domain.RoleHR, "leave", "create", true},
		{domain.RoleHR, "leave", "approve", true},
		{domain.RoleHR, "salary", "generate", true},
		{domain.RoleHR, "salary", "delete", false},
		{domain.RoleHR, "employee", "delete", false},
		{domain.RoleAdmin, "salary", "delete", true},
		{domain.RoleAdmin, "employee", "delete", true},
		{domain.RoleAdmin, "attendance", "check", true},
		{domain.RoleAdmin, "rbac", "read", true},
		{"contractor", "leave", "read", false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.resource+":"+tt.action, func(t *testing.T) {
			allowed, err := svc.Enforce(domain.EnforceRequest{
				Role:     tt.role,
				Resource: tt.resource,
				Action:   tt.action,
			})
			assert.NoError(t, err)
			assert.Equal(t, tt.want, allowed)
		})
	}
}

func TestService_Enforce_RejectsBlankRequest(t *testing.T) {
	svc := newTestService(t)

	allowed, err := svc.Enforce(domain.EnforceRequest{Role: " ", Resource: "leave", Action: "read"})
	assert.False(t, allowed)
	assert.ErrorIs(t, err, rbacerrors.ErrInvalidEnforceRequest)
}

func TestService_GetRole_IncludesInheritedPermissions(t *testing.T) {
	svc := newTestService(t)

	role, err := svc.GetRole("HR")
	require.NoError(t, err)

	assert.Equal(t, domain.RoleHR, role.Name)
	assert.Contains(t, role.Permissions, "leave:approve")
	assert.Contains(t, role.Permissions, "leave:create")
	assert.Contains(t, role.Permissions, "attendance:check")
	assert.NotContains(t, role.Permissions, "rbac:read")
	assert.IsNonDecreasing(t, role.Permissions)
}

func TestService_GetRole_NotFound(t *testing.T) {
	svc := newTestService(t)

	role, err := svc.GetRole("owner")
	assert.Nil(t, role)
	assert.ErrorIs(t, err, rbacerrors.ErrRoleNotFound)
}

func TestService_ListRoles(t *testing.T) {
	svc := newTestService(t)

	roles, err := svc.ListRoles()
	require.NoError(t, err)

	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{domain.RoleEmployee, domain.RoleHR, domain.RoleAdmin}, names)
}

func TestParsePolicy(t *testing.T) {
	t.Run("unknown parent", func(t *testing.T) {
		_, err := ParsePolicy([]byte(`
roles:
  - name: hr
    inherits: [employee]
`))
		assert.ErrorContains(t, err, `inherits unknown role "employee"`)
	})

	t.Run("duplicate role", func(t *testing.T) {
		_, err := ParsePolicy([]byte(`
roles:
  - name: hr
  - name: hr
`))
		assert.ErrorContains(t, err, `duplicate role "hr"`)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := ParsePolicy([]byte(`
roles:
  - name: hr
    grants: {}
`))
		assert.Error(t, err)
	})

	t.Run("custom policy", func(t *testing.T) {
		policy, err := ParsePolicy([]byte(`
roles:
  - name: auditor
    permissions:
      salary: [read, export]
`))
		require.NoError(t, err)

		enforcer, err := infra.NewEnforcer()
		require.NoError(t, err)
		svc, err := NewService(enforcer, policy, zap.NewNop())
		require.NoError(t, err)

		allowed, err := svc.Enforce(domain.EnforceRequest{Role: "auditor", Resource: "salary", Action: "export"})
		assert.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = svc.Enforce(domain.EnforceRequest{Role: "auditor", Resource: "salary", Action: "pay"})
		assert.NoError(t, err)
		assert.False(t, allowed)
	})
}
