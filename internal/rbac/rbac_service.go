package rbac

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go-payroll/internal/domain"
	rbacerrors "go-payroll/internal/rbac/errors"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(req domain.EnforceRequest) (bool, error)
	ListRoles() ([]domain.RoleResponse, error)
	GetRole(name string) (*domain.RoleResponse, error)
}

type service struct {
	enforcer *casbin.Enforcer
	roles    []RoleDefinition
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewService loads policy into enforcer. The enforcer is owned by the
// service afterwards.
func NewService(enforcer *casbin.Enforcer, policy *Policy, logger ...*zap.Logger) (Service, error) {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}

	s := &service{
		enforcer: enforcer,
		roles:    policy.Roles,
		logger:   l,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *service) load() error {
	s.enforcer.ClearPolicy()

	rules := 0
	for _, role := range s.roles {
		for _, parent := range role.Inherits {
			if _, err := s.enforcer.AddGroupingPolicy(role.Name, parent); err != nil {
				return fmt.Errorf("rbac: inherit %s from %s: %w", role.Name, parent, err)
			}
		}
		for _, rule := range role.rules() {
			if _, err := s.enforcer.AddPolicy(role.Name, rule[0], rule[1]); err != nil {
				return fmt.Errorf("rbac: grant %s %s:%s: %w", role.Name, rule[0], rule[1], err)
			}
			rules++
		}
	}

	s.logger.Info("rbac policy loaded",
		zap.Int("roles", len(s.roles)),
		zap.Int("rules", rules),
	)
	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	req.Role = strings.TrimSpace(req.Role)
	req.Resource = strings.TrimSpace(req.Resource)
	req.Action = strings.TrimSpace(req.Action)
	if req.Role == "" || req.Resource == "" || req.Action == "" {
		return false, rbacerrors.ErrInvalidEnforceRequest
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed, err := s.enforcer.Enforce(req.Role, req.Resource, req.Action)
	if err != nil {
		return false, err
	}

	s.logger.Debug("rbac enforce",
		zap.String("role", req.Role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func (s *service) ListRoles() ([]domain.RoleResponse, error) {
	out := make([]domain.RoleResponse, 0, len(s.roles))
	for _, role := range s.roles {
		resp, err := s.describe(role)
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

func (s *service) GetRole(name string) (*domain.RoleResponse, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, role := range s.roles {
		if role.Name == name {
			return s.describe(role)
		}
	}
	return nil, rbacerrors.ErrRoleNotFound
}

// describe lists the effective permissions of role, inherited ones included.
func (s *service) describe(role RoleDefinition) (*domain.RoleResponse, error) {
	s.mu.RLock()
	perms, err := s.enforcer.GetImplicitPermissionsForUser(role.Name)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(perms))
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		if len(p) < 3 {
			continue
		}
		key := p[1] + ":" + p[2]
		if !seen[key] {
			seen[key] = true
			names = append(names, key)
		}
	}
	sort.Strings(names)

	return &domain.RoleResponse{
		Name:        role.Name,
		Description: role.Description,
		Permissions: names,
	}, nil
}
