package rbac

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v2"
)

//go:embed policy.yaml
var defaultPolicy []byte

type Policy struct {
	Roles []RoleDefinition `yaml:"roles"`
}

type RoleDefinition struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description"`
	Inherits    []string            `yaml:"inherits"`
	Permissions map[string][]string `yaml:"permissions"`
}

// DefaultPolicy returns the policy compiled into the binary.
func DefaultPolicy() (*Policy, error) {
	return ParsePolicy(defaultPolicy)
}

func ParsePolicy(raw []byte) (*Policy, error) {
	var p Policy
	if err := yaml.UnmarshalStrict(raw, &p); err != nil {
		return nil, fmt.Errorf("parse rbac policy: %w", err)
	}

	known := make(map[string]bool, len(p.Roles))
	for _, r := range p.Roles {
		if r.Name == "" {
			return nil, fmt.Errorf("parse rbac policy: role without name")
		}
		if known[r.Name] {
			return nil, fmt.Errorf("parse rbac policy: duplicate role %q", r.Name)
		}
		known[r.Name] = true
	}
	for _, r := range p.Roles {
		for _, parent := range r.Inherits {
			if !known[parent] {
				return nil, fmt.Errorf("parse rbac policy: role %q inherits unknown role %q", r.Name, parent)
			}
		}
	}
	return &p, nil
}

// rules flattens a role's own permissions into resource:action pairs in a
// stable order.
func (r RoleDefinition) rules() [][2]string {
	resources := make([]string, 0, len(r.Permissions))
	for res := range r.Permissions {
		resources = append(resources, res)
	}
	sort.Strings(resources)

	var out [][2]string
	for _, res := range resources {
		for _, act := range r.Permissions[res] {
			out = append(out, [2]string{res, act})
		}
	}
	return out
}
