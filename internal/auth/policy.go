package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// roleModel grants a subject every level it inherits through g.
const roleModel = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj
`

// RolePolicy answers "does role r meet level min" over the ordered
// hierarchy end-user < agent < admin.
type RolePolicy struct {
	enforcer *casbin.SyncedEnforcer
	logger   *zap.Logger
}

// NewRolePolicy loads the built-in role hierarchy.
func NewRolePolicy(logger *zap.Logger) (*RolePolicy, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m, err := model.NewModelFromString(roleModel)
	if err != nil {
		return nil, fmt.Errorf("load role model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}

	for _, role := range domain.Roles {
		if _, err := enforcer.AddPolicy(string(role), string(role)); err != nil {
			return nil, fmt.Errorf("add policy %s: %w", role, err)
		}
	}
	for i := len(domain.Roles) - 1; i > 0; i-- {
		if _, err := enforcer.AddGroupingPolicy(string(domain.Roles[i]), string(domain.Roles[i-1])); err != nil {
			return nil, fmt.Errorf("add grouping %s: %w", domain.Roles[i], err)
		}
	}

	return &RolePolicy{enforcer: enforcer, logger: logger}, nil
}

// Allows reports whether role is at least min. Unknown roles never pass.
func (p *RolePolicy) Allows(role, min domain.Role) bool {
	if !role.Valid() || !min.Valid() {
		return false
	}
	allowed, err := p.enforcer.Enforce(string(role), string(min))
	if err != nil {
		p.logger.Warn("role check failed", zap.String("role", string(role)), zap.String("min", string(min)), zap.Error(err))
		return false
	}
	return allowed
}

// IsStaff reports whether role is agent or above.
func (p *RolePolicy) IsStaff(role domain.Role) bool {
	return p.Allows(role, domain.RoleAgent)
}
