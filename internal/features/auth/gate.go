package auth

import (
	common_models "leadcrm/internal/common/models"
	"leadcrm/pkg/apperr"

	"go.uber.org/zap"
)

// Gate is the per-request authorization decision. The precedence is fixed:
//
//  1. system-admin principals are allowed unconditionally;
//  2. a coarse role-name allow-list (legacy endpoints) admits by
//     case-insensitive name match;
//  3. any principal with a non-empty permission set falls through to the
//     fine-grained key check even when the coarse check failed;
//  4. the request is allowed iff the principal's set intersects the required
//     keys.
//
// An empty required-key set is a configuration error and fails closed.
type Gate interface {
	Check(p *common_models.Principal, roleNames []string, keys ...string) error
}

type GateImpl struct {
	logger *zap.Logger
}

func NewGate(logger *zap.Logger) Gate {
	return &GateImpl{logger: logger}
}

func (g *GateImpl) Check(p *common_models.Principal, roleNames []string, keys ...string) error {
	if p == nil {
		return apperr.Forbidden("missing principal")
	}

	if p.IsSystemAdmin {
		return nil
	}

	if len(roleNames) > 0 && p.HasRoleName(roleNames) {
		return nil
	}

	if len(keys) == 0 {
		// Nothing to intersect against: a route was registered without a
		// permission requirement. Deny rather than silently allow.
		g.logger.Error("authorization check with empty required key set",
			zap.String("role", p.RoleName))
		return apperr.Forbidden("no permission requirement configured for this endpoint")
	}

	if len(p.Permissions) == 0 {
		return apperr.Forbidden("missing required permission", keys...)
	}

	for _, key := range keys {
		if p.HasPermission(key) {
			return nil
		}
	}

	return apperr.Forbidden("missing required permission", keys...)
}
