package middleware

import (
	common_api "leadcrm/internal/common/api"
	common_models "leadcrm/internal/common/models"

	"github.com/gofiber/fiber/v2"
)

// PermissionGate is the per-request authorization decision. Implemented by the
// auth feature's Gate; adapted in via fx like the resolver.
type PermissionGate interface {
	Check(p *common_models.Principal, roleNames []string, keys ...string) error
}

// RequirePermission allows the request iff the gate grants one of the given
// permission keys.
func RequirePermission(gate PermissionGate, keys ...string) fiber.Handler {
	return RequireRolesOrPermission(gate, nil, keys...)
}

// RequireRolesOrPermission additionally accepts a coarse role-name allow-list
// evaluated before the fine-grained key check (legacy endpoints).
func RequireRolesOrPermission(gate PermissionGate, roleNames []string, keys ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := PrincipalFromCtx(c)
		if principal == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		if err := gate.Check(principal, roleNames, keys...); err != nil {
			return common_api.RespondError(c, nil, err)
		}

		return c.Next()
	}
}
