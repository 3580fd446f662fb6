package middleware

import (
	"tidechain-backend/internal/infrastructure/metrics"
	"tidechain-backend/internal/pkg/constants"
	"tidechain-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthorizePermission checks the caller's role against PermissionRoles.
// Unconfigured permission -> 500; no principal -> 401; role mismatch -> 403.
// Roles are matched exactly: admin does not pass an ngo or buyer check.
func AuthorizePermission(permission string, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := GetClaims(c)
		if claims == nil {
			m.IncAuthRejection("unauthorized")
			return response.Unauthorized(c, "Unauthorized")
		}
		if _, ok := constants.PermissionRoles[permission]; !ok {
			return response.Error(c, "Permission configuration error", fiber.StatusInternalServerError, nil)
		}
		if !constants.AllowedRole(permission, claims.Role) {
			m.IncAuthRejection("forbidden")
			return response.Forbidden(c, "Forbidden")
		}
		return c.Next()
	}
}
