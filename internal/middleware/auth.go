package middleware

import (
	"strings"

	"tidechain-backend/internal/application/auth"
	"tidechain-backend/internal/infrastructure/metrics"
	"tidechain-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const claimsLocal = "claims"

// TokenVerifier turns a bearer token into claims.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token with 401 before
// any later handler runs. The claims are trusted as-is; no store is consulted.
func RequireAuth(verifier TokenVerifier, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			m.IncAuthRejection("unauthorized")
			return response.Unauthorized(c, "Unauthorized")
		}
		claims, err := verifier.Verify(token)
		if err != nil {
			m.IncAuthRejection("unauthorized")
			log.Debug().Str("trace_id", GetTraceID(c)).Err(err).Msg("bearer token rejected")
			return response.Unauthorized(c, err.Error())
		}
		c.Locals(claimsLocal, claims)
		return c.Next()
	}
}

// GetClaims returns the authenticated principal (nil before RequireAuth).
func GetClaims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(claimsLocal).(*auth.Claims)
	return claims
}

// SetClaims stores a principal on the request. Used by tests and RequireAuth.
func SetClaims(c *fiber.Ctx, claims *auth.Claims) {
	c.Locals(claimsLocal, claims)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
