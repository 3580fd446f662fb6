package auth

import (
	authsvc "tidechain-backend/internal/application/auth"
	"tidechain-backend/internal/middleware"
	"tidechain-backend/internal/pkg/response"
	"tidechain-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Service *authsvc.Service
}

// Register POST /api/v1/auth/register: create an ngo or buyer account and return a token.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var in authsvc.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := validation.Struct(in); err != nil {
		return response.FromError(c, err)
	}
	session, err := h.Service.Register(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	log.Info().Str("trace_id", middleware.GetTraceID(c)).Uint("user_id", session.User.ID).Str("role", session.User.Role).Msg("user registered")
	return response.SuccessCreated(c, "Registration successful", session)
}

// Login POST /api/v1/auth/login: verify credentials and return a token.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var in authsvc.LoginInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, authsvc.ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}
	session, err := h.Service.Login(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Login successful", session)
}

// Me GET /api/v1/auth/me: the caller's verified claims.
func (h *Handlers) Me(c *fiber.Ctx) error {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	return response.Success(c, "Authenticated", fiber.Map{
		"user": fiber.Map{
			"id":    claims.UserID,
			"email": claims.Email,
			"role":  claims.Role,
		},
	})
}
