package projects

import (
	projectsvc "tidechain-backend/internal/application/projects"
	"tidechain-backend/internal/middleware"
	"tidechain-backend/internal/pkg/response"
	"tidechain-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *projectsvc.Service
}

// Create POST /api/v1/projects (ngo): register a pending project.
func (h *Handlers) Create(c *fiber.Ctx) error {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in projectsvc.CreateInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := validation.Struct(in); err != nil {
		return response.FromError(c, err)
	}
	id, err := h.Service.Create(c.UserContext(), claims.UserID, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Project created successfully", fiber.Map{"id": id})
}

// My GET /api/v1/projects/my (ngo): the caller's own projects, newest first.
func (h *Handlers) My(c *fiber.Ctx) error {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	list, err := h.Service.ListByOwner(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Projects fetched successfully", list)
}

// Verified GET /api/v1/projects/verified (buyer): projects open for purchase.
func (h *Handlers) Verified(c *fiber.Ctx) error {
	list, err := h.Service.ListVerified(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Verified projects fetched successfully", list)
}

// List GET /api/v1/admin/projects (admin): every project, newest first.
func (h *Handlers) List(c *fiber.Ctx) error {
	list, err := h.Service.ListAll(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Projects fetched successfully", list)
}

// Get GET /api/v1/admin/projects/:id (admin).
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, ok := projectID(c)
	if !ok {
		return response.Error(c, "Invalid project id", fiber.StatusBadRequest, nil)
	}
	p, err := h.Service.GetByID(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Project fetched successfully", p)
}

// UpdateStatus PUT /api/v1/admin/projects/:id/status (admin): verify or reject
// a project and optionally set its price and credit supply.
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	id, ok := projectID(c)
	if !ok {
		return response.Error(c, "Invalid project id", fiber.StatusBadRequest, nil)
	}
	var in projectsvc.UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	p, err := h.Service.Update(c.UserContext(), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Project updated successfully", p)
}

func projectID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}
