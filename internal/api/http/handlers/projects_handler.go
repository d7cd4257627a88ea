package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/api/dto"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/domain"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/service"
)

// ProjectsHandler exposes CRUD for research projects.
type ProjectsHandler struct {
	content *service.ContentService
}

// NewProjectsHandler constructs handler.
func NewProjectsHandler(content *service.ContentService) *ProjectsHandler {
	return &ProjectsHandler{content: content}
}

func projectJSON(p *domain.Project) fiber.Map {
	return fiber.Map{
		"id":          p.ID,
		"title":       p.Title,
		"abstract":    p.Abstract,
		"professorId": p.ProfessorID,
		"year":        p.Year,
		"createdAt":   p.CreatedAt,
		"updatedAt":   p.UpdatedAt,
	}
}

// List handles GET /api/projects.
func (h *ProjectsHandler) List(c *fiber.Ctx) error {
	projects, err := h.content.ListProjects(c.UserContext(), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	out := make([]fiber.Map, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectJSON(p))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Get handles GET /api/projects/:id.
func (h *ProjectsHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid id")
	}
	project, err := h.content.GetProject(c.UserContext(), int64(id))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectJSON(project)})
}

// Create handles POST /api/projects.
func (h *ProjectsHandler) Create(c *fiber.Ctx) error {
	var req dto.ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	project := req.ToDomain(0)
	if err := h.content.CreateProject(c.UserContext(), project); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": projectJSON(project)})
}

// Update handles PUT /api/projects/:id.
func (h *ProjectsHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid id")
	}
	var req dto.ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	project := req.ToDomain(int64(id))
	if err := h.content.UpdateProject(c.UserContext(), project); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectJSON(project)})
}

// Delete handles DELETE /api/projects/:id.
func (h *ProjectsHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid id")
	}
	if err := h.content.DeleteProject(c.UserContext(), int64(id)); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
