package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/api/dto"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/domain"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/service"
)

// ProfessorsHandler exposes CRUD for faculty profiles.
type ProfessorsHandler struct {
	content *service.ContentService
}

// NewProfessorsHandler constructs handler.
func NewProfessorsHandler(content *service.ContentService) *ProfessorsHandler {
	return &ProfessorsHandler{content: content}
}

func professorJSON(p *domain.Professor) fiber.Map {
	return fiber.Map{
		"id":        p.ID,
		"name":      p.Name,
		"title":     p.Title,
		"email":     p.Email,
		"bio":       p.Bio,
		"website":   p.Website,
		"createdAt": p.CreatedAt,
		"updatedAt": p.UpdatedAt,
	}
}

// List handles GET /api/professors.
func (h *ProfessorsHandler) List(c *fiber.Ctx) error {
	professors, err := h.content.ListProfessors(c.UserContext(), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	out := make([]fiber.Map, 0, len(professors))
	for _, p := range professors {
		out = append(out, professorJSON(p))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Get handles GET /api/professors/:id.
func (h *ProfessorsHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid id")
	}
	professor, err := h.content.GetProfessor(c.UserContext(), int64(id))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": professorJSON(professor)})
}

// Create handles POST /api/professors.
func (h *ProfessorsHandler) Create(c *fiber.Ctx) error {
	var req dto.ProfessorRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	professor := req.ToDomain(0)
	if err := h.content.CreateProfessor(c.UserContext(), professor); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": professorJSON(professor)})
}

// Update handles PUT /api/professors/:id.
func (h *ProfessorsHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid id")
	}
	var req dto.ProfessorRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	professor := req.ToDomain(int64(id))
	if err := h.content.UpdateProfessor(c.UserContext(), professor); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": professorJSON(professor)})
}

// Delete handles DELETE /api/professors/:id.
func (h *ProfessorsHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid id")
	}
	if err := h.content.DeleteProfessor(c.UserContext(), int64(id)); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
