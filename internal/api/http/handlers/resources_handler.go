package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/api/dto"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/domain"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/service"
)

// ResourcesHandler exposes CRUD for study resources.
type ResourcesHandler struct {
	content *service.ContentService
}

// NewResourcesHandler constructs handler.
func NewResourcesHandler(content *service.ContentService) *ResourcesHandler {
	return &ResourcesHandler{content: content}
}

func resourceJSON(r *domain.Resource) fiber.Map {
	return fiber.Map{
		"id":          r.ID,
		"title":       r.Title,
		"description": r.Description,
		"kind":        r.Kind,
		"url":         r.URL,
		"createdAt":   r.CreatedAt,
		"updatedAt":   r.UpdatedAt,
	}
}

// List handles GET /api/resources.
func (h *ResourcesHandler) List(c *fiber.Ctx) error {
	resources, err := h.content.ListResources(c.UserContext(), c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	out := make([]fiber.Map, 0, len(resources))
	for _, r := range resources {
		out = append(out, resourceJSON(r))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Get handles GET /api/resources/:id.
func (h *ResourcesHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid id")
	}
	resource, err := h.content.GetResource(c.UserContext(), int64(id))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": resourceJSON(resource)})
}

// Create handles POST /api/resources.
func (h *ResourcesHandler) Create(c *fiber.Ctx) error {
	var req dto.ResourceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	resource := req.ToDomain(0)
	if err := h.content.CreateResource(c.UserContext(), resource); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": resourceJSON(resource)})
}

// Update handles PUT /api/resources/:id.
func (h *ResourcesHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid id")
	}
	var req dto.ResourceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	resource := req.ToDomain(int64(id))
	if err := h.content.UpdateResource(c.UserContext(), resource); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": resourceJSON(resource)})
}

// Delete handles DELETE /api/resources/:id.
func (h *ResourcesHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid id")
	}
	if err := h.content.DeleteResource(c.UserContext(), int64(id)); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
