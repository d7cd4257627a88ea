package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/api/dto"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/domain"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/service"
)

// EventsHandler exposes CRUD for event listings.
type EventsHandler struct {
	content *service.ContentService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(content *service.ContentService) *EventsHandler {
	return &EventsHandler{content: content}
}

func eventJSON(e *domain.Event) fiber.Map {
	return fiber.Map{
		"id":          e.ID,
		"title":       e.Title,
		"description": e.Description,
		"location":    e.Location,
		"startsAt":    e.StartsAt,
		"endsAt":      e.EndsAt,
		"createdAt":   e.CreatedAt,
		"updatedAt":   e.UpdatedAt,
	}
}

// List handles GET /api/events.
func (h *EventsHandler) List(c *fiber.Ctx) error {
	listings, err := h.content.ListEvents(c.UserContext(), c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	out := make([]fiber.Map, 0, len(listings))
	for _, e := range listings {
		out = append(out, eventJSON(e))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Get handles GET /api/events/:id.
func (h *EventsHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid id")
	}
	event, err := h.content.GetEvent(c.UserContext(), int64(id))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventJSON(event)})
}

// Create handles POST /api/events.
func (h *EventsHandler) Create(c *fiber.Ctx) error {
	var req dto.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	event := req.ToDomain(0)
	if err := h.content.CreateEvent(c.UserContext(), event); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": eventJSON(event)})
}

// Update handles PUT /api/events/:id.
func (h *EventsHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid id")
	}
	var req dto.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	event := req.ToDomain(int64(id))
	if err := h.content.UpdateEvent(c.UserContext(), event); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventJSON(event)})
}

// Delete handles DELETE /api/events/:id.
func (h *EventsHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid id")
	}
	if err := h.content.DeleteEvent(c.UserContext(), int64(id)); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
