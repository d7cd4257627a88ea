package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/api/dto"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/domain"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/service"
)

// ArticlesHandler exposes CRUD for articles.
type ArticlesHandler struct {
	content *service.ContentService
}

// NewArticlesHandler constructs handler.
func NewArticlesHandler(content *service.ContentService) *ArticlesHandler {
	return &ArticlesHandler{content: content}
}

func articleJSON(a *domain.Article) fiber.Map {
	return fiber.Map{
		"id":          a.ID,
		"title":       a.Title,
		"summary":     a.Summary,
		"content":     a.Content,
		"author":      a.Author,
		"coverUrl":    a.CoverURL,
		"publishedAt": a.PublishedAt,
		"createdAt":   a.CreatedAt,
		"updatedAt":   a.UpdatedAt,
	}
}

// List handles GET /api/articles.
func (h *ArticlesHandler) List(c *fiber.Ctx) error {
	articles, err := h.content.ListArticles(c.UserContext(), c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	out := make([]fiber.Map, 0, len(articles))
	for _, a := range articles {
		out = append(out, articleJSON(a))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Get handles GET /api/articles/:id.
func (h *ArticlesHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid id")
	}
	article, err := h.content.GetArticle(c.UserContext(), int64(id))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": articleJSON(article)})
}

// Create handles POST /api/articles.
func (h *ArticlesHandler) Create(c *fiber.Ctx) error {
	var req dto.ArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	article := req.ToDomain(0)
	if err := h.content.CreateArticle(c.UserContext(), article); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": articleJSON(article)})
}

// Update handles PUT /api/articles/:id.
func (h *ArticlesHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid id")
	}
	var req dto.ArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	article := req.ToDomain(int64(id))
	if err := h.content.UpdateArticle(c.UserContext(), article); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": articleJSON(article)})
}

// Delete handles DELETE /api/articles/:id.
func (h *ArticlesHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid id")
	}
	if err := h.content.DeleteArticle(c.UserContext(), int64(id)); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
