package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/api/http/handlers"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/auth"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Admin          *handlers.AdminHandler
	Articles       *handlers.ArticlesHandler
	Events         *handlers.EventsHandler
	Resources      *handlers.ResourcesHandler
	Professors     *handlers.ProfessorsHandler
	Projects       *handlers.ProjectsHandler
	AuthMiddleware *auth.AuthMiddleware
	Grants         auth.GrantSource
}

// RegisterRoutes wires HTTP routes. Reads are public; mutations are
// role-gated behind the token middleware.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	api := app.Group("/api")

	api.Get("/health", cfg.Health.Status)
	api.Get("/health/ready", cfg.Health.Ready)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/verify/:token", cfg.Auth.VerifyEmail)
	authGroup.Post("/verify-otp", cfg.Auth.VerifyOTP)
	authGroup.Post("/resend-otp", cfg.Auth.ResendOTP)
	authGroup.Post("/forgot-password", cfg.Auth.ForgotPassword)
	authGroup.Post("/reset-password", cfg.Auth.ResetPassword)

	api.Get("/users/profile", cfg.AuthMiddleware.Handle, cfg.Users.Profile)

	api.Get("/audit", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Admin.Audit)
	api.Get("/metrics", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Admin.Metrics)
	api.Post("/permissions", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Admin.GrantPermission)
	api.Get("/permissions/:userId", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Admin.ListPermissions)

	registerCRUD(api, "/articles", crudHandlers{
		List: cfg.Articles.List, Get: cfg.Articles.Get,
		Create: cfg.Articles.Create, Update: cfg.Articles.Update, Delete: cfg.Articles.Delete,
	}, cfg.AuthMiddleware, cfg.Grants, domain.RoleAdmin)

	registerCRUD(api, "/events", crudHandlers{
		List: cfg.Events.List, Get: cfg.Events.Get,
		Create: cfg.Events.Create, Update: cfg.Events.Update, Delete: cfg.Events.Delete,
	}, cfg.AuthMiddleware, cfg.Grants, domain.RoleAdmin)

	registerCRUD(api, "/resources", crudHandlers{
		List: cfg.Resources.List, Get: cfg.Resources.Get,
		Create: cfg.Resources.Create, Update: cfg.Resources.Update, Delete: cfg.Resources.Delete,
	}, cfg.AuthMiddleware, cfg.Grants, domain.RoleAdmin)

	registerCRUD(api, "/professors", crudHandlers{
		List: cfg.Professors.List, Get: cfg.Professors.Get,
		Create: cfg.Professors.Create, Update: cfg.Professors.Update, Delete: cfg.Professors.Delete,
	}, cfg.AuthMiddleware, cfg.Grants, domain.RoleAuthorized)

	registerCRUD(api, "/projects", crudHandlers{
		List: cfg.Projects.List, Get: cfg.Projects.Get,
		Create: cfg.Projects.Create, Update: cfg.Projects.Update, Delete: cfg.Projects.Delete,
	}, cfg.AuthMiddleware, cfg.Grants, domain.RoleAuthorized)
}

type crudHandlers struct {
	List   fiber.Handler
	Get    fiber.Handler
	Create fiber.Handler
	Update fiber.Handler
	Delete fiber.Handler
}

func registerCRUD(api fiber.Router, prefix string, h crudHandlers, mw *auth.AuthMiddleware, grants auth.GrantSource, writeRole domain.Role) {
	group := api.Group(prefix)
	group.Get("/", h.List)
	group.Get("/:id", h.Get)

	resource := strings.TrimPrefix(prefix, "/")
	protected := group.Group("", mw.Handle, auth.RequireWriteAccess(writeRole, resource, grants))
	protected.Post("/", h.Create)
	protected.Put("/:id", h.Update)
	protected.Delete("/:id", h.Delete)
}
