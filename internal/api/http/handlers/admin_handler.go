package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/api/dto"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/observability"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/repository"
	apperrors "github.com/iiitdCrypto/crypto-resource-manager/pkg/util"
)

// AdminHandler exposes audit, metrics and permission-grant endpoints
// for administrators.
type AdminHandler struct {
	audit   repository.AuditRepository
	perms   repository.PermissionRepository
	metrics *observability.Metrics
}

// NewAdminHandler constructs handler.
func NewAdminHandler(audit repository.AuditRepository, perms repository.PermissionRepository, metrics *observability.Metrics) *AdminHandler {
	return &AdminHandler{audit: audit, perms: perms, metrics: metrics}
}

// Audit handles GET /api/audit.
func (h *AdminHandler) Audit(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)

	entries, err := h.audit.ListRecent(c.UserContext(), limit)
	if err != nil {
		return apperrors.MapError(err)
	}

	out := make([]fiber.Map, 0, len(entries))
	for _, entry := range entries {
		row := fiber.Map{
			"id":        entry.ID,
			"table":     entry.TableName,
			"rowId":     entry.RowID,
			"action":    entry.Action,
			"changedAt": entry.ChangedAt,
		}
		if len(entry.OldData) > 0 {
			row["oldData"] = json.RawMessage(entry.OldData)
		}
		out = append(out, row)
	}
	return c.JSON(fiber.Map{"data": out})
}

// GrantPermission handles POST /api/permissions. It upserts a write
// grant; canWrite=false revokes without deleting the row, keeping the
// audit trigger's trail intact.
func (h *AdminHandler) GrantPermission(c *fiber.Ctx) error {
	var req dto.PermissionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.UserID <= 0 {
		return apperrors.NewValidationError("userId required", nil)
	}
	req.Resource = strings.TrimSpace(strings.ToLower(req.Resource))
	if req.Resource == "" {
		return apperrors.NewValidationError("resource required", nil)
	}

	if err := h.perms.Upsert(c.UserContext(), req.ToDomain()); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(dto.MessageResponse{Message: "permission saved"})
}

// ListPermissions handles GET /api/permissions/:userId.
func (h *AdminHandler) ListPermissions(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userId")
	if err != nil || userID <= 0 {
		return apperrors.NewValidationError("invalid user id", nil)
	}

	perms, err := h.perms.ListByUser(c.UserContext(), int64(userID))
	if err != nil {
		return apperrors.MapError(err)
	}

	out := make([]dto.PermissionResponse, 0, len(perms))
	for _, perm := range perms {
		out = append(out, dto.NewPermissionResponse(perm))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Metrics handles GET /api/metrics.
func (h *AdminHandler) Metrics(c *fiber.Ctx) error {
	requests, errs := h.metrics.Snapshot()
	return c.JSON(fiber.Map{
		"requests": requests,
		"errors":   errs,
	})
}
