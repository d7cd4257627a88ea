package dto

import "github.com/iiitdCrypto/crypto-resource-manager/internal/domain"

// PermissionRequest grants or revokes a per-resource write grant.
type PermissionRequest struct {
	UserID   int64  `json:"userId"`
	Resource string `json:"resource"`
	CanWrite bool   `json:"canWrite"`
}

// ToDomain maps the request to a permission record.
func (r PermissionRequest) ToDomain() *domain.Permission {
	return &domain.Permission{
		UserID:   r.UserID,
		Resource: r.Resource,
		CanWrite: r.CanWrite,
	}
}

// PermissionResponse is the wire shape of a grant.
type PermissionResponse struct {
	UserID   int64  `json:"userId"`
	Resource string `json:"resource"`
	CanWrite bool   `json:"canWrite"`
}

// NewPermissionResponse maps a permission to the wire shape.
func NewPermissionResponse(perm *domain.Permission) PermissionResponse {
	return PermissionResponse{
		UserID:   perm.UserID,
		Resource: perm.Resource,
		CanWrite: perm.CanWrite,
	}
}
