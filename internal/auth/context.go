package auth

import (
	"context"

	"proposaldesk-backend/internal/models"

	"github.com/google/uuid"
)

// --- Context Helper Functions ---

// GetUserIDFromContext retrieves the UserID (uuid.UUID) from the request context.
// Returns the ID and true if found, otherwise uuid.Nil and false.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetEmailFromContext retrieves the authenticated email from the request context.
func GetEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok
}

// GetRoleFromContext retrieves the identity role from the request context.
func GetRoleFromContext(ctx context.Context) (models.Role, bool) {
	role, ok := ctx.Value(RoleKey).(models.Role)
	return role, ok
}

// IdentityFromContext reassembles the full identity placed in the
// context by the JWT middleware. The bool is false when any part is
// missing, which means the request was not authenticated.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		return models.Identity{}, false
	}
	email, ok := GetEmailFromContext(ctx)
	if !ok {
		return models.Identity{}, false
	}
	role, ok := GetRoleFromContext(ctx)
	if !ok {
		return models.Identity{}, false
	}
	return models.Identity{UserID: userID, Email: email, Role: role}, true
}
