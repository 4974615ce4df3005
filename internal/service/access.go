package service

import (
	"strings"

	"fittlyfans/internal/middleware"
	"fittlyfans/internal/models"
)

// requireActor rejects anonymous callers.
func requireActor(actor *middleware.Principal) error {
	if actor == nil {
		return models.NewUnauthorizedError("authentication required")
	}
	return nil
}

// requireSelfOrAdmin allows the owner of ownerID or an admin.
func requireSelfOrAdmin(actor *middleware.Principal, ownerID uint, what string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.CanActFor(ownerID) {
		return models.NewForbiddenError("not allowed to modify this " + what)
	}
	return nil
}

// requireRole allows callers holding one of roles. Admins always pass.
func requireRole(actor *middleware.Principal, roles ...models.Role) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if actor.IsAdmin() || actor.HasRole(roles...) {
		return nil
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return models.NewForbiddenError("requires role: " + strings.Join(names, " or "))
}
