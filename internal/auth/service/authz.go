package service

import "github.com/aussiebroadwan/webtemplate/internal/auth/domain"

// RequireAdmin fails with ErrForbidden unless u has the admin role.
func RequireAdmin(u domain.User) error {
	if !u.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// requireOwner fails with denied unless actor owns ownerID.
func requireOwner(actor domain.User, ownerID int64, denied error) error {
	if actor.ID != ownerID {
		return denied
	}
	return nil
}
