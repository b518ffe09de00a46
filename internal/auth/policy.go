package auth

import "acquisitions/internal/model"

// IsAdmin reports whether the actor holds the admin role.
func IsAdmin(actor Identity) bool {
	return actor.Role == model.RoleAdmin
}

// IsOwner reports whether the actor is the target user.
func IsOwner(actor Identity, targetID uint) bool {
	return actor.ID == targetID
}

// CanAccess is the self-or-admin rule used for update and delete.
func CanAccess(actor Identity, targetID uint) bool {
	return IsOwner(actor, targetID) || IsAdmin(actor)
}

// CanChangeRole gates the role field of an update payload.
func CanChangeRole(actor Identity) bool {
	return IsAdmin(actor)
}

// CanListUsers gates the full user listing.
func CanListUsers(actor Identity) bool {
	return IsAdmin(actor)
}
