// Package access decides which students, and which prediction history, a caller may see or manage.
// Admins see everything; regular users only what they created.
package access

import (
	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/user"
)

// Scope returns the creator filter to apply to the caller's queries.
// An empty Scope means no filtering.
func Scope(id user.Identity) string {
	if id.IsAdmin() {
		return ""
	}
	return id.Username
}

// CanManage reports whether the caller may read, update, delete or predict
// for a record created by createdBy.
func CanManage(id user.Identity, createdBy string) bool {
	if !id.IsAuthenticated() {
		return false
	}
	return id.IsAdmin() || id.Username == createdBy
}

// Authenticated fails with core.ErrUnauthorized for anonymous callers.
func Authenticated(id user.Identity) error {
	if !id.IsAuthenticated() {
		return core.ErrUnauthorized
	}
	return nil
}

// Authorize fails unless the caller may manage a record created by createdBy.
func Authorize(id user.Identity, createdBy string) error {
	if err := Authenticated(id); err != nil {
		return err
	}
	if !CanManage(id, createdBy) {
		return core.ErrForbidden
	}
	return nil
}

// AdminOnly fails unless the caller is an admin.
func AdminOnly(id user.Identity) error {
	if err := Authenticated(id); err != nil {
		return err
	}
	if !id.IsAdmin() {
		return core.ErrForbidden
	}
	return nil
}
