// Package service contains the application's business logic.
package service

import (
	"inkwell/internal/models"
)

// CanManage reports whether actor may manage target's account. It is the
// single authorization predicate for cross-user operations; handlers map a
// false result to 403 Forbidden.
//
// The rules, evaluated in order:
//
//  1. A non-superuser always manages their own account. Superusers are
//     deliberately excluded here so rule 3 catches them: a superuser cannot
//     act on any superuser account, their own included.
//  2. Managing someone else requires a privileged role.
//  3. A superuser never manages a superuser.
//  4. An admin who is not a superuser never manages another admin.
//  5. An admin who is not a superuser never manages a superuser.
//
// Everything else is allowed: an admin over regular users, and a superuser
// over any non-superuser — the superuser flag wins when an account carries
// both.
func CanManage(actor, target *models.User) bool {
	switch {
	case actor.ID == target.ID && !actor.IsSuperuser:
		return true
	case actor.ID != target.ID && !actor.IsAdmin && !actor.IsSuperuser:
		return false
	case actor.IsSuperuser && target.IsSuperuser:
		return false
	case actor.IsAdmin && !actor.IsSuperuser && target.IsAdmin:
		return false
	case actor.IsAdmin && !actor.IsSuperuser && target.IsSuperuser:
		return false
	default:
		return true
	}
}
