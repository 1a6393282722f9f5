// utils/authz.go
package utils

import (
	"github.com/iabigrejinha/iab_finance_backend/models"
)

// Movement actions accepted by CanManageMovement.
const (
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// HasPermission decides whether the user holds the named permission,
// optionally scoped to a category. Evaluation order:
//
//  1. no user: deny
//  2. root/admin: allow unconditionally, stored flags and grants ignored
//  3. role-independent flags (manage users/reports/categories): stored flag
//  4. category-scoped flags with a category: stored flag AND category grant
//  5. category-scoped flags without a category: stored flag alone
//
// Rule 5 is a deliberate narrowing used only for coarse gating (method-level
// middleware, UI affordance). Mutations on a concrete movement always go
// through CanManageMovement, which supplies the category and takes rule 4.
func HasPermission(user *models.User, flag models.PermissionFlag, category string) bool {
	if user == nil {
		return false
	}
	if user.Role.Elevated() {
		return true
	}

	granted := user.Permissions.Flag(flag)
	if !flag.CategoryScoped() {
		return granted
	}
	if category != "" {
		return granted && user.Permissions.HasCategory(category)
	}
	return granted
}

// CanAccessCategory decides whether the user may see the category at all.
// When the full category list is available, viewers are resolved against
// isSystem/isPublic directly; otherwise the user's grant set is consulted
// (viewer grants are recomputed to exactly the system+public set at session
// resolution time, so both paths agree).
func CanAccessCategory(user *models.User, categoryID string, allCategories []models.Category) bool {
	if user == nil {
		return false
	}
	if user.Role.Elevated() {
		return true
	}
	if user.Role == models.RoleViewer && allCategories != nil {
		for _, c := range allCategories {
			if c.ID == categoryID {
				return c.IsSystem || c.IsPublic
			}
		}
		return false
	}
	return user.Permissions.HasCategory(categoryID)
}

// AccessibleCategories filters the full category list to what the user may
// see. Viewers get only system/public categories. Every other role sees the
// full list: per-category restriction for editors is enforced on individual
// mutations, and the UI renders ungranted categories as locked rather than
// hiding them.
func AccessibleCategories(user *models.User, all []models.Category) []models.Category {
	if user == nil {
		return nil
	}
	if user.Role == models.RoleViewer {
		visible := make([]models.Category, 0, len(all))
		for _, c := range all {
			if c.IsSystem || c.IsPublic {
				visible = append(visible, c)
			}
		}
		return visible
	}
	return all
}

// CanManageMovement decides whether the user may perform the action on the
// movement. Category access is required first; the permission check then
// always carries the movement's category, so the narrowed rule 5 of
// HasPermission is never taken on this path.
func CanManageMovement(user *models.User, movement *models.Movement, action string) bool {
	if user == nil || movement == nil {
		return false
	}
	if !CanAccessCategory(user, movement.Category, nil) {
		return false
	}
	switch action {
	case ActionCreate:
		return HasPermission(user, models.PermCreate, movement.Category)
	case ActionEdit:
		return HasPermission(user, models.PermEdit, movement.Category)
	case ActionDelete:
		return HasPermission(user, models.PermDelete, movement.Category)
	}
	return false
}

// roleCapabilities is the static role→capability table for category and
// user management. It is keyed purely by role, independent of the per-user
// stored flags.
type roleCapabilities struct {
	createCategories bool
	editCategories   bool
	deleteCategories bool
	manageUsers      bool
	viewReports      bool
}

var rolePermissions = map[models.Role]roleCapabilities{
	models.RoleRoot:   {createCategories: true, editCategories: true, deleteCategories: true, manageUsers: true, viewReports: true},
	models.RoleAdmin:  {createCategories: true, editCategories: true, deleteCategories: true, viewReports: true},
	models.RoleEditor: {viewReports: true},
	models.RoleViewer: {viewReports: true},
}

// CanCreateCategory reports whether the user's role may create categories.
func CanCreateCategory(user *models.User) bool {
	if user == nil {
		return false
	}
	return rolePermissions[user.Role].createCategories
}

// CanEditCategory reports whether the user's role may edit categories.
// System categories are blocked separately by the caller regardless of role.
func CanEditCategory(user *models.User) bool {
	if user == nil {
		return false
	}
	return rolePermissions[user.Role].editCategories
}

// CanDeleteCategory reports whether the user's role may delete categories.
func CanDeleteCategory(user *models.User) bool {
	if user == nil {
		return false
	}
	return rolePermissions[user.Role].deleteCategories
}

// CanManageUsers reports whether the user's role may manage user accounts.
func CanManageUsers(user *models.User) bool {
	if user == nil {
		return false
	}
	return rolePermissions[user.Role].manageUsers
}

// CanViewReports reports whether the user's role may view reports.
func CanViewReports(user *models.User) bool {
	if user == nil {
		return false
	}
	return rolePermissions[user.Role].viewReports
}

// EffectivePermissions resolves the permissions a role actually carries,
// overriding whatever is stored for elevated roles. Centralizing the
// override here keeps every call site consistent: stored permission rows
// are irrelevant once the role is root or admin.
func EffectivePermissions(role models.Role, stored models.Permissions, allCategoryIDs []string) models.Permissions {
	if !role.Elevated() {
		if stored.Categories == nil {
			stored.Categories = []string{}
		}
		return stored
	}
	return models.Permissions{
		CanCreate:           true,
		CanEdit:             true,
		CanDelete:           true,
		CanManageUsers:      role == models.RoleRoot,
		CanViewReports:      true,
		CanManageCategories: true,
		Categories:          allCategoryIDs,
	}
}
