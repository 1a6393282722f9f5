// models/user.go
package models

import (
	"time"
)

// Role is one of the four fixed privilege tiers.
type Role string

const (
	RoleRoot   Role = "root"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleRoot, RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Elevated reports whether the role ignores stored permission rows entirely.
func (r Role) Elevated() bool {
	return r == RoleRoot || r == RoleAdmin
}

// PermissionFlag names one of the per-user stored permission booleans.
type PermissionFlag string

const (
	PermCreate           PermissionFlag = "canCreate"
	PermEdit             PermissionFlag = "canEdit"
	PermDelete           PermissionFlag = "canDelete"
	PermManageUsers      PermissionFlag = "canManageUsers"
	PermViewReports      PermissionFlag = "canViewReports"
	PermManageCategories PermissionFlag = "canManageCategories"
)

// CategoryScoped reports whether the flag is checked against the user's
// category grant set when a category is supplied.
func (p PermissionFlag) CategoryScoped() bool {
	switch p {
	case PermManageUsers, PermViewReports, PermManageCategories:
		return false
	}
	return true
}

// Permissions holds the stored permission flags plus the category grant set.
type Permissions struct {
	CanCreate           bool     `json:"canCreate"`
	CanEdit             bool     `json:"canEdit"`
	CanDelete           bool     `json:"canDelete"`
	CanManageUsers      bool     `json:"canManageUsers"`
	CanViewReports      bool     `json:"canViewReports"`
	CanManageCategories bool     `json:"canManageCategories"`
	Categories          []string `json:"categories"`
}

// Flag returns the boolean stored for the named permission.
func (p Permissions) Flag(name PermissionFlag) bool {
	switch name {
	case PermCreate:
		return p.CanCreate
	case PermEdit:
		return p.CanEdit
	case PermDelete:
		return p.CanDelete
	case PermManageUsers:
		return p.CanManageUsers
	case PermViewReports:
		return p.CanViewReports
	case PermManageCategories:
		return p.CanManageCategories
	}
	return false
}

// HasCategory reports whether the category id is in the grant set.
func (p Permissions) HasCategory(categoryID string) bool {
	for _, id := range p.Categories {
		if id == categoryID {
			return true
		}
	}
	return false
}

// User model. Password is the bcrypt hash and is never serialized.
type User struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Password    string      `json:"-"`
	Role        Role        `json:"role"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	CreatedAt   time.Time   `json:"createdAt"`
	LastLogin   *time.Time  `json:"lastLogin,omitempty"`
	Permissions Permissions `json:"permissions"`
	AvatarURL   string      `json:"avatarUrl,omitempty"`
}

// GuestUsername is the passwordless ephemeral viewer identity.
const GuestUsername = "visitante"

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateUserRequest is the body of POST /api/users.
type CreateUserRequest struct {
	Username    string              `json:"username" validate:"required,min=3,max=50"`
	Password    string              `json:"password" validate:"required,min=6"`
	Name        string              `json:"name" validate:"required"`
	Email       string              `json:"email" validate:"required,email"`
	Role        Role                `json:"role" validate:"required,oneof=admin editor viewer"`
	Permissions *PermissionsRequest `json:"permissions"`
}

// UpdateUserRequest is the body of PUT /api/users/:id. All fields optional.
type UpdateUserRequest struct {
	Username    string              `json:"username" validate:"omitempty,min=3,max=50"`
	Password    string              `json:"password" validate:"omitempty,min=6"`
	Name        string              `json:"name"`
	Email       string              `json:"email" validate:"omitempty,email"`
	Role        Role                `json:"role" validate:"omitempty,oneof=root admin editor viewer"`
	Permissions *PermissionsRequest `json:"permissions"`
}

// PermissionsRequest carries permission flags in user create/update bodies.
type PermissionsRequest struct {
	CanCreate           bool     `json:"canCreate"`
	CanEdit             bool     `json:"canEdit"`
	CanDelete           bool     `json:"canDelete"`
	CanManageUsers      bool     `json:"canManageUsers"`
	CanViewReports      bool     `json:"canViewReports"`
	CanManageCategories bool     `json:"canManageCategories"`
	Categories          []string `json:"categories"`
}

// ToPermissions converts the request form into the domain type.
func (r *PermissionsRequest) ToPermissions() Permissions {
	if r == nil {
		return Permissions{Categories: []string{}}
	}
	categories := r.Categories
	if categories == nil {
		categories = []string{}
	}
	return Permissions{
		CanCreate:           r.CanCreate,
		CanEdit:             r.CanEdit,
		CanDelete:           r.CanDelete,
		CanManageUsers:      r.CanManageUsers,
		CanViewReports:      r.CanViewReports,
		CanManageCategories: r.CanManageCategories,
		Categories:          categories,
	}
}

// ErrorResponse is the uniform failure body for every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// OkResponse acknowledges a mutation that returns no resource.
type OkResponse struct {
	OK bool `json:"ok"`
}
