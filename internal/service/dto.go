package service

import (
	"strings"
	"time"

	"rbac/internal/model"
	"rbac/pkg/pagination"
)

// DTOs for Request validation
type CreateUserRequest struct {
	FirstName string `json:"firstName" binding:"required,min=2"`
	LastName  string `json:"lastName" binding:"required,min=2"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,strongpassword"`
	Role      string `json:"role" binding:"required,objectid"`
}

type UpdateUserRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,min=2"`
	LastName  *string `json:"lastName" binding:"omitempty,min=2"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Role      *string `json:"role" binding:"omitempty,objectid"`
}

func (r UpdateUserRequest) empty() bool {
	return r.FirstName == nil && r.LastName == nil && r.Email == nil && r.Role == nil
}

// UserPatchFields is the column subset bulk operations may overwrite.
type UserPatchFields struct {
	FirstName *string `json:"firstName" binding:"omitempty,min=2"`
	LastName  *string `json:"lastName" binding:"omitempty,min=2"`
	Role      *string `json:"role" binding:"omitempty,objectid"`
}

func (p *UserPatchFields) empty() bool {
	return p == nil || (p.FirstName == nil && p.LastName == nil && p.Role == nil)
}

type BulkSameRequest struct {
	Update *UserPatchFields `json:"update" binding:"required"`
}

type BulkDifferentItem struct {
	UserID string           `json:"userId" binding:"required,objectid"`
	Update *UserPatchFields `json:"update" binding:"required"`
}

type BulkDifferentRequest struct {
	Updates []BulkDifferentItem `json:"updates" binding:"required,dive"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,strongpassword"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type CreateRoleRequest struct {
	RoleName      string   `json:"roleName" binding:"required,min=2"`
	AccessModules []string `json:"accessModules" binding:"required,min=1,dive,required"`
}

type UpdateRoleRequest struct {
	RoleName     *string `json:"roleName" binding:"omitempty,min=2"`
	AddModule    *string `json:"addModule"`
	RemoveModule *string `json:"removeModule"`
}

type DeleteRoleRequest struct {
	TransferRoleID string `json:"transferRoleId" binding:"omitempty,objectid"`
}

// ListQuery holds the filters shared by user and role listings.
type ListQuery struct {
	Search   string `form:"search"`
	IsActive string `form:"isActive"`
}

// activeFilter treats only the literals "true" and "false" as filters. Absent means "true".
func (q ListQuery) activeFilter() *bool {
	v := q.IsActive
	if v == "" {
		v = "true"
	}
	switch v {
	case "true":
		b := true
		return &b
	case "false":
		b := false
		return &b
	default:
		return nil
	}
}

// RoleSummary is the populated role reference inside a user record.
type RoleSummary struct {
	ID            string   `json:"id"`
	RoleName      string   `json:"roleName"`
	AccessModules []string `json:"accessModules"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID        string       `json:"id"`
	FirstName string       `json:"firstName"`
	LastName  string       `json:"lastName"`
	Email     string       `json:"email"`
	RoleID    string       `json:"roleId"`
	Role      *RoleSummary `json:"role,omitempty"`
	IsActive  bool         `json:"isActive"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type UserListResponse struct {
	Users      []UserResponse  `json:"users"`
	Pagination pagination.Meta `json:"pagination"`
}

// CreateUserResult reports whether an existing deactivated account was reclaimed.
type CreateUserResult struct {
	User        *UserResponse
	Reactivated bool
}

type RegisterResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type DeleteUserResponse struct {
	UserID string `json:"userId"`
}

type RoleResponse struct {
	ID            string    `json:"id"`
	RoleName      string    `json:"roleName"`
	AccessModules []string  `json:"accessModules"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type RoleListResponse struct {
	Roles      []RoleResponse  `json:"roles"`
	Pagination pagination.Meta `json:"pagination"`
}

type DeleteRoleResponse struct {
	PreviousUsersAssigned int64   `json:"previousUsersAssigned"`
	TransferredTo         *string `json:"transferredTo"`
}

type ModuleAccessResponse struct {
	Module    string `json:"module"`
	HasAccess bool   `json:"hasAccess"`
}

type AccessModulesResponse struct {
	AccessModules []string `json:"accessModules"`
}

// Helper: parse model to standard json API response
func toUserResponse(u *model.User) *UserResponse {
	res := &UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		RoleID:    u.RoleID,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Role != nil {
		res.Role = &RoleSummary{
			ID:            u.Role.ID,
			RoleName:      u.Role.RoleName,
			AccessModules: nonNil(u.Role.AccessModules),
		}
	}
	return res
}

func toRoleResponse(r *model.Role) *RoleResponse {
	return &RoleResponse{
		ID:            r.ID,
		RoleName:      r.RoleName,
		AccessModules: nonNil(r.AccessModules),
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
