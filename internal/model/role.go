package model

import (
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Reserved role names. They can never be edited, deleted or granted in bulk.
const (
	RoleAdmin      = "Admin"
	RoleSuperAdmin = "Super Admin"
)

// SystemRoleNames lists the reserved role names in their canonical casing.
var SystemRoleNames = []string{RoleAdmin, RoleSuperAdmin}

// Role is a named bundle of access modules
type Role struct {
	ID            string         `gorm:"type:char(24);primaryKey" json:"id"`
	RoleName      string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"roleName"`
	AccessModules pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"accessModules"`
	IsActive      bool           `gorm:"not null;index" json:"isActive"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = NewID()
	}
	return nil
}

// IsSystem reports whether the role carries a reserved name, ignoring case and surrounding spaces.
func (r *Role) IsSystem() bool {
	return IsSystemRoleName(r.RoleName)
}

// HasModule is an exact, case-sensitive membership test used when mutating the module list.
func (r *Role) HasModule(module string) bool {
	for _, m := range r.AccessModules {
		if m == module {
			return true
		}
	}
	return false
}

// AddModule appends module and keeps the list duplicate free.
func (r *Role) AddModule(module string) {
	r.AccessModules = DedupModules(append(r.AccessModules, module))
}

// RemoveModule drops every exact occurrence of module. Absent modules are a no-op.
func (r *Role) RemoveModule(module string) {
	kept := make([]string, 0, len(r.AccessModules))
	for _, m := range r.AccessModules {
		if m != module {
			kept = append(kept, m)
		}
	}
	r.AccessModules = DedupModules(kept)
}

// IsSystemRoleName compares case-insensitively against the reserved names.
func IsSystemRoleName(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, s := range SystemRoleNames {
		if n == strings.ToLower(s) {
			return true
		}
	}
	return false
}

// IsSystemRoleNameExact compares case-sensitively against the reserved names.
// Account deletion uses this stricter form; every other guard uses IsSystemRoleName.
func IsSystemRoleNameExact(name string) bool {
	n := strings.TrimSpace(name)
	for _, s := range SystemRoleNames {
		if n == s {
			return true
		}
	}
	return false
}

// DedupModules removes exact duplicates while preserving first-occurrence order.
func DedupModules(modules []string) pq.StringArray {
	seen := make(map[string]struct{}, len(modules))
	out := make(pq.StringArray, 0, len(modules))
	for _, m := range modules {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// GrantsModule is the case-insensitive membership test used by authorization.
func GrantsModule(modules []string, module string) bool {
	want := strings.ToLower(strings.TrimSpace(module))
	for _, m := range modules {
		if strings.ToLower(strings.TrimSpace(m)) == want {
			return true
		}
	}
	return false
}
