package repository

import (
	"context"
	"fmt"

	"rbac/internal/model"

	"gorm.io/gorm"
)

// RoleFilter narrows a role listing. A nil IsActive disables the state filter.
type RoleFilter struct {
	Search   string
	IsActive *bool
	Offset   int
	Limit    int
}

type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	Save(ctx context.Context, role *model.Role) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Role, error)
	// FindByNameFold matches name case-insensitively, skipping excludeID when it is non-empty.
	FindByNameFold(ctx context.Context, name, excludeID string) (*model.Role, error)
	List(ctx context.Context, filter RoleFilter) ([]model.Role, int64, error)
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *model.Role) error {
	return translate(GetDB(ctx, r.db).Create(role).Error)
}

func (r *roleRepository) Save(ctx context.Context, role *model.Role) error {
	return translate(GetDB(ctx, r.db).Save(role).Error)
}

func (r *roleRepository) Delete(ctx context.Context, id string) error {
	return translate(GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Role{}).Error)
}

func (r *roleRepository) FindByID(ctx context.Context, id string) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).First(&role, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (r *roleRepository) FindByNameFold(ctx context.Context, name, excludeID string) (*model.Role, error) {
	var role model.Role
	query := GetDB(ctx, r.db).Where("LOWER(role_name) = LOWER(?)", name)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.First(&role).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (r *roleRepository) List(ctx context.Context, filter RoleFilter) ([]model.Role, int64, error) {
	var roles []model.Role
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Role{})
	if filter.Search != "" {
		query = query.Where("role_name ILIKE ?", likePattern(filter.Search))
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count roles: %w", err)
	}
	if err := query.Order("created_at desc").Offset(filter.Offset).Limit(filter.Limit).Find(&roles).Error; err != nil {
		return nil, 0, fmt.Errorf("list roles: %w", err)
	}
	return roles, total, nil
}
