package repository

import (
	"context"
	"fmt"

	"rbac/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserFilter narrows a user listing. A nil IsActive disables the state filter.
type UserFilter struct {
	Search   string
	IsActive *bool
	Offset   int
	Limit    int
}

// UserPatch holds the optional columns a bulk mutation may overwrite.
type UserPatch struct {
	FirstName *string
	LastName  *string
	RoleID    *string
}

func (p UserPatch) columns() map[string]any {
	cols := map[string]any{}
	if p.FirstName != nil {
		cols["first_name"] = *p.FirstName
	}
	if p.LastName != nil {
		cols["last_name"] = *p.LastName
	}
	if p.RoleID != nil {
		cols["role_id"] = *p.RoleID
	}
	return cols
}

// BulkItem is one entry of a per-user bulk mutation.
type BulkItem struct {
	UserID string
	Patch  UserPatch
}

// BulkResult summarises a bulk mutation.
type BulkResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// UserRepository defines the interface for data access of User entities
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Save(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, filter UserFilter) ([]model.User, int64, error)
	CountByRole(ctx context.Context, roleID string) (int64, error)
	ReassignRole(ctx context.Context, fromRoleID, toRoleID string) (int64, error)
	SaveState(ctx context.Context, user *model.User) error
	UpdateAllActive(ctx context.Context, patch UserPatch) (BulkResult, error)
	BulkUpdate(ctx context.Context, items []BulkItem) (BulkResult, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return translate(GetDB(ctx, r.db).Omit(clause.Associations).Create(user).Error)
}

// Save writes every column of user. The preloaded Role is never written back.
func (r *userRepository) Save(ctx context.Context, user *model.User) error {
	return translate(GetDB(ctx, r.db).Omit(clause.Associations).Save(user).Error)
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).Preload("Role").First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).Preload("Role").First(&user, "email = ?", model.NormalizeEmail(email)).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := GetDB(ctx, r.db).Model(&model.User{})
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?", p, p, p)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	err := query.
		Preload("Role", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "role_name", "access_modules")
		}).
		Order("created_at desc").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (r *userRepository) CountByRole(ctx context.Context, roleID string) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.User{}).Where("role_id = ?", roleID).Count(&n).Error
	return n, err
}

func (r *userRepository) ReassignRole(ctx context.Context, fromRoleID, toRoleID string) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.User{}).
		Where("role_id = ?", fromRoleID).
		Update("role_id", toRoleID)
	return res.RowsAffected, res.Error
}

// SaveState persists the account state of user and nothing else.
func (r *userRepository) SaveState(ctx context.Context, user *model.User) error {
	res := GetDB(ctx, r.db).Model(&model.User{}).Where("id = ?", user.ID).Update("is_active", user.IsActive)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdateAllActive(ctx context.Context, patch UserPatch) (BulkResult, error) {
	var result BulkResult
	db := GetDB(ctx, r.db)

	if err := db.Model(&model.User{}).Where("is_active = ?", true).Count(&result.MatchedCount).Error; err != nil {
		return result, err
	}
	res := db.Model(&model.User{}).Where("is_active = ?", true).Updates(patch.columns())
	if res.Error != nil {
		return result, translate(res.Error)
	}
	result.ModifiedCount = res.RowsAffected
	return result, nil
}

// BulkUpdate applies every item inside a single transaction. The caller is expected to have
// validated the items already; any store failure rolls the whole batch back.
func (r *userRepository) BulkUpdate(ctx context.Context, items []BulkItem) (BulkResult, error) {
	var result BulkResult
	err := GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			res := tx.Model(&model.User{}).Where("id = ?", item.UserID).Updates(item.Patch.columns())
			if res.Error != nil {
				return translate(res.Error)
			}
			result.MatchedCount++
			result.ModifiedCount += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return BulkResult{}, err
	}
	return result, nil
}
