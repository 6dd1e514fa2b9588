package repository

import (
	"context"

	"rbac/internal/model"

	"gorm.io/gorm"
)

// AuditFilter narrows the audit trail. Empty fields match everything.
type AuditFilter struct {
	Action   string
	ActorID  string
	EntityID string
	Offset   int
	Limit    int
}

type AuditRepository interface {
	Log(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, f AuditFilter) ([]model.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Log appends an entry. Audit rows are never updated or deleted.
func (r *auditRepository) Log(ctx context.Context, entry *model.AuditLog) error {
	return translate(GetDB(ctx, r.db).Create(entry).Error)
}

func (r *auditRepository) List(ctx context.Context, f AuditFilter) ([]model.AuditLog, int64, error) {
	q := GetDB(ctx, r.db).Model(&model.AuditLog{})
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.ActorID != "" {
		q = q.Where("actor_id = ?", f.ActorID)
	}
	if f.EntityID != "" {
		q = q.Where("entity_id = ?", f.EntityID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var entries []model.AuditLog
	if err := q.Order("created_at desc").Offset(f.Offset).Limit(f.Limit).Find(&entries).Error; err != nil {
		return nil, 0, translate(err)
	}
	return entries, total, nil
}
