package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionUserCreated     = "user.created"
	ActionUserReactivated = "user.reactivated"
	ActionUserUpdated     = "user.updated"
	ActionUserDeactivated = "user.deactivated"
	ActionUsersBulkUpdate = "users.bulk_updated"

	ActionRoleCreated = "role.created"
	ActionRoleUpdated = "role.updated"
	ActionRoleDeleted = "role.deleted"

	ActionLogin  = "auth.login"
	ActionLogout = "auth.logout"
)

// AuditLog tracks who changed which identity record and when
type AuditLog struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ActorID   *string   `gorm:"type:char(24);index" json:"actorId"` // nil for seeding and anonymous calls
	Action    string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID  string    `gorm:"type:varchar(50);index" json:"entityId"`
	Details   string    `gorm:"type:jsonb" json:"details"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}
