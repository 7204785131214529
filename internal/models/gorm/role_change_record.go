package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pollen/management/internal/constants"
)

// RoleChangeRecord is an immutable log entry, appended once per role
// mutation. Rows are never updated or deleted.
type RoleChangeRecord struct {
	ID        string         `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	MemberID  string         `gorm:"column:member_id;type:uuid;index" json:"memberId"`
	OldRole   constants.Role `gorm:"column:old_role;type:member_role" json:"oldRole"`
	NewRole   constants.Role `gorm:"column:new_role;type:member_role" json:"newRole"`
	ChangedBy string         `gorm:"column:changed_by" json:"changedBy"`
	ChangedAt time.Time      `gorm:"column:changed_at;autoCreateTime" json:"changedAt"`
}

// TableName specifies the table name for GORM
func (RoleChangeRecord) TableName() string {
	return "role_change_records"
}

func (r *RoleChangeRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
