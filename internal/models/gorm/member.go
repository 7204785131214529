package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pollen/management/internal/constants"
)

type Member struct {
	ID               string         `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	Username         string         `gorm:"column:username;uniqueIndex" json:"username"`
	Role             constants.Role `gorm:"column:role;type:member_role" json:"role"`
	Enabled          bool           `gorm:"column:enabled;default:true" json:"enabled"`
	PendingDismissal bool           `gorm:"column:pending_dismissal;default:false" json:"pendingDismissal"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Member) TableName() string {
	return "members"
}

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
