package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompensationRecord holds one member's share of an allocation cycle.
// At most one unarchived record exists per member; archiving is one-way.
type CompensationRecord struct {
	ID          string     `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	MemberID    string     `gorm:"column:member_id;type:uuid;index" json:"memberId"`
	BasePoints  int        `gorm:"column:base_points" json:"basePoints"`
	BonusPoints int        `gorm:"column:bonus_points" json:"bonusPoints"`
	Deductions  int        `gorm:"column:deductions" json:"deductions"`
	TotalPoints int        `gorm:"column:total_points" json:"totalPoints"`
	Allocated   int        `gorm:"column:allocated_amount" json:"allocatedAmount"`
	Remark      *string    `gorm:"column:remark" json:"remark,omitempty"`
	Version     int        `gorm:"column:version;default:0" json:"version"`
	Archived    bool       `gorm:"column:archived;default:false;index" json:"archived"`
	ArchivedAt  *time.Time `gorm:"column:archived_at" json:"archivedAt,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (CompensationRecord) TableName() string {
	return "compensation_records"
}

func (c *CompensationRecord) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
