package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PointsEntry is an append-only point delta. The engines only ever read
// these rows; awarding points is owned by the points ledger service.
type PointsEntry struct {
	ID        string    `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	MemberID  string    `gorm:"column:member_id;type:uuid;index" json:"memberId"`
	Amount    int       `gorm:"column:amount" json:"amount"`
	Category  string    `gorm:"column:category" json:"category"`
	Remark    *string   `gorm:"column:remark" json:"remark,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"createdAt"`
}

// TableName specifies the table name for GORM
func (PointsEntry) TableName() string {
	return "points_entries"
}

func (p *PointsEntry) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
