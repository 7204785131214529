package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditLog struct {
	ID              string    `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	OperatorID      string    `gorm:"column:operator_id" json:"operatorId"`
	OperationType   string    `gorm:"column:operation_type;index" json:"operationType"`
	OperationDetail string    `gorm:"column:operation_detail" json:"operationDetail"`
	OperationTime   time.Time `gorm:"column:operation_time;autoCreateTime" json:"operationTime"`
}

// TableName specifies the table name for GORM
func (AuditLog) TableName() string {
	return "audit_logs"
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
