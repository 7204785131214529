package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConfigEntry is one key-value pair of externally mutable domain
// configuration (pool total, band bounds, rotation thresholds, ...).
type ConfigEntry struct {
	ID          string    `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	ConfigKey   string    `gorm:"column:config_key;uniqueIndex" json:"configKey"`
	ConfigValue string    `gorm:"column:config_value" json:"configValue"`
	Description *string   `gorm:"column:description" json:"description,omitempty"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (ConfigEntry) TableName() string {
	return "salary_configs"
}

func (c *ConfigEntry) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
