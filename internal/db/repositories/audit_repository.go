package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	gormModels "pollen/management/internal/models/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append writes one audit entry.
func (r *AuditRepository) Append(ctx context.Context, entry *gormModels.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}
