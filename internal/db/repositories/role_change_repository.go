package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	gormModels "pollen/management/internal/models/gorm"
)

// RoleChangeRepository is append-only; records are never updated.
type RoleChangeRepository struct {
	db *gorm.DB
}

func NewRoleChangeRepository(db *gorm.DB) *RoleChangeRepository {
	return &RoleChangeRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *RoleChangeRepository) WithTx(tx *gorm.DB) *RoleChangeRepository {
	return &RoleChangeRepository{db: tx}
}

// Append writes one immutable role change record.
func (r *RoleChangeRepository) Append(ctx context.Context, record *gormModels.RoleChangeRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to append role change record: %w", err)
	}
	return nil
}

// ListByMemberDesc returns a member's role history, newest first.
func (r *RoleChangeRepository) ListByMemberDesc(ctx context.Context, memberID string) ([]gormModels.RoleChangeRecord, error) {
	var records []gormModels.RoleChangeRecord

	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("changed_at DESC").
		Find(&records).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch role changes for member %s: %w", memberID, err)
	}

	return records, nil
}
