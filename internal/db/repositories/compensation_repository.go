package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	gormModels "pollen/management/internal/models/gorm"
)

// ErrVersionConflict is returned when a versioned batch save loses a race
// against a concurrent writer.
var ErrVersionConflict = errors.New("compensation record version conflict")

type CompensationRepository struct {
	db *gorm.DB
}

func NewCompensationRepository(db *gorm.DB) *CompensationRepository {
	return &CompensationRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *CompensationRepository) WithTx(tx *gorm.DB) *CompensationRepository {
	return &CompensationRepository{db: tx}
}

// FindByID retrieves a record by ID. Returns (nil, nil) when absent.
func (r *CompensationRepository) FindByID(ctx context.Context, id string) (*gormModels.CompensationRecord, error) {
	var record gormModels.CompensationRecord

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&record).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch compensation record: %w", err)
	}

	return &record, nil
}

// FindArchivedByMemberDesc retrieves a member's archived records, newest
// cycle first, for consecutive-month demotion checks.
func (r *CompensationRepository) FindArchivedByMemberDesc(ctx context.Context, memberID string) ([]gormModels.CompensationRecord, error) {
	var records []gormModels.CompensationRecord

	err := r.db.WithContext(ctx).
		Where("member_id = ? AND archived = ?", memberID, true).
		Order("archived_at DESC").
		Find(&records).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch archived records for member %s: %w", memberID, err)
	}

	return records, nil
}

// FindUnarchived retrieves the open cycle's records, ordered by ID.
func (r *CompensationRepository) FindUnarchived(ctx context.Context) ([]gormModels.CompensationRecord, error) {
	var records []gormModels.CompensationRecord

	err := r.db.WithContext(ctx).
		Where("archived = ?", false).
		Order("id").
		Find(&records).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch unarchived records: %w", err)
	}

	return records, nil
}

// Save persists a single record.
func (r *CompensationRepository) Save(ctx context.Context, record *gormModels.CompensationRecord) error {
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("failed to save compensation record: %w", err)
	}
	return nil
}

// SaveAll persists all records in one transaction.
func (r *CompensationRepository) SaveAll(ctx context.Context, records []*gormModels.CompensationRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, record := range records {
			if err := tx.Save(record).Error; err != nil {
				return fmt.Errorf("failed to save compensation record: %w", err)
			}
		}
		return nil
	})
}

// SaveAllVersioned persists all records with optimistic locking: each
// update is conditional on the version the caller read. A lost race rolls
// the whole batch back and returns ErrVersionConflict.
func (r *CompensationRepository) SaveAllVersioned(ctx context.Context, records []*gormModels.CompensationRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, record := range records {
			if record.ID == "" {
				if err := tx.Create(record).Error; err != nil {
					return fmt.Errorf("failed to create compensation record: %w", err)
				}
				continue
			}

			res := tx.Model(&gormModels.CompensationRecord{}).
				Where("id = ? AND version = ?", record.ID, record.Version).
				Updates(map[string]interface{}{
					"base_points":      record.BasePoints,
					"bonus_points":     record.BonusPoints,
					"deductions":       record.Deductions,
					"total_points":     record.TotalPoints,
					"allocated_amount": record.Allocated,
					"remark":           record.Remark,
					"version":          record.Version + 1,
				})
			if res.Error != nil {
				return fmt.Errorf("failed to update compensation record %s: %w", record.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				return ErrVersionConflict
			}
			record.Version++
		}
		return nil
	})
}
