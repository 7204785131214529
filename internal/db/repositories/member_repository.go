package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pollen/management/internal/constants"
	gormModels "pollen/management/internal/models/gorm"
)

type MemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new GORM-based member repository
func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *MemberRepository) WithTx(tx *gorm.DB) *MemberRepository {
	return &MemberRepository{db: tx}
}

// FindByID retrieves a member by ID. Returns (nil, nil) when absent so
// callers decide which typed error the absence maps to.
func (r *MemberRepository) FindByID(ctx context.Context, id string) (*gormModels.Member, error) {
	var member gormModels.Member

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&member).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}

	return &member, nil
}

// FindByRole retrieves all members holding the given role, ordered by ID
// for deterministic allocation runs.
func (r *MemberRepository) FindByRole(ctx context.Context, role constants.Role) ([]gormModels.Member, error) {
	var members []gormModels.Member

	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("id").
		Find(&members).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch members by role %s: %w", role, err)
	}

	return members, nil
}

// FindByRoles retrieves all members holding any of the given roles.
func (r *MemberRepository) FindByRoles(ctx context.Context, roles ...constants.Role) ([]gormModels.Member, error) {
	var members []gormModels.Member

	err := r.db.WithContext(ctx).
		Where("role IN ?", roles).
		Order("id").
		Find(&members).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch members by roles: %w", err)
	}

	return members, nil
}

// CountByRoles counts members holding any of the given roles. Rotation
// always calls this fresh rather than trusting in-memory state.
func (r *MemberRepository) CountByRoles(ctx context.Context, roles ...constants.Role) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&gormModels.Member{}).
		Where("role IN ?", roles).
		Count(&count).Error

	if err != nil {
		return 0, fmt.Errorf("failed to count members by roles: %w", err)
	}

	return count, nil
}

// Save persists a member, creating it when new.
func (r *MemberRepository) Save(ctx context.Context, member *gormModels.Member) error {
	if err := r.db.WithContext(ctx).Save(member).Error; err != nil {
		return fmt.Errorf("failed to save member: %w", err)
	}
	return nil
}
