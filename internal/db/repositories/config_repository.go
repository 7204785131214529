package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	gormModels "pollen/management/internal/models/gorm"
)

type ConfigRepository struct {
	db *gorm.DB
}

func NewConfigRepository(db *gorm.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// FindAll returns every config entry.
func (r *ConfigRepository) FindAll(ctx context.Context) ([]gormModels.ConfigEntry, error) {
	var entries []gormModels.ConfigEntry

	if err := r.db.WithContext(ctx).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch config entries: %w", err)
	}

	return entries, nil
}

// FindByKey retrieves one entry. Returns (nil, nil) when the key is unset.
func (r *ConfigRepository) FindByKey(ctx context.Context, key string) (*gormModels.ConfigEntry, error) {
	var entry gormModels.ConfigEntry

	err := r.db.WithContext(ctx).
		Where("config_key = ?", key).
		First(&entry).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch config key %s: %w", key, err)
	}

	return &entry, nil
}

// Upsert creates or updates the value for a key.
func (r *ConfigRepository) Upsert(ctx context.Context, key, value string) error {
	existing, err := r.FindByKey(ctx, key)
	if err != nil {
		return err
	}

	if existing == nil {
		entry := gormModels.ConfigEntry{ConfigKey: key, ConfigValue: value}
		if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to create config key %s: %w", key, err)
		}
		return nil
	}

	existing.ConfigValue = value
	if err := r.db.WithContext(ctx).Save(existing).Error; err != nil {
		return fmt.Errorf("failed to update config key %s: %w", key, err)
	}
	return nil
}
