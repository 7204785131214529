package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"pollen/management/internal/db/repositories"
	"pollen/management/internal/models/dtos"
)

// Config keys stored in the salary_configs table.
const (
	keyPoolTotal                 = "salary_pool_total"
	keyFormalMemberCount         = "formal_member_count"
	keyBaseAllocation            = "base_allocation"
	keyBandMin                   = "allocation_min"
	keyBandMax                   = "allocation_max"
	keyConversionRatio           = "points_conversion_ratio"
	keyPromotionPointsThreshold  = "promotion_points_threshold"
	keyDemotionAllocThreshold    = "demotion_allocation_threshold"
	keyDemotionConsecutiveMonths = "demotion_consecutive_months"
	keyDismissalPointsThreshold  = "dismissal_points_threshold"
	keyDismissalConsecMonths     = "dismissal_consecutive_months"
	keyCheckinTiers              = "checkin_tiers"
)

// Defaults applied when a key is unset or unparseable.
const (
	defaultPoolTotal                  = 2000
	defaultFormalMemberCount          = 5
	defaultBaseAllocation             = 400
	defaultBandMin                    = 200
	defaultBandMax                    = 400
	defaultConversionRatio            = 2
	defaultPromotionPointsThreshold   = 100
	defaultDemotionAllocThreshold     = 150
	defaultDemotionConsecutiveMonths  = 2
	defaultDismissalPointsThreshold   = 100
	defaultDismissalConsecutiveMonths = 2
)

const defaultCheckinTiersJSON = `[` +
	`{"minCount":0,"maxCount":19,"points":-20,"label":"unqualified"},` +
	`{"minCount":20,"maxCount":29,"points":-10,"label":"needs improvement"},` +
	`{"minCount":30,"maxCount":39,"points":0,"label":"qualified"},` +
	`{"minCount":40,"maxCount":49,"points":30,"label":"good"},` +
	`{"minCount":50,"maxCount":999,"points":50,"label":"excellent"}` +
	`]`

// ConfigService reads and writes the externally mutable domain
// configuration. Reads always hit the store so operator changes take
// effect immediately.
type ConfigService struct {
	repo *repositories.ConfigRepository
}

var _ ConfigProvider = (*ConfigService)(nil)

func NewConfigService(repo *repositories.ConfigRepository) *ConfigService {
	return &ConfigService{repo: repo}
}

func (s *ConfigService) getString(ctx context.Context, key, fallback string) (string, error) {
	entry, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return "", err
	}
	if entry == nil {
		return fallback, nil
	}
	return entry.ConfigValue, nil
}

func (s *ConfigService) getInt(ctx context.Context, key string, fallback int) (int, error) {
	entry, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return 0, err
	}
	if entry == nil {
		return fallback, nil
	}
	value, err := strconv.Atoi(entry.ConfigValue)
	if err != nil {
		return fallback, nil
	}
	return value, nil
}

func (s *ConfigService) RotationThresholds(ctx context.Context) (dtos.RotationThresholds, error) {
	var thresholds dtos.RotationThresholds
	var err error

	if thresholds.PromotionPointsThreshold, err = s.getInt(ctx, keyPromotionPointsThreshold, defaultPromotionPointsThreshold); err != nil {
		return thresholds, err
	}
	if thresholds.DemotionAllocationThreshold, err = s.getInt(ctx, keyDemotionAllocThreshold, defaultDemotionAllocThreshold); err != nil {
		return thresholds, err
	}
	if thresholds.DemotionConsecutiveMonths, err = s.getInt(ctx, keyDemotionConsecutiveMonths, defaultDemotionConsecutiveMonths); err != nil {
		return thresholds, err
	}
	if thresholds.DismissalPointsThreshold, err = s.getInt(ctx, keyDismissalPointsThreshold, defaultDismissalPointsThreshold); err != nil {
		return thresholds, err
	}
	if thresholds.DismissalConsecutiveMonths, err = s.getInt(ctx, keyDismissalConsecMonths, defaultDismissalConsecutiveMonths); err != nil {
		return thresholds, err
	}

	return thresholds, nil
}

func (s *ConfigService) PoolTotal(ctx context.Context) (int, error) {
	return s.getInt(ctx, keyPoolTotal, defaultPoolTotal)
}

func (s *ConfigService) FormalRosterSize(ctx context.Context) (int, error) {
	return s.getInt(ctx, keyFormalMemberCount, defaultFormalMemberCount)
}

func (s *ConfigService) BandRange(ctx context.Context) (int, int, error) {
	min, err := s.getInt(ctx, keyBandMin, defaultBandMin)
	if err != nil {
		return 0, 0, err
	}
	max, err := s.getInt(ctx, keyBandMax, defaultBandMax)
	if err != nil {
		return 0, 0, err
	}
	return min, max, nil
}

func (s *ConfigService) PointsConversionRatio(ctx context.Context) (int, error) {
	return s.getInt(ctx, keyConversionRatio, defaultConversionRatio)
}

func (s *ConfigService) CheckinTiers(ctx context.Context) ([]dtos.CheckinTier, error) {
	raw, err := s.getString(ctx, keyCheckinTiers, defaultCheckinTiersJSON)
	if err != nil {
		return nil, err
	}

	var tiers []dtos.CheckinTier
	if err := json.Unmarshal([]byte(raw), &tiers); err != nil {
		// Corrupt operator input falls back to the shipped tiers.
		if err := json.Unmarshal([]byte(defaultCheckinTiersJSON), &tiers); err != nil {
			return nil, fmt.Errorf("failed to parse default checkin tiers: %w", err)
		}
	}
	return tiers, nil
}

// AllConfig returns every stored key-value pair.
func (s *ConfigService) AllConfig(ctx context.Context) (map[string]string, error) {
	entries, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(entries))
	for _, entry := range entries {
		result[entry.ConfigKey] = entry.ConfigValue
	}
	return result, nil
}

// SaveConfig validates the incoming map against the effective resulting
// configuration (incoming value, else stored, else default) and persists
// each key.
func (s *ConfigService) SaveConfig(ctx context.Context, updates map[string]string) error {
	if err := s.validateConfig(ctx, updates); err != nil {
		return err
	}

	for key, value := range updates {
		if err := s.repo.Upsert(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

func (s *ConfigService) resolveInt(ctx context.Context, updates map[string]string, key string, fallback int) (int, error) {
	if raw, ok := updates[key]; ok {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("config key %s: %q is not an integer", key, raw)
		}
		return value, nil
	}
	return s.getInt(ctx, key, fallback)
}

func (s *ConfigService) validateConfig(ctx context.Context, updates map[string]string) error {
	bandMin, err := s.resolveInt(ctx, updates, keyBandMin, defaultBandMin)
	if err != nil {
		return err
	}
	bandMax, err := s.resolveInt(ctx, updates, keyBandMax, defaultBandMax)
	if err != nil {
		return err
	}
	baseAllocation, err := s.resolveInt(ctx, updates, keyBaseAllocation, defaultBaseAllocation)
	if err != nil {
		return err
	}
	rosterSize, err := s.resolveInt(ctx, updates, keyFormalMemberCount, defaultFormalMemberCount)
	if err != nil {
		return err
	}
	poolTotal, err := s.resolveInt(ctx, updates, keyPoolTotal, defaultPoolTotal)
	if err != nil {
		return err
	}

	if bandMin > bandMax {
		return fmt.Errorf("allocation minimum (%d) cannot exceed allocation maximum (%d)", bandMin, bandMax)
	}
	if total := int64(baseAllocation) * int64(rosterSize); total > int64(poolTotal) {
		return fmt.Errorf("base allocation (%d) x roster size (%d) = %d exceeds pool total (%d)",
			baseAllocation, rosterSize, total, poolTotal)
	}

	for _, key := range []string{
		keyPromotionPointsThreshold,
		keyDemotionAllocThreshold,
		keyDismissalPointsThreshold,
	} {
		value, err := s.resolveInt(ctx, updates, key, 0)
		if err != nil {
			return err
		}
		if value < 0 {
			return fmt.Errorf("config key %s cannot be negative, got %d", key, value)
		}
	}

	for _, key := range []string{keyDemotionConsecutiveMonths, keyDismissalConsecMonths} {
		value, err := s.resolveInt(ctx, updates, key, defaultDemotionConsecutiveMonths)
		if err != nil {
			return err
		}
		if value < 1 {
			return fmt.Errorf("config key %s must be at least 1, got %d", key, value)
		}
	}

	if raw, ok := updates[keyCheckinTiers]; ok {
		var tiers []dtos.CheckinTier
		if err := json.Unmarshal([]byte(raw), &tiers); err != nil {
			return fmt.Errorf("config key %s is not valid tier JSON: %w", keyCheckinTiers, err)
		}
	}

	return nil
}
