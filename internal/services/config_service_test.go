package services

import (
	"context"
	"strings"
	"testing"

	"pollen/management/internal/db/repositories"
	gormModels "pollen/management/internal/models/gorm"
)

func newConfigService(t *testing.T) (*ConfigService, func(key, value string)) {
	t.Helper()
	db := setupTestDB(t)
	service := NewConfigService(repositories.NewConfigRepository(db))

	seed := func(key, value string) {
		entry := &gormModels.ConfigEntry{ConfigKey: key, ConfigValue: value}
		if err := db.Create(entry).Error; err != nil {
			t.Fatalf("Failed to seed config %s: %v", key, err)
		}
	}
	return service, seed
}

func TestConfigService_Defaults(t *testing.T) {
	service, _ := newConfigService(t)
	ctx := context.Background()

	pool, err := service.PoolTotal(ctx)
	if err != nil || pool != 2000 {
		t.Errorf("Expected default pool 2000, got %d (%v)", pool, err)
	}

	size, err := service.FormalRosterSize(ctx)
	if err != nil || size != 5 {
		t.Errorf("Expected default roster size 5, got %d (%v)", size, err)
	}

	min, max, err := service.BandRange(ctx)
	if err != nil || min != 200 || max != 400 {
		t.Errorf("Expected default band [200, 400], got [%d, %d] (%v)", min, max, err)
	}

	ratio, err := service.PointsConversionRatio(ctx)
	if err != nil || ratio != 2 {
		t.Errorf("Expected default ratio 2, got %d (%v)", ratio, err)
	}

	thresholds, err := service.RotationThresholds(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if thresholds.PromotionPointsThreshold != 100 {
		t.Errorf("Expected promotion threshold 100, got %d", thresholds.PromotionPointsThreshold)
	}
	if thresholds.DemotionAllocationThreshold != 150 {
		t.Errorf("Expected demotion threshold 150, got %d", thresholds.DemotionAllocationThreshold)
	}
	if thresholds.DemotionConsecutiveMonths != 2 || thresholds.DismissalConsecutiveMonths != 2 {
		t.Errorf("Expected 2 consecutive months, got %d/%d",
			thresholds.DemotionConsecutiveMonths, thresholds.DismissalConsecutiveMonths)
	}
	if thresholds.DismissalPointsThreshold != 100 {
		t.Errorf("Expected dismissal threshold 100, got %d", thresholds.DismissalPointsThreshold)
	}

	tiers, err := service.CheckinTiers(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(tiers) != 5 {
		t.Errorf("Expected 5 default tiers, got %d", len(tiers))
	}
}

func TestConfigService_StoredValuesWinOverDefaults(t *testing.T) {
	service, seed := newConfigService(t)
	ctx := context.Background()

	seed("salary_pool_total", "3000")
	seed("formal_member_count", "6")

	pool, err := service.PoolTotal(ctx)
	if err != nil || pool != 3000 {
		t.Errorf("Expected stored pool 3000, got %d (%v)", pool, err)
	}
	size, err := service.FormalRosterSize(ctx)
	if err != nil || size != 6 {
		t.Errorf("Expected stored roster size 6, got %d (%v)", size, err)
	}
}

func TestConfigService_UnparseableValueFallsBack(t *testing.T) {
	service, seed := newConfigService(t)

	seed("salary_pool_total", "not-a-number")

	pool, err := service.PoolTotal(context.Background())
	if err != nil || pool != 2000 {
		t.Errorf("Expected fallback pool 2000, got %d (%v)", pool, err)
	}
}

func TestConfigService_CorruptTiersFallBack(t *testing.T) {
	service, seed := newConfigService(t)

	seed("checkin_tiers", "{broken json")

	tiers, err := service.CheckinTiers(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(tiers) != 5 {
		t.Errorf("Expected 5 shipped tiers on corrupt input, got %d", len(tiers))
	}
}

func TestConfigService_SaveAndReadBack(t *testing.T) {
	service, _ := newConfigService(t)
	ctx := context.Background()

	err := service.SaveConfig(ctx, map[string]string{
		"salary_pool_total": "2500",
		"allocation_max":    "500",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	pool, err := service.PoolTotal(ctx)
	if err != nil || pool != 2500 {
		t.Errorf("Expected saved pool 2500, got %d (%v)", pool, err)
	}

	all, err := service.AllConfig(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if all["allocation_max"] != "500" {
		t.Errorf("Expected allocation_max 500 in config map, got %q", all["allocation_max"])
	}
}

func TestConfigService_SaveRejectsInvertedBand(t *testing.T) {
	service, _ := newConfigService(t)

	err := service.SaveConfig(context.Background(), map[string]string{
		"allocation_min": "500",
		"allocation_max": "300",
	})
	if err == nil {
		t.Fatal("Expected error for inverted band, got nil")
	}
	if !strings.Contains(err.Error(), "cannot exceed") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestConfigService_SaveRejectsOverdrawnBase(t *testing.T) {
	service, _ := newConfigService(t)

	// 400 base x 6 seats = 2400 against a 2000 pool.
	err := service.SaveConfig(context.Background(), map[string]string{
		"formal_member_count": "6",
	})
	if err == nil {
		t.Fatal("Expected error for overdrawn base allocation, got nil")
	}
	if !strings.Contains(err.Error(), "exceeds pool total") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestConfigService_SaveRejectsZeroMonths(t *testing.T) {
	service, _ := newConfigService(t)

	err := service.SaveConfig(context.Background(), map[string]string{
		"demotion_consecutive_months": "0",
	})
	if err == nil {
		t.Fatal("Expected error for zero months, got nil")
	}
	if !strings.Contains(err.Error(), "at least 1") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestConfigService_SaveRejectsNonIntegerUpdate(t *testing.T) {
	service, _ := newConfigService(t)

	err := service.SaveConfig(context.Background(), map[string]string{
		"salary_pool_total": "plenty",
	})
	if err == nil {
		t.Fatal("Expected error for non-integer value, got nil")
	}
	if !strings.Contains(err.Error(), "not an integer") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestConfigService_SaveRejectsInvalidTierJSON(t *testing.T) {
	service, _ := newConfigService(t)

	err := service.SaveConfig(context.Background(), map[string]string{
		"checkin_tiers": "{broken",
	})
	if err == nil {
		t.Fatal("Expected error for invalid tier JSON, got nil")
	}
	if !strings.Contains(err.Error(), "not valid tier JSON") {
		t.Errorf("Unexpected error message: %v", err)
	}
}
