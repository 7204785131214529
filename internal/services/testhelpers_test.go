package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pollen/management/internal/models/dtos"
	gormModels "pollen/management/internal/models/gorm"
)

// Setup test database
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&gormModels.Member{},
		&gormModels.CompensationRecord{},
		&gormModels.RoleChangeRecord{},
		&gormModels.AuditLog{},
		&gormModels.ConfigEntry{},
	); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db
}

// Mock PointsStore
type mockPointsStore struct {
	sumByMemberAndPeriodFunc func(ctx context.Context, memberID string, start, end time.Time) (int, error)
	sumByMemberFunc          func(ctx context.Context, memberID string) (int, error)
}

func (m *mockPointsStore) SumByMemberAndPeriod(ctx context.Context, memberID string, start, end time.Time) (int, error) {
	if m.sumByMemberAndPeriodFunc == nil {
		return 0, nil
	}
	return m.sumByMemberAndPeriodFunc(ctx, memberID, start, end)
}

func (m *mockPointsStore) SumByMember(ctx context.Context, memberID string) (int, error) {
	if m.sumByMemberFunc == nil {
		return 0, nil
	}
	return m.sumByMemberFunc(ctx, memberID)
}

// Stub ConfigProvider with fixed values
type stubConfig struct {
	thresholds dtos.RotationThresholds
	pool       int
	rosterSize int
	bandMin    int
	bandMax    int
	ratio      int
	tiers      []dtos.CheckinTier
}

func defaultStubConfig() *stubConfig {
	return &stubConfig{
		thresholds: dtos.RotationThresholds{
			PromotionPointsThreshold:    100,
			DemotionAllocationThreshold: 150,
			DemotionConsecutiveMonths:   2,
			DismissalPointsThreshold:    100,
			DismissalConsecutiveMonths:  2,
		},
		pool:       2000,
		rosterSize: 5,
		bandMin:    200,
		bandMax:    400,
		ratio:      2,
		tiers: []dtos.CheckinTier{
			{MinCount: 0, MaxCount: 19, Points: -20, Label: "unqualified"},
			{MinCount: 20, MaxCount: 29, Points: -10, Label: "needs improvement"},
			{MinCount: 30, MaxCount: 39, Points: 0, Label: "qualified"},
			{MinCount: 40, MaxCount: 49, Points: 30, Label: "good"},
			{MinCount: 50, MaxCount: 999, Points: 50, Label: "excellent"},
		},
	}
}

func (c *stubConfig) RotationThresholds(ctx context.Context) (dtos.RotationThresholds, error) {
	return c.thresholds, nil
}
func (c *stubConfig) PoolTotal(ctx context.Context) (int, error)       { return c.pool, nil }
func (c *stubConfig) FormalRosterSize(ctx context.Context) (int, error) { return c.rosterSize, nil }
func (c *stubConfig) BandRange(ctx context.Context) (int, int, error) {
	return c.bandMin, c.bandMax, nil
}
func (c *stubConfig) PointsConversionRatio(ctx context.Context) (int, error) { return c.ratio, nil }
func (c *stubConfig) CheckinTiers(ctx context.Context) ([]dtos.CheckinTier, error) {
	return c.tiers, nil
}
