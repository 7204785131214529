package services

import (
	"context"
	"time"

	"pollen/management/internal/models/dtos"
)

// PointsStore is the read-only view of the external points ledger.
type PointsStore interface {
	// SumByMemberAndPeriod sums point deltas in the half-open window
	// [start, end); no rows means zero, not an error.
	SumByMemberAndPeriod(ctx context.Context, memberID string, start, end time.Time) (int, error)
	// SumByMember sums all point deltas ever recorded for the member.
	SumByMember(ctx context.Context, memberID string) (int, error)
}

// ConfigProvider exposes the externally mutable domain configuration.
// Implementations must read live values; the engines never cache them.
type ConfigProvider interface {
	RotationThresholds(ctx context.Context) (dtos.RotationThresholds, error)
	PoolTotal(ctx context.Context) (int, error)
	FormalRosterSize(ctx context.Context) (int, error)
	BandRange(ctx context.Context) (min, max int, err error)
	PointsConversionRatio(ctx context.Context) (int, error)
	CheckinTiers(ctx context.Context) ([]dtos.CheckinTier, error)
}
