package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	queryPointsSumByPeriod = `
		SELECT COALESCE(SUM(amount), 0)
		FROM points_entries
		WHERE member_id = $1 AND created_at >= $2 AND created_at < $3`

	queryPointsSumAllTime = `
		SELECT COALESCE(SUM(amount), 0)
		FROM points_entries
		WHERE member_id = $1`
)

// PointsRepository reads the append-only points ledger through sqlx so the
// sums happen in the database instead of in application memory.
type PointsRepository struct {
	db *sqlx.DB
}

func NewPointsRepository(db *sqlx.DB) *PointsRepository {
	return &PointsRepository{db: db}
}

// SumByMemberAndPeriod sums point deltas inside the half-open window
// [start, end). A member with no rows sums to zero.
func (r *PointsRepository) SumByMemberAndPeriod(ctx context.Context, memberID string, start, end time.Time) (int, error) {
	var sum int
	if err := r.db.GetContext(ctx, &sum, queryPointsSumByPeriod, memberID, start, end); err != nil {
		return 0, fmt.Errorf("failed to sum points for member %s: %w", memberID, err)
	}
	return sum, nil
}

// SumByMember sums all point deltas ever recorded for the member.
func (r *PointsRepository) SumByMember(ctx context.Context, memberID string) (int, error) {
	var sum int
	if err := r.db.GetContext(ctx, &sum, queryPointsSumAllTime, memberID); err != nil {
		return 0, fmt.Errorf("failed to sum points for member %s: %w", memberID, err)
	}
	return sum, nil
}
