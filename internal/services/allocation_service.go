package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pollen/management/internal/common"
	"pollen/management/internal/constants"
	"pollen/management/internal/db/repositories"
	"pollen/management/internal/logging"
	"pollen/management/internal/models/dtos"
	gormModels "pollen/management/internal/models/gorm"
)

const reportCacheKey = "compensation:report"
const reportCacheTTL = 5 * time.Minute

// AllocationService computes each formal member's share of the fixed
// compensation pool and validates operator-edited batches before commit.
type AllocationService struct {
	members       *repositories.MemberRepository
	points        PointsStore
	compensations *repositories.CompensationRepository
	audits        *repositories.AuditRepository
	config        ConfigProvider
	cache         common.CacheInterface
}

func NewAllocationService(
	members *repositories.MemberRepository,
	points PointsStore,
	compensations *repositories.CompensationRepository,
	audits *repositories.AuditRepository,
	config ConfigProvider,
	cache common.CacheInterface,
) *AllocationService {
	return &AllocationService{
		members:       members,
		points:        points,
		compensations: compensations,
		audits:        audits,
		config:        config,
		cache:         cache,
	}
}

// CalculateAllocations runs the three-stage allocation over the current
// formal roster and persists one record per member. The output always
// sums to the pool exactly.
func (s *AllocationService) CalculateAllocations(ctx context.Context) ([]*gormModels.CompensationRecord, error) {
	formal, err := s.members.FindByRoles(ctx, constants.FormalRoles...)
	if err != nil {
		return nil, err
	}

	requiredSize, err := s.config.FormalRosterSize(ctx)
	if err != nil {
		return nil, err
	}
	if len(formal) != requiredSize {
		return nil, common.InvalidState(
			"formal member count mismatch: have %d, want %d", len(formal), requiredSize)
	}

	ratio, err := s.config.PointsConversionRatio(ctx)
	if err != nil {
		return nil, err
	}
	pool, err := s.config.PoolTotal(ctx)
	if err != nil {
		return nil, err
	}
	bandMin, bandMax, err := s.config.BandRange(ctx)
	if err != nil {
		return nil, err
	}

	// Stage 1: all-time points converted at the configured ratio.
	totalPoints := make([]int, len(formal))
	raw := make([]int, len(formal))
	rawTotal := 0
	for i, member := range formal {
		sum, err := s.points.SumByMember(ctx, member.ID)
		if err != nil {
			return nil, err
		}
		totalPoints[i] = sum
		raw[i] = sum * ratio
		rawTotal += raw[i]
	}

	// Stage 2: scale onto the pool so the sum matches it exactly.
	adjusted := adjustToPool(raw, rawTotal, pool)

	// Stage 3: clamp into the band while conserving the pool total.
	final := performanceAdjust(adjusted, bandMin, bandMax)

	remark := "system calculated"
	records := make([]*gormModels.CompensationRecord, 0, len(formal))
	for i, member := range formal {
		records = append(records, &gormModels.CompensationRecord{
			MemberID:    member.ID,
			BasePoints:  totalPoints[i],
			BonusPoints: 0,
			Deductions:  0,
			TotalPoints: totalPoints[i],
			Allocated:   final[i],
			Remark:      &remark,
		})
	}

	if err := s.compensations.SaveAll(ctx, records); err != nil {
		return nil, err
	}
	s.cache.Delete(reportCacheKey)

	logging.Info("allocations calculated",
		"members", len(records),
		"pool", pool,
	)
	return records, nil
}

// adjustToPool scales raw values so they sum to the pool exactly. A zero
// (or negative) raw total divides the pool evenly, assigning the remainder
// one unit each to the lowest-indexed members. Otherwise each value is
// floor-scaled by pool/rawTotal and the last member absorbs the rounding
// difference.
func adjustToPool(raw []int, rawTotal, pool int) []int {
	n := len(raw)
	adjusted := make([]int, n)

	if rawTotal <= 0 {
		perMember := pool / n
		remainder := pool - perMember*n
		for i := 0; i < n; i++ {
			adjusted[i] = perMember
			if i < remainder {
				adjusted[i]++
			}
		}
		return adjusted
	}

	allocated := 0
	for i := 0; i < n-1; i++ {
		share := int(int64(raw[i]) * int64(pool) / int64(rawTotal))
		adjusted[i] = share
		allocated += share
	}
	adjusted[n-1] = pool - allocated

	return adjusted
}

// performanceAdjust clamps every value into [bandMin, bandMax] and
// redistributes the resulting difference so the sum never drifts. Surplus
// from members clamped down flows to members below the maximum, lowest
// current value first. The loop is bounded by the roster size; with a
// feasible pool/band/size it settles in a single pass.
func performanceAdjust(values []int, bandMin, bandMax int) []int {
	out := make([]int, len(values))
	copy(out, values)

	for iter := 0; iter < len(out); iter++ {
		// Clamp both ways, accumulating the net amount removed.
		net := 0
		clamped := false
		for i := range out {
			if out[i] > bandMax {
				net += out[i] - bandMax
				out[i] = bandMax
				clamped = true
			} else if out[i] < bandMin {
				net -= bandMin - out[i]
				out[i] = bandMin
				clamped = true
			}
		}
		if !clamped {
			break
		}

		if net > 0 {
			net = fillAscending(out, net, bandMax)
		} else if net < 0 {
			net = -drainDescending(out, -net, bandMin)
		}
		if net != 0 {
			// No member can absorb the difference inside the band; the
			// caller configured an infeasible pool. Conservation wins:
			// the lowest-indexed member takes the leftover.
			out[0] += net
			break
		}
	}

	return out
}

// fillAscending grants amount to members below the band maximum, lowest
// current value first (ties to the lowest index), each raised at most to
// the maximum.
// Returns whatever could not be placed.
func fillAscending(values []int, amount, upper int) int {
	for amount > 0 {
		idx := -1
		for i, v := range values {
			if v < upper && (idx == -1 || v < values[idx]) {
				idx = i
			}
		}
		if idx == -1 {
			break
		}
		grant := upper - values[idx]
		if grant > amount {
			grant = amount
		}
		values[idx] += grant
		amount -= grant
	}
	return amount
}

// drainDescending reclaims amount from members above the floor, highest
// current value first, each lowered at most to the floor. Returns whatever
// could not be reclaimed.
func drainDescending(values []int, amount, floor int) int {
	for amount > 0 {
		idx := -1
		for i, v := range values {
			if v > floor && (idx == -1 || v > values[idx]) {
				idx = i
			}
		}
		if idx == -1 {
			break
		}
		take := values[idx] - floor
		if take > amount {
			take = amount
		}
		values[idx] -= take
		amount -= take
	}
	return amount
}

// ValidateBatch runs the fail-fast checks on an operator batch: record
// count, per-record band, pool ceiling.
func (s *AllocationService) ValidateBatch(ctx context.Context, records []gormModels.CompensationRecord) error {
	requiredSize, err := s.config.FormalRosterSize(ctx)
	if err != nil {
		return err
	}
	bandMin, bandMax, err := s.config.BandRange(ctx)
	if err != nil {
		return err
	}
	pool, err := s.config.PoolTotal(ctx)
	if err != nil {
		return err
	}

	if len(records) != requiredSize {
		return common.InvalidState(
			"formal member count mismatch: got %d records, want %d", len(records), requiredSize)
	}

	for _, record := range records {
		if record.Allocated < bandMin || record.Allocated > bandMax {
			return common.InvalidState(
				"member %s allocation %d not within [%d, %d]",
				record.MemberID, record.Allocated, bandMin, bandMax)
		}
	}

	total := 0
	for _, record := range records {
		total += record.Allocated
	}
	if total > pool {
		return common.InvalidState("allocated total %d exceeds pool ceiling %d", total, pool)
	}

	return nil
}

// BatchSaveWithValidation validates the batch collecting every violation,
// persists only on full success, and writes one audit entry per committed
// batch. A storage-layer version conflict surfaces as a global error
// distinct from validation failures.
func (s *AllocationService) BatchSaveWithValidation(ctx context.Context, records []*gormModels.CompensationRecord, operatorID string) (*dtos.BatchSaveResult, error) {
	result, err := s.validateBatchDetailed(ctx, records)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return result, nil
	}

	if err := s.compensations.SaveAllVersioned(ctx, records); err != nil {
		if errors.Is(err, repositories.ErrVersionConflict) {
			return &dtos.BatchSaveResult{
				Success:     false,
				GlobalError: constants.MsgConcurrentConflict,
			}, nil
		}
		return nil, err
	}

	memberIDs := make([]string, 0, len(records))
	for _, record := range records {
		memberIDs = append(memberIDs, record.MemberID)
	}
	if err := s.audits.Append(ctx, &gormModels.AuditLog{
		OperatorID:    operatorID,
		OperationType: constants.OpCompensationBatchSave,
		OperationDetail: fmt.Sprintf("batch saved %d compensation records, member IDs: %s",
			len(records), strings.Join(memberIDs, ", ")),
	}); err != nil {
		return nil, err
	}

	s.cache.Delete(reportCacheKey)

	return &dtos.BatchSaveResult{
		Success:      true,
		SavedRecords: records,
	}, nil
}

// validateBatchDetailed collects all band violations keyed by member,
// reserving the global error for count and total failures.
func (s *AllocationService) validateBatchDetailed(ctx context.Context, records []*gormModels.CompensationRecord) (*dtos.BatchSaveResult, error) {
	requiredSize, err := s.config.FormalRosterSize(ctx)
	if err != nil {
		return nil, err
	}
	bandMin, bandMax, err := s.config.BandRange(ctx)
	if err != nil {
		return nil, err
	}
	pool, err := s.config.PoolTotal(ctx)
	if err != nil {
		return nil, err
	}

	if len(records) != requiredSize {
		return &dtos.BatchSaveResult{
			Success: false,
			GlobalError: fmt.Sprintf("formal member count mismatch: got %d records, want %d",
				len(records), requiredSize),
		}, nil
	}

	var fieldErrors []dtos.ValidationError
	var violating []string
	for _, record := range records {
		if record.Allocated < bandMin || record.Allocated > bandMax {
			fieldErrors = append(fieldErrors, dtos.ValidationError{
				MemberID: record.MemberID,
				Field:    "allocatedAmount",
				Message: fmt.Sprintf("allocation %d not within [%d, %d]",
					record.Allocated, bandMin, bandMax),
			})
			violating = append(violating, record.MemberID)
		}
	}

	total := 0
	for _, record := range records {
		total += record.Allocated
	}
	if total > pool {
		return &dtos.BatchSaveResult{
			Success:            false,
			GlobalError:        fmt.Sprintf("allocated total %d exceeds pool ceiling %d", total, pool),
			Errors:             fieldErrors,
			ViolatingMemberIDs: violating,
		}, nil
	}

	if len(fieldErrors) > 0 {
		return &dtos.BatchSaveResult{
			Success:            false,
			Errors:             fieldErrors,
			ViolatingMemberIDs: violating,
		}, nil
	}

	return &dtos.BatchSaveResult{Success: true}, nil
}

// ArchiveRecords freezes the open cycle. Archiving is terminal: archived
// records only feed historical reporting and demotion scans.
func (s *AllocationService) ArchiveRecords(ctx context.Context, operatorID string) (int, error) {
	current, err := s.compensations.FindUnarchived(ctx)
	if err != nil {
		return 0, err
	}
	if len(current) == 0 {
		return 0, nil
	}

	now := time.Now()
	memberIDs := make([]string, 0, len(current))
	toSave := make([]*gormModels.CompensationRecord, 0, len(current))
	for i := range current {
		current[i].Archived = true
		current[i].ArchivedAt = &now
		memberIDs = append(memberIDs, current[i].MemberID)
		toSave = append(toSave, &current[i])
	}

	if err := s.compensations.SaveAll(ctx, toSave); err != nil {
		return 0, err
	}

	if err := s.audits.Append(ctx, &gormModels.AuditLog{
		OperatorID:    operatorID,
		OperationType: constants.OpCompensationArchive,
		OperationDetail: fmt.Sprintf("archived %d compensation records, member IDs: %s",
			len(current), strings.Join(memberIDs, ", ")),
	}); err != nil {
		return 0, err
	}

	s.cache.Delete(reportCacheKey)

	logging.Info("compensation records archived",
		"count", len(current),
		"operator_id", operatorID,
	)
	return len(current), nil
}

// GenerateReport summarizes the open cycle against the configured pool.
// The snapshot is cached briefly and evicted on every write path.
func (s *AllocationService) GenerateReport(ctx context.Context) (*dtos.CompensationReport, error) {
	cached, err := s.cache.GetOrSet(reportCacheKey, reportCacheTTL, func() (any, error) {
		return s.buildReport(ctx)
	})
	if err != nil {
		return nil, err
	}

	if report, ok := cached.(*dtos.CompensationReport); ok {
		return report, nil
	}
	// Redis round-trips lose the concrete type; rebuild from the store.
	return s.buildReport(ctx)
}

func (s *AllocationService) buildReport(ctx context.Context) (*dtos.CompensationReport, error) {
	current, err := s.compensations.FindUnarchived(ctx)
	if err != nil {
		return nil, err
	}
	if len(current) == 0 {
		return nil, common.NotFound(constants.MsgNoUnarchivedRecords)
	}

	pool, err := s.config.PoolTotal(ctx)
	if err != nil {
		return nil, err
	}

	details := make([]dtos.MemberAllocationDetail, 0, len(current))
	allocatedTotal := 0
	for _, record := range current {
		username := "unknown"
		role := "unknown"
		member, err := s.members.FindByID(ctx, record.MemberID)
		if err != nil {
			return nil, err
		}
		if member != nil {
			username = member.Username
			role = member.Role.String()
		}

		details = append(details, dtos.MemberAllocationDetail{
			MemberID:    record.MemberID,
			Username:    username,
			Role:        role,
			BasePoints:  record.BasePoints,
			BonusPoints: record.BonusPoints,
			Deductions:  record.Deductions,
			TotalPoints: record.TotalPoints,
			Allocated:   record.Allocated,
			Remark:      record.Remark,
		})
		allocatedTotal += record.Allocated
	}

	return &dtos.CompensationReport{
		GeneratedAt:     time.Now(),
		PoolTotal:       pool,
		AllocatedTotal:  allocatedTotal,
		RemainingAmount: pool - allocatedTotal,
		Details:         details,
	}, nil
}

// ListCompensationMembers joins roster members with their unarchived
// record for the operator grid, leaders first.
func (s *AllocationService) ListCompensationMembers(ctx context.Context) ([]dtos.MemberCompensationRow, error) {
	members, err := s.members.FindByRoles(ctx,
		constants.RoleLeader, constants.RoleViceLeader, constants.RoleMember, constants.RoleIntern)
	if err != nil {
		return nil, err
	}

	current, err := s.compensations.FindUnarchived(ctx)
	if err != nil {
		return nil, err
	}
	byMember := make(map[string]*gormModels.CompensationRecord, len(current))
	for i := range current {
		byMember[current[i].MemberID] = &current[i]
	}

	rows := make([]dtos.MemberCompensationRow, 0, len(members))
	for _, order := range []constants.Role{
		constants.RoleLeader, constants.RoleViceLeader, constants.RoleMember, constants.RoleIntern,
	} {
		for _, member := range members {
			if member.Role != order {
				continue
			}
			row := dtos.MemberCompensationRow{
				MemberID: member.ID,
				Username: member.Username,
				Role:     member.Role.String(),
			}
			if record, ok := byMember[member.ID]; ok {
				row.RecordID = &record.ID
				row.BasePoints = record.BasePoints
				row.BonusPoints = record.BonusPoints
				row.Deductions = record.Deductions
				row.TotalPoints = record.TotalPoints
				row.Allocated = record.Allocated
				row.Remark = record.Remark
				version := record.Version
				row.Version = &version
			}
			rows = append(rows, row)
		}
	}

	return rows, nil
}

// UpdateRecord applies a partial edit to one record; nil patch fields are
// left untouched.
func (s *AllocationService) UpdateRecord(ctx context.Context, id string, patch *dtos.CompensationRecordPatch) (*gormModels.CompensationRecord, error) {
	record, err := s.compensations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, common.NotFound(constants.MsgRecordNotFound)
	}

	if patch.BasePoints != nil {
		record.BasePoints = *patch.BasePoints
	}
	if patch.BonusPoints != nil {
		record.BonusPoints = *patch.BonusPoints
	}
	if patch.Deductions != nil {
		record.Deductions = *patch.Deductions
	}
	if patch.TotalPoints != nil {
		record.TotalPoints = *patch.TotalPoints
	}
	if patch.Allocated != nil {
		record.Allocated = *patch.Allocated
	}
	if patch.Remark != nil {
		record.Remark = patch.Remark
	}

	if err := s.compensations.Save(ctx, record); err != nil {
		return nil, err
	}
	s.cache.Delete(reportCacheKey)

	return record, nil
}

// CalculateMemberScore derives the scoring breakdown for one member's
// dimension input. It is a pure computation over live configuration.
func (s *AllocationService) CalculateMemberScore(ctx context.Context, input dtos.ScoreInput) (*dtos.ScoreResult, error) {
	if err := validateScoreInput(input); err != nil {
		return nil, err
	}

	tiers, err := s.config.CheckinTiers(ctx)
	if err != nil {
		return nil, err
	}
	ratio, err := s.config.PointsConversionRatio(ctx)
	if err != nil {
		return nil, err
	}

	checkinPoints, checkinLevel := lookupCheckinTier(input.CheckinCount, tiers)
	violationPoints := input.ViolationHandlingCount * 3
	announcementPoints := input.AnnouncementCount * 5

	basePoints := input.CommunityActivityPoints +
		checkinPoints +
		violationPoints +
		input.TaskCompletionPoints +
		announcementPoints

	bonusPoints := input.EventHostingPoints +
		input.BirthdayBonusPoints +
		input.MonthlyExcellentPoints

	totalPoints := basePoints + bonusPoints

	return &dtos.ScoreResult{
		BasePoints:              basePoints,
		BonusPoints:             bonusPoints,
		TotalPoints:             totalPoints,
		ConvertedAmount:         totalPoints * ratio,
		CheckinPoints:           checkinPoints,
		CheckinLevel:            checkinLevel,
		ViolationHandlingPoints: violationPoints,
		AnnouncementPoints:      announcementPoints,
	}, nil
}

// lookupCheckinTier finds the tier covering count. Negative counts are
// treated as zero.
func lookupCheckinTier(count int, tiers []dtos.CheckinTier) (int, string) {
	if count < 0 {
		count = 0
	}
	for _, tier := range tiers {
		if count >= tier.MinCount && count <= tier.MaxCount {
			return tier.Points, tier.Label
		}
	}
	return 0, ""
}

func validateScoreInput(input dtos.ScoreInput) error {
	if input.CommunityActivityPoints < 0 || input.CommunityActivityPoints > 100 {
		return common.InvalidState("community activity points out of range [0, 100]: %d", input.CommunityActivityPoints)
	}
	if input.TaskCompletionPoints < 0 || input.TaskCompletionPoints > 100 {
		return common.InvalidState("task completion points out of range [0, 100]: %d", input.TaskCompletionPoints)
	}
	if input.ViolationHandlingCount < 0 {
		return common.InvalidState("violation handling count cannot be negative: %d", input.ViolationHandlingCount)
	}
	if input.AnnouncementCount < 0 {
		return common.InvalidState("announcement count cannot be negative: %d", input.AnnouncementCount)
	}
	if input.EventHostingPoints < 0 || input.EventHostingPoints > 250 {
		return common.InvalidState("event hosting points out of range [0, 250]: %d", input.EventHostingPoints)
	}
	if input.BirthdayBonusPoints < 0 || input.BirthdayBonusPoints > 25 {
		return common.InvalidState("birthday bonus points out of range [0, 25]: %d", input.BirthdayBonusPoints)
	}
	if input.MonthlyExcellentPoints < 0 || input.MonthlyExcellentPoints > 30 {
		return common.InvalidState("monthly excellence points out of range [0, 30]: %d", input.MonthlyExcellentPoints)
	}
	return nil
}
