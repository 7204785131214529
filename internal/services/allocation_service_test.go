package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"pollen/management/internal/common"
	"pollen/management/internal/constants"
	"pollen/management/internal/db/repositories"
	"pollen/management/internal/models/dtos"
	gormModels "pollen/management/internal/models/gorm"
)

func newAllocationService(db *gorm.DB, points PointsStore, cfg ConfigProvider) *AllocationService {
	return NewAllocationService(
		repositories.NewMemberRepository(db),
		points,
		repositories.NewCompensationRepository(db),
		repositories.NewAuditRepository(db),
		cfg,
		common.NewCacheService(60, 120),
	)
}

func seedFormalRoster(t *testing.T, db *gorm.DB) []*gormModels.Member {
	t.Helper()
	members := []*gormModels.Member{
		createMember(t, db, "alpha", constants.RoleViceLeader),
		createMember(t, db, "bravo", constants.RoleMember),
		createMember(t, db, "charlie", constants.RoleMember),
		createMember(t, db, "delta", constants.RoleMember),
		createMember(t, db, "echo", constants.RoleMember),
	}
	return members
}

func TestCalculateAllocations_ConservesPool(t *testing.T) {
	db := setupTestDB(t)
	cfg := defaultStubConfig()
	members := seedFormalRoster(t, db)

	sums := map[string]int{
		members[0].ID: 450,
		members[1].ID: 300,
		members[2].ID: 200,
		members[3].ID: 100,
		members[4].ID: 0,
	}
	points := &mockPointsStore{
		sumByMemberFunc: func(ctx context.Context, memberID string) (int, error) {
			return sums[memberID], nil
		},
	}
	service := newAllocationService(db, points, cfg)

	records, err := service.CalculateAllocations(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("Expected 5 records, got %d", len(records))
	}

	total := 0
	for _, record := range records {
		if record.Allocated < cfg.bandMin || record.Allocated > cfg.bandMax {
			t.Errorf("Allocation %d for member %s outside band [%d, %d]",
				record.Allocated, record.MemberID, cfg.bandMin, cfg.bandMax)
		}
		total += record.Allocated
	}
	if total != cfg.pool {
		t.Errorf("Expected allocations to sum to %d, got %d", cfg.pool, total)
	}

	var persisted int64
	if err := db.Model(&gormModels.CompensationRecord{}).Count(&persisted).Error; err != nil {
		t.Fatalf("Failed to count records: %v", err)
	}
	if persisted != 5 {
		t.Errorf("Expected 5 persisted records, got %d", persisted)
	}
}

func TestCalculateAllocations_ZeroPointsSplitsEvenly(t *testing.T) {
	db := setupTestDB(t)
	cfg := defaultStubConfig()
	seedFormalRoster(t, db)

	service := newAllocationService(db, &mockPointsStore{}, cfg)

	records, err := service.CalculateAllocations(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, record := range records {
		if record.Allocated != 400 {
			t.Errorf("Expected even split of 400, member %s got %d", record.MemberID, record.Allocated)
		}
	}
}

func TestCalculateAllocations_RosterSizeMismatch(t *testing.T) {
	db := setupTestDB(t)
	cfg := defaultStubConfig()
	createMember(t, db, "alpha", constants.RoleMember)
	createMember(t, db, "bravo", constants.RoleMember)

	service := newAllocationService(db, &mockPointsStore{}, cfg)

	_, err := service.CalculateAllocations(context.Background())
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	bizErr, ok := common.AsBusinessError(err)
	if !ok || bizErr.Kind != common.KindInvalidState {
		t.Errorf("Expected invalid state error, got %v", err)
	}
}

func TestAdjustToPool_ZeroTotalRemainder(t *testing.T) {
	adjusted := adjustToPool([]int{0, 0, 0, 0, 0}, 0, 2002)

	want := []int{401, 401, 400, 400, 400}
	for i, v := range adjusted {
		if v != want[i] {
			t.Errorf("Index %d: expected %d, got %d", i, want[i], v)
		}
	}
}

func TestAdjustToPool_ScalesToExactPool(t *testing.T) {
	raw := []int{900, 600, 400, 200, 0}
	adjusted := adjustToPool(raw, 2100, 2000)

	total := 0
	for _, v := range adjusted {
		total += v
	}
	if total != 2000 {
		t.Errorf("Expected scaled total 2000, got %d", total)
	}
}

func TestPerformanceAdjust_RedistributesClampedSurplus(t *testing.T) {
	// One member far above the cap; the excess flows to the others.
	out := performanceAdjust([]int{900, 300, 300, 300, 200}, 200, 400)

	want := []int{400, 400, 400, 400, 400}
	total := 0
	for i, v := range out {
		if v != want[i] {
			t.Errorf("Index %d: expected %d, got %d", i, want[i], v)
		}
		total += v
	}
	if total != 2000 {
		t.Errorf("Expected total 2000, got %d", total)
	}
}

func TestPerformanceAdjust_RaisesBelowMinimum(t *testing.T) {
	// The low member rises to the floor; the difference drains from the top.
	out := performanceAdjust([]int{390, 380, 370, 360, 100}, 200, 400)

	total := 0
	for _, v := range out {
		if v < 200 || v > 400 {
			t.Errorf("Value %d outside band [200, 400]", v)
		}
		total += v
	}
	if total != 1600 {
		t.Errorf("Expected total conserved at 1600, got %d", total)
	}
	if out[4] != 200 {
		t.Errorf("Expected low member raised to 200, got %d", out[4])
	}
}

func TestValidateBatch(t *testing.T) {
	db := setupTestDB(t)
	cfg := defaultStubConfig()
	service := newAllocationService(db, &mockPointsStore{}, cfg)
	ctx := context.Background()

	inBand := func(amounts ...int) []gormModels.CompensationRecord {
		records := make([]gormModels.CompensationRecord, len(amounts))
		for i, a := range amounts {
			records[i] = gormModels.CompensationRecord{MemberID: "m", Allocated: a}
		}
		return records
	}

	if err := service.ValidateBatch(ctx, inBand(400, 400, 400, 400, 400)); err != nil {
		t.Errorf("Expected valid batch, got %v", err)
	}

	if err := service.ValidateBatch(ctx, inBand(400, 400)); err == nil {
		t.Error("Expected count mismatch error, got nil")
	}

	if err := service.ValidateBatch(ctx, inBand(450, 300, 300, 300, 300)); err == nil {
		t.Error("Expected band violation error, got nil")
	}

	// Each value in band but the sum overruns the pool ceiling.
	cfg.pool = 1500
	if err := service.ValidateBatch(ctx, inBand(400, 400, 400, 200, 200)); err == nil {
		t.Error("Expected pool ceiling error, got nil")
	}
	cfg.pool = 2000
}

func TestBatchSaveWithValidation_CollectsAllViolations(t *testing.T) {
	db := setupTestDB(t)
	cfg := defaultStubConfig()
	service := newAllocationService(db, &mockPointsStore{}, cfg)

	records := []*gormModels.CompensationRecord{
		{MemberID: "m0", Allocated: 450},
		{MemberID: "m1", Allocated: 300},
		{MemberID: "m2", Allocated: 150},
		{MemberID: "m3", Allocated: 300},
		{MemberID: "m4", Allocated: 300},
	}

	result, err := service.BatchSaveWithValidation(context.Background(), records, "operator-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Success {
		t.Fatal("Expected validation failure")
	}
	if len(result.Errors) != 2 {
		t.Fatalf("Expected exactly 2 field errors, got %d", len(result.Errors))
	}
	if result.Errors[0].MemberID != "m0" || result.Errors[1].MemberID != "m2" {
		t.Errorf("Expected violations for m0 and m2, got %v", result.Errors)
	}
	for _, fieldErr := range result.Errors {
		if fieldErr.Field != "allocatedAmount" {
			t.Errorf("Expected field allocatedAmount, got %s", fieldErr.Field)
		}
	}
	if len(result.ViolatingMemberIDs) != 2 {
		t.Errorf("Expected 2 violating member IDs, got %d", len(result.ViolatingMemberIDs))
	}

	// Nothing may be persisted on a rejected batch.
	var count int64
	if err := db.Model(&gormModels.CompensationRecord{}).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count records: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no persisted records, got %d", count)
	}
}

func TestBatchSaveWithValidation_Success(t *testing.T) {
	db := setupTestDB(t)
	cfg := defaultStubConfig()
	service := newAllocationService(db, &mockPointsStore{}, cfg)

	records := []*gormModels.CompensationRecord{
		{MemberID: "m0", Allocated: 400},
		{MemberID: "m1", Allocated: 400},
		{MemberID: "m2", Allocated: 400},
		{MemberID: "m3", Allocated: 400},
		{MemberID: "m4", Allocated: 400},
	}

	result, err := service.BatchSaveWithValidation(context.Background(), records, "operator-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !result.Success {
		t.Fatalf("Expected success, got %+v", result)
	}

	var count int64
	if err := db.Model(&gormModels.CompensationRecord{}).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count records: %v", err)
	}
	if count != 5 {
		t.Errorf("Expected 5 persisted records, got %d", count)
	}

	var audit gormModels.AuditLog
	if err := db.First(&audit).Error; err != nil {
		t.Fatalf("Expected audit log entry: %v", err)
	}
	if audit.OperationType != constants.OpCompensationBatchSave {
		t.Errorf("Expected operation type %s, got %s", constants.OpCompensationBatchSave, audit.OperationType)
	}
	if audit.OperatorID != "operator-1" {
		t.Errorf("Expected operator-1, got %s", audit.OperatorID)
	}
}

func TestBatchSaveWithValidation_VersionConflict(t *testing.T) {
	db := setupTestDB(t)
	cfg := defaultStubConfig()
	cfg.rosterSize = 1
	service := newAllocationService(db, &mockPointsStore{}, cfg)
	ctx := context.Background()

	seeded := &gormModels.CompensationRecord{MemberID: "m0", Allocated: 300}
	if err := db.Create(seeded).Error; err != nil {
		t.Fatalf("Failed to seed record: %v", err)
	}

	// A concurrent writer bumps the version after our read.
	if err := db.Model(&gormModels.CompensationRecord{}).
		Where("id = ?", seeded.ID).
		Update("version", 1).Error; err != nil {
		t.Fatalf("Failed to bump version: %v", err)
	}

	stale := &gormModels.CompensationRecord{
		ID:        seeded.ID,
		MemberID:  "m0",
		Allocated: 350,
		Version:   0,
	}
	result, err := service.BatchSaveWithValidation(ctx, []*gormModels.CompensationRecord{stale}, "operator-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Success {
		t.Fatal("Expected version conflict failure")
	}
	if result.GlobalError != constants.MsgConcurrentConflict {
		t.Errorf("Expected global error %q, got %q", constants.MsgConcurrentConflict, result.GlobalError)
	}

	// The stale write must not land.
	var reloaded gormModels.CompensationRecord
	if err := db.First(&reloaded, "id = ?", seeded.ID).Error; err != nil {
		t.Fatalf("Failed to reload record: %v", err)
	}
	if reloaded.Allocated != 300 {
		t.Errorf("Expected allocation unchanged at 300, got %d", reloaded.Allocated)
	}
}

func TestArchiveRecords(t *testing.T) {
	db := setupTestDB(t)
	cfg := defaultStubConfig()
	service := newAllocationService(db, &mockPointsStore{}, cfg)
	ctx := context.Background()

	for _, memberID := range []string{"m0", "m1", "m2"} {
		record := &gormModels.CompensationRecord{MemberID: memberID, Allocated: 300}
		if err := db.Create(record).Error; err != nil {
			t.Fatalf("Failed to seed record: %v", err)
		}
	}

	archived, err := service.ArchiveRecords(ctx, "operator-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if archived != 3 {
		t.Errorf("Expected 3 archived, got %d", archived)
	}

	var remaining int64
	if err := db.Model(&gormModels.CompensationRecord{}).
		Where("archived = ?", false).
		Count(&remaining).Error; err != nil {
		t.Fatalf("Failed to count unarchived: %v", err)
	}
	if remaining != 0 {
		t.Errorf("Expected 0 unarchived records, got %d", remaining)
	}

	// Archiving an empty cycle is a no-op, not an error.
	archived, err = service.ArchiveRecords(ctx, "operator-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if archived != 0 {
		t.Errorf("Expected 0 archived on empty cycle, got %d", archived)
	}
}

func TestGenerateReport(t *testing.T) {
	db := setupTestDB(t)
	cfg := defaultStubConfig()
	service := newAllocationService(db, &mockPointsStore{}, cfg)
	ctx := context.Background()

	member := createMember(t, db, "alpha", constants.RoleMember)
	record := &gormModels.CompensationRecord{MemberID: member.ID, Allocated: 350, TotalPoints: 175}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("Failed to seed record: %v", err)
	}

	report, err := service.GenerateReport(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.PoolTotal != 2000 {
		t.Errorf("Expected pool 2000, got %d", report.PoolTotal)
	}
	if report.AllocatedTotal != 350 {
		t.Errorf("Expected allocated total 350, got %d", report.AllocatedTotal)
	}
	if report.RemainingAmount != 1650 {
		t.Errorf("Expected remaining 1650, got %d", report.RemainingAmount)
	}
	if len(report.Details) != 1 || report.Details[0].Username != "alpha" {
		t.Errorf("Expected detail row for alpha, got %v", report.Details)
	}
}

func TestGenerateReport_NoOpenCycle(t *testing.T) {
	db := setupTestDB(t)
	service := newAllocationService(db, &mockPointsStore{}, defaultStubConfig())

	_, err := service.GenerateReport(context.Background())
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	bizErr, ok := common.AsBusinessError(err)
	if !ok || bizErr.Kind != common.KindNotFound {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestListCompensationMembers_Ordering(t *testing.T) {
	db := setupTestDB(t)
	service := newAllocationService(db, &mockPointsStore{}, defaultStubConfig())

	createMember(t, db, "rook", constants.RoleIntern)
	createMember(t, db, "queen", constants.RoleViceLeader)
	createMember(t, db, "king", constants.RoleLeader)
	createMember(t, db, "pawn", constants.RoleMember)

	rows, err := service.ListCompensationMembers(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("Expected 4 rows, got %d", len(rows))
	}

	wantOrder := []string{"king", "queen", "pawn", "rook"}
	for i, want := range wantOrder {
		if rows[i].Username != want {
			t.Errorf("Row %d: expected %s, got %s", i, want, rows[i].Username)
		}
	}
}

func TestUpdateRecord(t *testing.T) {
	db := setupTestDB(t)
	service := newAllocationService(db, &mockPointsStore{}, defaultStubConfig())
	ctx := context.Background()

	record := &gormModels.CompensationRecord{MemberID: "m0", Allocated: 300}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("Failed to seed record: %v", err)
	}

	newAllocation := 380
	updated, err := service.UpdateRecord(ctx, record.ID, &dtos.CompensationRecordPatch{
		Allocated: &newAllocation,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if updated.Allocated != 380 {
		t.Errorf("Expected allocation 380, got %d", updated.Allocated)
	}

	_, err = service.UpdateRecord(ctx, "missing", &dtos.CompensationRecordPatch{})
	if err == nil {
		t.Fatal("Expected error for missing record, got nil")
	}
	bizErr, ok := common.AsBusinessError(err)
	if !ok || bizErr.Kind != common.KindNotFound {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestCalculateMemberScore(t *testing.T) {
	db := setupTestDB(t)
	service := newAllocationService(db, &mockPointsStore{}, defaultStubConfig())

	result, err := service.CalculateMemberScore(context.Background(), dtos.ScoreInput{
		CommunityActivityPoints: 50,
		CheckinCount:            45,
		ViolationHandlingCount:  2,
		TaskCompletionPoints:    40,
		AnnouncementCount:       1,
		EventHostingPoints:      100,
		BirthdayBonusPoints:     10,
		MonthlyExcellentPoints:  20,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.CheckinPoints != 30 || result.CheckinLevel != "good" {
		t.Errorf("Expected checkin tier good/30, got %s/%d", result.CheckinLevel, result.CheckinPoints)
	}
	if result.ViolationHandlingPoints != 6 {
		t.Errorf("Expected 6 violation points, got %d", result.ViolationHandlingPoints)
	}
	if result.AnnouncementPoints != 5 {
		t.Errorf("Expected 5 announcement points, got %d", result.AnnouncementPoints)
	}
	if result.BasePoints != 131 {
		t.Errorf("Expected base 131, got %d", result.BasePoints)
	}
	if result.BonusPoints != 130 {
		t.Errorf("Expected bonus 130, got %d", result.BonusPoints)
	}
	if result.TotalPoints != 261 {
		t.Errorf("Expected total 261, got %d", result.TotalPoints)
	}
	if result.ConvertedAmount != 522 {
		t.Errorf("Expected converted 522, got %d", result.ConvertedAmount)
	}
}

func TestCalculateMemberScore_RejectsOutOfRange(t *testing.T) {
	db := setupTestDB(t)
	service := newAllocationService(db, &mockPointsStore{}, defaultStubConfig())

	_, err := service.CalculateMemberScore(context.Background(), dtos.ScoreInput{
		CommunityActivityPoints: 150,
	})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	bizErr, ok := common.AsBusinessError(err)
	if !ok || bizErr.Kind != common.KindInvalidState {
		t.Errorf("Expected invalid state error, got %v", err)
	}
}
