package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"pollen/management/internal/common"
	"pollen/management/internal/constants"
	"pollen/management/internal/db/repositories"
	"pollen/management/internal/logging"
	"pollen/management/internal/models/dtos"
	gormModels "pollen/management/internal/models/gorm"
)

// RotationService owns the eligibility scans and the promotion swap. It is
// the only component allowed to rotate members between the trial pool and
// the formal roster.
type RotationService struct {
	db            *gorm.DB
	members       *repositories.MemberRepository
	points        PointsStore
	compensations *repositories.CompensationRepository
	roleChanges   *repositories.RoleChangeRepository
	config        ConfigProvider

	// Serializes swaps so two rotations cannot both pass a stale
	// invariant check.
	swapMu sync.Mutex
}

func NewRotationService(
	db *gorm.DB,
	members *repositories.MemberRepository,
	points PointsStore,
	compensations *repositories.CompensationRepository,
	roleChanges *repositories.RoleChangeRepository,
	config ConfigProvider,
) *RotationService {
	return &RotationService{
		db:            db,
		members:       members,
		points:        points,
		compensations: compensations,
		roleChanges:   roleChanges,
		config:        config,
	}
}

// monthWindow returns the half-open calendar-month window containing t.
func monthWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}

// previousMonthWindow returns the window of the calendar month back months
// before the one containing t. It snaps to the first of the month before
// stepping, since AddDate normalizes nonexistent dates (March 31 minus one
// month must be February, not March 3).
func previousMonthWindow(t time.Time, back int) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return monthWindow(first.AddDate(0, -back, 0))
}

// ScanPromotionCandidates returns the trial members whose current
// calendar-month point sum has reached the promotion threshold. The
// comparison is inclusive: ties qualify.
func (s *RotationService) ScanPromotionCandidates(ctx context.Context) ([]gormModels.Member, error) {
	thresholds, err := s.config.RotationThresholds(ctx)
	if err != nil {
		return nil, err
	}

	interns, err := s.members.FindByRole(ctx, constants.RoleIntern)
	if err != nil {
		return nil, err
	}

	start, end := monthWindow(time.Now())
	eligible := make([]gormModels.Member, 0, len(interns))

	for _, intern := range interns {
		sum, err := s.points.SumByMemberAndPeriod(ctx, intern.ID, start, end)
		if err != nil {
			return nil, err
		}
		if sum >= thresholds.PromotionPointsThreshold {
			eligible = append(eligible, intern)
		}
	}

	return eligible, nil
}

// ScanDemotionCandidates returns the formal members whose most recent N
// archived compensation records all fell strictly below the demotion
// threshold. Members with fewer than N archived records never qualify.
func (s *RotationService) ScanDemotionCandidates(ctx context.Context) ([]gormModels.Member, error) {
	thresholds, err := s.config.RotationThresholds(ctx)
	if err != nil {
		return nil, err
	}

	formal, err := s.members.FindByRoles(ctx, constants.FormalRoles...)
	if err != nil {
		return nil, err
	}

	candidates := make([]gormModels.Member, 0, len(formal))

	for _, member := range formal {
		archived, err := s.compensations.FindArchivedByMemberDesc(ctx, member.ID)
		if err != nil {
			return nil, err
		}
		if len(archived) < thresholds.DemotionConsecutiveMonths {
			continue
		}

		belowForAll := true
		for i := 0; i < thresholds.DemotionConsecutiveMonths; i++ {
			if archived[i].TotalPoints >= thresholds.DemotionAllocationThreshold {
				belowForAll = false
				break
			}
		}
		if belowForAll {
			candidates = append(candidates, member)
		}
	}

	return candidates, nil
}

// ScanDismissalCandidates evaluates each trial member's previous N
// calendar months of point sums and flags those strictly below the
// dismissal threshold in every one of them. Already-flagged members are
// returned but not rewritten, so repeated scans are idempotent.
func (s *RotationService) ScanDismissalCandidates(ctx context.Context) ([]gormModels.Member, error) {
	thresholds, err := s.config.RotationThresholds(ctx)
	if err != nil {
		return nil, err
	}

	interns, err := s.members.FindByRole(ctx, constants.RoleIntern)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	flagged := make([]gormModels.Member, 0, len(interns))

	for i := range interns {
		intern := &interns[i]

		allBelow := true
		for back := 1; back <= thresholds.DismissalConsecutiveMonths; back++ {
			start, end := previousMonthWindow(now, back)
			sum, err := s.points.SumByMemberAndPeriod(ctx, intern.ID, start, end)
			if err != nil {
				return nil, err
			}
			if sum >= thresholds.DismissalPointsThreshold {
				allBelow = false
				break
			}
		}
		if !allBelow {
			continue
		}

		if !intern.PendingDismissal {
			intern.PendingDismissal = true
			if err := s.members.Save(ctx, intern); err != nil {
				return nil, err
			}
			logging.Info("trial member flagged for dismissal",
				"member_id", intern.ID,
				"months", thresholds.DismissalConsecutiveMonths,
				"threshold", thresholds.DismissalPointsThreshold,
			)
		}
		flagged = append(flagged, *intern)
	}

	return flagged, nil
}

// GetPendingDismissalList returns trial members awaiting dismissal
// approval.
func (s *RotationService) GetPendingDismissalList(ctx context.Context) ([]gormModels.Member, error) {
	interns, err := s.members.FindByRole(ctx, constants.RoleIntern)
	if err != nil {
		return nil, err
	}

	pending := make([]gormModels.Member, 0, len(interns))
	for _, intern := range interns {
		if intern.PendingDismissal {
			pending = append(pending, intern)
		}
	}
	return pending, nil
}

// TriggerPromotionReview reports whether a review is actionable: there
// must be both a trial member ready to rise and a formal member ready to
// rotate out. The two scans run concurrently; both are read-only.
func (s *RotationService) TriggerPromotionReview(ctx context.Context) (*dtos.ReviewTriggerResult, error) {
	var promotionEligible, demotionCandidates []gormModels.Member

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		promotionEligible, err = s.ScanPromotionCandidates(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		demotionCandidates, err = s.ScanDemotionCandidates(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &dtos.ReviewTriggerResult{
		Triggered:          len(promotionEligible) > 0 && len(demotionCandidates) > 0,
		PromotionEligible:  len(promotionEligible),
		DemotionCandidates: len(demotionCandidates),
	}

	if result.Triggered {
		logging.Info("promotion review triggered",
			"promotion_eligible", result.PromotionEligible,
			"demotion_candidates", result.DemotionCandidates,
		)
	} else {
		logging.Info("promotion review conditions not met",
			"promotion_eligible", result.PromotionEligible,
			"demotion_candidates", result.DemotionCandidates,
		)
	}

	return result, nil
}

// ExecutePromotion atomically swaps a trial member into the formal roster
// and rotates a formal member out. The whole swap runs in one transaction:
// member writes, a fresh roster count, the invariant gate, and the history
// appends either all commit or none do.
func (s *RotationService) ExecutePromotion(ctx context.Context, trialMemberID, formalMemberID string) error {
	s.swapMu.Lock()
	defer s.swapMu.Unlock()

	requiredSize, err := s.config.FormalRosterSize(ctx)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		members := s.members.WithTx(tx)

		trial, err := members.FindByID(ctx, trialMemberID)
		if err != nil {
			return err
		}
		if trial == nil {
			return common.NotFound(constants.MsgTrialMemberNotFound)
		}

		formal, err := members.FindByID(ctx, formalMemberID)
		if err != nil {
			return err
		}
		if formal == nil {
			return common.NotFound(constants.MsgFormalMemberNotFound)
		}

		if trial.Role != constants.RoleIntern {
			return common.InvalidState(constants.MsgNotTrialMember)
		}
		if !formal.Role.IsFormal() {
			return common.InvalidState(constants.MsgNotFormalMember)
		}

		trialOldRole := trial.Role
		formalOldRole := formal.Role

		// The promoted member always lands on the member role, even when
		// the vacated seat was vice_leader.
		trial.Role = constants.RoleMember
		formal.Role = constants.RoleIntern

		if err := members.Save(ctx, trial); err != nil {
			return err
		}
		if err := members.Save(ctx, formal); err != nil {
			return err
		}

		// Re-count from the system of record, not from the two members in
		// hand, so concurrent roster mutations surface here.
		viceLeaders, err := members.CountByRoles(ctx, constants.RoleViceLeader)
		if err != nil {
			return err
		}
		regulars, err := members.CountByRoles(ctx, constants.RoleMember)
		if err != nil {
			return err
		}
		if !CheckRosterInvariant(viceLeaders, regulars, requiredSize) {
			return common.InvariantViolation(
				"formal roster count is %d after rotation, want %d",
				viceLeaders+regulars, requiredSize)
		}

		roleChanges := s.roleChanges.WithTx(tx)
		if err := roleChanges.Append(ctx, &gormModels.RoleChangeRecord{
			MemberID:  trial.ID,
			OldRole:   trialOldRole,
			NewRole:   trial.Role,
			ChangedBy: constants.ChangedBySystem,
		}); err != nil {
			return err
		}
		if err := roleChanges.Append(ctx, &gormModels.RoleChangeRecord{
			MemberID:  formal.ID,
			OldRole:   formalOldRole,
			NewRole:   formal.Role,
			ChangedBy: constants.ChangedBySystem,
		}); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return err
	}

	logging.Info("rotation completed",
		"promoted_member_id", trialMemberID,
		"demoted_member_id", formalMemberID,
	)
	return nil
}

// GetRoleHistory returns a member's role change log, newest first.
func (s *RotationService) GetRoleHistory(ctx context.Context, memberID string) ([]gormModels.RoleChangeRecord, error) {
	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, common.NotFound("member not found")
	}
	return s.roleChanges.ListByMemberDesc(ctx, memberID)
}
