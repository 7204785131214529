package dtos

// RotationThresholds is the externally supplied rotation configuration.
// All values are read live from the config store, never cached.
type RotationThresholds struct {
	PromotionPointsThreshold    int `json:"promotionPointsThreshold"`
	DemotionAllocationThreshold int `json:"demotionAllocationThreshold"`
	DemotionConsecutiveMonths   int `json:"demotionConsecutiveMonths"`
	DismissalPointsThreshold    int `json:"dismissalPointsThreshold"`
	DismissalConsecutiveMonths  int `json:"dismissalConsecutiveMonths"`
}

// ExecutePromotionRequest names the swap pair for a rotation.
type ExecutePromotionRequest struct {
	TrialMemberID  string `json:"trialMemberId"`
	FormalMemberID string `json:"formalMemberId"`
}

// ReviewTriggerResult reports whether a promotion review is actionable.
type ReviewTriggerResult struct {
	Triggered          bool `json:"triggered"`
	PromotionEligible  int  `json:"promotionEligible"`
	DemotionCandidates int  `json:"demotionCandidates"`
}
