package dtos

import (
	"time"

	gormModels "pollen/management/internal/models/gorm"
)

// CheckinTier maps a check-in count range to points and a label.
type CheckinTier struct {
	MinCount int    `json:"minCount"`
	MaxCount int    `json:"maxCount"`
	Points   int    `json:"points"`
	Label    string `json:"label"`
}

// ScoreInput carries the per-dimension counts an operator enters for one
// member before the allocation run.
type ScoreInput struct {
	CommunityActivityPoints int `json:"communityActivityPoints"`
	CheckinCount            int `json:"checkinCount"`
	ViolationHandlingCount  int `json:"violationHandlingCount"`
	TaskCompletionPoints    int `json:"taskCompletionPoints"`
	AnnouncementCount       int `json:"announcementCount"`
	EventHostingPoints      int `json:"eventHostingPoints"`
	BirthdayBonusPoints     int `json:"birthdayBonusPoints"`
	MonthlyExcellentPoints  int `json:"monthlyExcellentPoints"`
}

// ScoreResult is the derived scoring breakdown for a ScoreInput.
type ScoreResult struct {
	BasePoints              int    `json:"basePoints"`
	BonusPoints             int    `json:"bonusPoints"`
	TotalPoints             int    `json:"totalPoints"`
	ConvertedAmount         int    `json:"convertedAmount"`
	CheckinPoints           int    `json:"checkinPoints"`
	CheckinLevel            string `json:"checkinLevel"`
	ViolationHandlingPoints int    `json:"violationHandlingPoints"`
	AnnouncementPoints      int    `json:"announcementPoints"`
}

// BatchSaveRequest is the operator-submitted compensation batch.
type BatchSaveRequest struct {
	OperatorID string                            `json:"operatorId"`
	Records    []gormModels.CompensationRecord   `json:"records"`
}

// ValidationError is one field-level violation inside a batch.
type ValidationError struct {
	MemberID string `json:"memberId"`
	Field    string `json:"field"`
	Message  string `json:"message"`
}

// BatchSaveResult distinguishes field-level errors from a single global
// error so an operator sees every problem in one round trip.
type BatchSaveResult struct {
	Success            bool                             `json:"success"`
	GlobalError        string                           `json:"globalError,omitempty"`
	Errors             []ValidationError                `json:"errors,omitempty"`
	ViolatingMemberIDs []string                         `json:"violatingMemberIds,omitempty"`
	SavedRecords       []*gormModels.CompensationRecord `json:"savedRecords,omitempty"`
}

// ArchiveRequest names the operator closing the current cycle.
type ArchiveRequest struct {
	OperatorID string `json:"operatorId"`
}

// CompensationRecordPatch is a partial update; nil fields are untouched.
type CompensationRecordPatch struct {
	BasePoints  *int    `json:"basePoints,omitempty"`
	BonusPoints *int    `json:"bonusPoints,omitempty"`
	Deductions  *int    `json:"deductions,omitempty"`
	TotalPoints *int    `json:"totalPoints,omitempty"`
	Allocated   *int    `json:"allocatedAmount,omitempty"`
	Remark      *string `json:"remark,omitempty"`
}

// MemberCompensationRow joins a member with their unarchived record for
// the operator grid.
type MemberCompensationRow struct {
	RecordID    *string `json:"recordId,omitempty"`
	MemberID    string  `json:"memberId"`
	Username    string  `json:"username"`
	Role        string  `json:"role"`
	BasePoints  int     `json:"basePoints"`
	BonusPoints int     `json:"bonusPoints"`
	Deductions  int     `json:"deductions"`
	TotalPoints int     `json:"totalPoints"`
	Allocated   int     `json:"allocatedAmount"`
	Remark      *string `json:"remark,omitempty"`
	Version     *int    `json:"version,omitempty"`
}

// MemberAllocationDetail is one row of the pool report.
type MemberAllocationDetail struct {
	MemberID    string  `json:"memberId"`
	Username    string  `json:"username"`
	Role        string  `json:"role"`
	BasePoints  int     `json:"basePoints"`
	BonusPoints int     `json:"bonusPoints"`
	Deductions  int     `json:"deductions"`
	TotalPoints int     `json:"totalPoints"`
	Allocated   int     `json:"allocatedAmount"`
	Remark      *string `json:"remark,omitempty"`
}

// CompensationReport summarizes the current unarchived cycle against the
// configured pool.
type CompensationReport struct {
	GeneratedAt     time.Time                `json:"generatedAt"`
	PoolTotal       int                      `json:"poolTotal"`
	AllocatedTotal  int                      `json:"allocatedTotal"`
	RemainingAmount int                      `json:"remainingAmount"`
	Details         []MemberAllocationDetail `json:"details"`
}
