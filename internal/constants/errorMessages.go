package constants

const (
	MsgTrialMemberNotFound  = "trial member not found"
	MsgFormalMemberNotFound = "formal member not found"
	MsgNotTrialMember       = "member is not a trial member, cannot promote"
	MsgNotFormalMember      = "member is not a formal member (member or vice_leader), cannot rotate out"
	MsgRecordNotFound       = "compensation record not found"
	MsgNoUnarchivedRecords  = "no unarchived compensation records"
	MsgConcurrentConflict   = "concurrent modification conflict, refresh and retry"
)

const (
	OpCompensationArchive   = "COMPENSATION_ARCHIVE"
	OpCompensationBatchSave = "COMPENSATION_BATCH_SAVE"
)
