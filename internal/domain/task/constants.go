package task

const (
	StatusNew                    = "new"
	StatusAccepted               = "accepted"
	StatusInProgress             = "in_progress"
	StatusOnHold                 = "on_hold"
	StatusCompletedPendingReview = "completed_pending_review"
	StatusReopened               = "reopened"
	StatusClosedApproved         = "closed_approved"

	PriorityUrgentImportant      = "urgent_important"
	PriorityUrgentNotImportant   = "urgent_not_important"
	PriorityNotUrgentImportant   = "not_urgent_important"
	PriorityNotUrgentUnimportant = "not_urgent_unimportant"

	SizeEasy      = "easy"
	SizeMedium    = "medium"
	SizeDifficult = "difficult"

	// MinReasonLength is the shortest accepted justification for
	// transitions into on_hold or reopened.
	MinReasonLength = 10
)

var AllPriorities = []string{
	PriorityUrgentImportant,
	PriorityUrgentNotImportant,
	PriorityNotUrgentImportant,
	PriorityNotUrgentUnimportant,
}

var AllSizes = []string{
	SizeEasy,
	SizeMedium,
	SizeDifficult,
}

var AllStatuses = []string{
	StatusNew,
	StatusAccepted,
	StatusInProgress,
	StatusOnHold,
	StatusCompletedPendingReview,
	StatusReopened,
	StatusClosedApproved,
}
