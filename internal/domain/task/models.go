package task

import "time"

type Task struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Status            string     `json:"status"`
	Priority          string     `json:"priority"`
	Size              string     `json:"size"`
	EstimatedMinutes  int        `json:"estimatedMinutes"`
	ActualMinutes     int        `json:"actualMinutes"`
	Deadline          *time.Time `json:"deadline,omitempty"`
	StartDate         *time.Time `json:"startDate,omitempty"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	RequiresReview    bool       `json:"requiresReview"`
	KPIBucketID       string     `json:"kpiBucketId,omitempty"`
	CarryForwardCount int        `json:"carryForwardCount"`
	IsCarriedForward  bool       `json:"isCarriedForward"`
	OwnerID           string     `json:"ownerId"`
	AssignerID        string     `json:"assignerId,omitempty"`
	ReviewerID        string     `json:"reviewerId,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// StatusEvent is one append-only row of a task's transition history.
// FromStatus is empty only for the creation event.
type StatusEvent struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"taskId"`
	FromStatus  string    `json:"fromStatus,omitempty"`
	ToStatus    string    `json:"toStatus"`
	ChangedByID string    `json:"changedById"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CarryForwardEvent struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"taskId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
