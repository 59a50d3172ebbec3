package task

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreateTask(ctx context.Context, t Task) (string, error)
	GetTask(ctx context.Context, taskID string) (Task, error)
	ListTasks(ctx context.Context, ownerID, assignerID, status string, limit, offset int) ([]Task, int, error)
	// ApplyTransition updates the task status and appends the status event
	// in a single transaction. stampCompleted also sets completed_at=now().
	ApplyTransition(ctx context.Context, taskID, fromStatus, toStatus, changedByID, reason string, stampCompleted bool) error
	AppendCreationEvent(ctx context.Context, taskID, createdByID string) error
	ListStatusEvents(ctx context.Context, taskID string) ([]StatusEvent, error)
	// CarryForward pushes the deadline, bumps the carry-forward counter and
	// records the carry-forward event atomically.
	CarryForward(ctx context.Context, taskID, userID string, newDeadline time.Time) error
	IsManagerOf(ctx context.Context, managerUserID, ownerUserID string) (bool, error)
}
