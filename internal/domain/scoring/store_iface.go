package scoring

import (
	"context"
	"time"
)

// StoreAPI is the persistence boundary of the scoring orchestrator: the
// window-bounded reads the data fetcher assembles a Dataset from, plus the
// score/snapshot upserts.
type StoreAPI interface {
	CompletedTasks(ctx context.Context, userID string, windowStart, windowEnd time.Time) ([]CompletedTask, error)
	StatusEventsForTasks(ctx context.Context, taskIDs []string) (map[string][]StatusEvent, error)
	ActiveTaskCount(ctx context.Context, userID string) (int, error)
	CarryForwardEventCount(ctx context.Context, userID string, windowStart, windowEnd time.Time) (int, error)
	PlannedDayCount(ctx context.Context, userID string, windowStart, windowEnd time.Time) (int, error)
	AssignedKPIBucketCount(ctx context.Context, userID string) (int, error)
	DepartmentWeights(ctx context.Context, departmentID string) (Weights, bool, error)
	UpsertWeights(ctx context.Context, departmentID string, weights Weights) error
	ActiveUsers(ctx context.Context) ([]UserRef, error)
	UpsertScore(ctx context.Context, result Result) error
	UpsertSnapshot(ctx context.Context, snapshot Snapshot) error
	GetScore(ctx context.Context, userID string) (Result, error)
	ListSnapshots(ctx context.Context, userID string, limit int) ([]Snapshot, error)
}
