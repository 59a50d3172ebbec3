package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
)

var ErrInvalidWeights = errors.New("weights must be between 0 and 1 and sum to 1.0")

// Service orchestrates score calculation: it is the only scoring layer that
// performs I/O. The engine itself stays a pure function of the dataset.
type Service struct {
	Store StoreAPI
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store, Now: time.Now}
}

// FetchDataset assembles the window-bounded inputs for one user.
func (s *Service) FetchDataset(ctx context.Context, userID string, windowStart, windowEnd time.Time) (Dataset, error) {
	completed, err := s.Store.CompletedTasks(ctx, userID, windowStart, windowEnd)
	if err != nil {
		return Dataset{}, fmt.Errorf("completed tasks: %w", err)
	}

	taskIDs := make([]string, 0, len(completed))
	for _, t := range completed {
		taskIDs = append(taskIDs, t.ID)
	}
	events, err := s.Store.StatusEventsForTasks(ctx, taskIDs)
	if err != nil {
		return Dataset{}, fmt.Errorf("status events: %w", err)
	}

	activeCount, err := s.Store.ActiveTaskCount(ctx, userID)
	if err != nil {
		return Dataset{}, fmt.Errorf("active tasks: %w", err)
	}

	carryForwards, err := s.Store.CarryForwardEventCount(ctx, userID, windowStart, windowEnd)
	if err != nil {
		return Dataset{}, fmt.Errorf("carry-forward events: %w", err)
	}

	plannedDays, err := s.Store.PlannedDayCount(ctx, userID, windowStart, windowEnd)
	if err != nil {
		return Dataset{}, fmt.Errorf("planning days: %w", err)
	}

	assignedKPIs, err := s.Store.AssignedKPIBucketCount(ctx, userID)
	if err != nil {
		return Dataset{}, fmt.Errorf("kpi assignments: %w", err)
	}

	return Dataset{
		WindowStart:        windowStart,
		WindowEnd:          windowEnd,
		CompletedTasks:     completed,
		EventsByTask:       events,
		ActiveTaskCount:    activeCount,
		CarryForwardEvents: carryForwards,
		PlannedDays:        plannedDays,
		AssignedKPIBuckets: assignedKPIs,
	}, nil
}

// WeightsForDepartment returns the department's configured weights, falling
// back to the defaults when the row is absent or malformed.
func (s *Service) WeightsForDepartment(ctx context.Context, departmentID string) Weights {
	weights, found, err := s.Store.DepartmentWeights(ctx, departmentID)
	if err != nil {
		slog.Warn("weights lookup failed, using defaults", "departmentId", departmentID, "err", err)
		return DefaultWeights()
	}
	if !found || !weightsUsable(weights) {
		return DefaultWeights()
	}
	return weights
}

func weightsUsable(w Weights) bool {
	if w.Output < 0 || w.Quality < 0 || w.Reliability < 0 || w.Consistency < 0 {
		return false
	}
	return w.Output+w.Quality+w.Reliability+w.Consistency > 0
}

// CalculateForUser computes one user's score over the given window,
// defaulting to the trailing window ending now. The metadata block is
// populated even when every pillar input is empty.
func (s *Service) CalculateForUser(ctx context.Context, userID, departmentID string, windowStart, windowEnd *time.Time) (Result, error) {
	end := s.Now()
	if windowEnd != nil {
		end = *windowEnd
	}
	start := end.AddDate(0, 0, -DefaultWindowDays)
	if windowStart != nil {
		start = *windowStart
	}

	data, err := s.FetchDataset(ctx, userID, start, end)
	if err != nil {
		return Result{}, err
	}

	weights := s.WeightsForDepartment(ctx, departmentID)
	result := Calculate(userID, data, weights)
	result.CalculatedAt = s.Now()
	return result, nil
}

// CalculateAndSaveForUser recalculates over the fixed trailing window and
// upserts both the current-score row and the ISO-week snapshot.
func (s *Service) CalculateAndSaveForUser(ctx context.Context, userID, departmentID string) (Result, error) {
	result, err := s.CalculateForUser(ctx, userID, departmentID, nil, nil)
	if err != nil {
		return Result{}, err
	}

	if err := s.Store.UpsertScore(ctx, result); err != nil {
		return Result{}, fmt.Errorf("save score: %w", err)
	}

	year, week := result.WindowEnd.ISOWeek()
	if err := s.Store.UpsertSnapshot(ctx, Snapshot{
		UserID:         userID,
		Year:           year,
		Week:           week,
		Output:         result.Output,
		Quality:        result.Quality,
		Reliability:    result.Reliability,
		Consistency:    result.Consistency,
		Composite:      result.Composite,
		CompletedTasks: result.Meta.CompletedTasks,
		ActiveTasks:    result.Meta.ActiveTasks,
		CalculatedAt:   result.CalculatedAt,
	}); err != nil {
		return Result{}, fmt.Errorf("save snapshot: %w", err)
	}

	return result, nil
}

// CalculateAndSaveForAll scores every active user. One user's failure is
// recorded and never aborts the rest; cancellation stops starting new users
// while preserving what already succeeded.
func (s *Service) CalculateAndSaveForAll(ctx context.Context) (BatchResult, error) {
	users, err := s.Store.ActiveUsers(ctx)
	if err != nil {
		return BatchResult{}, fmt.Errorf("list users: %w", err)
	}

	var batch BatchResult
	for _, user := range users {
		if err := ctx.Err(); err != nil {
			batch.Errors = append(batch.Errors, fmt.Sprintf("batch cancelled: %v", err))
			break
		}
		if _, err := s.CalculateAndSaveForUser(ctx, user.ID, user.DepartmentID); err != nil {
			slog.Warn("score calculation failed", "userId", user.ID, "err", err)
			batch.Errors = append(batch.Errors, fmt.Sprintf("%s: %v", user.ID, err))
			continue
		}
		batch.Processed++
	}
	return batch, nil
}

func (s *Service) Score(ctx context.Context, userID string) (Result, error) {
	return s.Store.GetScore(ctx, userID)
}

func (s *Service) Snapshots(ctx context.Context, userID string, limit int) ([]Snapshot, error) {
	if limit <= 0 || limit > 104 {
		limit = 26
	}
	return s.Store.ListSnapshots(ctx, userID, limit)
}

// SaveWeights persists department weights. The sum-to-1.0 invariant is
// enforced here, before the row is written; the engine reads weights as-is.
func (s *Service) SaveWeights(ctx context.Context, departmentID string, weights Weights) error {
	if err := ValidateWeights(weights); err != nil {
		return err
	}
	return s.Store.UpsertWeights(ctx, departmentID, weights)
}

func ValidateWeights(w Weights) error {
	for _, value := range []float64{w.Output, w.Quality, w.Reliability, w.Consistency} {
		if value < 0 || value > 1 {
			return ErrInvalidWeights
		}
	}
	sum := w.Output + w.Quality + w.Reliability + w.Consistency
	if math.Abs(sum-1.0) > 0.0001 {
		return ErrInvalidWeights
	}
	if w.WeeklyTarget < 0 {
		return ErrInvalidWeights
	}
	return nil
}
