package scoring

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeScoreStore struct {
	users          []UserRef
	weights        map[string]Weights
	completed      map[string][]CompletedTask
	failFetchFor   map[string]bool
	savedScores    map[string]Result
	savedSnapshots []Snapshot
	savedWeights   map[string]Weights
}

func newFakeScoreStore() *fakeScoreStore {
	return &fakeScoreStore{
		weights:      map[string]Weights{},
		completed:    map[string][]CompletedTask{},
		failFetchFor: map[string]bool{},
		savedScores:  map[string]Result{},
		savedWeights: map[string]Weights{},
	}
}

func (f *fakeScoreStore) CompletedTasks(_ context.Context, userID string, _, _ time.Time) ([]CompletedTask, error) {
	if f.failFetchFor[userID] {
		return nil, errors.New("query timeout")
	}
	return f.completed[userID], nil
}

func (f *fakeScoreStore) StatusEventsForTasks(_ context.Context, _ []string) (map[string][]StatusEvent, error) {
	return map[string][]StatusEvent{}, nil
}

func (f *fakeScoreStore) ActiveTaskCount(_ context.Context, _ string) (int, error) {
	return 0, nil
}

func (f *fakeScoreStore) CarryForwardEventCount(_ context.Context, _ string, _, _ time.Time) (int, error) {
	return 0, nil
}

func (f *fakeScoreStore) PlannedDayCount(_ context.Context, _ string, _, _ time.Time) (int, error) {
	return 0, nil
}

func (f *fakeScoreStore) AssignedKPIBucketCount(_ context.Context, _ string) (int, error) {
	return 0, nil
}

func (f *fakeScoreStore) DepartmentWeights(_ context.Context, departmentID string) (Weights, bool, error) {
	w, ok := f.weights[departmentID]
	return w, ok, nil
}

func (f *fakeScoreStore) UpsertWeights(_ context.Context, departmentID string, weights Weights) error {
	f.savedWeights[departmentID] = weights
	return nil
}

func (f *fakeScoreStore) ActiveUsers(_ context.Context) ([]UserRef, error) {
	return f.users, nil
}

func (f *fakeScoreStore) UpsertScore(_ context.Context, result Result) error {
	f.savedScores[result.UserID] = result
	return nil
}

func (f *fakeScoreStore) UpsertSnapshot(_ context.Context, snapshot Snapshot) error {
	f.savedSnapshots = append(f.savedSnapshots, snapshot)
	return nil
}

func (f *fakeScoreStore) GetScore(_ context.Context, userID string) (Result, error) {
	result, ok := f.savedScores[userID]
	if !ok {
		return Result{}, ErrScoreNotFound
	}
	return result, nil
}

func (f *fakeScoreStore) ListSnapshots(_ context.Context, _ string, _ int) ([]Snapshot, error) {
	return f.savedSnapshots, nil
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 29, 12, 0, 0, 0, time.UTC)
}

func newTestService(store *fakeScoreStore) *Service {
	svc := NewService(store)
	svc.Now = fixedNow
	return svc
}

func TestCalculateForUserDefaultsTrailingWindow(t *testing.T) {
	store := newFakeScoreStore()
	svc := newTestService(store)

	result, err := svc.CalculateForUser(context.Background(), "u-1", "d-1", nil, nil)
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	if result.WindowEnd != fixedNow() {
		t.Fatalf("window should end now, got %v", result.WindowEnd)
	}
	if got := result.WindowEnd.Sub(result.WindowStart); got != 28*24*time.Hour {
		t.Fatalf("expected a 28-day window, got %v", got)
	}
	if result.CalculatedAt != fixedNow() {
		t.Fatalf("calculatedAt should use the injected clock")
	}
}

func TestCalculateForUserExplicitWindow(t *testing.T) {
	store := newFakeScoreStore()
	svc := newTestService(store)

	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)
	result, err := svc.CalculateForUser(context.Background(), "u-1", "d-1", &start, &end)
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	if result.WindowStart != start || result.WindowEnd != end {
		t.Fatalf("explicit window not honored: %v .. %v", result.WindowStart, result.WindowEnd)
	}
}

func TestWeightsFallbackToDefaults(t *testing.T) {
	store := newFakeScoreStore()
	svc := newTestService(store)

	if got := svc.WeightsForDepartment(context.Background(), "missing"); got != DefaultWeights() {
		t.Fatalf("absent department should fall back to defaults, got %+v", got)
	}

	store.weights["d-zero"] = Weights{}
	if got := svc.WeightsForDepartment(context.Background(), "d-zero"); got != DefaultWeights() {
		t.Fatalf("all-zero weights should fall back to defaults, got %+v", got)
	}

	store.weights["d-neg"] = Weights{Output: -1, Quality: 1, Reliability: 0.5, Consistency: 0.5}
	if got := svc.WeightsForDepartment(context.Background(), "d-neg"); got != DefaultWeights() {
		t.Fatalf("negative weights should fall back to defaults, got %+v", got)
	}

	custom := Weights{Output: 0.4, Quality: 0.3, Reliability: 0.2, Consistency: 0.1, WeeklyTarget: 20}
	store.weights["d-custom"] = custom
	if got := svc.WeightsForDepartment(context.Background(), "d-custom"); got != custom {
		t.Fatalf("configured weights should be used, got %+v", got)
	}
}

func TestCalculateAndSaveForUserWritesScoreAndSnapshot(t *testing.T) {
	store := newFakeScoreStore()
	svc := newTestService(store)

	if _, err := svc.CalculateAndSaveForUser(context.Background(), "u-1", "d-1"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, ok := store.savedScores["u-1"]; !ok {
		t.Fatalf("current score row not written")
	}
	if len(store.savedSnapshots) != 1 {
		t.Fatalf("expected one snapshot, got %d", len(store.savedSnapshots))
	}

	year, week := fixedNow().ISOWeek()
	snap := store.savedSnapshots[0]
	if snap.Year != year || snap.Week != week {
		t.Fatalf("snapshot should use the ISO week of the run: got %d/%d, want %d/%d", snap.Year, snap.Week, year, week)
	}
}

func TestBatchContinuesPastFailures(t *testing.T) {
	store := newFakeScoreStore()
	for _, id := range []string{"u-1", "u-2", "u-3", "u-4", "u-5", "u-6", "u-7", "u-8", "u-9", "u-10"} {
		store.users = append(store.users, UserRef{ID: id, DepartmentID: "d-1"})
	}
	store.failFetchFor["u-4"] = true
	svc := newTestService(store)

	batch, err := svc.CalculateAndSaveForAll(context.Background())
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if batch.Processed != 9 {
		t.Fatalf("expected 9 processed, got %d", batch.Processed)
	}
	if len(batch.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(batch.Errors), batch.Errors)
	}
	if !strings.Contains(batch.Errors[0], "u-4") {
		t.Fatalf("error should name the failed user, got %q", batch.Errors[0])
	}
	if _, ok := store.savedScores["u-4"]; ok {
		t.Fatalf("failed user must not get a score row")
	}
	if _, ok := store.savedScores["u-10"]; !ok {
		t.Fatalf("users after the failure must still be processed")
	}
}

func TestBatchStopsOnCancellation(t *testing.T) {
	store := newFakeScoreStore()
	store.users = []UserRef{{ID: "u-1"}, {ID: "u-2"}}
	svc := newTestService(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch, err := svc.CalculateAndSaveForAll(ctx)
	if err != nil {
		t.Fatalf("cancelled batch should still report, got %v", err)
	}
	if batch.Processed != 0 {
		t.Fatalf("no user should be processed after cancellation, got %d", batch.Processed)
	}
	if len(batch.Errors) == 0 {
		t.Fatalf("cancellation should be recorded in the error list")
	}
}

func TestSaveWeightsValidation(t *testing.T) {
	store := newFakeScoreStore()
	svc := newTestService(store)

	bad := []Weights{
		{Output: 0.5, Quality: 0.5, Reliability: 0.5, Consistency: 0.5},
		{Output: 1.2, Quality: -0.2, Reliability: 0, Consistency: 0},
		{Output: 0.35, Quality: 0.25, Reliability: 0.25, Consistency: 0.15, WeeklyTarget: -1},
	}
	for _, w := range bad {
		if err := svc.SaveWeights(context.Background(), "d-1", w); !errors.Is(err, ErrInvalidWeights) {
			t.Fatalf("expected ErrInvalidWeights for %+v, got %v", w, err)
		}
	}
	if len(store.savedWeights) != 0 {
		t.Fatalf("invalid weights must not be persisted")
	}

	good := Weights{Output: 0.4, Quality: 0.3, Reliability: 0.2, Consistency: 0.1, WeeklyTarget: 12}
	if err := svc.SaveWeights(context.Background(), "d-1", good); err != nil {
		t.Fatalf("valid weights rejected: %v", err)
	}
	if store.savedWeights["d-1"] != good {
		t.Fatalf("weights not persisted")
	}
}
