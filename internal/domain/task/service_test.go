package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskhub/internal/domain/auth"
)

type fakeStore struct {
	tasks       map[string]Task
	events      map[string][]StatusEvent
	managers    map[string]string
	transitions int
	carried     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tasks:    map[string]Task{},
		events:   map[string][]StatusEvent{},
		managers: map[string]string{},
	}
}

func (f *fakeStore) CreateTask(_ context.Context, t Task) (string, error) {
	id := "t-" + t.Title
	t.ID = id
	t.Status = StatusNew
	f.tasks[id] = t
	return id, nil
}

func (f *fakeStore) GetTask(_ context.Context, taskID string) (Task, error) {
	t, ok := f.tasks[taskID]
	if !ok {
		return Task{}, ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) ListTasks(_ context.Context, ownerID, _, status string, _, _ int) ([]Task, int, error) {
	var out []Task
	for _, t := range f.tasks {
		if ownerID != "" && t.OwnerID != ownerID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, t)
	}
	return out, len(out), nil
}

func (f *fakeStore) ApplyTransition(_ context.Context, taskID, fromStatus, toStatus, changedByID, reason string, stampCompleted bool) error {
	t, ok := f.tasks[taskID]
	if !ok || t.Status != fromStatus {
		return ErrNotFound
	}
	t.Status = toStatus
	if stampCompleted {
		now := time.Now()
		t.CompletedAt = &now
	}
	f.tasks[taskID] = t
	f.events[taskID] = append(f.events[taskID], StatusEvent{
		TaskID:      taskID,
		FromStatus:  fromStatus,
		ToStatus:    toStatus,
		ChangedByID: changedByID,
		Reason:      reason,
	})
	f.transitions++
	return nil
}

func (f *fakeStore) AppendCreationEvent(_ context.Context, taskID, createdByID string) error {
	f.events[taskID] = append(f.events[taskID], StatusEvent{
		TaskID:      taskID,
		ToStatus:    StatusNew,
		ChangedByID: createdByID,
	})
	return nil
}

func (f *fakeStore) ListStatusEvents(_ context.Context, taskID string) ([]StatusEvent, error) {
	return f.events[taskID], nil
}

func (f *fakeStore) CarryForward(_ context.Context, taskID, _ string, newDeadline time.Time) error {
	t, ok := f.tasks[taskID]
	if !ok {
		return ErrNotFound
	}
	t.Deadline = &newDeadline
	t.CarryForwardCount++
	t.IsCarriedForward = true
	f.tasks[taskID] = t
	f.carried++
	return nil
}

func (f *fakeStore) IsManagerOf(_ context.Context, managerUserID, ownerUserID string) (bool, error) {
	return f.managers[ownerUserID] == managerUserID, nil
}

func ownerActor() auth.UserContext {
	return auth.UserContext{UserID: "u-owner", RoleName: auth.RoleEmployee}
}

func managerActor() auth.UserContext {
	return auth.UserContext{UserID: "u-manager", RoleName: auth.RoleManager}
}

func seedTask(store *fakeStore, status string, requiresReview bool) string {
	store.tasks["t-1"] = Task{
		ID:             "t-1",
		Title:          "write report",
		Status:         status,
		OwnerID:        "u-owner",
		RequiresReview: requiresReview,
	}
	return "t-1"
}

func TestCreateAlwaysStartsNew(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	created, err := svc.Create(context.Background(), ownerActor(), CreateInput{Title: "draft"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Status != StatusNew {
		t.Fatalf("expected status new, got %q", created.Status)
	}
	if created.OwnerID != "u-owner" {
		t.Fatalf("creator should default to owner, got %q", created.OwnerID)
	}
	if len(store.events[created.ID]) != 1 {
		t.Fatalf("expected one creation event, got %d", len(store.events[created.ID]))
	}
}

func TestCreateAssignedTaskRecordsAssigner(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	created, err := svc.Create(context.Background(), managerActor(), CreateInput{
		Title:   "review budget",
		OwnerID: "u-owner",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.OwnerID != "u-owner" || created.AssignerID != "u-manager" {
		t.Fatalf("unexpected ownership: owner=%q assigner=%q", created.OwnerID, created.AssignerID)
	}
}

func TestTransitionPersistsLegalChange(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	id := seedTask(store, StatusNew, false)

	updated, err := svc.Transition(context.Background(), ownerActor(), id, StatusAccepted, "")
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if updated.Status != StatusAccepted {
		t.Fatalf("expected accepted, got %q", updated.Status)
	}
	if store.transitions != 1 {
		t.Fatalf("expected exactly one persisted transition, got %d", store.transitions)
	}
}

func TestTransitionRejectionPersistsNothing(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	id := seedTask(store, StatusNew, false)

	_, err := svc.Transition(context.Background(), ownerActor(), id, StatusClosedApproved, "")
	if err == nil {
		t.Fatalf("illegal transition should fail")
	}
	var transitionErr *TransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected TransitionError, got %T", err)
	}
	if transitionErr.Result.Code != CodeInvalidTransition {
		t.Fatalf("expected invalid_transition, got %q", transitionErr.Result.Code)
	}
	if store.transitions != 0 {
		t.Fatalf("rejected transition must not persist, got %d writes", store.transitions)
	}
	if got := store.tasks[id].Status; got != StatusNew {
		t.Fatalf("status must be unchanged, got %q", got)
	}
}

func TestTransitionClosingStampsCompletedAt(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	id := seedTask(store, StatusInProgress, false)

	updated, err := svc.Transition(context.Background(), ownerActor(), id, StatusClosedApproved, "")
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if updated.CompletedAt == nil {
		t.Fatalf("closing must stamp completed_at")
	}
}

func TestManagerApprovalUsesManagerLookup(t *testing.T) {
	store := newFakeStore()
	store.managers["u-owner"] = "u-manager"
	svc := NewService(store)
	id := seedTask(store, StatusCompletedPendingReview, true)

	updated, err := svc.Transition(context.Background(), managerActor(), id, StatusClosedApproved, "")
	if err != nil {
		t.Fatalf("manager approval failed: %v", err)
	}
	if updated.Status != StatusClosedApproved {
		t.Fatalf("expected closed_approved, got %q", updated.Status)
	}
}

func TestUnrelatedManagerCannotApprove(t *testing.T) {
	store := newFakeStore()
	store.managers["u-owner"] = "u-other-manager"
	svc := NewService(store)
	id := seedTask(store, StatusCompletedPendingReview, true)

	_, err := svc.Transition(context.Background(), managerActor(), id, StatusClosedApproved, "")
	var transitionErr *TransitionError
	if !errors.As(err, &transitionErr) || transitionErr.Result.Code != CodeNotManager {
		t.Fatalf("expected not_manager rejection, got %v", err)
	}
}

func TestValidTransitionsFromService(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	seedTask(store, StatusNew, false)

	got, err := svc.ValidTransitions(context.Background(), ownerActor(), "t-1")
	if err != nil {
		t.Fatalf("valid transitions failed: %v", err)
	}
	want := []string{StatusAccepted, StatusInProgress}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCarryForwardOwnerAndManagerOnly(t *testing.T) {
	store := newFakeStore()
	store.managers["u-owner"] = "u-manager"
	svc := NewService(store)
	seedTask(store, StatusInProgress, false)
	newDeadline := time.Now().AddDate(0, 0, 2)

	updated, err := svc.CarryForward(context.Background(), ownerActor(), "t-1", newDeadline)
	if err != nil {
		t.Fatalf("owner carry-forward failed: %v", err)
	}
	if updated.CarryForwardCount != 1 || !updated.IsCarriedForward {
		t.Fatalf("carry-forward bookkeeping missing: %+v", updated)
	}

	if _, err := svc.CarryForward(context.Background(), managerActor(), "t-1", newDeadline); err != nil {
		t.Fatalf("manager carry-forward failed: %v", err)
	}

	peer := auth.UserContext{UserID: "u-peer", RoleName: auth.RoleEmployee}
	if _, err := svc.CarryForward(context.Background(), peer, "t-1", newDeadline); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for peer, got %v", err)
	}

	if store.tasks["t-1"].Status != StatusInProgress {
		t.Fatalf("carry-forward must not change status")
	}
}

func TestTransitionUnknownTask(t *testing.T) {
	svc := NewService(newFakeStore())
	if _, err := svc.Transition(context.Background(), ownerActor(), "missing", StatusAccepted, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
