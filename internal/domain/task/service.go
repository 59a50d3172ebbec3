package task

import (
	"context"
	"strings"
	"time"

	"taskhub/internal/domain/auth"
)

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

type CreateInput struct {
	Title            string
	Description      string
	Priority         string
	Size             string
	EstimatedMinutes int
	Deadline         *time.Time
	StartDate        *time.Time
	RequiresReview   bool
	KPIBucketID      string
	OwnerID          string
	AssignerID       string
	ReviewerID       string
}

// Create inserts a task in the initial status and appends the creation event.
// Tasks are never created in any other status.
func (s *Service) Create(ctx context.Context, actor auth.UserContext, input CreateInput) (Task, error) {
	if input.OwnerID == "" {
		input.OwnerID = actor.UserID
	}
	if input.OwnerID != actor.UserID && input.AssignerID == "" {
		input.AssignerID = actor.UserID
	}
	if input.Priority == "" {
		input.Priority = PriorityNotUrgentImportant
	}
	if input.Size == "" {
		input.Size = SizeMedium
	}

	id, err := s.Store.CreateTask(ctx, Task{
		Title:            strings.TrimSpace(input.Title),
		Description:      input.Description,
		Priority:         input.Priority,
		Size:             input.Size,
		EstimatedMinutes: input.EstimatedMinutes,
		Deadline:         input.Deadline,
		StartDate:        input.StartDate,
		RequiresReview:   input.RequiresReview,
		KPIBucketID:      input.KPIBucketID,
		OwnerID:          input.OwnerID,
		AssignerID:       input.AssignerID,
		ReviewerID:       input.ReviewerID,
	})
	if err != nil {
		return Task{}, err
	}
	if err := s.Store.AppendCreationEvent(ctx, id, actor.UserID); err != nil {
		return Task{}, err
	}
	return s.Store.GetTask(ctx, id)
}

func (s *Service) Get(ctx context.Context, taskID string) (Task, error) {
	return s.Store.GetTask(ctx, taskID)
}

func (s *Service) List(ctx context.Context, ownerID, assignerID, status string, limit, offset int) ([]Task, int, error) {
	return s.Store.ListTasks(ctx, ownerID, assignerID, status, limit, offset)
}

func (s *Service) History(ctx context.Context, taskID string) ([]StatusEvent, error) {
	if _, err := s.Store.GetTask(ctx, taskID); err != nil {
		return nil, err
	}
	return s.Store.ListStatusEvents(ctx, taskID)
}

// Transition validates the requested status change and, when legal, persists
// the status update together with its history event. Closing a task stamps
// completed_at; carry-forward counters are left untouched so historical
// scoring still sees them.
func (s *Service) Transition(ctx context.Context, actor auth.UserContext, taskID, toStatus, reason string) (Task, error) {
	t, err := s.Store.GetTask(ctx, taskID)
	if err != nil {
		return Task{}, err
	}

	transitionCtx, err := s.transitionContext(ctx, actor, t, reason)
	if err != nil {
		return Task{}, err
	}

	if result := Validate(t.Status, toStatus, transitionCtx); !result.Valid {
		return Task{}, NewTransitionError(result)
	}

	stampCompleted := toStatus == StatusClosedApproved
	if err := s.Store.ApplyTransition(ctx, taskID, t.Status, toStatus, actor.UserID, strings.TrimSpace(reason), stampCompleted); err != nil {
		return Task{}, err
	}
	return s.Store.GetTask(ctx, taskID)
}

// ValidTransitions lists the statuses the actor could legally move the task
// to right now, for rendering available actions.
func (s *Service) ValidTransitions(ctx context.Context, actor auth.UserContext, taskID string) ([]string, error) {
	t, err := s.Store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	transitionCtx, err := s.transitionContext(ctx, actor, t, "")
	if err != nil {
		return nil, err
	}
	return ValidTransitions(t.Status, transitionCtx), nil
}

// CarryForward pushes an overdue task's deadline without touching its
// workflow status. Only the owner or a manager of the owner may do it.
func (s *Service) CarryForward(ctx context.Context, actor auth.UserContext, taskID string, newDeadline time.Time) (Task, error) {
	t, err := s.Store.GetTask(ctx, taskID)
	if err != nil {
		return Task{}, err
	}
	if actor.UserID != t.OwnerID {
		isManager, err := s.Store.IsManagerOf(ctx, actor.UserID, t.OwnerID)
		if err != nil {
			return Task{}, err
		}
		if !isManager {
			return Task{}, ErrForbidden
		}
	}
	if err := s.Store.CarryForward(ctx, taskID, t.OwnerID, newDeadline); err != nil {
		return Task{}, err
	}
	return s.Store.GetTask(ctx, taskID)
}

func (s *Service) transitionContext(ctx context.Context, actor auth.UserContext, t Task, reason string) (TransitionContext, error) {
	isManager := false
	if actor.UserID != t.OwnerID {
		var err error
		isManager, err = s.Store.IsManagerOf(ctx, actor.UserID, t.OwnerID)
		if err != nil {
			return TransitionContext{}, err
		}
	}
	return TransitionContext{
		TaskOwnerID:     t.OwnerID,
		CurrentUserID:   actor.UserID,
		CurrentUserRole: actor.RoleName,
		IsManager:       isManager,
		RequiresReview:  t.RequiresReview,
		Reason:          reason,
	}, nil
}
