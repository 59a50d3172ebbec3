package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskhub/internal/domain/auth"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const taskColumns = `
  id, title, description, status, priority, size,
  estimated_minutes, actual_minutes, deadline, start_date, completed_at,
  requires_review, kpi_bucket_id, carry_forward_count, is_carried_forward,
  owner_id, assigner_id, reviewer_id, created_at
`

func (s *Store) CreateTask(ctx context.Context, t Task) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO tasks (
      title, description, status, priority, size,
      estimated_minutes, deadline, start_date, requires_review,
      kpi_bucket_id, owner_id, assigner_id, reviewer_id
    )
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NULLIF($10,''),$11,NULLIF($12,''),NULLIF($13,''))
    RETURNING id
  `, t.Title, t.Description, StatusNew, t.Priority, t.Size,
		t.EstimatedMinutes, t.Deadline, t.StartDate, t.RequiresReview,
		t.KPIBucketID, t.OwnerID, t.AssignerID, t.ReviewerID).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetTask(ctx context.Context, taskID string) (Task, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+taskColumns+`
    FROM tasks
    WHERE id = $1 AND deleted_at IS NULL
  `, taskID)
	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	return t, err
}

func (s *Store) ListTasks(ctx context.Context, ownerID, assignerID, status string, limit, offset int) ([]Task, int, error) {
	query := `
    SELECT ` + taskColumns + `
    FROM tasks
    WHERE deleted_at IS NULL
  `
	countQuery := "SELECT COUNT(1) FROM tasks WHERE deleted_at IS NULL"
	args := []any{}

	appendFilter := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		clause := fmt.Sprintf(" AND %s = $%d", column, len(args))
		query += clause
		countQuery += clause
	}
	appendFilter("owner_id", ownerID)
	appendFilter("assigner_id", assignerID)
	appendFilter("status", status)

	var total int
	if err := s.DB.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		total = 0
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, t)
	}
	return tasks, total, rows.Err()
}

func (s *Store) ApplyTransition(ctx context.Context, taskID, fromStatus, toStatus, changedByID, reason string, stampCompleted bool) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
    UPDATE tasks
    SET status = $1,
        completed_at = CASE WHEN $2 THEN now() ELSE completed_at END
    WHERE id = $3 AND status = $4 AND deleted_at IS NULL
  `, toStatus, stampCompleted, taskID, fromStatus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO task_status_events (task_id, from_status, to_status, changed_by_id, reason)
    VALUES ($1,$2,$3,$4,NULLIF($5,''))
  `, taskID, fromStatus, toStatus, changedByID, reason); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) AppendCreationEvent(ctx context.Context, taskID, createdByID string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO task_status_events (task_id, from_status, to_status, changed_by_id)
    VALUES ($1,NULL,$2,$3)
  `, taskID, StatusNew, createdByID)
	return err
}

func (s *Store) ListStatusEvents(ctx context.Context, taskID string) ([]StatusEvent, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, task_id, COALESCE(from_status,''), to_status, changed_by_id, COALESCE(reason,''), created_at
    FROM task_status_events
    WHERE task_id = $1
    ORDER BY created_at
  `, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []StatusEvent
	for rows.Next() {
		var e StatusEvent
		if err := rows.Scan(&e.ID, &e.TaskID, &e.FromStatus, &e.ToStatus, &e.ChangedByID, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Store) CarryForward(ctx context.Context, taskID, userID string, newDeadline time.Time) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
    UPDATE tasks
    SET deadline = $1,
        carry_forward_count = carry_forward_count + 1,
        is_carried_forward = true
    WHERE id = $2 AND deleted_at IS NULL
  `, newDeadline, taskID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO carry_forward_events (task_id, user_id)
    VALUES ($1,$2)
  `, taskID, userID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// IsManagerOf reports whether managerUserID manages ownerUserID: a direct
// manager, the head of the owner's department, or an admin.
func (s *Store) IsManagerOf(ctx context.Context, managerUserID, ownerUserID string) (bool, error) {
	if managerUserID == "" || ownerUserID == "" || managerUserID == ownerUserID {
		return false, nil
	}
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM users owner
    JOIN users candidate ON candidate.id = $1
    JOIN roles candidate_role ON candidate.role_id = candidate_role.id
    WHERE owner.id = $2
      AND (
        owner.manager_id = candidate.id
        OR (candidate_role.name = $3 AND candidate.department_id = owner.department_id)
        OR candidate_role.name = $4
      )
  `, managerUserID, ownerUserID, auth.RoleDepartmentHead, auth.RoleAdmin).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type taskRow interface {
	Scan(dest ...any) error
}

func scanTask(row taskRow) (Task, error) {
	var t Task
	var kpiBucketID, assignerID, reviewerID *string
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.Size,
		&t.EstimatedMinutes, &t.ActualMinutes, &t.Deadline, &t.StartDate, &t.CompletedAt,
		&t.RequiresReview, &kpiBucketID, &t.CarryForwardCount, &t.IsCarriedForward,
		&t.OwnerID, &assignerID, &reviewerID, &t.CreatedAt,
	)
	if err != nil {
		return Task{}, err
	}
	if kpiBucketID != nil {
		t.KPIBucketID = *kpiBucketID
	}
	if assignerID != nil {
		t.AssignerID = *assignerID
	}
	if reviewerID != nil {
		t.ReviewerID = *reviewerID
	}
	return t, nil
}
