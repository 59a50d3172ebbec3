package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskhub/internal/domain/task"
)

var ErrScoreNotFound = errors.New("productivity score not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CompletedTasks(ctx context.Context, userID string, windowStart, windowEnd time.Time) ([]CompletedTask, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, size, deadline, completed_at, requires_review, COALESCE(kpi_bucket_id::text, '')
    FROM tasks
    WHERE owner_id = $1
      AND status = $2
      AND completed_at >= $3 AND completed_at <= $4
      AND deleted_at IS NULL
    ORDER BY completed_at
  `, userID, task.StatusClosedApproved, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var completed []CompletedTask
	for rows.Next() {
		var t CompletedTask
		if err := rows.Scan(&t.ID, &t.Size, &t.Deadline, &t.CompletedAt, &t.RequiresReview, &t.KPIBucketID); err != nil {
			return nil, err
		}
		completed = append(completed, t)
	}
	return completed, rows.Err()
}

func (s *Store) StatusEventsForTasks(ctx context.Context, taskIDs []string) (map[string][]StatusEvent, error) {
	events := make(map[string][]StatusEvent, len(taskIDs))
	if len(taskIDs) == 0 {
		return events, nil
	}

	rows, err := s.DB.Query(ctx, `
    SELECT task_id, COALESCE(from_status,''), to_status, created_at
    FROM task_status_events
    WHERE task_id = ANY($1)
    ORDER BY task_id, created_at
  `, taskIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var e StatusEvent
		if err := rows.Scan(&e.TaskID, &e.FromStatus, &e.ToStatus, &e.CreatedAt); err != nil {
			return nil, err
		}
		events[e.TaskID] = append(events[e.TaskID], e)
	}
	return events, rows.Err()
}

func (s *Store) ActiveTaskCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM tasks
    WHERE owner_id = $1 AND status <> $2 AND deleted_at IS NULL
  `, userID, task.StatusClosedApproved).Scan(&count)
	return count, err
}

func (s *Store) CarryForwardEventCount(ctx context.Context, userID string, windowStart, windowEnd time.Time) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM carry_forward_events
    WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3
  `, userID, windowStart, windowEnd).Scan(&count)
	return count, err
}

func (s *Store) PlannedDayCount(ctx context.Context, userID string, windowStart, windowEnd time.Time) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM planning_days
    WHERE user_id = $1
      AND morning_completed = true
      AND session_date >= $2::date AND session_date <= $3::date
  `, userID, windowStart, windowEnd).Scan(&count)
	return count, err
}

func (s *Store) AssignedKPIBucketCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(DISTINCT kpi_bucket_id)
    FROM kpi_assignments
    WHERE user_id = $1
  `, userID).Scan(&count)
	return count, err
}

func (s *Store) DepartmentWeights(ctx context.Context, departmentID string) (Weights, bool, error) {
	if departmentID == "" {
		return Weights{}, false, nil
	}
	var w Weights
	err := s.DB.QueryRow(ctx, `
    SELECT output_weight, quality_weight, reliability_weight, consistency_weight, weekly_output_target
    FROM scoring_weights
    WHERE department_id = $1
  `, departmentID).Scan(&w.Output, &w.Quality, &w.Reliability, &w.Consistency, &w.WeeklyTarget)
	if errors.Is(err, pgx.ErrNoRows) {
		return Weights{}, false, nil
	}
	if err != nil {
		return Weights{}, false, err
	}
	return w, true, nil
}

func (s *Store) UpsertWeights(ctx context.Context, departmentID string, weights Weights) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO scoring_weights (department_id, output_weight, quality_weight, reliability_weight, consistency_weight, weekly_output_target)
    VALUES ($1,$2,$3,$4,$5,$6)
    ON CONFLICT (department_id) DO UPDATE
    SET output_weight = EXCLUDED.output_weight,
        quality_weight = EXCLUDED.quality_weight,
        reliability_weight = EXCLUDED.reliability_weight,
        consistency_weight = EXCLUDED.consistency_weight,
        weekly_output_target = EXCLUDED.weekly_output_target,
        updated_at = now()
  `, departmentID, weights.Output, weights.Quality, weights.Reliability, weights.Consistency, weights.WeeklyTarget)
	return err
}

func (s *Store) ActiveUsers(ctx context.Context) ([]UserRef, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, COALESCE(department_id::text, '')
    FROM users
    WHERE status = 'active' AND deleted_at IS NULL
    ORDER BY id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []UserRef
	for rows.Next() {
		var u UserRef
		if err := rows.Scan(&u.ID, &u.DepartmentID); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UpsertScore(ctx context.Context, result Result) error {
	metaJSON, err := json.Marshal(result.Meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO productivity_scores (
      user_id, output_score, quality_score, reliability_score, consistency_score,
      composite_score, window_start, window_end, meta_json, calculated_at
    )
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    ON CONFLICT (user_id) DO UPDATE
    SET output_score = EXCLUDED.output_score,
        quality_score = EXCLUDED.quality_score,
        reliability_score = EXCLUDED.reliability_score,
        consistency_score = EXCLUDED.consistency_score,
        composite_score = EXCLUDED.composite_score,
        window_start = EXCLUDED.window_start,
        window_end = EXCLUDED.window_end,
        meta_json = EXCLUDED.meta_json,
        calculated_at = EXCLUDED.calculated_at
  `, result.UserID, result.Output, result.Quality, result.Reliability, result.Consistency,
		result.Composite, result.WindowStart, result.WindowEnd, metaJSON, result.CalculatedAt)
	return err
}

func (s *Store) UpsertSnapshot(ctx context.Context, snapshot Snapshot) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO productivity_snapshots (
      user_id, year, week, output_score, quality_score, reliability_score,
      consistency_score, composite_score, completed_tasks, active_tasks, calculated_at
    )
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    ON CONFLICT (user_id, year, week) DO UPDATE
    SET output_score = EXCLUDED.output_score,
        quality_score = EXCLUDED.quality_score,
        reliability_score = EXCLUDED.reliability_score,
        consistency_score = EXCLUDED.consistency_score,
        composite_score = EXCLUDED.composite_score,
        completed_tasks = EXCLUDED.completed_tasks,
        active_tasks = EXCLUDED.active_tasks,
        calculated_at = EXCLUDED.calculated_at
  `, snapshot.UserID, snapshot.Year, snapshot.Week, snapshot.Output, snapshot.Quality,
		snapshot.Reliability, snapshot.Consistency, snapshot.Composite,
		snapshot.CompletedTasks, snapshot.ActiveTasks, snapshot.CalculatedAt)
	return err
}

func (s *Store) GetScore(ctx context.Context, userID string) (Result, error) {
	var result Result
	var metaJSON []byte
	result.UserID = userID
	err := s.DB.QueryRow(ctx, `
    SELECT output_score, quality_score, reliability_score, consistency_score,
           composite_score, window_start, window_end, meta_json, calculated_at
    FROM productivity_scores
    WHERE user_id = $1
  `, userID).Scan(&result.Output, &result.Quality, &result.Reliability, &result.Consistency,
		&result.Composite, &result.WindowStart, &result.WindowEnd, &metaJSON, &result.CalculatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Result{}, ErrScoreNotFound
	}
	if err != nil {
		return Result{}, err
	}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &result.Meta); err != nil {
			return Result{}, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return result, nil
}

func (s *Store) ListSnapshots(ctx context.Context, userID string, limit int) ([]Snapshot, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT user_id, year, week, output_score, quality_score, reliability_score,
           consistency_score, composite_score, completed_tasks, active_tasks, calculated_at
    FROM productivity_snapshots
    WHERE user_id = $1
    ORDER BY year DESC, week DESC
    LIMIT $2
  `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.UserID, &snap.Year, &snap.Week, &snap.Output, &snap.Quality,
			&snap.Reliability, &snap.Consistency, &snap.Composite,
			&snap.CompletedTasks, &snap.ActiveTasks, &snap.CalculatedAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}
