package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskhub/internal/domain/task"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) OpenTaskCount(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM tasks
    WHERE owner_id = $1 AND status <> $2 AND deleted_at IS NULL
  `, ownerID, task.StatusClosedApproved).Scan(&count)
	return count, err
}

func (s *Store) OverdueTaskCount(ctx context.Context, ownerID string, now time.Time) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM tasks
    WHERE owner_id = $1
      AND status <> $2
      AND deadline IS NOT NULL AND deadline < $3
      AND deleted_at IS NULL
  `, ownerID, task.StatusClosedApproved, now).Scan(&count)
	return count, err
}

// PendingReviewCount counts tasks waiting on the manager's approval across
// the users they manage.
func (s *Store) PendingReviewCount(ctx context.Context, managerUserID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM tasks t
    JOIN users owner ON t.owner_id = owner.id
    WHERE t.status = $1
      AND owner.manager_id = $2
      AND t.deleted_at IS NULL
  `, task.StatusCompletedPendingReview, managerUserID).Scan(&count)
	return count, err
}

type ScoreRow struct {
	UserID      string
	FullName    string
	Output      float64
	Quality     float64
	Reliability float64
	Consistency float64
	Composite   float64
}

func (s *Store) DepartmentScores(ctx context.Context, departmentID string) ([]ScoreRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT u.id, u.full_name,
           p.output_score, p.quality_score, p.reliability_score, p.consistency_score, p.composite_score
    FROM productivity_scores p
    JOIN users u ON p.user_id = u.id
    WHERE ($1 = '' OR u.department_id::text = $1)
      AND u.deleted_at IS NULL
    ORDER BY p.composite_score DESC, u.full_name
  `, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScoreRow
	for rows.Next() {
		var row ScoreRow
		if err := rows.Scan(&row.UserID, &row.FullName, &row.Output, &row.Quality,
			&row.Reliability, &row.Consistency, &row.Composite); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
