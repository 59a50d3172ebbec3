package planning

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) UpsertDay(ctx context.Context, userID string, sessionDate time.Time, morningCompleted bool) (DayRecord, error) {
	var record DayRecord
	err := s.DB.QueryRow(ctx, `
    INSERT INTO planning_days (user_id, session_date, morning_completed)
    VALUES ($1,$2,$3)
    ON CONFLICT (user_id, session_date) DO UPDATE
    SET morning_completed = EXCLUDED.morning_completed
    RETURNING id, user_id, session_date, morning_completed, created_at
  `, userID, sessionDate, morningCompleted).Scan(
		&record.ID, &record.UserID, &record.SessionDate, &record.MorningCompleted, &record.CreatedAt)
	return record, err
}

func (s *Store) ListDays(ctx context.Context, userID string, from, to time.Time) ([]DayRecord, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, user_id, session_date, morning_completed, created_at
    FROM planning_days
    WHERE user_id = $1 AND session_date >= $2::date AND session_date <= $3::date
    ORDER BY session_date
  `, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []DayRecord
	for rows.Next() {
		var record DayRecord
		if err := rows.Scan(&record.ID, &record.UserID, &record.SessionDate, &record.MorningCompleted, &record.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
