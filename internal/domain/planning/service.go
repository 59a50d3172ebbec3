package planning

import (
	"context"
	"time"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

// CommitMorningPlan records that the user committed to a plan for the day.
// Repeated commits for the same day overwrite the existing row.
func (s *Service) CommitMorningPlan(ctx context.Context, userID string, sessionDate time.Time) (DayRecord, error) {
	return s.Store.UpsertDay(ctx, userID, sessionDate, true)
}

func (s *Service) Days(ctx context.Context, userID string, from, to time.Time) ([]DayRecord, error) {
	return s.Store.ListDays(ctx, userID, from, to)
}
