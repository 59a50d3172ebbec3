package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskhub/internal/domain/scoring"
	"taskhub/internal/platform/config"
	"taskhub/internal/platform/metrics"
)

const JobScoreRecalc = "score_recalc"

type Service struct {
	DB      *pgxpool.Pool
	Cfg     config.Config
	Scoring *scoring.Service
	Metrics *metrics.Collector
	queue   chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, scoringSvc *scoring.Service, collector *metrics.Collector) *Service {
	return &Service{
		DB:      db,
		Cfg:     cfg,
		Scoring: scoringSvc,
		Metrics: collector,
		queue:   make(chan job, 64),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.ScoringInterval > 0 {
		go s.scheduleScoring(ctx, s.Cfg.ScoringInterval)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

// RunNow executes a job inline, with the same job_runs bookkeeping as the
// background worker.
func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleScoring(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobScoreRecalc, func(ctx context.Context) (any, error) {
				batch, err := s.Scoring.CalculateAndSaveForAll(ctx)
				if s.Metrics != nil {
					s.Metrics.RecordScoringBatch(len(batch.Errors))
				}
				return batch, err
			})
		}
	}
}

func (s *Service) ListRuns(ctx context.Context, jobType string, limit, offset int) ([]map[string]any, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, job_type, status, COALESCE(details_json::text, '{}'), started_at, completed_at
    FROM job_runs
    WHERE ($1 = '' OR job_type = $1)
    ORDER BY started_at DESC
    LIMIT $2 OFFSET $3
  `, jobType, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		var id, kind, status, details string
		var startedAt time.Time
		var completedAt *time.Time
		if err := rows.Scan(&id, &kind, &status, &details, &startedAt, &completedAt); err != nil {
			return nil, err
		}
		out = append(out, map[string]any{
			"id":          id,
			"jobType":     kind,
			"status":      status,
			"details":     json.RawMessage(details),
			"startedAt":   startedAt,
			"completedAt": completedAt,
		})
	}
	return out, rows.Err()
}
