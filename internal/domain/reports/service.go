package reports

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
)

type Service struct {
	Store      *Store
	ReportsDir string
}

func NewService(store *Store, reportsDir string) *Service {
	if reportsDir == "" {
		reportsDir = "storage/reports"
	}
	return &Service{Store: store, ReportsDir: reportsDir}
}

type DashboardSummary struct {
	OpenTasks      int `json:"openTasks"`
	OverdueTasks   int `json:"overdueTasks"`
	PendingReviews int `json:"pendingReviews"`
}

func (s *Service) Dashboard(ctx context.Context, userID string, now time.Time) (DashboardSummary, error) {
	open, err := s.Store.OpenTaskCount(ctx, userID)
	if err != nil {
		return DashboardSummary{}, err
	}
	overdue, err := s.Store.OverdueTaskCount(ctx, userID, now)
	if err != nil {
		return DashboardSummary{}, err
	}
	pending, err := s.Store.PendingReviewCount(ctx, userID)
	if err != nil {
		return DashboardSummary{}, err
	}
	return DashboardSummary{OpenTasks: open, OverdueTasks: overdue, PendingReviews: pending}, nil
}

// GenerateScoreboardPDF renders the department's current productivity
// ranking to a PDF file and returns its path.
func (s *Service) GenerateScoreboardPDF(ctx context.Context, departmentID string) (string, error) {
	scores, err := s.Store.DepartmentScores(ctx, departmentID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.ReportsDir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(s.ReportsDir, "scoreboard-"+uuid.NewString()+".pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Productivity Scoreboard")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format("2006-01-02 15:04 MST")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(60, 7, "Name", "1", 0, "L", false, 0, "")
	for _, header := range []string{"Output", "Quality", "Reliab.", "Consist.", "Composite"} {
		pdf.CellFormat(26, 7, header, "1", 0, "R", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range scores {
		pdf.CellFormat(60, 7, row.FullName, "1", 0, "L", false, 0, "")
		for _, value := range []float64{row.Output, row.Quality, row.Reliability, row.Consistency, row.Composite} {
			pdf.CellFormat(26, 7, fmt.Sprintf("%.1f", value), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}
