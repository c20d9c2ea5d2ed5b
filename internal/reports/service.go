package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"

	"interview-backend/internal/analyses"
	"interview-backend/internal/interviews"
	"interview-backend/internal/shared/metrics"
	"interview-backend/internal/shared/storage/object"
	"interview-backend/internal/shared/telemetry"
)

// Service renders interview reports and stores them in the object store.
type Service struct {
	repo  interviews.Repo
	store object.ObjectStore
}

// NewService creates a report service.
func NewService(repo interviews.Repo, store object.ObjectStore) *Service {
	return &Service{repo: repo, store: store}
}

// Generate renders the PDF report for an analyzed interview and stores it.
// Regeneration overwrites the previous report at the same key.
func (s *Service) Generate(ctx context.Context, interviewID string) (string, error) {
	iv, err := s.repo.GetByID(ctx, interviewID)
	if err != nil {
		return "", err
	}
	if !iv.Status.CanTransitionTo(interviews.StatusReportGenerated) {
		return "", fmt.Errorf("%w: cannot generate report while interview is %s", interviews.ErrConflict, iv.Status)
	}
	if len(iv.Assessment) == 0 {
		return "", fmt.Errorf("%w: analysis must be generated first", interviews.ErrConflict)
	}

	var assessment analyses.Assessment
	if err := json.Unmarshal(iv.Assessment, &assessment); err != nil {
		return "", fmt.Errorf("unmarshal stored assessment: %w", err)
	}

	radarPNG, err := CategoryRadar(&assessment)
	if err != nil {
		return "", fmt.Errorf("render radar chart: %w", err)
	}
	barsPNG, err := SkillBars(&assessment)
	if err != nil {
		return "", fmt.Errorf("render bar chart: %w", err)
	}

	pdfBytes, err := BuildPDF(iv, &assessment, radarPNG, barsPNG)
	if err != nil {
		return "", err
	}

	key := path.Join(interviewID, "report.pdf")
	if _, err := s.store.SaveWithKey(ctx, key, "application/pdf", bytes.NewReader(pdfBytes)); err != nil {
		return "", fmt.Errorf("store report: %w", err)
	}
	if err := s.repo.SetReport(ctx, interviewID, key, interviews.StatusReportGenerated); err != nil {
		return "", err
	}

	metrics.IncReportGenerated()
	telemetry.Info("report.generated", map[string]any{
		"interview_id": interviewID,
		"report_key":   key,
		"size_bytes":   len(pdfBytes),
	})
	return key, nil
}

// Open streams a previously generated report.
func (s *Service) Open(ctx context.Context, interviewID string) (io.ReadCloser, error) {
	iv, err := s.repo.GetByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.ReportKey == "" {
		return nil, ErrNoReport
	}
	return s.store.Open(ctx, iv.ReportKey)
}
