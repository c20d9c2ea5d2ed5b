package interviews

import (
	"context"
	"encoding/json"
)

// Repo persists interview documents with field-level update operations so
// concurrent writers touching different fields do not clobber each other.
type Repo interface {
	// Insert creates a new interview record.
	Insert(ctx context.Context, iv *Interview) error

	// GetByID loads the full interview document.
	GetByID(ctx context.Context, interviewID string) (*Interview, error)

	// SetDetails stores the target role and experience level chosen at start.
	SetDetails(ctx context.Context, interviewID string, role, experienceLevel string) error

	// SetSkills stores the candidate's self-ratings and advances status.
	SetSkills(ctx context.Context, interviewID string, skills map[string]int, status Status) error

	// AppendTurn appends one turn to the conversation history and
	// advances status.
	AppendTurn(ctx context.Context, interviewID string, turn Turn, status Status) error

	// SetLastAnswer records the candidate's answer on the most recent turn.
	SetLastAnswer(ctx context.Context, interviewID string, answer string) error

	// SetAssessment stores the analysis document and advances status.
	SetAssessment(ctx context.Context, interviewID string, assessment json.RawMessage, status Status) error

	// SetReport stores the generated report's storage key and advances status.
	SetReport(ctx context.Context, interviewID string, reportKey string, status Status) error

	// UpdateStatus advances status without touching any other field.
	UpdateStatus(ctx context.Context, interviewID string, status Status) error
}
