package interviews

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPGRepo(db), mock
}

func TestPGGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	history, _ := json.Marshal([]Turn{{Question: "q1", Skill: "Go", Answer: "a1"}})
	rows := sqlmock.NewRows([]string{
		"interview_id", "candidate_name", "role", "experience_level",
		"resume_text", "resume_key", "technical_skills", "skills", "status",
		"conversation_history", "technical_assessment", "report_key",
		"created_at", "last_updated",
	}).AddRow(
		"iv-1", "Sam", "Backend Engineer", "senior",
		"resume text", "iv-1/resume.pdf", []byte(`["Go","SQL"]`), []byte(`{"Go":9}`), "in_progress",
		history, []byte(`{}`), "",
		now, now,
	)
	mock.ExpectQuery("SELECT").WithArgs("iv-1").WillReturnRows(rows)

	iv, err := repo.GetByID(context.Background(), "iv-1")
	if err != nil {
		t.Fatal(err)
	}
	if iv.Status != StatusInProgress {
		t.Errorf("status = %s", iv.Status)
	}
	if len(iv.TechnicalSkills) != 2 || iv.Skills["Go"] != 9 {
		t.Errorf("skills not decoded: %+v", iv)
	}
	if len(iv.History) != 1 || iv.History[0].Answer != "a1" {
		t.Errorf("history not decoded: %+v", iv.History)
	}
	if iv.Assessment != nil {
		t.Error("empty assessment object should decode as nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPGGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT").WithArgs("missing").WillReturnRows(sqlmock.NewRows([]string{"interview_id"}))

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v", err)
	}
}

func TestPGAppendTurn(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("UPDATE interviews").
		WithArgs("iv-1", sqlmock.AnyArg(), "active").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AppendTurn(context.Background(), "iv-1", Turn{Question: "q", Skill: "Go"}, StatusActive)
	if err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPGUpdateMissingRowIsNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("UPDATE interviews").
		WithArgs("missing", sqlmock.AnyArg(), "skills_rated").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetSkills(context.Background(), "missing", map[string]int{"Go": 5}, StatusSkillsRated)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v", err)
	}
}

func TestPGSetDetails(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("UPDATE interviews").
		WithArgs("iv-1", "Backend Engineer", "senior").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetDetails(context.Background(), "iv-1", "Backend Engineer", "senior"); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPGSetLastAnswer(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("jsonb_set").
		WithArgs("iv-1", "my answer", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetLastAnswer(context.Background(), "iv-1", "my answer"); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPGSetReport(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("UPDATE interviews").
		WithArgs("iv-1", "iv-1/report.pdf", "report_generated").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetReport(context.Background(), "iv-1", "iv-1/report.pdf", StatusReportGenerated); err != nil {
		t.Fatal(err)
	}
}
