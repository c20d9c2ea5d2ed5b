package interviews

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo on PostgreSQL. Interview sub-documents live in
// JSONB columns and every write touches only the columns it owns.
type PGRepo struct {
	db *sql.DB
}

// NewPGRepo creates a PostgreSQL-backed repository.
func NewPGRepo(db *sql.DB) *PGRepo {
	return &PGRepo{db: db}
}

const selectColumns = `
	interview_id, candidate_name,
	COALESCE(role, ''), COALESCE(experience_level, ''),
	COALESCE(resume_text, ''), COALESCE(resume_key, ''),
	technical_skills, skills, status, conversation_history,
	technical_assessment, COALESCE(report_key, ''),
	created_at, last_updated`

func (r *PGRepo) Insert(ctx context.Context, iv *Interview) error {
	technicalSkills, err := json.Marshal(iv.TechnicalSkills)
	if err != nil {
		return fmt.Errorf("marshal technical skills: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO interviews (
			interview_id, candidate_name, role, experience_level,
			resume_text, resume_key, technical_skills, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		iv.InterviewID, iv.CandidateName, iv.Role, iv.ExperienceLevel,
		iv.ResumeText, iv.ResumeKey, technicalSkills, string(StatusInitialized),
	)
	if err != nil {
		return fmt.Errorf("insert interview: %w", err)
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, interviewID string) (*Interview, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT`+selectColumns+` FROM interviews WHERE interview_id = $1`,
		interviewID,
	)
	return scanInterview(row)
}

func (r *PGRepo) SetDetails(ctx context.Context, interviewID string, role, experienceLevel string) error {
	return r.exec(ctx, `
		UPDATE interviews
		SET role = $2, experience_level = $3, last_updated = now()
		WHERE interview_id = $1`,
		interviewID, role, experienceLevel,
	)
}

func (r *PGRepo) SetSkills(ctx context.Context, interviewID string, skills map[string]int, status Status) error {
	payload, err := json.Marshal(skills)
	if err != nil {
		return fmt.Errorf("marshal skills: %w", err)
	}
	return r.exec(ctx, `
		UPDATE interviews
		SET skills = $2, status = $3, last_updated = now()
		WHERE interview_id = $1`,
		interviewID, payload, string(status),
	)
}

func (r *PGRepo) AppendTurn(ctx context.Context, interviewID string, turn Turn, status Status) error {
	payload, err := json.Marshal([]Turn{turn})
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}
	return r.exec(ctx, `
		UPDATE interviews
		SET conversation_history = conversation_history || $2::jsonb,
		    status = $3, last_updated = now()
		WHERE interview_id = $1`,
		interviewID, payload, string(status),
	)
}

func (r *PGRepo) SetLastAnswer(ctx context.Context, interviewID string, answer string) error {
	answeredAt, err := json.Marshal(time.Now().UTC())
	if err != nil {
		return fmt.Errorf("marshal timestamp: %w", err)
	}
	return r.exec(ctx, `
		UPDATE interviews
		SET conversation_history = jsonb_set(
			jsonb_set(
				conversation_history,
				ARRAY[(jsonb_array_length(conversation_history) - 1)::text, 'answer'],
				to_jsonb($2::text)
			),
			ARRAY[(jsonb_array_length(conversation_history) - 1)::text, 'answered_at'],
			$3::jsonb
		),
		last_updated = now()
		WHERE interview_id = $1 AND jsonb_array_length(conversation_history) > 0`,
		interviewID, answer, answeredAt,
	)
}

func (r *PGRepo) SetAssessment(ctx context.Context, interviewID string, assessment json.RawMessage, status Status) error {
	return r.exec(ctx, `
		UPDATE interviews
		SET technical_assessment = $2, status = $3, last_updated = now()
		WHERE interview_id = $1`,
		interviewID, []byte(assessment), string(status),
	)
}

func (r *PGRepo) SetReport(ctx context.Context, interviewID string, reportKey string, status Status) error {
	return r.exec(ctx, `
		UPDATE interviews
		SET report_key = $2, status = $3, last_updated = now()
		WHERE interview_id = $1`,
		interviewID, reportKey, string(status),
	)
}

func (r *PGRepo) UpdateStatus(ctx context.Context, interviewID string, status Status) error {
	return r.exec(ctx, `
		UPDATE interviews
		SET status = $2, last_updated = now()
		WHERE interview_id = $1`,
		interviewID, string(status),
	)
}

func (r *PGRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update interview: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInterview(row rowScanner) (*Interview, error) {
	var (
		iv              Interview
		technicalSkills []byte
		skills          []byte
		status          string
		history         []byte
		assessment      []byte
	)
	err := row.Scan(
		&iv.InterviewID, &iv.CandidateName,
		&iv.Role, &iv.ExperienceLevel,
		&iv.ResumeText, &iv.ResumeKey,
		&technicalSkills, &skills, &status, &history,
		&assessment, &iv.ReportKey,
		&iv.CreatedAt, &iv.LastUpdated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan interview: %w", err)
	}

	iv.Status = Status(status)
	if len(technicalSkills) > 0 {
		if err := json.Unmarshal(technicalSkills, &iv.TechnicalSkills); err != nil {
			return nil, fmt.Errorf("unmarshal technical skills: %w", err)
		}
	}
	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &iv.Skills); err != nil {
			return nil, fmt.Errorf("unmarshal skills: %w", err)
		}
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &iv.History); err != nil {
			return nil, fmt.Errorf("unmarshal history: %w", err)
		}
	}
	if len(assessment) > 0 && string(assessment) != "{}" {
		iv.Assessment = append(json.RawMessage(nil), assessment...)
	}
	return &iv, nil
}

var _ Repo = (*PGRepo)(nil)
