package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"interview-backend/internal/extract"
	"interview-backend/internal/interviews"
	"interview-backend/internal/llm"
	"interview-backend/internal/shared/storage/object"
	"interview-backend/internal/shared/telemetry"
)

const (
	maxResumeBytes = 10 << 20

	// resumeTextLimit caps how much resume text is sent for skill extraction.
	resumeTextLimit = 12000
)

const skillExtractionSystem = `You are a resume parser. Extract the distinct technical skills from the resume text: languages, frameworks, databases, cloud platforms, and tools. Respond with a single JSON object and nothing else:
{"technical_skills": ["Skill One", "Skill Two"]}
Use the canonical name for each skill and do not invent skills that are not in the text.`

// UploadInput carries one resume upload.
type UploadInput struct {
	CandidateName   string
	Role            string
	ExperienceLevel string
	FileName        string
	MimeType        string
	Data            []byte
}

// UploadResult is the outcome of processing a resume.
type UploadResult struct {
	InterviewID     string   `json:"interview_id"`
	CandidateName   string   `json:"candidate_name"`
	TechnicalSkills []string `json:"technical_skills"`
	Status          string   `json:"status"`
}

// Service ingests resumes and creates interview records.
type Service struct {
	repo  interviews.Repo
	store object.ObjectStore
	llm   llm.Client
}

// NewService creates a resume service.
func NewService(repo interviews.Repo, store object.ObjectStore, client llm.Client) *Service {
	return &Service{repo: repo, store: store, llm: client}
}

// Upload stores the file, extracts its text and skill list, and creates
// the interview record in the initialized state.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if strings.TrimSpace(in.CandidateName) == "" {
		return nil, fmt.Errorf("%w: candidate_name is required", interviews.ErrValidation)
	}
	if len(in.Data) == 0 {
		return nil, fmt.Errorf("%w: resume file is empty", interviews.ErrValidation)
	}
	if len(in.Data) > maxResumeBytes {
		return nil, fmt.Errorf("%w: resume file exceeds the 10MB limit", interviews.ErrValidation)
	}

	text, err := extract.ResumeText(ctx, in.Data, in.MimeType, in.FileName)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedType) {
			return nil, fmt.Errorf("%w: only PDF and DOCX resumes are supported", interviews.ErrValidation)
		}
		return nil, fmt.Errorf("%w: resume could not be parsed", interviews.ErrValidation)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: resume contains no extractable text", interviews.ErrValidation)
	}

	interviewID := uuid.NewString()

	resumeKey, _, _, err := s.store.Save(ctx, interviewID, in.FileName, bytes.NewReader(in.Data))
	if err != nil {
		return nil, fmt.Errorf("store resume: %w", err)
	}

	skills, err := s.extractSkills(ctx, text)
	if err != nil {
		return nil, err
	}

	iv := &interviews.Interview{
		InterviewID:     interviewID,
		CandidateName:   strings.TrimSpace(in.CandidateName),
		Role:            strings.TrimSpace(in.Role),
		ExperienceLevel: strings.TrimSpace(in.ExperienceLevel),
		ResumeText:      text,
		ResumeKey:       resumeKey,
		TechnicalSkills: skills,
		Status:          interviews.StatusInitialized,
	}
	if err := s.repo.Insert(ctx, iv); err != nil {
		return nil, err
	}

	telemetry.Info("resume.uploaded", map[string]any{
		"interview_id": interviewID,
		"skills":       len(skills),
		"text_bytes":   len(text),
	})
	return &UploadResult{
		InterviewID:     interviewID,
		CandidateName:   iv.CandidateName,
		TechnicalSkills: skills,
		Status:          string(iv.Status),
	}, nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (s *Service) extractSkills(ctx context.Context, text string) ([]string, error) {
	text = truncateUTF8(text, resumeTextLimit)

	raw, err := s.llm.Chat(ctx, llm.ChatRequest{
		System:      skillExtractionSystem,
		User:        "Resume text:\n\n" + text,
		Temperature: 0,
		MaxTokens:   512,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interviews.ErrUpstream, err)
	}

	cleaned := interviews.StripFences(raw)
	parsed := gjson.Get(cleaned, "technical_skills")
	if !parsed.IsArray() {
		// Models drift on the wrapper key, or drop it entirely.
		parsed = gjson.Get(cleaned, "skills")
	}
	if !parsed.IsArray() {
		if arr := gjson.Parse(cleaned); arr.IsArray() {
			parsed = arr
		} else {
			return nil, fmt.Errorf("%w: skill extraction output was not valid JSON", interviews.ErrUpstream)
		}
	}

	seen := make(map[string]bool)
	var skills []string
	for _, item := range parsed.Array() {
		skill := strings.TrimSpace(item.String())
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if !seen[key] {
			seen[key] = true
			skills = append(skills, skill)
		}
	}
	sort.Strings(skills)
	if len(skills) == 0 {
		return nil, fmt.Errorf("%w: no technical skills found in resume", interviews.ErrValidation)
	}
	return skills, nil
}
