package analyses

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"interview-backend/internal/interviews"
	"interview-backend/internal/llm"
	"interview-backend/internal/shared/metrics"
	"interview-backend/internal/shared/telemetry"
)

const (
	analysisTemperature = 0.2
	analysisMaxTokens   = 2048
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var promptTemplates = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

// Service generates and serves performance assessments.
type Service struct {
	repo interviews.Repo
	llm  llm.Client
}

// NewService creates an analysis service.
func NewService(repo interviews.Repo, client llm.Client) *Service {
	return &Service{repo: repo, llm: client}
}

// Generate analyzes the conversation and stores the assessment on the
// interview record. Re-running replaces the previous assessment.
func (s *Service) Generate(ctx context.Context, interviewID string) (*Assessment, error) {
	iv, err := s.repo.GetByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if !iv.Status.CanTransitionTo(interviews.StatusAnalyzed) {
		return nil, fmt.Errorf("%w: cannot analyze interview while it is %s", interviews.ErrConflict, iv.Status)
	}
	if countAnswered(iv) == 0 {
		return nil, fmt.Errorf("%w: no answered questions to analyze", interviews.ErrConflict)
	}

	system, user, err := buildAnalysisPrompt(iv)
	if err != nil {
		return nil, err
	}

	raw, err := s.llm.Chat(ctx, llm.ChatRequest{
		System:      system,
		User:        user,
		Temperature: analysisTemperature,
		MaxTokens:   analysisMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interviews.ErrUpstream, err)
	}

	var assessment Assessment
	if err := json.Unmarshal([]byte(interviews.StripFences(raw)), &assessment); err != nil {
		telemetry.Warn("analysis.unparseable", map[string]any{
			"interview_id": interviewID,
			"error":        err.Error(),
		})
		return nil, fmt.Errorf("%w: analysis output was not valid JSON", interviews.ErrUpstream)
	}
	assessment.GeneratedAt = time.Now().UTC()
	assessment.Normalize()

	payload, err := json.Marshal(assessment)
	if err != nil {
		return nil, fmt.Errorf("marshal assessment: %w", err)
	}
	if err := s.repo.SetAssessment(ctx, interviewID, payload, interviews.StatusAnalyzed); err != nil {
		return nil, err
	}
	metrics.IncAnalysisGenerated()
	telemetry.Info("analysis.generated", map[string]any{
		"interview_id":   interviewID,
		"overall_rating": assessment.OverallRating,
		"result":         assessment.Result,
	})
	return &assessment, nil
}

// Get returns the stored assessment for an interview.
func (s *Service) Get(ctx context.Context, interviewID string) (*Assessment, error) {
	iv, err := s.repo.GetByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if len(iv.Assessment) == 0 {
		return nil, ErrNotAnalyzed
	}
	var assessment Assessment
	if err := json.Unmarshal(iv.Assessment, &assessment); err != nil {
		return nil, fmt.Errorf("unmarshal stored assessment: %w", err)
	}
	return &assessment, nil
}

func countAnswered(iv *interviews.Interview) int {
	n := 0
	for _, turn := range iv.History {
		if turn.Answered() {
			n++
		}
	}
	return n
}

type skillLine struct {
	Name   string
	Rating int
}

type promptData struct {
	CandidateName   string
	Role            string
	ExperienceLevel string
	Skills          []skillLine
	Transcript      string
}

func buildAnalysisPrompt(iv *interviews.Interview) (string, string, error) {
	data := promptData{
		CandidateName:   iv.CandidateName,
		Role:            iv.Role,
		ExperienceLevel: iv.ExperienceLevel,
		Transcript:      FormatTranscript(iv.History),
	}
	for name, rating := range iv.Skills {
		data.Skills = append(data.Skills, skillLine{Name: name, Rating: rating})
	}
	sort.Slice(data.Skills, func(i, j int) bool {
		if data.Skills[i].Rating != data.Skills[j].Rating {
			return data.Skills[i].Rating > data.Skills[j].Rating
		}
		return data.Skills[i].Name < data.Skills[j].Name
	})

	var system, user strings.Builder
	if err := promptTemplates.ExecuteTemplate(&system, "analysis_system.tmpl", data); err != nil {
		return "", "", fmt.Errorf("render analysis system prompt: %w", err)
	}
	if err := promptTemplates.ExecuteTemplate(&user, "analysis_user.tmpl", data); err != nil {
		return "", "", fmt.Errorf("render analysis user prompt: %w", err)
	}
	return strings.TrimSpace(system.String()), strings.TrimSpace(user.String()), nil
}

// FormatTranscript renders the conversation as numbered Q/A pairs.
// Unanswered questions are included and marked, so the assessor sees
// everything that was asked.
func FormatTranscript(history []interviews.Turn) string {
	var b strings.Builder
	for i, turn := range history {
		fmt.Fprintf(&b, "Q%d [%s, %s]: %s\n", i+1, turn.Skill, turn.Difficulty, turn.Question)
		if turn.Answered() {
			fmt.Fprintf(&b, "A%d: %s\n", i+1, turn.Answer)
		} else {
			fmt.Fprintf(&b, "A%d: (not answered)\n", i+1)
		}
	}
	return strings.TrimSpace(b.String())
}
