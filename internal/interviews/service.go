package interviews

import (
	"context"
	"fmt"
	"strings"
	"time"

	"interview-backend/internal/llm"
	"interview-backend/internal/shared/metrics"
	"interview-backend/internal/shared/telemetry"
)

const (
	questionTemperature = 0.7
	questionMaxTokens   = 1024
)

// Service drives the interview conversation.
type Service struct {
	repo Repo
	llm  llm.Client

	// maxQuestions bounds the number of question turns. Zero means the
	// caller decides when to stop.
	maxQuestions int
}

// NewService creates an interview service.
func NewService(repo Repo, client llm.Client, maxQuestions int) *Service {
	return &Service{repo: repo, llm: client, maxQuestions: maxQuestions}
}

// Repo exposes the underlying repository for sibling services.
func (s *Service) Repo() Repo {
	return s.repo
}

// QuestionPayload is the caller-facing shape of a generated question.
type QuestionPayload struct {
	Question   string   `json:"question"`
	Skill      string   `json:"current_skill"`
	Difficulty string   `json:"difficulty"`
	Context    string   `json:"context,omitempty"`
	FollowUps  []string `json:"follow_ups,omitempty"`
}

// TurnResult is the outcome of a start or continue call.
type TurnResult struct {
	InterviewID       string           `json:"interview_id"`
	Status            Status           `json:"status"`
	Phase             Phase            `json:"phase"`
	Question          *QuestionPayload `json:"question,omitempty"`
	QuestionNumber    int              `json:"question_number,omitempty"`
	InterviewComplete bool             `json:"interview_complete"`
}

// StatusResult is the derived progress view of an interview.
type StatusResult struct {
	InterviewID    string   `json:"interview_id"`
	Status         Status   `json:"status"`
	Phase          Phase    `json:"phase"`
	QuestionsAsked int      `json:"questions_asked"`
	Answered       int      `json:"answered"`
	CoveredSkills  []string `json:"covered_skills"`
	TotalSkills    int      `json:"total_skills"`
	HasAssessment  bool     `json:"has_assessment"`
	HasReport      bool     `json:"has_report"`
}

// RateSkills stores the candidate's self-ratings. Ratings must be within
// [0,10] and, when the resume produced a skill list, name only skills from
// that list. Ratings are recorded once and are immutable afterward.
func (s *Service) RateSkills(ctx context.Context, interviewID string, ratings map[string]int) (*Interview, error) {
	if len(ratings) == 0 {
		return nil, fmt.Errorf("%w: at least one skill rating is required", ErrValidation)
	}

	iv, err := s.repo.GetByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if !iv.Status.CanTransitionTo(StatusSkillsRated) {
		return nil, fmt.Errorf("%w: cannot rate skills while interview is %s", ErrConflict, iv.Status)
	}

	known := make(map[string]bool, len(iv.TechnicalSkills))
	for _, skill := range iv.TechnicalSkills {
		known[skill] = true
	}
	for skill, rating := range ratings {
		if rating < 0 || rating > 10 {
			return nil, fmt.Errorf("%w: rating for %q must be between 0 and 10", ErrValidation, skill)
		}
		if len(known) > 0 && !known[skill] {
			return nil, fmt.Errorf("%w: %q is not a skill extracted from the resume", ErrValidation, skill)
		}
	}

	if err := s.repo.SetSkills(ctx, interviewID, ratings, StatusSkillsRated); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, interviewID)
}

// Start records the target role and experience level, generates the opening
// question and moves the interview to active.
func (s *Service) Start(ctx context.Context, interviewID, role, experienceLevel string) (*TurnResult, error) {
	iv, err := s.repo.GetByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(iv.CandidateName) == "" {
		return nil, fmt.Errorf("%w: candidate name is required to start", ErrValidation)
	}
	if len(iv.Skills) == 0 {
		return nil, fmt.Errorf("%w: skills must be rated before starting", ErrValidation)
	}
	if !iv.Status.CanTransitionTo(StatusActive) {
		return nil, fmt.Errorf("%w: cannot start interview while it is %s", ErrConflict, iv.Status)
	}

	role = strings.TrimSpace(role)
	experienceLevel = strings.TrimSpace(experienceLevel)
	if role != "" || experienceLevel != "" {
		if role == "" {
			role = iv.Role
		}
		if experienceLevel == "" {
			experienceLevel = iv.ExperienceLevel
		}
		if err := s.repo.SetDetails(ctx, interviewID, role, experienceLevel); err != nil {
			return nil, err
		}
		iv.Role = role
		iv.ExperienceLevel = experienceLevel
	}

	q, err := s.generateQuestion(ctx, iv, true, "")
	if err != nil {
		return nil, err
	}

	turn := turnFromQuestion(q)
	if err := s.repo.AppendTurn(ctx, interviewID, turn, StatusActive); err != nil {
		return nil, err
	}
	metrics.IncInterviewStarted()

	return &TurnResult{
		InterviewID:    interviewID,
		Status:         StatusActive,
		Phase:          PhaseAwaitingAnswer,
		Question:       questionPayload(q),
		QuestionNumber: len(iv.History) + 1,
	}, nil
}

// Continue records the candidate's answer and generates the next question.
// The interview completes when the model declares it done or the configured
// question budget is exhausted.
func (s *Service) Continue(ctx context.Context, interviewID string, answer string) (*TurnResult, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, fmt.Errorf("%w: answer must not be empty", ErrValidation)
	}

	iv, err := s.repo.GetByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if !iv.Status.CanTransitionTo(StatusInProgress) {
		return nil, fmt.Errorf("%w: cannot continue interview while it is %s", ErrConflict, iv.Status)
	}
	if iv.Phase(s.maxQuestions) != PhaseAwaitingAnswer {
		return nil, fmt.Errorf("%w: no question is awaiting an answer", ErrConflict)
	}

	if err := s.repo.SetLastAnswer(ctx, interviewID, answer); err != nil {
		return nil, err
	}
	last := &iv.History[len(iv.History)-1]
	last.Answer = answer
	last.AnsweredAt = time.Now().UTC()

	if s.maxQuestions > 0 && len(iv.History) >= s.maxQuestions {
		return s.complete(ctx, iv)
	}

	q, err := s.generateQuestion(ctx, iv, false, last.Skill)
	if err != nil {
		return nil, err
	}
	if q.InterviewComplete {
		return s.complete(ctx, iv)
	}

	turn := turnFromQuestion(q)
	if err := s.repo.AppendTurn(ctx, interviewID, turn, StatusInProgress); err != nil {
		return nil, err
	}

	return &TurnResult{
		InterviewID:    interviewID,
		Status:         StatusInProgress,
		Phase:          PhaseAwaitingAnswer,
		Question:       questionPayload(q),
		QuestionNumber: len(iv.History) + 1,
	}, nil
}

// Status derives the progress view without mutating anything.
func (s *Service) Status(ctx context.Context, interviewID string) (*StatusResult, error) {
	iv, err := s.repo.GetByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	answered := 0
	for _, turn := range iv.History {
		if turn.Answered() {
			answered++
		}
	}
	covered := iv.CoveredSkills()
	if covered == nil {
		covered = []string{}
	}

	return &StatusResult{
		InterviewID:    iv.InterviewID,
		Status:         iv.Status,
		Phase:          iv.Phase(s.maxQuestions),
		QuestionsAsked: len(iv.History),
		Answered:       answered,
		CoveredSkills:  covered,
		TotalSkills:    len(iv.Skills),
		HasAssessment:  len(iv.Assessment) > 0,
		HasReport:      iv.ReportKey != "",
	}, nil
}

func (s *Service) complete(ctx context.Context, iv *Interview) (*TurnResult, error) {
	if iv.Status != StatusInProgress {
		if err := s.repo.UpdateStatus(ctx, iv.InterviewID, StatusInProgress); err != nil {
			return nil, err
		}
	}
	telemetry.Info("interview.complete", map[string]any{
		"interview_id": iv.InterviewID,
		"questions":    len(iv.History),
	})
	return &TurnResult{
		InterviewID:       iv.InterviewID,
		Status:            StatusInProgress,
		Phase:             PhaseCompleting,
		InterviewComplete: true,
	}, nil
}

func (s *Service) generateQuestion(ctx context.Context, iv *Interview, isStart bool, previousSkill string) (Question, error) {
	system, user, err := BuildQuestionPrompt(iv, isStart)
	if err != nil {
		return Question{}, err
	}

	raw, err := s.llm.Chat(ctx, llm.ChatRequest{
		System:      system,
		User:        user,
		Temperature: questionTemperature,
		MaxTokens:   questionMaxTokens,
	})
	if err != nil {
		return Question{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	q, repaired, reason := ValidateQuestion(raw, previousSkill)
	if repaired {
		metrics.IncResponseRepaired()
		telemetry.Warn("interview.response_repaired", map[string]any{
			"interview_id": iv.InterviewID,
			"reason":       reason,
		})
	}
	metrics.IncQuestionGenerated()
	return q, nil
}

func turnFromQuestion(q Question) Turn {
	return Turn{
		Question:   q.Question,
		Skill:      q.CurrentSkill,
		Difficulty: q.Difficulty,
		Context:    q.Context,
		AskedAt:    time.Now().UTC(),
	}
}

func questionPayload(q Question) *QuestionPayload {
	return &QuestionPayload{
		Question:   q.Question,
		Skill:      q.CurrentSkill,
		Difficulty: q.Difficulty,
		Context:    q.Context,
		FollowUps:  q.FollowUps,
	}
}
