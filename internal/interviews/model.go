package interviews

import (
	"encoding/json"
	"time"
)

// Status is the persisted lifecycle state of an interview.
type Status string

const (
	StatusInitialized     Status = "initialized"
	StatusSkillsRated     Status = "skills_rated"
	StatusActive          Status = "active"
	StatusInProgress      Status = "in_progress"
	StatusAnalyzed        Status = "analyzed"
	StatusReportGenerated Status = "report_generated"
)

// transitions is the set of allowed status moves. Self-loops cover
// repeated question turns, analysis re-runs and report regeneration.
var transitions = map[Status][]Status{
	StatusInitialized:     {StatusSkillsRated},
	StatusSkillsRated:     {StatusActive},
	StatusActive:          {StatusInProgress, StatusAnalyzed},
	StatusInProgress:      {StatusInProgress, StatusAnalyzed},
	StatusAnalyzed:        {StatusAnalyzed, StatusReportGenerated},
	StatusReportGenerated: {StatusAnalyzed, StatusReportGenerated},
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusInitialized, StatusSkillsRated, StatusActive, StatusInProgress, StatusAnalyzed, StatusReportGenerated:
		return true
	}
	return false
}

// Phase is the conversational position derived from the stored record.
// It is never persisted.
type Phase string

const (
	PhaseNotStarted     Phase = "not_started"
	PhaseIntroducing    Phase = "introducing"
	PhaseAwaitingAnswer Phase = "awaiting_answer"
	PhaseAsking         Phase = "asking"
	PhaseCompleting     Phase = "completing"
	PhaseCompleted      Phase = "completed"
)

// Turn is one question/answer exchange in the conversation history.
type Turn struct {
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Skill      string    `json:"skill"`
	Difficulty string    `json:"difficulty"`
	Context    string    `json:"context,omitempty"`
	AskedAt    time.Time `json:"asked_at"`
	AnsweredAt time.Time `json:"answered_at,omitzero"`
}

// Answered reports whether the candidate has responded to this turn.
func (t Turn) Answered() bool {
	return t.Answer != ""
}

// Interview is the single document that accumulates all interview state,
// keyed by InterviewID.
type Interview struct {
	InterviewID     string          `json:"interview_id"`
	CandidateName   string          `json:"candidate_name"`
	Role            string          `json:"role,omitempty"`
	ExperienceLevel string          `json:"experience_level,omitempty"`
	ResumeText      string          `json:"resume_text,omitempty"`
	ResumeKey       string          `json:"resume_key,omitempty"`
	TechnicalSkills []string        `json:"technical_skills"`
	Skills          map[string]int  `json:"skills"`
	Status          Status          `json:"status"`
	History         []Turn          `json:"conversation_history"`
	Assessment      json.RawMessage `json:"technical_assessment,omitempty"`
	ReportKey       string          `json:"report_key,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	LastUpdated     time.Time       `json:"last_updated"`
}

// Phase derives the conversational position from status and history.
func (iv *Interview) Phase(maxQuestions int) Phase {
	switch iv.Status {
	case StatusInitialized, StatusSkillsRated:
		return PhaseNotStarted
	case StatusAnalyzed, StatusReportGenerated:
		return PhaseCompleted
	}

	if len(iv.History) == 0 {
		return PhaseIntroducing
	}
	last := iv.History[len(iv.History)-1]
	if !last.Answered() {
		return PhaseAwaitingAnswer
	}
	if maxQuestions > 0 && len(iv.History) >= maxQuestions {
		return PhaseCompleting
	}
	return PhaseAsking
}

// CoveredSkills returns the distinct skills probed by at least one turn,
// in first-seen order. A pending question counts as coverage so the next
// prompt does not circle back to it.
func (iv *Interview) CoveredSkills() []string {
	seen := make(map[string]bool)
	var out []string
	for _, turn := range iv.History {
		if turn.Skill == "" {
			continue
		}
		if !seen[turn.Skill] {
			seen[turn.Skill] = true
			out = append(out, turn.Skill)
		}
	}
	return out
}

// UncoveredSkills returns rated skills no turn has probed yet,
// ordered by descending self-rating.
func (iv *Interview) UncoveredSkills() []string {
	covered := make(map[string]bool)
	for _, s := range iv.CoveredSkills() {
		covered[s] = true
	}
	var out []string
	for skill := range iv.Skills {
		if !covered[skill] {
			out = append(out, skill)
		}
	}
	sortByRatingDesc(out, iv.Skills)
	return out
}

func sortByRatingDesc(skills []string, ratings map[string]int) {
	for i := 1; i < len(skills); i++ {
		for j := i; j > 0; j-- {
			a, b := skills[j-1], skills[j]
			if ratings[b] > ratings[a] || (ratings[b] == ratings[a] && b < a) {
				skills[j-1], skills[j] = skills[j], skills[j-1]
			} else {
				break
			}
		}
	}
}

// PriorQuestions returns every question asked so far.
func (iv *Interview) PriorQuestions() []string {
	out := make([]string, 0, len(iv.History))
	for _, turn := range iv.History {
		out = append(out, turn.Question)
	}
	return out
}
