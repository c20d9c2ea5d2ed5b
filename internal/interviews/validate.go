package interviews

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Question is the structured output of one question-generation call.
type Question struct {
	Question          string         `json:"question"`
	CurrentSkill      string         `json:"current_skill"`
	Difficulty        string         `json:"difficulty"`
	Context           string         `json:"context"`
	ThoughtProcess    ThoughtProcess `json:"thought_process"`
	FollowUps         []string       `json:"follow_ups"`
	InterviewComplete bool           `json:"interview_complete"`
}

// ThoughtProcess captures the model's stated reasoning for the turn.
type ThoughtProcess struct {
	ResponseAnalysis    string `json:"response_analysis"`
	KnowledgeAssessment string `json:"knowledge_assessment"`
	TopicDecision       string `json:"topic_decision"`
	Approach            string `json:"approach"`
}

const (
	fallbackQuestionText = "Could you tell me more about your experience with this technology?"
	defaultQuestionText  = "Could you elaborate on your previous answer?"
	defaultSkill         = "general"
	defaultDifficulty    = "intermediate"
)

var defaultFollowUps = []string{
	"Could you provide more details?",
	"Can you give an example?",
}

var defaultThoughtProcess = ThoughtProcess{
	ResponseAnalysis:    "Analyzing response",
	KnowledgeAssessment: "Evaluating knowledge",
	TopicDecision:       "Maintaining current topic",
	Approach:            "Using structured approach",
}

var fallbackThoughtProcess = ThoughtProcess{
	ResponseAnalysis:    "Fallback due to error",
	KnowledgeAssessment: "Continuing general assessment",
	TopicDecision:       "Maintaining current topic",
	Approach:            "Using safe fallback question",
}

// weaknessMarkers flag a stated intent to leave the current topic.
var weaknessMarkers = []string{
	"switch",
	"move on",
	"lack of knowledge",
	"weak understanding",
}

// ValidateQuestion checks and repairs raw model output for a question turn.
// It never fails: unusable output is replaced with a safe fallback and the
// repaired flag is set with a short reason. previousSkill is the skill of
// the turn being answered, empty on the opening question.
func ValidateQuestion(raw string, previousSkill string) (Question, bool, string) {
	text := StripFences(raw)

	if !gjson.Valid(text) || !gjson.Parse(text).IsObject() {
		return fallbackQuestion(), true, "response is not a JSON object"
	}

	repaired := false
	var reasons []string
	stringField := func(path, def string) string {
		if v := gjson.Get(text, path); v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
			return strings.TrimSpace(v.String())
		}
		repaired = true
		reasons = append(reasons, "missing "+path)
		return def
	}

	q := Question{
		Question:     stringField("question", defaultQuestionText),
		CurrentSkill: stringField("current_skill", defaultSkill),
		Difficulty:   stringField("difficulty", defaultDifficulty),
		Context:      strings.TrimSpace(gjson.Get(text, "context").String()),
		ThoughtProcess: ThoughtProcess{
			ResponseAnalysis:    stringField("thought_process.response_analysis", defaultThoughtProcess.ResponseAnalysis),
			KnowledgeAssessment: stringField("thought_process.knowledge_assessment", defaultThoughtProcess.KnowledgeAssessment),
			TopicDecision:       stringField("thought_process.topic_decision", defaultThoughtProcess.TopicDecision),
			Approach:            stringField("thought_process.approach", defaultThoughtProcess.Approach),
		},
		InterviewComplete: gjson.Get(text, "interview_complete").Bool(),
	}

	if followUps := gjson.Get(text, "follow_ups"); followUps.IsArray() {
		for _, item := range followUps.Array() {
			if s := strings.TrimSpace(item.String()); s != "" {
				q.FollowUps = append(q.FollowUps, s)
			}
		}
	}
	if len(q.FollowUps) == 0 {
		q.FollowUps = append([]string(nil), defaultFollowUps...)
		repaired = true
		reasons = append(reasons, "missing follow_ups")
	}

	// A model that declares the candidate weak on the current topic must
	// actually change topic. Staying put contradicts its own decision, so
	// the whole turn is replaced.
	if previousSkill != "" && q.CurrentSkill == previousSkill && declaresWeakness(q.ThoughtProcess.TopicDecision) {
		return fallbackQuestion(), true, "topic decision contradicts chosen skill"
	}

	return q, repaired, strings.Join(reasons, "; ")
}

func declaresWeakness(topicDecision string) bool {
	lowered := strings.ToLower(topicDecision)
	for _, marker := range weaknessMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// fallbackQuestion always lands on the general skill. Keeping the previous
// skill would pin the conversation to the topic the model may have just
// flagged as weak.
func fallbackQuestion() Question {
	return Question{
		Question:       fallbackQuestionText,
		CurrentSkill:   defaultSkill,
		Difficulty:     defaultDifficulty,
		ThoughtProcess: fallbackThoughtProcess,
		FollowUps:      append([]string(nil), defaultFollowUps...),
	}
}

// StripFences removes a surrounding markdown code fence from model output.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
