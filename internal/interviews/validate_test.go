package interviews

import (
	"strings"
	"testing"
)

const validResponse = `{
	"question": "How does Go's scheduler multiplex goroutines onto OS threads?",
	"current_skill": "Go",
	"difficulty": "advanced",
	"context": "Digging into runtime internals.",
	"thought_process": {
		"response_analysis": "Strong answer on channels",
		"knowledge_assessment": "Solid concurrency fundamentals",
		"topic_decision": "Stay on Go, go deeper",
		"approach": "Probe runtime knowledge"
	},
	"follow_ups": ["What is work stealing?"],
	"interview_complete": false
}`

func TestValidateQuestionPassesCleanResponse(t *testing.T) {
	q, repaired, reason := ValidateQuestion(validResponse, "Go")
	if repaired {
		t.Fatalf("expected no repair, got reason %q", reason)
	}
	if q.Question != "How does Go's scheduler multiplex goroutines onto OS threads?" {
		t.Errorf("unexpected question %q", q.Question)
	}
	if q.CurrentSkill != "Go" || q.Difficulty != "advanced" {
		t.Errorf("unexpected skill/difficulty %q %q", q.CurrentSkill, q.Difficulty)
	}
	if len(q.FollowUps) != 1 || q.FollowUps[0] != "What is work stealing?" {
		t.Errorf("unexpected follow ups %v", q.FollowUps)
	}
}

func TestValidateQuestionStripsFences(t *testing.T) {
	fenced := "```json\n" + validResponse + "\n```"
	q, repaired, _ := ValidateQuestion(fenced, "Go")
	if repaired {
		t.Fatal("fenced but valid response should not be repaired")
	}
	if q.CurrentSkill != "Go" {
		t.Errorf("unexpected skill %q", q.CurrentSkill)
	}
}

func TestValidateQuestionNonJSONFallsBack(t *testing.T) {
	for _, raw := range []string{
		"I think the next question should be about Docker.",
		"",
		"[1, 2, 3]",
		`"just a string"`,
	} {
		q, repaired, _ := ValidateQuestion(raw, "Kubernetes")
		if !repaired {
			t.Errorf("raw %q: expected repair", raw)
		}
		if q.Question != fallbackQuestionText {
			t.Errorf("raw %q: expected fallback question, got %q", raw, q.Question)
		}
		if q.CurrentSkill != defaultSkill {
			t.Errorf("raw %q: fallback should land on %q, got %q", raw, defaultSkill, q.CurrentSkill)
		}
	}
}

func TestValidateQuestionFallbackIsComplete(t *testing.T) {
	q, _, _ := ValidateQuestion("not json", "")
	if q.Question == "" || q.CurrentSkill == "" || q.Difficulty == "" {
		t.Fatalf("fallback has empty required fields: %+v", q)
	}
	if q.CurrentSkill != defaultSkill {
		t.Errorf("empty previous skill should yield %q, got %q", defaultSkill, q.CurrentSkill)
	}
	tp := q.ThoughtProcess
	if tp.ResponseAnalysis == "" || tp.KnowledgeAssessment == "" || tp.TopicDecision == "" || tp.Approach == "" {
		t.Errorf("fallback thought process incomplete: %+v", tp)
	}
	if len(q.FollowUps) == 0 {
		t.Error("fallback should carry default follow ups")
	}
}

func TestValidateQuestionFillsMissingFields(t *testing.T) {
	raw := `{"question": "What is a goroutine?"}`
	q, repaired, reason := ValidateQuestion(raw, "Go")
	if !repaired {
		t.Fatal("missing fields should mark the response repaired")
	}
	if q.Question != "What is a goroutine?" {
		t.Errorf("present field should be kept, got %q", q.Question)
	}
	if q.CurrentSkill != defaultSkill || q.Difficulty != defaultDifficulty {
		t.Errorf("missing fields should take defaults, got %q %q", q.CurrentSkill, q.Difficulty)
	}
	if !strings.Contains(reason, "current_skill") {
		t.Errorf("reason should name the missing field, got %q", reason)
	}
}

func TestValidateQuestionTopicSwitchContradiction(t *testing.T) {
	raw := `{
		"question": "Tell me more about Python decorators.",
		"current_skill": "Python",
		"difficulty": "basic",
		"thought_process": {
			"response_analysis": "Candidate struggled",
			"knowledge_assessment": "Shows lack of knowledge here",
			"topic_decision": "Candidate shows weak understanding, will switch topics",
			"approach": "Ease off"
		},
		"follow_ups": ["Any example?"]
	}`
	q, repaired, reason := ValidateQuestion(raw, "Python")
	if !repaired {
		t.Fatal("declared switch while staying on the same skill must be repaired")
	}
	if q.Question != fallbackQuestionText {
		t.Errorf("expected fallback question, got %q", q.Question)
	}
	if q.CurrentSkill != defaultSkill {
		t.Errorf("fallback must leave the skill the model flagged as weak, got %q", q.CurrentSkill)
	}
	if !strings.Contains(reason, "contradicts") {
		t.Errorf("unexpected reason %q", reason)
	}
}

func TestValidateQuestionTopicSwitchHonoredWhenSkillChanges(t *testing.T) {
	raw := `{
		"question": "How do you define a Docker multi-stage build?",
		"current_skill": "Docker",
		"difficulty": "intermediate",
		"thought_process": {
			"response_analysis": "Weak Python answer",
			"knowledge_assessment": "Limited depth in Python",
			"topic_decision": "Switching to Docker due to weak understanding",
			"approach": "Try a different strength"
		},
		"follow_ups": ["Why use multi-stage builds?"]
	}`
	q, repaired, reason := ValidateQuestion(raw, "Python")
	if repaired {
		t.Fatalf("an actual topic switch is valid, got repair reason %q", reason)
	}
	if q.CurrentSkill != "Docker" {
		t.Errorf("unexpected skill %q", q.CurrentSkill)
	}
}

func TestValidateQuestionOpeningIgnoresTopicCheck(t *testing.T) {
	raw := `{
		"question": "Welcome! Tell me about your Go experience.",
		"current_skill": "Go",
		"difficulty": "intermediate",
		"thought_process": {
			"response_analysis": "n/a",
			"knowledge_assessment": "n/a",
			"topic_decision": "switch to strongest skill",
			"approach": "open with strongest skill"
		},
		"follow_ups": ["What did you build?"]
	}`
	// previousSkill is empty on the opening turn, so the contradiction
	// check must not fire even though "switch" appears.
	_, repaired, reason := ValidateQuestion(raw, "")
	if repaired {
		t.Fatalf("opening turn should not trigger topic check, got %q", reason)
	}
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```":     `{"a":1}`,
		`{"a":1}`:                 `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
	}
	for in, want := range cases {
		if got := StripFences(in); got != want {
			t.Errorf("StripFences(%q) = %q, want %q", in, got, want)
		}
	}
}
