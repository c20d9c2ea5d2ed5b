package interviews

import (
	"strings"
	"testing"
)

func TestDepthLabel(t *testing.T) {
	cases := map[int]string{
		10: "advanced",
		8:  "advanced",
		7:  "intermediate",
		5:  "intermediate",
		4:  "basic",
		0:  "basic",
	}
	for rating, want := range cases {
		if got := DepthLabel(rating); got != want {
			t.Errorf("DepthLabel(%d) = %q, want %q", rating, got, want)
		}
	}
}

func testInterview() *Interview {
	return &Interview{
		InterviewID:     "iv-1",
		CandidateName:   "Jordan Lee",
		Role:            "Backend Engineer",
		ExperienceLevel: "senior",
		Skills:          map[string]int{"Go": 9, "PostgreSQL": 6, "Docker": 4},
	}
}

func TestBuildQuestionPromptOpening(t *testing.T) {
	iv := testInterview()
	system, user, err := BuildQuestionPrompt(iv, true)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"Jordan Lee",
		"Backend Engineer",
		"Go: 9/10 (probe at advanced depth)",
		"PostgreSQL: 6/10 (probe at intermediate depth)",
		"Docker: 4/10 (probe at basic depth)",
		"interview_complete",
	} {
		if !strings.Contains(system, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}

	if !strings.Contains(user, "Greet Jordan Lee") {
		t.Errorf("opening prompt should greet the candidate: %q", user)
	}
	if !strings.Contains(user, "(Go)") {
		t.Errorf("opening prompt should name the strongest skill: %q", user)
	}
}

func TestBuildQuestionPromptNextAvoidsRepeats(t *testing.T) {
	iv := testInterview()
	iv.History = []Turn{
		{Question: "Explain goroutine leaks.", Skill: "Go", Difficulty: "advanced", Answer: "They happen when..."},
		{Question: "What is MVCC?", Skill: "PostgreSQL", Difficulty: "intermediate"},
	}

	_, user, err := BuildQuestionPrompt(iv, false)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(user, "Explain goroutine leaks.") || !strings.Contains(user, "What is MVCC?") {
		t.Errorf("next prompt must list prior questions:\n%s", user)
	}
	if !strings.Contains(user, "do not repeat") {
		t.Errorf("next prompt must forbid repeats:\n%s", user)
	}
	if !strings.Contains(user, "(no answer yet)") {
		t.Errorf("pending answer should be marked:\n%s", user)
	}
	// Docker is rated 4 and never asked, it should lead the uncovered list
	// only behind nothing higher; Go has an answered turn, so it is covered.
	if !strings.Contains(user, "Docker") {
		t.Errorf("uncovered skills missing from prompt:\n%s", user)
	}
}

func TestBuildQuestionPromptWindowsHistory(t *testing.T) {
	iv := testInterview()
	for i := 0; i < 10; i++ {
		iv.History = append(iv.History, Turn{
			Question: "old question " + string(rune('a'+i)),
			Skill:    "Go",
			Answer:   "answer",
		})
	}

	_, user, err := BuildQuestionPrompt(iv, false)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(strings.SplitN(user, "Questions already asked", 2)[0], "old question a") {
		t.Error("recent conversation should be windowed to the last turns")
	}
	// The repeat-avoidance list still carries everything.
	if !strings.Contains(user, "old question a") {
		t.Error("prior question list must include all questions")
	}
}
