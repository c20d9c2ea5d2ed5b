package interviews

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var promptTemplates = template.Must(
	template.New("prompts").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(promptFS, "prompts/*.tmpl"),
)

// DepthLabel maps a self-rating to the depth at which the skill is probed.
func DepthLabel(rating int) string {
	switch {
	case rating >= 8:
		return "advanced"
	case rating >= 5:
		return "intermediate"
	default:
		return "basic"
	}
}

// recentTurnWindow bounds how much conversation is replayed per prompt.
const recentTurnWindow = 4

type skillLine struct {
	Name   string
	Rating int
	Depth  string
}

type promptData struct {
	CandidateName   string
	Role            string
	ExperienceLevel string
	Skills          []skillLine
	Uncovered       []string
	RecentTurns     []Turn
	PriorQuestions  []string
}

// BuildQuestionPrompt renders the system and user prompts for the next
// question. isStart selects the opening variant that greets the candidate.
func BuildQuestionPrompt(iv *Interview, isStart bool) (string, string, error) {
	data := promptData{
		CandidateName:   iv.CandidateName,
		Role:            iv.Role,
		ExperienceLevel: iv.ExperienceLevel,
		Uncovered:       iv.UncoveredSkills(),
		PriorQuestions:  iv.PriorQuestions(),
	}

	names := make([]string, 0, len(iv.Skills))
	for name := range iv.Skills {
		names = append(names, name)
	}
	sortByRatingDesc(names, iv.Skills)
	for _, name := range names {
		rating := iv.Skills[name]
		data.Skills = append(data.Skills, skillLine{Name: name, Rating: rating, Depth: DepthLabel(rating)})
	}

	if n := len(iv.History); n > recentTurnWindow {
		data.RecentTurns = iv.History[n-recentTurnWindow:]
	} else {
		data.RecentTurns = iv.History
	}

	system, err := render("question_system.tmpl", data)
	if err != nil {
		return "", "", err
	}

	userTmpl := "question_next.tmpl"
	if isStart {
		userTmpl = "question_opening.tmpl"
	}
	user, err := render(userTmpl, data)
	if err != nil {
		return "", "", err
	}
	return system, user, nil
}

func render(name string, data promptData) (string, error) {
	var buf strings.Builder
	if err := promptTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
