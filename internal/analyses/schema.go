package analyses

import "time"

// PassThreshold is the overall rating at or above which the candidate passes.
const PassThreshold = 7.0

// Assessment is the structured performance analysis stored on the interview.
type Assessment struct {
	SkillCategories    map[string]Category `json:"skill_categories"`
	OverallRating      float64             `json:"overall_rating"`
	OverallPerformance string              `json:"overall_performance"`
	Evidence           []string            `json:"evidence"`
	Result             string              `json:"result"`
	GeneratedAt        time.Time           `json:"generated_at"`
}

// Category groups related subskill ratings.
type Category struct {
	Rating        float64                `json:"rating"`
	Subcategories map[string]Subcategory `json:"subcategories"`
}

// Subcategory is one rated subskill with supporting evidence.
type Subcategory struct {
	Rating   float64 `json:"rating"`
	Evidence string  `json:"evidence"`
}

// Normalize clamps every rating into [0,10], fills missing aggregate
// ratings from their children and derives the pass/fail result. The
// result is always computed here, never taken from model output.
func (a *Assessment) Normalize() {
	for name, cat := range a.SkillCategories {
		var sum float64
		var n int
		for subName, sub := range cat.Subcategories {
			sub.Rating = clampRating(sub.Rating)
			cat.Subcategories[subName] = sub
			sum += sub.Rating
			n++
		}
		if cat.Rating == 0 && n > 0 {
			cat.Rating = sum / float64(n)
		}
		cat.Rating = clampRating(cat.Rating)
		a.SkillCategories[name] = cat
	}

	if a.OverallRating == 0 && len(a.SkillCategories) > 0 {
		var sum float64
		for _, cat := range a.SkillCategories {
			sum += cat.Rating
		}
		a.OverallRating = sum / float64(len(a.SkillCategories))
	}
	a.OverallRating = clampRating(a.OverallRating)

	if a.OverallRating >= PassThreshold {
		a.Result = "Pass"
	} else {
		a.Result = "Fail"
	}
}

func clampRating(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
