package reports

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
	"unicode/utf8"

	"interview-backend/internal/analyses"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func testAssessment() *analyses.Assessment {
	a := &analyses.Assessment{
		SkillCategories: map[string]analyses.Category{
			"Backend": {
				Rating: 8,
				Subcategories: map[string]analyses.Subcategory{
					"Go":  {Rating: 8.5, Evidence: "solid"},
					"SQL": {Rating: 6, Evidence: "adequate"},
				},
			},
			"Infrastructure": {
				Rating: 7,
				Subcategories: map[string]analyses.Subcategory{
					"Docker": {Rating: 7, Evidence: "good"},
				},
			},
			"Communication": {
				Rating: 9,
				Subcategories: map[string]analyses.Subcategory{
					"Clarity": {Rating: 9, Evidence: "clear answers"},
				},
			},
		},
		OverallRating:      8,
		OverallPerformance: "Strong overall.",
		Evidence:           []string{"Explained tradeoffs well"},
	}
	a.Normalize()
	return a
}

func TestCategoryRadarProducesPNG(t *testing.T) {
	data, err := CategoryRadar(testAssessment())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Fatal("output is not a PNG")
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		t.Error("empty image")
	}
}

func TestCategoryRadarNeedsThreeCategories(t *testing.T) {
	a := &analyses.Assessment{
		SkillCategories: map[string]analyses.Category{
			"Backend": {Rating: 8},
			"Infra":   {Rating: 7},
		},
	}
	data, err := CategoryRadar(a)
	if err != nil {
		t.Fatal(err)
	}
	if data != nil {
		t.Error("two categories cannot form a radar polygon")
	}
}

func TestSkillBarsProducesPNG(t *testing.T) {
	data, err := SkillBars(testAssessment())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Fatal("output is not a PNG")
	}
}

func TestSkillBarsEmptyAssessment(t *testing.T) {
	data, err := SkillBars(&analyses.Assessment{})
	if err != nil {
		t.Fatal(err)
	}
	if data != nil {
		t.Error("no subcategories should yield no chart")
	}
}

func TestTruncateLabelKeepsRunesWhole(t *testing.T) {
	long := strings.Repeat("é", 30)
	got := truncateLabel(long, 22)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated label is not valid UTF-8: %q", got)
	}
	if utf8.RuneCountInString(got) != 22 {
		t.Errorf("rune count = %d, want 22", utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated label should end with ellipsis, got %q", got)
	}
	if short := truncateLabel("Go", 22); short != "Go" {
		t.Errorf("short label should pass through, got %q", short)
	}
}

func TestChartsAreDeterministic(t *testing.T) {
	a := testAssessment()
	first, err := CategoryRadar(a)
	if err != nil {
		t.Fatal(err)
	}
	second, err := CategoryRadar(a)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("same assessment must render identical charts")
	}
}
