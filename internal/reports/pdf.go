package reports

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"

	"interview-backend/internal/analyses"
	"interview-backend/internal/interviews"
)

const (
	pageMargin   = 15.0
	contentWidth = 180.0
)

// BuildPDF assembles the interview report document. The chart images are
// optional; nil slices are skipped.
func BuildPDF(iv *interviews.Interview, assessment *analyses.Assessment, radarPNG, barsPNG []byte) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)

	doc.SetHeaderFunc(func() {
		doc.SetFont("Helvetica", "B", 10)
		doc.SetTextColor(120, 120, 120)
		doc.CellFormat(0, 6, "Technical Interview Report", "", 1, "R", false, 0, "")
		doc.SetTextColor(0, 0, 0)
	})
	doc.SetFooterFunc(func() {
		doc.SetY(-12)
		doc.SetFont("Helvetica", "", 8)
		doc.SetTextColor(120, 120, 120)
		doc.CellFormat(0, 6, fmt.Sprintf("Page %d", doc.PageNo()), "", 0, "C", false, 0, "")
		doc.SetTextColor(0, 0, 0)
	})

	doc.AddPage()
	writeTitle(doc, iv)
	writeCandidateTable(doc, iv)
	writeSummary(doc, assessment)
	writeSkillsTable(doc, iv)
	writeCharts(doc, radarPNG, barsPNG)
	writeCategoryTables(doc, assessment)
	writeObservations(doc, assessment)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTitle(doc *fpdf.Fpdf, iv *interviews.Interview) {
	doc.SetFont("Helvetica", "B", 20)
	doc.CellFormat(0, 12, "Technical Interview Report", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	doc.SetTextColor(90, 90, 90)
	doc.CellFormat(0, 6, fmt.Sprintf("Generated %s", time.Now().UTC().Format("January 2, 2006")), "", 1, "L", false, 0, "")
	doc.SetTextColor(0, 0, 0)
	doc.Ln(4)
}

func writeCandidateTable(doc *fpdf.Fpdf, iv *interviews.Interview) {
	rows := [][2]string{
		{"Candidate", iv.CandidateName},
		{"Interview ID", iv.InterviewID},
	}
	if iv.Role != "" {
		rows = append(rows, [2]string{"Role", iv.Role})
	}
	if iv.ExperienceLevel != "" {
		rows = append(rows, [2]string{"Experience", iv.ExperienceLevel})
	}
	rows = append(rows, [2]string{"Questions Asked", fmt.Sprintf("%d", len(iv.History))})

	for _, row := range rows {
		doc.SetFont("Helvetica", "B", 10)
		doc.SetFillColor(243, 244, 246)
		doc.CellFormat(45, 8, row[0], "1", 0, "L", true, 0, "")
		doc.SetFont("Helvetica", "", 10)
		doc.CellFormat(contentWidth-45, 8, row[1], "1", 1, "L", false, 0, "")
	}
	doc.Ln(6)
}

func writeSummary(doc *fpdf.Fpdf, assessment *analyses.Assessment) {
	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(0, 9, "Executive Summary", "", 1, "L", false, 0, "")

	if assessment.Result == "Pass" {
		doc.SetFillColor(220, 252, 231)
		doc.SetTextColor(22, 101, 52)
	} else {
		doc.SetFillColor(254, 226, 226)
		doc.SetTextColor(153, 27, 27)
	}
	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, 10, fmt.Sprintf("%s  (overall rating %.1f / 10)", assessment.Result, assessment.OverallRating), "", 1, "C", true, 0, "")
	doc.SetTextColor(0, 0, 0)
	doc.Ln(2)

	if assessment.OverallPerformance != "" {
		doc.SetFont("Helvetica", "", 10)
		doc.MultiCell(contentWidth, 5.5, assessment.OverallPerformance, "", "L", false)
	}
	doc.Ln(4)
}

func writeSkillsTable(doc *fpdf.Fpdf, iv *interviews.Interview) {
	if len(iv.Skills) == 0 {
		return
	}
	names := make([]string, 0, len(iv.Skills))
	for name := range iv.Skills {
		names = append(names, name)
	}
	sort.Strings(names)

	if doc.GetY() > 240 {
		doc.AddPage()
	}
	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(0, 9, "Technical Skills Assessment", "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(243, 244, 246)
	doc.CellFormat(120, 7, "Skill", "1", 0, "L", true, 0, "")
	doc.CellFormat(contentWidth-120, 7, "Self-Rating", "1", 1, "C", true, 0, "")

	doc.SetFont("Helvetica", "", 9)
	for _, name := range names {
		if doc.GetY() > 270 {
			doc.AddPage()
		}
		doc.CellFormat(120, 7, name, "1", 0, "L", false, 0, "")
		doc.CellFormat(contentWidth-120, 7, fmt.Sprintf("%d / 10", iv.Skills[name]), "1", 1, "C", false, 0, "")
	}
	doc.Ln(4)
}

func writeCharts(doc *fpdf.Fpdf, radarPNG, barsPNG []byte) {
	if radarPNG != nil {
		registerAndPlace(doc, "category_radar", radarPNG, 120)
	}
	if barsPNG != nil {
		registerAndPlace(doc, "skill_bars", barsPNG, 0)
	}
}

func registerAndPlace(doc *fpdf.Fpdf, name string, data []byte, width float64) {
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	info := doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if doc.Err() || info == nil {
		return
	}
	if width == 0 {
		width = contentWidth
	}
	height := width * info.Height() / info.Width()
	if doc.GetY()+height > 270 {
		doc.AddPage()
	}
	x := pageMargin + (contentWidth-width)/2
	doc.ImageOptions(name, x, doc.GetY(), width, height, false, opts, 0, "")
	doc.SetY(doc.GetY() + height + 6)
}

func writeCategoryTables(doc *fpdf.Fpdf, assessment *analyses.Assessment) {
	names := make([]string, 0, len(assessment.SkillCategories))
	for name := range assessment.SkillCategories {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cat := assessment.SkillCategories[name]
		if doc.GetY() > 240 {
			doc.AddPage()
		}

		doc.SetFont("Helvetica", "B", 12)
		doc.CellFormat(0, 8, fmt.Sprintf("%s  (%.1f / 10)", name, cat.Rating), "", 1, "L", false, 0, "")

		doc.SetFont("Helvetica", "B", 9)
		doc.SetFillColor(243, 244, 246)
		doc.CellFormat(55, 7, "Subskill", "1", 0, "L", true, 0, "")
		doc.CellFormat(20, 7, "Rating", "1", 0, "C", true, 0, "")
		doc.CellFormat(contentWidth-75, 7, "Evidence", "1", 1, "L", true, 0, "")

		subNames := make([]string, 0, len(cat.Subcategories))
		for subName := range cat.Subcategories {
			subNames = append(subNames, subName)
		}
		sort.Strings(subNames)

		doc.SetFont("Helvetica", "", 9)
		for _, subName := range subNames {
			sub := cat.Subcategories[subName]
			evidence := truncateLabel(sub.Evidence, 160)
			y := doc.GetY()
			doc.CellFormat(55, 7, subName, "1", 0, "L", false, 0, "")
			doc.CellFormat(20, 7, fmt.Sprintf("%.1f", sub.Rating), "1", 0, "C", false, 0, "")
			doc.MultiCell(contentWidth-75, 7, evidence, "1", "L", false)
			if doc.GetY() < y+7 {
				doc.SetY(y + 7)
			}
		}
		doc.Ln(4)
	}
}

func writeObservations(doc *fpdf.Fpdf, assessment *analyses.Assessment) {
	if len(assessment.Evidence) == 0 {
		return
	}
	if doc.GetY() > 240 {
		doc.AddPage()
	}
	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, 8, "Key Observations", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	for _, item := range assessment.Evidence {
		doc.CellFormat(5, 6, "-", "", 0, "L", false, 0, "")
		doc.MultiCell(contentWidth-5, 6, item, "", "L", false)
	}
}
