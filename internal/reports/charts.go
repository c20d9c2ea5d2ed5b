package reports

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"math"
	"sort"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"interview-backend/internal/analyses"
)

var (
	chartBlue   = color.RGBA{R: 41, G: 98, B: 255, A: 255}
	chartFill   = color.RGBA{R: 41, G: 98, B: 255, A: 60}
	chartGrid   = color.RGBA{R: 210, G: 214, B: 220, A: 255}
	chartLabel  = color.RGBA{R: 55, G: 65, B: 81, A: 255}
	chartPassBG = color.RGBA{R: 22, G: 163, B: 74, A: 255}
	chartFailBG = color.RGBA{R: 220, G: 38, B: 38, A: 255}
)

func loadFace(size float64) (font.Face, error) {
	parsed, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return truetype.NewFace(parsed, &truetype.Options{Size: size}), nil
}

// sortedCategories returns category names in stable alphabetical order so
// chart geometry is deterministic for a given assessment.
func sortedCategories(assessment *analyses.Assessment) []string {
	names := make([]string, 0, len(assessment.SkillCategories))
	for name := range assessment.SkillCategories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CategoryRadar renders category ratings as a radar chart PNG. At least
// three categories are needed for a polygon; fewer fall back to the bar
// chart's visual language and return nil so the caller can skip it.
func CategoryRadar(assessment *analyses.Assessment) ([]byte, error) {
	names := sortedCategories(assessment)
	if len(names) < 3 {
		return nil, nil
	}

	const size = 640
	center := float64(size) / 2
	radius := center - 110.0

	dc := gg.NewContext(size, size)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	face, err := loadFace(16)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)

	// Concentric rings every 2 rating points.
	dc.SetColor(chartGrid)
	dc.SetLineWidth(1)
	for ring := 1; ring <= 5; ring++ {
		r := radius * float64(ring) / 5
		dc.DrawCircle(center, center, r)
		dc.Stroke()
	}

	n := len(names)
	angleFor := func(i int) float64 {
		return -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
	}

	// Spokes and labels.
	for i, name := range names {
		angle := angleFor(i)
		x := center + radius*math.Cos(angle)
		y := center + radius*math.Sin(angle)
		dc.SetColor(chartGrid)
		dc.DrawLine(center, center, x, y)
		dc.Stroke()

		lx := center + (radius+45)*math.Cos(angle)
		ly := center + (radius+45)*math.Sin(angle)
		dc.SetColor(chartLabel)
		dc.DrawStringAnchored(truncateLabel(name, 22), lx, ly, 0.5, 0.5)
	}

	// Rating polygon.
	dc.NewSubPath()
	for i, name := range names {
		angle := angleFor(i)
		r := radius * assessment.SkillCategories[name].Rating / 10
		dc.LineTo(center+r*math.Cos(angle), center+r*math.Sin(angle))
	}
	dc.ClosePath()
	dc.SetColor(chartFill)
	dc.FillPreserve()
	dc.SetColor(chartBlue)
	dc.SetLineWidth(2)
	dc.Stroke()

	// Vertex markers with the numeric rating.
	for i, name := range names {
		angle := angleFor(i)
		rating := assessment.SkillCategories[name].Rating
		r := radius * rating / 10
		x := center + r*math.Cos(angle)
		y := center + r*math.Sin(angle)
		dc.SetColor(chartBlue)
		dc.DrawCircle(x, y, 4)
		dc.Fill()
	}

	return encodePNG(dc)
}

// SkillBars renders a horizontal bar chart of every subcategory rating.
func SkillBars(assessment *analyses.Assessment) ([]byte, error) {
	type bar struct {
		label  string
		rating float64
	}
	var bars []bar
	for _, catName := range sortedCategories(assessment) {
		cat := assessment.SkillCategories[catName]
		subNames := make([]string, 0, len(cat.Subcategories))
		for name := range cat.Subcategories {
			subNames = append(subNames, name)
		}
		sort.Strings(subNames)
		for _, subName := range subNames {
			bars = append(bars, bar{label: subName, rating: cat.Subcategories[subName].Rating})
		}
	}
	if len(bars) == 0 {
		return nil, nil
	}

	const (
		width     = 760
		rowHeight = 36
		marginTop = 30
		labelW    = 230
		valueW    = 50
	)
	height := marginTop*2 + rowHeight*len(bars)
	barMaxW := float64(width - labelW - valueW - 40)

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	face, err := loadFace(15)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)

	for i, b := range bars {
		y := float64(marginTop + i*rowHeight)
		barY := y + 8
		barH := float64(rowHeight - 16)

		dc.SetColor(chartLabel)
		dc.DrawStringAnchored(truncateLabel(b.label, 28), labelW-10, y+float64(rowHeight)/2, 1, 0.5)

		dc.SetColor(chartGrid)
		dc.DrawRoundedRectangle(labelW, barY, barMaxW, barH, 4)
		dc.Fill()

		fill := chartFailBG
		if b.rating >= analyses.PassThreshold {
			fill = chartPassBG
		}
		dc.SetColor(fill)
		dc.DrawRoundedRectangle(labelW, barY, barMaxW*b.rating/10, barH, 4)
		dc.Fill()

		dc.SetColor(chartLabel)
		dc.DrawStringAnchored(fmt.Sprintf("%.1f", b.rating), labelW+barMaxW+10, y+float64(rowHeight)/2, 0, 0.5)
	}

	return encodePNG(dc)
}

func encodePNG(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// truncateLabel limits s to max runes. Byte slicing would split multi-byte
// characters in skill names.
func truncateLabel(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
