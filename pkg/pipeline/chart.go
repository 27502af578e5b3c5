package pipeline

import (
	"fmt"
	"strings"
)

// ChartSpec is a renderer-agnostic chart description the web client can feed
// straight into its charting library.
type ChartSpec struct {
	Type    string         `json:"type"`
	Title   string         `json:"title"`
	Data    ChartData      `json:"data"`
	Options map[string]any `json:"options,omitempty"`
}

type ChartData struct {
	Labels   []string  `json:"labels,omitempty"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset carries one series. Data is either []float64 or []Point depending
// on the chart type.
type Dataset struct {
	Label           string  `json:"label,omitempty"`
	Data            any     `json:"data"`
	BackgroundColor any     `json:"backgroundColor,omitempty"`
	BorderColor     string  `json:"borderColor,omitempty"`
	BorderWidth     int     `json:"borderWidth,omitempty"`
	Tension         float64 `json:"tension,omitempty"`
	Fill            bool    `json:"fill,omitempty"`
	PointRadius     int     `json:"pointRadius,omitempty"`
}

// Point is an x/y pair for scatter series.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

const (
	maxBarEntries  = 15
	maxLineEntries = 12
	minScatterPts  = 3
)

// chartKeywords maps each chart family to the question phrases that request
// it. Families are matched in order; the generic request words come last so
// "show a pie chart" never falls into the general bucket.
var chartKeywords = []struct {
	kind     string
	keywords []string
}{
	{"bar", []string{"bar chart", "bar graph"}},
	{"doughnut", []string{"doughnut chart", "donut chart", "ring chart"}},
	{"pie", []string{"pie chart", "pie graph"}},
	{"line", []string{"line chart", "line graph", "trend chart", "trend graph"}},
	{"scatter", []string{"scatter plot", "scatter chart", "correlation chart", "correlation plot"}},
	{"general", []string{"chart", "graph", "plot", "visualize", "visualization", "visualise", "diagram"}},
}

// DetectChartRequest reports whether the question asks for a chart and which
// kind. Specific chart families win over the generic request words.
func DetectChartRequest(question string) (string, bool) {
	questionLower := strings.ToLower(question)
	for _, family := range chartKeywords {
		if containsAny(questionLower, family.keywords) {
			return family.kind, true
		}
	}
	return "", false
}

// GenerateChart builds a chart of the requested kind from the retrieved
// rows. It is fully deterministic: the same rows and kind always yield the
// same spec. A nil return means the data cannot support that chart.
func GenerateChart(kind string, rows []Row) *ChartSpec {
	if len(rows) == 0 {
		return nil
	}
	switch kind {
	case "pie", "doughnut":
		return pieChart(rows, kind)
	case "bar":
		return barChart(rows)
	case "line":
		return lineChart(rows)
	case "scatter":
		return scatterChart(rows)
	case "general":
		return autoChart(rows)
	}
	return nil
}

// autoChart picks the best-supported chart for the data shape: grade
// breakdowns first, then semester comparisons, then a plain metric bar.
func autoChart(rows []Row) *ChartSpec {
	if spec := pieChart(rows, "pie"); spec != nil {
		return spec
	}
	if spec := lineChart(rows); spec != nil {
		return spec
	}
	return barChart(rows)
}

// gradeFallbackFields are tried per row when no row carries a plain "grade"
// column, for result shapes that keep per-semester or final grades instead.
var gradeFallbackFields = []string{"grade_s1", "grade_s2", "final_grade"}

const unknownGradeColor = "#6b7280"

// pieChart tallies grades across the rows. Slices follow the grade
// hierarchy, highest first, so the legend reads in a fixed order; grades
// outside the hierarchy are appended after it in first-seen order.
func pieChart(rows []Row, chartType string) *ChartSpec {
	counts := map[string]int{}
	var unknown []string
	total := 0
	tally := func(grade string) {
		if GradeRank(grade) < 0 && counts[grade] == 0 {
			unknown = append(unknown, grade)
		}
		counts[grade]++
		total++
	}

	for _, row := range rows {
		if grade, ok := row.String("grade"); ok {
			tally(grade)
		}
	}
	if total == 0 {
		for _, row := range rows {
			for _, field := range gradeFallbackFields {
				if grade, ok := row.String(field); ok {
					tally(grade)
					break
				}
			}
		}
	}
	if total == 0 {
		return nil
	}

	var labels []string
	var values []float64
	var colors []string
	for i, grade := range GradeHierarchy {
		n := counts[grade]
		if n == 0 {
			continue
		}
		pct := float64(n) / float64(total) * 100
		labels = append(labels, fmt.Sprintf("%s (%s, %.1f%%)", grade, GradeName(grade), pct))
		values = append(values, float64(n))
		colors = append(colors, gradeColors[i])
	}
	for _, grade := range unknown {
		n := counts[grade]
		pct := float64(n) / float64(total) * 100
		labels = append(labels, fmt.Sprintf("%s (Other, %.1f%%)", grade, pct))
		values = append(values, float64(n))
		colors = append(colors, unknownGradeColor)
	}

	options := map[string]any{"responsive": true}
	if chartType == "doughnut" {
		options["cutout"] = "60%"
	}

	return &ChartSpec{
		Type:  chartType,
		Title: fmt.Sprintf("Grade Distribution (%d grades)", total),
		Data: ChartData{
			Labels: labels,
			Datasets: []Dataset{{
				Label:           "Grades",
				Data:            values,
				BackgroundColor: colors,
				BorderWidth:     1,
			}},
		},
		Options: options,
	}
}

// barMetrics is the preference order for the value plotted per student.
var barMetrics = []struct {
	key   string
	label string
}{
	{"cgpa_s2", "CGPA (Semester 2)"},
	{"cgpa_s1", "CGPA (Semester 1)"},
	{"cgpa", "CGPA"},
	{"attendance_percentage", "Attendance %"},
}

// barChart plots the first available numeric metric per student, capped to
// keep the axis readable.
func barChart(rows []Row) *ChartSpec {
	for _, metric := range barMetrics {
		var labels []string
		var values []float64
		for _, row := range rows {
			if len(labels) >= maxBarEntries {
				break
			}
			v, ok := row.Float(metric.key)
			if !ok {
				continue
			}
			name, ok := row.String("name")
			if !ok {
				name, ok = row.String("roll_no")
				if !ok {
					continue
				}
			}
			labels = append(labels, truncateLabel(name, 20))
			values = append(values, v)
		}
		if len(values) == 0 {
			continue
		}
		return &ChartSpec{
			Type:  "bar",
			Title: fmt.Sprintf("%s by Student (%d students)", metric.label, len(values)),
			Data: ChartData{
				Labels: labels,
				Datasets: []Dataset{{
					Label:           metric.label,
					Data:            values,
					BackgroundColor: "#3b82f6",
					BorderColor:     "#1d4ed8",
					BorderWidth:     1,
				}},
			},
			Options: map[string]any{"responsive": true},
		}
	}
	return nil
}

// lineChart compares semester 1 and semester 2 CGPA per student. Both
// values must be present for a row to be plotted.
func lineChart(rows []Row) *ChartSpec {
	var labels []string
	var s1, s2 []float64
	for _, row := range rows {
		if len(labels) >= maxLineEntries {
			break
		}
		v1, ok1 := row.Float("cgpa_s1")
		v2, ok2 := row.Float("cgpa_s2")
		if !ok1 || !ok2 {
			continue
		}
		name, ok := row.String("name")
		if !ok {
			name, ok = row.String("roll_no")
			if !ok {
				continue
			}
		}
		labels = append(labels, truncateLabel(name, 15))
		s1 = append(s1, v1)
		s2 = append(s2, v2)
	}
	if len(labels) == 0 {
		return nil
	}

	return &ChartSpec{
		Type:  "line",
		Title: fmt.Sprintf("CGPA Trend Across Semesters (%d students)", len(labels)),
		Data: ChartData{
			Labels: labels,
			Datasets: []Dataset{
				{
					Label:       "Semester 1 CGPA",
					Data:        s1,
					BorderColor: "#3b82f6",
					Tension:     0.3,
					Fill:        false,
				},
				{
					Label:       "Semester 2 CGPA",
					Data:        s2,
					BorderColor: "#10b981",
					Tension:     0.3,
					Fill:        false,
				},
			},
		},
		Options: map[string]any{"responsive": true},
	}
}

// scatterChart plots attendance against CGPA. Fewer than three points is
// not a meaningful correlation view, so the chart is withheld.
func scatterChart(rows []Row) *ChartSpec {
	var points []Point
	for _, row := range rows {
		att, ok := row.Float("attendance_percentage")
		if !ok {
			continue
		}
		cgpa, ok := row.Float("cgpa_s2")
		if !ok {
			cgpa, ok = row.Float("cgpa_s1")
		}
		if !ok {
			cgpa, ok = row.Float("cgpa")
		}
		if !ok {
			continue
		}
		points = append(points, Point{X: att, Y: cgpa})
	}
	if len(points) < minScatterPts {
		return nil
	}

	return &ChartSpec{
		Type:  "scatter",
		Title: fmt.Sprintf("Attendance vs CGPA (%d students)", len(points)),
		Data: ChartData{
			Datasets: []Dataset{{
				Label:           "Attendance % vs CGPA",
				Data:            points,
				BackgroundColor: "#8b5cf6",
				PointRadius:     5,
			}},
		},
		Options: map[string]any{"responsive": true},
	}
}

// truncateLabel cuts on rune boundaries so multi-byte names stay valid.
func truncateLabel(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
