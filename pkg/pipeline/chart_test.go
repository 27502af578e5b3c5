package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectChartRequest(t *testing.T) {
	tests := []struct {
		question string
		wantKind string
		wantOK   bool
	}{
		{"Show a bar chart of CGPAs", "bar", true},
		{"Give me a pie chart of grades", "pie", true},
		{"I want a doughnut chart of the grade split", "doughnut", true},
		{"donut chart of grades please", "doughnut", true},
		{"ring chart of the grade split", "doughnut", true},
		{"Show the CGPA trend chart", "line", true},
		{"line graph of semester CGPAs", "line", true},
		{"scatter plot of attendance vs cgpa", "scatter", true},
		{"Can you visualize the class performance?", "general", true},
		{"Show me a chart", "general", true},
		{"What is the average CGPA?", "", false},
		{"List all students", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			kind, ok := DetectChartRequest(tt.question)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func gradeRows() []Row {
	return []Row{
		{"grade": "A", "subject": "Math"},
		{"grade": "A", "subject": "Physics"},
		{"grade": "O", "subject": "Math"},
		{"grade": "F", "subject": "Chemistry"},
	}
}

func TestPieChartFollowsGradeHierarchy(t *testing.T) {
	spec := GenerateChart("pie", gradeRows())
	require.NotNil(t, spec)
	assert.Equal(t, "pie", spec.Type)

	// O slices before A, A before F, regardless of row order.
	require.Len(t, spec.Data.Labels, 3)
	assert.Contains(t, spec.Data.Labels[0], "O (Outstanding")
	assert.Contains(t, spec.Data.Labels[1], "A (Very Good")
	assert.Contains(t, spec.Data.Labels[2], "F (Fail")

	values, ok := spec.Data.Datasets[0].Data.([]float64)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 1}, values)
	assert.Contains(t, spec.Data.Labels[1], "50.0%")
}

func TestPieChartAppendsUnknownGradesAfterHierarchy(t *testing.T) {
	rows := []Row{
		{"grade": "O"},
		{"grade": "P"},
	}
	spec := GenerateChart("pie", rows)
	require.NotNil(t, spec)

	require.Len(t, spec.Data.Labels, 2)
	assert.Contains(t, spec.Data.Labels[0], "O (Outstanding")
	assert.Equal(t, "P (Other, 50.0%)", spec.Data.Labels[1])

	values, ok := spec.Data.Datasets[0].Data.([]float64)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 1}, values)

	colors, ok := spec.Data.Datasets[0].BackgroundColor.([]string)
	require.True(t, ok)
	assert.Equal(t, unknownGradeColor, colors[1])
}

func TestPieChartFallsBackToAlternateGradeFields(t *testing.T) {
	rows := []Row{
		{"grade_s1": "A"},
		{"grade_s1": "B"},
	}
	spec := GenerateChart("pie", rows)
	require.NotNil(t, spec)

	require.Len(t, spec.Data.Labels, 2)
	assert.Contains(t, spec.Data.Labels[0], "A (Very Good")
	assert.Contains(t, spec.Data.Labels[1], "B (Above Average")
}

func TestDoughnutChartKeepsRequestedType(t *testing.T) {
	spec := GenerateChart("doughnut", gradeRows())
	require.NotNil(t, spec)
	assert.Equal(t, "doughnut", spec.Type)
	assert.Equal(t, "60%", spec.Options["cutout"])

	// Same tally as the pie variant, only the type and cutout differ.
	pie := GenerateChart("pie", gradeRows())
	require.NotNil(t, pie)
	assert.Equal(t, pie.Data, spec.Data)
}

func TestGenerateChartDeterministic(t *testing.T) {
	rows := gradeRows()
	first := GenerateChart("pie", rows)
	second := GenerateChart("pie", rows)
	assert.Equal(t, first, second)
}

func TestBarChartMetricPreferenceAndCap(t *testing.T) {
	var rows []Row
	for i := 0; i < 20; i++ {
		rows = append(rows, Row{
			"name":    "A Student With A Very Long Name Indeed",
			"cgpa_s1": 7.5,
			"cgpa_s2": 8.0,
		})
	}

	spec := GenerateChart("bar", rows)
	require.NotNil(t, spec)
	assert.Equal(t, "bar", spec.Type)
	assert.Equal(t, "CGPA (Semester 2)", spec.Data.Datasets[0].Label)

	assert.Len(t, spec.Data.Labels, maxBarEntries)
	for _, label := range spec.Data.Labels {
		assert.LessOrEqual(t, len(label), 20)
	}
}

func TestBarChartFallsBackToAttendance(t *testing.T) {
	rows := []Row{
		{"name": "Asha", "attendance_percentage": 91.5},
		{"name": "Ravi", "attendance_percentage": 72.0},
	}
	spec := GenerateChart("bar", rows)
	require.NotNil(t, spec)
	assert.Equal(t, "Attendance %", spec.Data.Datasets[0].Label)
}

func TestLineChartNeedsBothSemesters(t *testing.T) {
	missing := []Row{{"name": "Asha", "cgpa_s1": 8.1}}
	assert.Nil(t, GenerateChart("line", missing))

	rows := []Row{
		{"name": "Asha", "cgpa_s1": 8.1, "cgpa_s2": 8.4},
		{"name": "Ravi", "cgpa_s1": 6.9, "cgpa_s2": 7.2},
	}
	spec := GenerateChart("line", rows)
	require.NotNil(t, spec)
	require.Len(t, spec.Data.Datasets, 2)
	assert.Equal(t, "Semester 1 CGPA", spec.Data.Datasets[0].Label)
	assert.Equal(t, "Semester 2 CGPA", spec.Data.Datasets[1].Label)
}

func TestScatterChartMinimumPoints(t *testing.T) {
	two := []Row{
		{"attendance_percentage": 80.0, "cgpa_s1": 7.0},
		{"attendance_percentage": 90.0, "cgpa_s1": 8.0},
	}
	assert.Nil(t, GenerateChart("scatter", two))

	three := append(two, Row{"attendance_percentage": 85.0, "cgpa_s1": 7.5})
	spec := GenerateChart("scatter", three)
	require.NotNil(t, spec)
	points, ok := spec.Data.Datasets[0].Data.([]Point)
	require.True(t, ok)
	assert.Len(t, points, 3)
	assert.Equal(t, Point{X: 80.0, Y: 7.0}, points[0])
}

func TestGeneralChartAutoSelects(t *testing.T) {
	// Grade data present: general resolves to pie.
	spec := GenerateChart("general", gradeRows())
	require.NotNil(t, spec)
	assert.Equal(t, "pie", spec.Type)

	// Only per-semester CGPA: general resolves to line.
	spec = GenerateChart("general", []Row{
		{"name": "Asha", "cgpa_s1": 8.1, "cgpa_s2": 8.4},
	})
	require.NotNil(t, spec)
	assert.Equal(t, "line", spec.Type)

	// Only a single metric: general resolves to bar.
	spec = GenerateChart("general", []Row{
		{"name": "Asha", "cgpa_s1": 8.1},
	})
	require.NotNil(t, spec)
	assert.Equal(t, "bar", spec.Type)
}

func TestTruncateLabelRuneSafe(t *testing.T) {
	name := "Señorita García-Álvarez Extraordinaria"
	got := truncateLabel(name, 20)
	assert.Equal(t, []rune(name)[:20], []rune(got))

	assert.Equal(t, "short", truncateLabel("short", 20))
}

func TestGenerateChartEmptyRows(t *testing.T) {
	assert.Nil(t, GenerateChart("pie", nil))
	assert.Nil(t, GenerateChart("general", []Row{}))
}
