package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestParsesNumberedList(t *testing.T) {
	oracle := &stubProvider{response: "Here you go:\n1. Show students with CGPA above 9\n2. Compare semester CGPAs\n3. Show attendance by subject\n4. Extra one that must be dropped"}
	suggester := NewSuggester(oracle, testLogger())

	got := suggester.Suggest(context.Background(), "show cgpa", gradeRows(), Identity{Role: RoleFaculty}, "")

	require.Len(t, got, maxSuggestions)
	assert.Equal(t, "Show students with CGPA above 9", got[0])
	assert.Equal(t, "Show attendance by subject", got[2])
}

func TestSuggestFallsBackOnOracleFailure(t *testing.T) {
	oracle := &stubProvider{err: errors.New("oracle down")}
	suggester := NewSuggester(oracle, testLogger())

	got := suggester.Suggest(context.Background(), "show cgpa of students", gradeRows(), Identity{Role: RoleFaculty}, "")
	assert.Equal(t, StaticSuggestions("show cgpa of students", Identity{Role: RoleFaculty}), got)
	assert.NotEmpty(t, got)
}

func TestSuggestOverridesGenericResponses(t *testing.T) {
	oracle := &stubProvider{response: "1. Try a different question\n2. Be more specific\n3. Check your data"}
	suggester := NewSuggester(oracle, testLogger())

	got := suggester.Suggest(context.Background(), "show attendance", gradeRows(), Identity{Role: RoleFaculty}, "")
	assert.Equal(t, StaticSuggestions("show attendance", Identity{Role: RoleFaculty}), got)
}

func TestSuggestFallsBackOnUnparseableResponse(t *testing.T) {
	oracle := &stubProvider{response: "I cannot think of any suggestions right now."}
	suggester := NewSuggester(oracle, testLogger())

	got := suggester.Suggest(context.Background(), "show grades", gradeRows(), Identity{Role: RoleFaculty}, "")
	assert.Equal(t, StaticSuggestions("show grades", Identity{Role: RoleFaculty}), got)
}

func TestStaticSuggestionsParentAlwaysScopedToChild(t *testing.T) {
	parent := Identity{Role: RoleParent, StudentID: "AM.AR.U316BCA001"}
	got := StaticSuggestions("anything at all", parent)

	require.Len(t, got, maxSuggestions)
	assert.Contains(t, got[0], "AM.AR.U316BCA001")
}

func TestStaticSuggestionsKeywordBuckets(t *testing.T) {
	faculty := Identity{Role: RoleFaculty}

	cgpa := StaticSuggestions("what is the CGPA spread?", faculty)
	assert.Contains(t, cgpa[0], "CGPA")

	attendance := StaticSuggestions("show attendance numbers", faculty)
	assert.Contains(t, attendance[0], "attendance")

	grade := StaticSuggestions("grade summary please", faculty)
	assert.Contains(t, grade[0], "grade distribution")

	generic := StaticSuggestions("hello there", faculty)
	require.Len(t, generic, maxSuggestions)
}

func TestAnalyzeRowsSummarizesShape(t *testing.T) {
	rows := []Row{
		{"name": "Asha", "cgpa_s1": 8.0, "cgpa_s2": 9.0, "grade": "A", "subject": "Math", "branch": "BCA"},
		{"name": "Ravi", "cgpa_s1": 6.0, "cgpa_s2": 7.0, "grade": "O", "subject": "Physics", "branch": "BCA"},
	}

	summary := analyzeRows(rows)
	assert.Contains(t, summary, "Total records: 2")
	assert.Contains(t, summary, "Average CGPA (S1): 7.00")
	assert.Contains(t, summary, "Average CGPA (S2): 8.00")
	assert.Contains(t, summary, "O=1, A=1")
	assert.Contains(t, summary, "Math")
	assert.Contains(t, summary, "BCA")
}

func TestAnalyzeRowsEmpty(t *testing.T) {
	assert.Equal(t, "No records were retrieved.", analyzeRows(nil))
}

func TestParseNumberedTrimsQuotes(t *testing.T) {
	got := parseNumbered("1. \"Quoted suggestion\"\n2. 'Single quoted'")
	require.Len(t, got, 2)
	assert.Equal(t, "Quoted suggestion", got[0])
	assert.Equal(t, "Single quoted", got[1])
}
