package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edu-insight-be/pkg/llm"
)

// stubStore scripts query results and records what was executed.
type stubStore struct {
	rows    []Row
	err     error
	queries []string
}

func (s *stubStore) Query(ctx context.Context, query string) ([]Row, error) {
	s.queries = append(s.queries, query)
	return s.rows, s.err
}

// scriptedProvider answers each oracle call from a queue; when the queue
// runs dry it repeats the last response.
type scriptedProvider struct {
	responses []string
	calls     int
}

func (s *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.calls++
	if len(s.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	resp := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return resp, nil
}

func (s *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func TestPipelineFacultyHappyPath(t *testing.T) {
	oracle := &scriptedProvider{responses: []string{
		"SELECT s.roll_no, s.name, s.cgpa_s1, s.cgpa_s2 FROM students s",
		"The class has 2 students with CGPAs of 8.2 and 6.9.",
		"1. Show students with CGPA above 8\n2. Compare semesters\n3. Show attendance",
	}}
	store := &stubStore{rows: []Row{
		{"roll_no": "R1", "name": "Asha", "cgpa_s1": 8.2, "cgpa_s2": 8.5},
		{"roll_no": "R2", "name": "Ravi", "cgpa_s1": 6.9, "cgpa_s2": 7.1},
	}}
	p := New(oracle, store, testLogger())

	result := p.Execute(context.Background(), Identity{Role: RoleFaculty}, "Show all students with their CGPA", nil)

	require.NotNil(t, result)
	assert.False(t, result.AccessDenied)
	assert.Equal(t, "The class has 2 students with CGPAs of 8.2 and 6.9.", result.Answer)
	assert.Len(t, store.queries, 1)
	assert.Len(t, result.Suggestions, 3)
	assert.Nil(t, result.Chart)
}

func TestPipelineParentDeniedNeverTouchesStore(t *testing.T) {
	oracle := &scriptedProvider{responses: []string{"should not matter"}}
	store := &stubStore{rows: []Row{{"name": "someone else"}}}
	p := New(oracle, store, testLogger())
	parent := Identity{Role: RoleParent, StudentID: "AM.AR.U316BCA001"}

	result := p.Execute(context.Background(), parent, "Show me the individual marks of student id AM.AR.U316BCA999", nil)

	require.NotNil(t, result)
	assert.True(t, result.AccessDenied)
	assert.Contains(t, result.Answer, "Access Restricted")
	assert.Contains(t, result.Answer, "AM.AR.U316BCA001")
	assert.Empty(t, store.queries, "denied requests must never reach the store")
	require.Len(t, result.Suggestions, maxSuggestions)
	assert.Contains(t, result.Suggestions[0], "AM.AR.U316BCA001")
}

func TestPipelineParentGuardDenialAfterPlanning(t *testing.T) {
	// The lexical pre-check passes but the planned query projects other
	// students, so the guard denies before execution.
	oracle := &scriptedProvider{responses: []string{
		"who has the best results overall",
		"SELECT s.name, s.cgpa_s1 FROM students s ORDER BY s.cgpa_s1 DESC",
	}}
	store := &stubStore{}
	p := New(oracle, store, testLogger())
	parent := Identity{Role: RoleParent, StudentID: "AM.AR.U316BCA001"}
	window := historyWindow("how is the class doing", "The class is doing well overall.")

	result := p.Execute(context.Background(), parent, "who has the best results overall", window)

	assert.True(t, result.AccessDenied)
	assert.Empty(t, store.queries)
}

func TestPipelineChartAttachedOnRequest(t *testing.T) {
	oracle := &scriptedProvider{responses: []string{
		"SELECT am_s1.grade FROM attendance_and_marks_s1 am_s1",
		"Here is the grade breakdown.",
		"1. Show O grade students\n2. Show failing students\n3. Show grade counts per subject",
	}}
	store := &stubStore{rows: gradeRows()}
	p := New(oracle, store, testLogger())

	result := p.Execute(context.Background(), Identity{Role: RoleFaculty}, "Show the grade distribution as a pie chart", nil)

	require.NotNil(t, result.Chart)
	assert.Equal(t, "pie", result.Chart.Type)
	assert.Contains(t, result.Answer, "I've generated a pie chart")
}

func TestPipelineStoreFailureYieldsEmptyTemplate(t *testing.T) {
	oracle := &scriptedProvider{responses: []string{"SELECT s.name FROM students s"}}
	store := &stubStore{err: errors.New("connection refused")}
	p := New(oracle, store, testLogger())

	result := p.Execute(context.Background(), Identity{Role: RoleFaculty}, "show students", nil)

	require.NotNil(t, result)
	assert.False(t, result.AccessDenied)
	assert.Contains(t, result.Answer, "couldn't find any records")
	assert.NotEmpty(t, result.Suggestions)
}

func TestPipelineOracleTotalFailureStillAnswers(t *testing.T) {
	// Every oracle call fails: planner falls back to the default query,
	// the synthesizer falls back to its processing-issue template, and the
	// suggester falls back to static suggestions.
	oracle := &scriptedProvider{}
	store := &stubStore{rows: []Row{{"name": "Asha", "cgpa_s1": 8.2}}}
	p := New(oracle, store, testLogger())

	result := p.Execute(context.Background(), Identity{Role: RoleFaculty}, "show students", nil)

	require.NotNil(t, result)
	assert.Equal(t, []string{fallbackQuery}, store.queries)
	assert.Contains(t, result.Answer, "I retrieved 1 records but encountered an issue processing them")
	assert.Len(t, result.Suggestions, maxSuggestions)
}

func TestPipelineParentEmptyResultMentionsChild(t *testing.T) {
	oracle := &scriptedProvider{responses: []string{
		"SELECT am_s1.subject FROM attendance_and_marks_s1 am_s1 WHERE am_s1.subject = 'Botany'",
	}}
	store := &stubStore{rows: nil}
	p := New(oracle, store, testLogger())
	parent := Identity{Role: RoleParent, StudentID: "AM.AR.U316BCA001"}

	result := p.Execute(context.Background(), parent, "average marks in Botany", nil)

	assert.False(t, result.AccessDenied)
	assert.Contains(t, result.Answer, "AM.AR.U316BCA001")
	assert.Contains(t, result.Answer, "couldn't find any records")
}

func TestPipelineNeverReturnsNil(t *testing.T) {
	oracle := &scriptedProvider{}
	store := &stubStore{err: errors.New("down")}
	p := New(oracle, store, testLogger())

	for _, id := range []Identity{
		{Role: RoleFaculty},
		{Role: RoleParent, StudentID: "R1"},
	} {
		result := p.Execute(context.Background(), id, "anything", nil)
		require.NotNil(t, result)
		assert.NotEmpty(t, result.Answer)
		assert.LessOrEqual(t, len(result.Suggestions), maxSuggestions)
	}
}
