package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"edu-insight-be/pkg/llm"
)

// stubProvider scripts oracle responses and counts calls.
type stubProvider struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (s *stubProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.calls++
	if len(history) > 0 {
		s.prompts = append(s.prompts, history[len(history)-1].Content)
	}
	return s.response, s.err
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func TestPlannerDeniesSpecificParentQuestionWithoutOracle(t *testing.T) {
	oracle := &stubProvider{response: "SELECT 1"}
	planner := NewPlanner(oracle, testLogger())
	parent := Identity{Role: RoleParent, StudentID: "AM.AR.U316BCA001"}

	question := "Show me the name of the specific student who topped semester 1"
	query := planner.Plan(context.Background(), question, question, parent)

	assert.Equal(t, DeniedQuery, query)
	assert.Zero(t, oracle.calls, "denial must happen before any oracle call")
}

func TestPlannerAllowsAggregateParentQuestion(t *testing.T) {
	oracle := &stubProvider{response: "SELECT AVG(s.cgpa_s1) FROM students s"}
	planner := NewPlanner(oracle, testLogger())
	parent := Identity{Role: RoleParent, StudentID: "AM.AR.U316BCA001"}

	question := "What is the average class CGPA by student name groups?"
	query := planner.Plan(context.Background(), question, question, parent)

	assert.Equal(t, "SELECT AVG(s.cgpa_s1) FROM students s", query)
	assert.Equal(t, 1, oracle.calls)
}

func TestPlannerAllowsParentAskingAboutOwnChild(t *testing.T) {
	oracle := &stubProvider{response: "SELECT s.cgpa_s1 FROM students s WHERE s.roll_no = 'AM.AR.U316BCA001'"}
	planner := NewPlanner(oracle, testLogger())
	parent := Identity{Role: RoleParent, StudentID: "AM.AR.U316BCA001"}

	question := "Show the name and CGPA for roll no AM.AR.U316BCA001"
	query := planner.Plan(context.Background(), question, question, parent)

	assert.NotEqual(t, DeniedQuery, query)
	assert.Equal(t, 1, oracle.calls)
}

func TestPlannerStripsCodeFences(t *testing.T) {
	oracle := &stubProvider{response: "```sql\nSELECT s.name FROM students s\n```"}
	planner := NewPlanner(oracle, testLogger())

	query := planner.Plan(context.Background(), "show students", "show students", Identity{Role: RoleFaculty})
	assert.Equal(t, "SELECT s.name FROM students s", query)
}

func TestPlannerFallsBackOnOracleFailure(t *testing.T) {
	oracle := &stubProvider{err: errors.New("oracle down")}
	planner := NewPlanner(oracle, testLogger())

	query := planner.Plan(context.Background(), "show students", "show students", Identity{Role: RoleFaculty})
	assert.Equal(t, fallbackQuery, query)
}

func TestPlannerFallsBackOnEmptyResponse(t *testing.T) {
	oracle := &stubProvider{response: "```\n```"}
	planner := NewPlanner(oracle, testLogger())

	query := planner.Plan(context.Background(), "show students", "show students", Identity{Role: RoleFaculty})
	assert.Equal(t, fallbackQuery, query)
}

func TestPlannerFacultyNeverPreChecked(t *testing.T) {
	oracle := &stubProvider{response: "SELECT s.name FROM students s"}
	planner := NewPlanner(oracle, testLogger())

	question := "Show the name of a specific student by roll no"
	query := planner.Plan(context.Background(), question, question, Identity{Role: RoleFaculty})

	assert.Equal(t, "SELECT s.name FROM students s", query)
	assert.Equal(t, 1, oracle.calls)
}
