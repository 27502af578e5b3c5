package pipeline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderRecordsCapsAndSkipsNils(t *testing.T) {
	var rows []Row
	for i := 0; i < 15; i++ {
		rows = append(rows, Row{
			"name":    fmt.Sprintf("Student %d", i),
			"cgpa_s1": 8.0,
			"branch":  nil,
		})
	}

	rendered := renderRecords(rows, maxRecordsDisplay)

	assert.Contains(t, rendered, "Record 10:")
	assert.NotContains(t, rendered, "Record 11:")
	assert.NotContains(t, rendered, "branch")
	assert.Contains(t, rendered, "name: Student 0")
}

func TestRenderRecordsStableKeyOrder(t *testing.T) {
	rows := []Row{{"z_col": 1, "a_col": 2, "m_col": 3}}
	rendered := renderRecords(rows, maxRecordsDisplay)

	a := strings.Index(rendered, "a_col")
	m := strings.Index(rendered, "m_col")
	z := strings.Index(rendered, "z_col")
	assert.True(t, a < m && m < z)
}

func TestDenialAnswerTemplate(t *testing.T) {
	s := &Synthesizer{logger: testLogger()}
	answer := s.denialAnswer(Identity{Role: RoleParent, StudentID: "R42"})

	assert.True(t, strings.HasPrefix(answer, "🚫 **Access Restricted**"))
	assert.Contains(t, answer, "R42")
	assert.Contains(t, answer, "class average")
}

func TestEmptyAnswerPerRole(t *testing.T) {
	s := &Synthesizer{logger: testLogger()}

	parent := s.emptyAnswer(Identity{Role: RoleParent, StudentID: "R42"})
	assert.Contains(t, parent, "R42")
	assert.Contains(t, parent, "your child")
	assert.Contains(t, parent, "student ID is correct")

	faculty := s.emptyAnswer(Identity{Role: RoleFaculty})
	assert.NotContains(t, faculty, "child")
	assert.Contains(t, faculty, "rephrasing")
}
