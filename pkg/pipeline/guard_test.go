package pipeline

import (
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestGuardEnforce(t *testing.T) {
	parent := Identity{Role: RoleParent, StudentID: "AM.AR.U316BCA001"}
	faculty := Identity{Role: RoleFaculty}

	tests := []struct {
		name       string
		query      string
		id         Identity
		wantQuery  string
		wantDenied bool
	}{
		{
			name:       "denied sentinel short circuits",
			query:      DeniedQuery,
			id:         parent,
			wantQuery:  DeniedQuery,
			wantDenied: true,
		},
		{
			name:       "faculty passes through untouched",
			query:      "SELECT s.name, s.cgpa_s1 FROM students s",
			id:         faculty,
			wantQuery:  "SELECT s.name, s.cgpa_s1 FROM students s",
			wantDenied: false,
		},
		{
			name:       "parent blocked from identity projection over all students",
			query:      "SELECT s.name, s.cgpa_s1 FROM students s",
			id:         parent,
			wantDenied: true,
		},
		{
			name:       "parent aggregate with group by passes",
			query:      "SELECT s.branch, AVG(s.cgpa_s1) FROM students s GROUP BY s.branch",
			id:         parent,
			wantQuery:  "SELECT s.branch, AVG(s.cgpa_s1) FROM students s GROUP BY s.branch",
			wantDenied: false,
		},
		{
			name:       "parent count aggregate passes without restriction",
			query:      "SELECT COUNT(*) FROM students s",
			id:         parent,
			wantQuery:  "SELECT COUNT(*) FROM students s",
			wantDenied: false,
		},
		{
			name:       "parent query bound to own child passes",
			query:      "SELECT s.name, s.cgpa_s1 FROM students s WHERE s.roll_no = 'AM.AR.U316BCA001'",
			id:         parent,
			wantQuery:  "SELECT s.name, s.cgpa_s1 FROM students s WHERE s.roll_no = 'AM.AR.U316BCA001'",
			wantDenied: false,
		},
		{
			name:       "parent non-aggregate without WHERE gets restriction appended",
			query:      "SELECT am_s1.subject, am_s1.attendance_percentage FROM attendance_and_marks_s1 am_s1",
			id:         parent,
			wantQuery:  "SELECT am_s1.subject, am_s1.attendance_percentage FROM attendance_and_marks_s1 am_s1 WHERE s.roll_no = 'AM.AR.U316BCA001'",
			wantDenied: false,
		},
		{
			name:       "parent non-aggregate with WHERE gets AND restriction",
			query:      "SELECT am_s1.subject, am_s1.grade FROM attendance_and_marks_s1 am_s1 WHERE am_s1.subject ILIKE '%math%'",
			id:         parent,
			wantQuery:  "SELECT am_s1.subject, am_s1.grade FROM attendance_and_marks_s1 am_s1 WHERE am_s1.subject ILIKE '%math%' AND s.roll_no = 'AM.AR.U316BCA001'",
			wantDenied: false,
		},
	}

	guard := NewGuard(testLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, denied := guard.Enforce(tt.query, tt.id)
			assert.Equal(t, tt.wantDenied, denied)
			if !tt.wantDenied {
				assert.Equal(t, tt.wantQuery, got)
			}
		})
	}
}

func TestGuardParentWithoutStudentIDPassesThrough(t *testing.T) {
	guard := NewGuard(testLogger())
	query := "SELECT s.name FROM students s"
	got, denied := guard.Enforce(query, Identity{Role: RoleParent})
	assert.False(t, denied)
	assert.Equal(t, query, got)
}
