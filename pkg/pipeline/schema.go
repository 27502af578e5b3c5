package pipeline

import "strings"

// SchemaContext describes the relational schema the planner is allowed to
// target. Keeping it as a single block keeps the planner prompt and the
// guard heuristics in sync with what the store actually contains.
const SchemaContext = `Database Schema:

Table: students
- roll_no (TEXT PRIMARY KEY) - Student roll number like 'AM.AR.U316BCA001'
- name (TEXT) - Student full name
- batch (TEXT) - Academic program/batch like 'BCA2016'
- branch (TEXT) - Branch like 'Bachelor of Computer Applications'
- cgpa_s1 (FLOAT) - Semester 1 CGPA
- cgpa_s2 (FLOAT) - Semester 2 CGPA

Table: attendance_and_marks_s1 (Semester 1 Data)
- id (SERIAL PRIMARY KEY)
- roll_no (TEXT) - References students(roll_no)
- subject (TEXT) - Subject name
- attended (INTEGER) - Classes attended
- held (INTEGER) - Total classes held
- attendance_percentage (FLOAT) - Attendance percentage
- grade (TEXT) - Grade obtained (O, A+, A, ...)
- ratings (TEXT) - Performance ratings (Good, Average, Poor, ...)
- status (TEXT) - Pass/Fail status

Table: attendance_and_marks_s2 (Semester 2 Data)
- same columns as attendance_and_marks_s1, for semester 2 subjects

Important Notes:
- Use 's' for students table alias
- Use 'am_s1' for attendance_and_marks_s1 table alias
- Use 'am_s2' for attendance_and_marks_s2 table alias
- Students have separate CGPA for each semester (cgpa_s1, cgpa_s2)
- When querying both semesters, use UNION or separate joins`

// GradeHierarchy is the fixed grade total order, highest first.
var GradeHierarchy = []string{"O", "A+", "A", "B+", "B", "C+", "C", "D+", "D", "F"}

var gradeRanks = map[string]int{
	"O": 10, "A+": 9, "A": 8, "B+": 7, "B": 6,
	"C+": 5, "C": 4, "D+": 3, "D": 2, "F": 0,
}

var gradeNames = map[string]string{
	"O":  "Outstanding",
	"A+": "Excellent",
	"A":  "Very Good",
	"B+": "Good",
	"B":  "Above Average",
	"C+": "Below Average",
	"C":  "Average",
	"D+": "Poor",
	"D":  "Poor",
	"F":  "Fail",
}

// gradeColors maps hierarchy positions to chart slice colors, best to worst.
var gradeColors = []string{
	"#10b981", "#059669", "#0d9488", "#0891b2", "#0284c7",
	"#3b82f6", "#6366f1", "#8b5cf6", "#a855f7", "#ef4444",
}

// GradeRank maps a grade to its numeric rank (10..0); unknown grades rank -1.
func GradeRank(grade string) int {
	if r, ok := gradeRanks[grade]; ok {
		return r
	}
	return -1
}

// GradeName returns the descriptive name for a grade, or the grade itself.
func GradeName(grade string) string {
	if n, ok := gradeNames[grade]; ok {
		return n
	}
	return grade
}

// GradeHierarchyContext renders the grade order for prompt embedding.
func GradeHierarchyContext() string {
	var sb strings.Builder
	sb.WriteString("Grade Hierarchy (Highest to Lowest):\n")
	sb.WriteString("- O (Outstanding) - Highest grade (10 points)\n")
	sb.WriteString("- A+ (Excellent) - (9 points)\n")
	sb.WriteString("- A (Very Good) - (8 points)\n")
	sb.WriteString("- B+ (Good) - (7 points)\n")
	sb.WriteString("- B (Above Average) - (6 points)\n")
	sb.WriteString("- C+ (Below Average) - (5 points)\n")
	sb.WriteString("- C (Average) - (4 points)\n")
	sb.WriteString("- D+ (Poor) - (3 points)\n")
	sb.WriteString("- D (Poor) - (2 points)\n")
	sb.WriteString("- F (Fail) - (0 points)")
	return sb.String()
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
