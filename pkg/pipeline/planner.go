package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"edu-insight-be/pkg/llm"
)

// DeniedQuery is the sentinel the planner emits when the lexical pre-check
// blocks a parent question. The guard recognizes it and short-circuits
// without ever touching the store.
const DeniedQuery = "ACCESS_DENIED"

// fallbackQuery is executed when the oracle cannot produce a query. It is a
// small, non-identity-revealing default projection so the pipeline can still
// answer something.
const fallbackQuery = "SELECT s.roll_no, s.name, s.cgpa_s1, s.cgpa_s2 FROM students s LIMIT 10"

// specificMarkers flag questions that seek an individual student's records.
var specificMarkers = []string{"roll_no", "roll no", "student id", "name", "specific student", "individual"}

// aggregateMarkers flag questions that seek class-wide statistics, which
// parents are always allowed to ask for.
var aggregateMarkers = []string{"average", "all students", "class", "overall", "total", "general", "statistics", "distribution"}

// Planner turns a disambiguated question into a single SQL query. The
// lexical pre-check is the first, cheapest access-control barrier: a parent
// asking for someone else's identifiable records is denied before the oracle
// is ever invoked. The produced query is still an untrusted candidate; the
// guard re-inspects it before execution.
type Planner struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewPlanner(llmProvider llm.LLMProvider, logger *log.Logger) *Planner {
	return &Planner{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Plan returns either DeniedQuery or a best-effort SQL query string. Oracle
// failure degrades to fallbackQuery, never to an error.
func (p *Planner) Plan(ctx context.Context, rewritten, original string, id Identity) string {
	if id.Role == RoleParent && id.StudentID != "" {
		questionLower := strings.ToLower(original)
		rewrittenLower := strings.ToLower(rewritten)
		studentLower := strings.ToLower(id.StudentID)

		askingSpecific := containsAny(questionLower, specificMarkers)
		askingGeneral := containsAny(questionLower, aggregateMarkers)

		if askingSpecific && !askingGeneral &&
			!strings.Contains(questionLower, studentLower) &&
			!strings.Contains(rewrittenLower, studentLower) {
			p.logger.Printf("[PLANNER] parent %s blocked from specific-student question: %s", id.StudentID, original)
			return DeniedQuery
		}
	}

	prompt := p.buildPrompt(rewritten, original, id)

	response, err := p.llmProvider.Chat(ctx, []llm.Message{
		{Role: "system", Content: "You are an expert SQL query generator with strict access controls for a multi-semester student database. Return only the SQL query, no explanations."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		p.logger.Printf("[PLANNER] oracle failed, using fallback query: %v", err)
		return fallbackQuery
	}

	query := stripCodeFences(response)
	if query == "" {
		return fallbackQuery
	}
	return query
}

func (p *Planner) buildPrompt(rewritten, original string, id Identity) string {
	var sb strings.Builder

	sb.WriteString("You are a SQL Query Generator for a student management system with separate semester tables.\n\n")
	sb.WriteString(SchemaContext)
	sb.WriteString("\n\n")
	sb.WriteString(GradeHierarchyContext())
	sb.WriteString("\n\n")

	sb.WriteString("When querying grades:\n")
	sb.WriteString("- For \"best/top/highest grades\": Use ORDER BY with a CASE statement ranking O > A+ > A > B+ > B > C+ > C > D+ > D > F\n")
	sb.WriteString("- For \"worst/lowest/failing grades\": Reverse the order or filter for D+, D, F\n\n")

	p.writeAccessControl(&sb, id)

	sb.WriteString(fmt.Sprintf("Current User Question: %q\n", original))
	sb.WriteString(fmt.Sprintf("Optimized Question: %q\n", rewritten))
	sb.WriteString(fmt.Sprintf("User Type: %s\n\n", id.Role))

	sb.WriteString("Instructions:\n")
	sb.WriteString("1. Use the optimized question to generate the SQL query\n")
	sb.WriteString("2. Generate an appropriate PostgreSQL query to retrieve relevant data\n")
	sb.WriteString("3. For semester-specific queries, use the appropriate table (attendance_and_marks_s1 or attendance_and_marks_s2)\n")
	sb.WriteString("4. Join tables appropriately:\n")
	sb.WriteString("   - Students + S1: students s LEFT JOIN attendance_and_marks_s1 am_s1 ON s.roll_no = am_s1.roll_no\n")
	sb.WriteString("   - Students + S2: students s LEFT JOIN attendance_and_marks_s2 am_s2 ON s.roll_no = am_s2.roll_no\n")
	sb.WriteString("   - Both semesters: use UNION or multiple LEFT JOINs\n")
	sb.WriteString("5. STRICTLY follow the access control rules for parent users\n\n")

	sb.WriteString("Query Examples:\n")
	sb.WriteString("- Student CGPA: SELECT s.roll_no, s.name, s.cgpa_s1, s.cgpa_s2 FROM students s\n")
	sb.WriteString("- S1 Performance: SELECT s.name, am_s1.subject, am_s1.grade FROM students s JOIN attendance_and_marks_s1 am_s1 ON s.roll_no = am_s1.roll_no\n")
	sb.WriteString("- Top Grades: ORDER BY CASE am_s1.grade WHEN 'O' THEN 10 WHEN 'A+' THEN 9 WHEN 'A' THEN 8 WHEN 'B+' THEN 7 WHEN 'B' THEN 6 WHEN 'C+' THEN 5 WHEN 'C' THEN 4 WHEN 'D+' THEN 3 WHEN 'D' THEN 2 ELSE 0 END DESC\n\n")

	sb.WriteString("Important Rules:\n")
	sb.WriteString("- Always use table aliases (s, am_s1, am_s2)\n")
	sb.WriteString("- Use ILIKE for case-insensitive text matching\n")
	sb.WriteString("- For comprehensive queries, limit to 20 records max\n")
	sb.WriteString("- When semester is not specified, consider both S1 and S2 data\n")
	sb.WriteString("- Return only the SQL query, nothing else\n\n")

	sb.WriteString("Generate the SQL query now:")
	return sb.String()
}

func (p *Planner) writeAccessControl(sb *strings.Builder, id Identity) {
	if id.Role != RoleParent || id.StudentID == "" {
		return
	}
	sb.WriteString("IMPORTANT ACCESS CONTROL FOR PARENT USER:\n")
	sb.WriteString(fmt.Sprintf("- This is a PARENT user bound to student ID: %s\n", id.StudentID))
	sb.WriteString("- ALLOWED: General statistics (averages, counts, distributions) without individual student names/IDs\n")
	sb.WriteString(fmt.Sprintf("- ALLOWED: Information specifically about their child (WHERE s.roll_no = '%s')\n", id.StudentID))
	sb.WriteString("- DENIED: Specific information about other individual students\n")
	sb.WriteString("- For general queries: use aggregated functions like AVG(), COUNT(), but DO NOT include individual student names or roll numbers\n")
	sb.WriteString(fmt.Sprintf("- For their child's data: use WHERE s.roll_no = '%s'\n\n", id.StudentID))
}

// stripCodeFences removes the markdown fences the oracle sometimes wraps
// around generated queries.
func stripCodeFences(response string) string {
	query := strings.TrimSpace(response)
	query = strings.TrimPrefix(query, "```sql")
	query = strings.TrimPrefix(query, "```")
	query = strings.TrimSuffix(query, "```")
	return strings.TrimSpace(query)
}
