package pipeline

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"edu-insight-be/pkg/llm"
)

const maxSuggestions = 3

// numberedLine matches "1. some suggestion" style lines in oracle output.
var numberedLine = regexp.MustCompile(`(?m)^\s*\d+\.\s*(.+)$`)

// genericPhrases mark oracle suggestions too vague to show. Any hit replaces
// the whole batch with the static fallbacks.
var genericPhrases = []string{"try a different", "more specific", "check", "ask about"}

// Suggester proposes up to three follow-up questions grounded in the shape
// of the data just retrieved. The oracle gets a compact statistical summary
// of the rows rather than the raw records, and any failure falls back to
// static role-appropriate suggestions.
type Suggester struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewSuggester(llmProvider llm.LLMProvider, logger *log.Logger) *Suggester {
	return &Suggester{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Suggest returns follow-up questions for the just-answered question. It
// never fails and never returns more than three suggestions.
func (s *Suggester) Suggest(ctx context.Context, question string, rows []Row, id Identity, conversation string) []string {
	summary := analyzeRows(rows)
	prompt := s.buildPrompt(question, summary, id, conversation)

	response, err := s.llmProvider.Chat(ctx, []llm.Message{
		{Role: "system", Content: "You are a helpful assistant that suggests relevant follow-up questions about student academic data. Return exactly 3 numbered suggestions."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		s.logger.Printf("[SUGGESTER] oracle failed, using static suggestions: %v", err)
		return StaticSuggestions(question, id)
	}

	suggestions := parseNumbered(response)
	if len(suggestions) == 0 {
		return StaticSuggestions(question, id)
	}
	for _, suggestion := range suggestions {
		if containsAny(strings.ToLower(suggestion), genericPhrases) {
			s.logger.Printf("[SUGGESTER] oracle returned generic suggestions, using static set")
			return StaticSuggestions(question, id)
		}
	}
	return suggestions
}

func (s *Suggester) buildPrompt(question, summary string, id Identity, conversation string) string {
	var sb strings.Builder
	sb.WriteString("Generate follow-up question suggestions for a student records assistant.\n\n")
	sb.WriteString(fmt.Sprintf("User Type: %s\n", id.Role))
	if id.Role == RoleParent && id.StudentID != "" {
		sb.WriteString(fmt.Sprintf("Parent is bound to student ID: %s\n", id.StudentID))
		sb.WriteString("Suggestions must only involve their own child or aggregated class statistics.\n")
	}
	sb.WriteString(fmt.Sprintf("\nLast Question: %q\n\n", question))
	sb.WriteString("Data Summary:\n")
	sb.WriteString(summary)
	if conversation != "" {
		sb.WriteString("\nRecent Conversation:\n")
		sb.WriteString(conversation)
	}
	sb.WriteString("\nInstructions:\n")
	sb.WriteString("- Suggest exactly 3 natural follow-up questions the user could ask next\n")
	sb.WriteString("- Base suggestions on the data summary above, not on imagined data\n")
	sb.WriteString("- Keep each suggestion short and directly askable\n")
	sb.WriteString("- Format as a numbered list: 1. ... 2. ... 3. ...\n")
	return sb.String()
}

// analyzeRows condenses the result set into the statistics the suggester
// prompt needs: averages, grade distribution, and the subject/branch spread.
func analyzeRows(rows []Row) string {
	if len(rows) == 0 {
		return "No records were retrieved."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total records: %d\n", len(rows)))

	for _, metric := range []struct {
		key   string
		label string
	}{
		{"cgpa_s1", "Average CGPA (S1)"},
		{"cgpa_s2", "Average CGPA (S2)"},
		{"cgpa", "Average CGPA"},
		{"attendance_percentage", "Average attendance"},
	} {
		sum, n := 0.0, 0
		for _, row := range rows {
			if v, ok := row.Float(metric.key); ok {
				sum += v
				n++
			}
		}
		if n > 0 {
			sb.WriteString(fmt.Sprintf("%s: %.2f (over %d records)\n", metric.label, sum/float64(n), n))
		}
	}

	gradeCounts := map[string]int{}
	for _, row := range rows {
		if grade, ok := row.String("grade"); ok && GradeRank(grade) >= 0 {
			gradeCounts[grade]++
		}
	}
	if len(gradeCounts) > 0 {
		sb.WriteString("Grade distribution: ")
		var parts []string
		for _, grade := range GradeHierarchy {
			if n := gradeCounts[grade]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s=%d", grade, n))
			}
		}
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("\n")
	}

	if subjects := distinctValues(rows, "subject", 3); len(subjects) > 0 {
		sb.WriteString("Subjects include: " + strings.Join(subjects, ", ") + "\n")
	}
	if branches := distinctValues(rows, "branch", 3); len(branches) > 0 {
		sb.WriteString("Branches include: " + strings.Join(branches, ", ") + "\n")
	}

	return sb.String()
}

// distinctValues collects up to max distinct string values of a column, in
// sorted order so summaries stay stable across runs.
func distinctValues(rows []Row, key string, max int) []string {
	seen := map[string]struct{}{}
	for _, row := range rows {
		if v, ok := row.String(key); ok {
			seen[v] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	if len(values) > max {
		values = values[:max]
	}
	return values
}

// parseNumbered extracts suggestions from a numbered list, capped at three.
func parseNumbered(response string) []string {
	matches := numberedLine.FindAllStringSubmatch(response, -1)
	var suggestions []string
	for _, m := range matches {
		suggestion := strings.TrimSpace(m[1])
		suggestion = strings.Trim(suggestion, `"'`)
		if suggestion == "" {
			continue
		}
		suggestions = append(suggestions, suggestion)
		if len(suggestions) == maxSuggestions {
			break
		}
	}
	return suggestions
}

// StaticSuggestions returns keyword and role appropriate fallbacks used when
// the oracle cannot supply useful ones.
func StaticSuggestions(question string, id Identity) []string {
	questionLower := strings.ToLower(question)

	if id.Role == RoleParent && id.StudentID != "" {
		return []string{
			fmt.Sprintf("Show my child's CGPA for both semesters (ID: %s)", id.StudentID),
			"What is the class average CGPA?",
			"Show my child's attendance percentage by subject",
		}
	}

	switch {
	case strings.Contains(questionLower, "cgpa"):
		return []string{
			"Show students with CGPA above 8",
			"Compare CGPA between semester 1 and semester 2",
			"Show a bar chart of student CGPAs",
		}
	case strings.Contains(questionLower, "attendance"):
		return []string{
			"Show students with attendance below 75%",
			"What is the average attendance per subject?",
			"Show a scatter plot of attendance vs CGPA",
		}
	case strings.Contains(questionLower, "grade"):
		return []string{
			"Show the grade distribution as a pie chart",
			"Which students got an O grade?",
			"How many students are failing?",
		}
	}

	return []string{
		"Show all students with their CGPA",
		"What is the grade distribution across subjects?",
		"Show the class average attendance",
	}
}
