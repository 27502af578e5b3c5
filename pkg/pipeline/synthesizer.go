package pipeline

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"edu-insight-be/pkg/llm"
)

// maxRecordsDisplay caps how many rows are rendered into the answer prompt.
const maxRecordsDisplay = 10

// Synthesizer is the final stage: it turns the retrieved rows into a
// conversational answer, attaches a chart when the question asked for one,
// and collects follow-up suggestions. Like every other stage it degrades
// instead of failing.
type Synthesizer struct {
	llmProvider llm.LLMProvider
	suggester   *Suggester
	logger      *log.Logger
}

func NewSynthesizer(llmProvider llm.LLMProvider, suggester *Suggester, logger *log.Logger) *Synthesizer {
	return &Synthesizer{
		llmProvider: llmProvider,
		suggester:   suggester,
		logger:      logger,
	}
}

// Synthesize fills st.Answer, st.Chart and st.Suggestions from the executed
// state. Denied and empty states short-circuit to templates without calling
// the oracle.
func (s *Synthesizer) Synthesize(ctx context.Context, st *State, id Identity, window Window) {
	if st.AccessDenied {
		st.Answer = s.denialAnswer(id)
		st.Suggestions = deniedSuggestions(id)
		return
	}

	if len(st.Rows) == 0 {
		st.Answer = s.emptyAnswer(id)
		st.Suggestions = StaticSuggestions(st.Question, id)
		return
	}

	st.Answer = s.answerFromRows(ctx, st, id, window)
	s.attachChart(st)

	conversation := renderConversation(window, promptWindowTurns, 300)
	st.Suggestions = s.suggester.Suggest(ctx, st.Question, st.Rows, id, conversation)
}

func (s *Synthesizer) answerFromRows(ctx context.Context, st *State, id Identity, window Window) string {
	prompt := s.buildPrompt(st, id, window)

	response, err := s.llmProvider.Chat(ctx, []llm.Message{
		{Role: "system", Content: "You are a helpful educational data assistant. Answer questions about student records clearly and concisely based only on the provided data."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		s.logger.Printf("[SYNTHESIZER] oracle failed on %d records: %v", len(st.Rows), err)
		return fmt.Sprintf("I retrieved %d records but encountered an issue processing them. Please try a more specific question.", len(st.Rows))
	}

	answer := strings.TrimSpace(response)
	if answer == "" {
		return fmt.Sprintf("I retrieved %d records but encountered an issue processing them. Please try a more specific question.", len(st.Rows))
	}
	return answer
}

func (s *Synthesizer) buildPrompt(st *State, id Identity, window Window) string {
	var sb strings.Builder

	sb.WriteString("Answer the user's question using ONLY the retrieved records below.\n\n")
	sb.WriteString(GradeHierarchyContext())
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("User Question: %q\n", st.Question))
	sb.WriteString(fmt.Sprintf("User Type: %s\n\n", id.Role))

	sb.WriteString(fmt.Sprintf("Retrieved Records (%d total", len(st.Rows)))
	if len(st.Rows) > maxRecordsDisplay {
		sb.WriteString(fmt.Sprintf(", showing first %d", maxRecordsDisplay))
	}
	sb.WriteString("):\n")
	sb.WriteString(renderRecords(st.Rows, maxRecordsDisplay))

	if conversation := renderConversation(window, promptWindowTurns, 300); conversation != "" {
		sb.WriteString("\nRecent Conversation:\n")
		sb.WriteString(conversation)
	}

	sb.WriteString("\nInstructions:\n")
	sb.WriteString("- Answer directly and conversationally\n")
	sb.WriteString("- Use the actual values from the records, do not invent data\n")
	if id.Role == RoleParent {
		sb.WriteString("- Address the user as a parent asking about their child\n")
	} else {
		sb.WriteString("- Address the user as faculty reviewing class performance\n")
	}
	sb.WriteString("- If the records only partially answer the question, say what is covered\n")
	return sb.String()
}

// renderRecords flattens up to max rows into "key: value" lines. Keys are
// sorted so the rendering is stable, and nil values are skipped.
func renderRecords(rows []Row, max int) string {
	var sb strings.Builder
	for i, row := range rows {
		if i >= max {
			break
		}
		sb.WriteString(fmt.Sprintf("Record %d:\n", i+1))
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if row[k] == nil {
				continue
			}
			sb.WriteString(fmt.Sprintf("  %s: %v\n", k, row[k]))
		}
	}
	return sb.String()
}

func (s *Synthesizer) attachChart(st *State) {
	kind, requested := DetectChartRequest(st.Question)
	if !requested {
		return
	}
	chart := GenerateChart(kind, st.Rows)
	if chart == nil {
		s.logger.Printf("[SYNTHESIZER] %s chart requested but data does not support it", kind)
		return
	}
	st.Chart = chart
	st.Answer += fmt.Sprintf("\n\nI've generated a %s chart to visualize this data.", chart.Type)
}

func (s *Synthesizer) denialAnswer(id Identity) string {
	var sb strings.Builder
	sb.WriteString("🚫 **Access Restricted**\n\n")
	sb.WriteString("You can only access information about your child or general class statistics without individual student details.\n\n")
	sb.WriteString("**What you can ask:**\n")
	sb.WriteString(fmt.Sprintf("- Your child's records (ID: %s)\n", id.StudentID))
	sb.WriteString("- Class averages and statistics\n")
	sb.WriteString("- Grade distributions\n\n")
	sb.WriteString("**Examples:**\n")
	sb.WriteString("- \"Show my child's CGPA\"\n")
	sb.WriteString("- \"What is the class average attendance?\"")
	return sb.String()
}

func deniedSuggestions(id Identity) []string {
	return []string{
		fmt.Sprintf("Show my child's performance (ID: %s)", id.StudentID),
		"What is the class average CGPA?",
		"Show the grade distribution for the class",
	}
}

func (s *Synthesizer) emptyAnswer(id Identity) string {
	if id.Role == RoleParent {
		return fmt.Sprintf(
			"I couldn't find any records matching your question. Please make sure the student ID is correct. You can ask about your child (ID: %s) or general class statistics.",
			id.StudentID,
		)
	}
	return "I couldn't find any records matching your question. The data might not exist for the criteria you specified. Try rephrasing or broadening your question."
}
