package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func historyWindow(turns ...string) Window {
	var w Window
	for i, text := range turns {
		role := TurnUser
		if i%2 == 1 {
			role = TurnAssistant
		}
		w = append(w, Turn{Role: role, Text: text, Timestamp: time.Now()})
	}
	return w
}

func TestRewritePassesThroughShortHistory(t *testing.T) {
	oracle := &stubProvider{response: "should not be used"}
	rewriter := NewRewriter(oracle, testLogger())

	got := rewriter.Rewrite(context.Background(), "show all students", nil)
	assert.Equal(t, "show all students", got)

	got = rewriter.Rewrite(context.Background(), "show all students", historyWindow("hi"))
	assert.Equal(t, "show all students", got)

	assert.Zero(t, oracle.calls, "short history must not invoke the oracle")
}

func TestRewriteUsesOracleWithContext(t *testing.T) {
	oracle := &stubProvider{response: "show student CGPA along with the names of students"}
	rewriter := NewRewriter(oracle, testLogger())
	window := historyWindow("show student CGPA", "Here are the CGPAs...")

	got := rewriter.Rewrite(context.Background(), "give me along with names", window)

	assert.Equal(t, "show student CGPA along with the names of students", got)
	assert.Equal(t, 1, oracle.calls)
	assert.Contains(t, oracle.prompts[0], "give me along with names")
	assert.Contains(t, oracle.prompts[0], "show student CGPA")
}

func TestRewriteFallsBackToOriginalOnFailure(t *testing.T) {
	oracle := &stubProvider{err: errors.New("oracle down")}
	rewriter := NewRewriter(oracle, testLogger())
	window := historyWindow("q1", "a1")

	got := rewriter.Rewrite(context.Background(), "follow up", window)
	assert.Equal(t, "follow up", got)
}

func TestRewriteFallsBackOnBlankResponse(t *testing.T) {
	oracle := &stubProvider{response: "   \n"}
	rewriter := NewRewriter(oracle, testLogger())
	window := historyWindow("q1", "a1")

	got := rewriter.Rewrite(context.Background(), "follow up", window)
	assert.Equal(t, "follow up", got)
}

func TestRenderConversationTruncatesAssistantTurns(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	window := historyWindow("question", string(long))

	rendered := renderConversation(window, promptWindowTurns, 150)
	assert.Contains(t, rendered, "User: question")
	assert.Contains(t, rendered, "...")
	assert.NotContains(t, rendered, string(long))
}

func TestRenderConversationTruncatesOnRuneBoundary(t *testing.T) {
	answer := strings.Repeat("é", 200)
	window := historyWindow("question", answer)

	rendered := renderConversation(window, promptWindowTurns, 150)
	assert.Contains(t, rendered, strings.Repeat("é", 150)+"...")
}

func TestRenderConversationBoundsTurnCount(t *testing.T) {
	window := historyWindow("q1", "a1", "q2", "a2", "q3", "a3", "q4", "a4")
	rendered := renderConversation(window, promptWindowTurns, 150)

	assert.NotContains(t, rendered, "q1")
	assert.Contains(t, rendered, "q2")
	assert.Contains(t, rendered, "a4")
}
