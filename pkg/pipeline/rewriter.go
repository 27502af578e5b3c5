package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"edu-insight-be/pkg/llm"
)

// promptWindowTurns bounds how much history is folded into oracle prompts
// (3 question/answer pairs).
const promptWindowTurns = 6

// Rewriter folds conversation referents into a single self-contained
// question before planning. It never fails: any oracle problem falls back
// to the original question.
type Rewriter struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewRewriter(llmProvider llm.LLMProvider, logger *log.Logger) *Rewriter {
	return &Rewriter{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Rewrite disambiguates a follow-up question using recent history. With
// fewer than 2 turns there is no context worth folding in, so the question
// passes through unchanged and the oracle is not called.
func (r *Rewriter) Rewrite(ctx context.Context, question string, window Window) string {
	if len(window) < 2 {
		return question
	}

	conversation := renderConversation(window, promptWindowTurns, 150)
	prompt := r.buildPrompt(question, conversation)

	response, err := r.llmProvider.Chat(ctx, []llm.Message{
		{Role: "system", Content: "You are an expert prompt enhancement agent. Generate detailed, optimized prompts for data query generation based on user questions and conversation context. Return only the enhanced prompt."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		r.logger.Printf("[REWRITER] oracle failed, keeping original question: %v", err)
		return question
	}

	rewritten := strings.TrimSpace(response)
	if rewritten == "" {
		return question
	}
	return rewritten
}

func (r *Rewriter) buildPrompt(question, conversation string) string {
	var sb strings.Builder
	sb.WriteString("You are a Prompt Enhancement Agent for a student records assistant.\n\n")
	sb.WriteString(fmt.Sprintf("Current User Question: %q\n\n", question))
	sb.WriteString("Recent Conversation Context:\n")
	sb.WriteString(conversation)
	sb.WriteString("\n\nInstructions:\n")
	sb.WriteString("- Analyze the conversation context and user question\n")
	sb.WriteString("- If this is a follow-up question, enhance it with context from previous conversation\n")
	sb.WriteString("- For example, if the user previously asked about \"student CGPA\" and now asks \"give me along with names\", enhance it to \"give me student CGPA along with the names of students\"\n")
	sb.WriteString("- Ensure the enhanced question retains the user's intent and important details from the conversation\n")
	sb.WriteString("- If the current question is already clear and complete, return it as-is\n\n")
	sb.WriteString("Generate the enhanced question now (return only the enhanced question, no explanations):")
	return sb.String()
}

// renderConversation flattens the last maxTurns turns into a prompt block.
// Assistant turns are truncated to maxAssistantChars to bound prompt size.
func renderConversation(window Window, maxTurns, maxAssistantChars int) string {
	var sb strings.Builder
	for _, turn := range window.Last(maxTurns) {
		switch turn.Role {
		case TurnAssistant:
			text := turn.Text
			if runes := []rune(text); len(runes) > maxAssistantChars {
				text = string(runes[:maxAssistantChars]) + "..."
			}
			sb.WriteString("Assistant: " + text + "\n")
		default:
			sb.WriteString("User: " + turn.Text + "\n")
		}
	}
	return sb.String()
}
