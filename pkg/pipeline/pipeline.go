// Package pipeline implements the question-answering flow for the
// educational data assistant: rewrite the question with conversation
// context, plan a query, enforce role-scoped access, execute it, and
// synthesize an answer with optional chart and follow-up suggestions.
//
// Every stage is failure tolerant. Oracle errors, malformed queries and
// store failures each degrade to a documented fallback, so Execute always
// returns a usable Result and never an error.
package pipeline

import (
	"context"
	"log"

	"edu-insight-be/pkg/llm"
)

// Pipeline wires the four stages together. It is safe for concurrent use:
// all per-request data lives in the State threaded through one Execute call.
type Pipeline struct {
	rewriter    *Rewriter
	planner     *Planner
	executor    *Executor
	synthesizer *Synthesizer
	logger      *log.Logger
}

// New assembles a pipeline on top of an oracle provider and a row store.
func New(provider llm.LLMProvider, store Store, logger *log.Logger) *Pipeline {
	guard := NewGuard(logger)
	suggester := NewSuggester(provider, logger)
	return &Pipeline{
		rewriter:    NewRewriter(provider, logger),
		planner:     NewPlanner(provider, logger),
		executor:    NewExecutor(store, guard, logger),
		synthesizer: NewSynthesizer(provider, suggester, logger),
		logger:      logger,
	}
}

// Execute answers one question for one identity. Stages run strictly in
// order; each reads what earlier stages wrote on the state.
func (p *Pipeline) Execute(ctx context.Context, id Identity, question string, window Window) *Result {
	st := &State{Question: question}

	st.RewrittenQuestion = p.rewriter.Rewrite(ctx, question, window)
	if st.RewrittenQuestion != question {
		p.logger.Printf("[PIPELINE] question rewritten: %q -> %q", question, st.RewrittenQuestion)
	}

	st.Query = p.planner.Plan(ctx, st.RewrittenQuestion, question, id)
	p.executor.Execute(ctx, st, id)
	p.synthesizer.Synthesize(ctx, st, id, window)

	return &Result{
		Answer:       st.Answer,
		Chart:        st.Chart,
		Suggestions:  st.Suggestions,
		AccessDenied: st.AccessDenied,
	}
}
