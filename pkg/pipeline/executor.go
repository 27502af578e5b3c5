package pipeline

import (
	"context"
	"fmt"
	"log"
)

// Store abstracts the read-only data source the pipeline executes queries
// against. Implementations return one Row per record with column names as
// keys.
type Store interface {
	Query(ctx context.Context, query string) ([]Row, error)
}

// Executor runs the guarded query against the store and records the outcome
// on the state. It is the only stage that touches the database, and it never
// propagates errors upward: a failed query produces an empty result set so
// the synthesizer can still respond.
type Executor struct {
	store  Store
	guard  *Guard
	logger *log.Logger
}

func NewExecutor(store Store, guard *Guard, logger *log.Logger) *Executor {
	return &Executor{
		store:  store,
		guard:  guard,
		logger: logger,
	}
}

// Execute enforces access control on st.Query, then runs it. On denial it
// sets AccessDenied and a user-facing denial message instead of querying.
func (e *Executor) Execute(ctx context.Context, st *State, id Identity) {
	query, denied := e.guard.Enforce(st.Query, id)
	if denied {
		st.AccessDenied = true
		st.DenialMessage = fmt.Sprintf(
			"You can only access information about your child (ID: %s) or general class statistics without individual student details.",
			id.StudentID,
		)
		st.Rows = nil
		return
	}
	st.Query = query

	rows, err := e.store.Query(ctx, query)
	if err != nil {
		e.logger.Printf("[EXECUTOR] query failed, returning no records: %v", err)
		st.Rows = []Row{}
		return
	}
	e.logger.Printf("[EXECUTOR] retrieved %d records", len(rows))
	st.Rows = rows
}
