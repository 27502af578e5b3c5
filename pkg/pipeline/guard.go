package pipeline

import (
	"fmt"
	"log"
	"strings"
)

// aggregateFunctions are the projections that make a query safe for parents
// even when it spans all students: aggregated output carries no individual
// identity.
var aggregateFunctions = []string{"avg(", "count(", "sum(", "max(", "min("}

// Guard is the second access-control barrier, applied to the generated query
// text itself right before execution. Even a planner mistake cannot surface
// another student's row: non-aggregate parent queries are either denied or
// textually re-bound to the parent's own student.
//
// The inspection is substring-based, not a parsed-AST guarantee. An
// adversarial alias or a crafted WHERE clause could in principle slip past
// it; stronger isolation would require building queries structurally.
type Guard struct {
	logger *log.Logger
}

func NewGuard(logger *log.Logger) *Guard {
	return &Guard{logger: logger}
}

// Enforce returns the query to execute and whether it must be denied
// instead. Faculty queries pass through untouched.
func (g *Guard) Enforce(query string, id Identity) (string, bool) {
	if query == DeniedQuery {
		return query, true
	}
	if id.Role != RoleParent || id.StudentID == "" {
		return query, false
	}

	queryLower := strings.ToLower(query)

	// Individual-identity projections without the bound roll number are only
	// acceptable inside aggregates.
	if (strings.Contains(queryLower, "s.name") || strings.Contains(queryLower, "s.roll_no")) &&
		!strings.Contains(query, id.StudentID) {
		if !containsAny(queryLower, aggregateFunctions) && !strings.Contains(queryLower, "group by") {
			g.logger.Printf("[GUARD] blocking parent query projecting other students: %s", query)
			return query, true
		}
	}

	// Non-aggregate queries that never mention the bound roll number get
	// re-bound to it, so a planner omission cannot widen the result set.
	if !strings.Contains(query, id.StudentID) && !containsAny(queryLower, aggregateFunctions) {
		if strings.Contains(strings.ToUpper(query), "WHERE") {
			query = query + fmt.Sprintf(" AND s.roll_no = '%s'", id.StudentID)
		} else {
			query = query + fmt.Sprintf(" WHERE s.roll_no = '%s'", id.StudentID)
		}
		g.logger.Printf("[GUARD] appended parent restriction: %s", query)
	}

	return query, false
}
