package pipeline

import (
	"strconv"
	"time"
)

// Role identifies the access scope of the requesting account.
type Role string

const (
	RoleFaculty Role = "faculty"
	RoleParent  Role = "parent"
)

// Identity is the per-request access context. It is built once by the caller
// and never mutated while a question is being processed. For parents,
// StudentID carries the roll number the account is bound to; faculty
// identities leave it empty.
type Identity struct {
	Role      Role
	StudentID string
}

// TurnRole marks which side of the conversation produced a turn.
type TurnRole string

const (
	TurnUser      TurnRole = "user"
	TurnAssistant TurnRole = "assistant"
)

// Turn is a single conversation exchange half.
type Turn struct {
	Role      TurnRole
	Text      string
	Timestamp time.Time
}

// Window is an ordered conversation history, oldest turn first.
type Window []Turn

// Last returns the trailing n turns of the window.
func (w Window) Last(n int) Window {
	if len(w) <= n {
		return w
	}
	return w[len(w)-n:]
}

// Row is one retrieved record. The field set varies per query, so consumers
// must check field presence explicitly instead of assuming a fixed schema.
type Row map[string]any

// Float reads a numeric field, tolerating the different scalar types the
// driver may hand back.
func (r Row) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case []byte:
		f, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// String reads a text field, returning false for missing, nil or empty values.
func (r Row) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		if s == "" {
			return "", false
		}
		return s, true
	case []byte:
		if len(s) == 0 {
			return "", false
		}
		return string(s), true
	}
	return "", false
}

// Has reports whether the field is present with a non-nil value.
func (r Row) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// State threads intermediate values through the pipeline. Each stage writes
// its own fields and never removes what a previous stage produced.
// AccessDenied is monotonic: once set it stays set for the request.
type State struct {
	Question          string
	RewrittenQuestion string
	Query             string
	Rows              []Row
	AccessDenied      bool
	DenialMessage     string
	Answer            string
	Chart             *ChartSpec
	Suggestions       []string
}

// Result is the caller-facing outcome of one pipeline traversal.
type Result struct {
	Answer       string
	Chart        *ChartSpec
	Suggestions  []string
	AccessDenied bool
}
