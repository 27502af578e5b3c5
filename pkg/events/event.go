package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "QUESTION_ASKED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeQuestionAsked  = "QUESTION_ASKED"
	TypeAccessDenied   = "ACCESS_DENIED"
	TypeUserRegistered = "USER_REGISTERED"
)

// NewQuestionAskedEvent records a completed question turn for analytics.
func NewQuestionAskedEvent(userID, sessionID, role, question string, denied bool) Event {
	return BaseEvent{
		Type: TypeQuestionAsked,
		Data: map[string]interface{}{
			"user_id":       userID,
			"session_id":    sessionID,
			"role":          role,
			"question":      question,
			"access_denied": denied,
		},
		OccurredAt: time.Now(),
	}
}

// NewAccessDeniedEvent records a blocked parent question for auditing.
func NewAccessDeniedEvent(userID, studentID, question string) Event {
	return BaseEvent{
		Type: TypeAccessDenied,
		Data: map[string]interface{}{
			"user_id":    userID,
			"student_id": studentID,
			"question":   question,
		},
		OccurredAt: time.Now(),
	}
}

// NewUserRegisteredEvent records a new account.
func NewUserRegisteredEvent(userID, email, role string) Event {
	return BaseEvent{
		Type: TypeUserRegistered,
		Data: map[string]interface{}{
			"user_id": userID,
			"email":   email,
			"role":    role,
		},
		OccurredAt: time.Now(),
	}
}
