package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"

	// DefaultSessionTitle is used until the first question renames the session.
	DefaultSessionTitle = "New Conversation"

	// SessionTitleMaxLen bounds titles derived from the first question.
	SessionTitleMaxLen = 60

	// AccessDeniedTopicName is the in-process topic denied questions are
	// published on for asynchronous audit persistence.
	AccessDeniedTopicName = "CHAT_ACCESS_DENIED"
)
