package chat

// Role tags the speaker of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleSystem is only used by the backend when assembling prompts.
	RoleSystem Role = "system"
)

// Turn is one message exchanged in the conversation. Turns are never
// modified after they are appended to a transcript.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	// Failed marks an assistant turn written by the client because the
	// exchange failed. It never goes on the wire.
	Failed bool `json:"-"`
}

// UserTurn builds a turn spoken by the user.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// AssistantTurn builds a turn spoken by the assistant.
func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// FailureTurn builds the assistant turn recorded for a failed exchange.
func FailureTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content, Failed: true}
}

// Request is the body posted to a chat endpoint. History carries the
// transcript as it was before Message was appended.
type Request struct {
	Message string `json:"message"`
	History []Turn `json:"history"`
}

// Reply is the body returned by a chat endpoint.
type Reply struct {
	Response string `json:"response,omitempty"`
	Message  string `json:"message,omitempty"`
	Status   string `json:"status,omitempty"`
}

// Reply statuses reported by the backend.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Text returns the first non-empty of Response and Message.
func (r Reply) Text() string {
	if r.Response != "" {
		return r.Response
	}
	return r.Message
}
