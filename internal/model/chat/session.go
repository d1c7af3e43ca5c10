package chat

// DefaultEndpoint is the chat endpoint used until the user sets another.
const DefaultEndpoint = "http://localhost:8000/chat"

// Snapshot is a read-only copy of a chat session handed to observers.
type Snapshot struct {
	ID         string `json:"id"`
	Endpoint   string `json:"endpoint"`
	Transcript []Turn `json:"transcript"`
	Pending    bool   `json:"pending"`
	Draft      string `json:"draft,omitempty"`
}

// Last returns the most recent turn, if any.
func (s Snapshot) Last() (Turn, bool) {
	if len(s.Transcript) == 0 {
		return Turn{}, false
	}
	return s.Transcript[len(s.Transcript)-1], true
}
