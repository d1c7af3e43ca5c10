package persona

// Persona is the assistant profile the backend answers as.
type Persona struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Title        string `json:"title,omitempty" yaml:"title"`
	Language     string `json:"language" yaml:"language"`
	SystemPrompt string `json:"-" yaml:"system_prompt"`
	OpeningLine  string `json:"openingLine,omitempty" yaml:"opening_line"`
	Description  string `json:"description,omitempty" yaml:"description"`
}

// DefaultID names the persona used when none is configured.
const DefaultID = "mongolian-assistant"

// Seed provides the built-in personas.
func Seed() []Persona {
	return []Persona{
		{
			ID:           DefaultID,
			Name:         "Монгол туслах",
			Title:        "Монгол Chatbot",
			Language:     "mn",
			SystemPrompt: "Та монгол хэл дээр ярьдаг туслах юм. Хэрэглэгчид монгол хэлээр хариулт өгнө үү.",
			OpeningLine:  "Сайн байна уу! Надтай монгол хэл дээр ярилцаарай.",
			Description:  "Монгол хэлээр хариулдаг ерөнхий туслах.",
		},
		{
			ID:           "english-assistant",
			Name:         "Assistant",
			Title:        "General assistant",
			Language:     "en",
			SystemPrompt: "You are a helpful assistant. Answer concisely in English.",
			OpeningLine:  "Hello! How can I help?",
			Description:  "General purpose English assistant.",
		},
	}
}
