package ai

import (
	"strings"

	"github.com/zhouzirui/mnchat/internal/model/persona"
)

var languageRules = map[string]string{
	"mn": "Хариултаа үргэлж монгол хэлээр, кирилл үсгээр бичнэ үү.",
	"en": "Always answer in English.",
}

// BuildSystemPrompt renders the system message for a persona.
func BuildSystemPrompt(p *persona.Persona) string {
	if p == nil {
		return ""
	}

	var builder strings.Builder
	builder.WriteString(strings.TrimSpace(p.SystemPrompt))

	if rule, ok := languageRules[p.Language]; ok && !strings.Contains(p.SystemPrompt, rule) {
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(rule)
	}
	return builder.String()
}
