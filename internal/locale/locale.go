// Package locale holds the user-facing strings of the chat client and backend.
package locale

import (
	"fmt"
	"strings"
)

// Code identifies a supported locale.
type Code string

const (
	Mongolian Code = "mn"
	English   Code = "en"
)

// Default is used when no locale, or an unknown one, is requested.
const Default = Mongolian

// Catalog is the set of strings rendered for one locale.
type Catalog struct {
	Code Code

	// FailureIndicator opens every failure turn.
	FailureIndicator string
	failureFormat    string

	NotResponding string
	Thinking      string
	Greeting      string
	Intro         string
	Placeholder   string
	EndpointLabel string
	EndpointHint  string
	Cleared       string
	ClearLabel    string
	Title         string
	Subtitle      string
	Help          string
}

// Failure renders the assistant turn shown when an exchange fails.
func (c Catalog) Failure(reason string) string {
	return fmt.Sprintf(c.failureFormat, c.FailureIndicator, reason)
}

var catalogs = map[Code]Catalog{
	Mongolian: {
		Code:             Mongolian,
		FailureIndicator: "Алдаа гарлаа",
		failureFormat:    "%s: %s. API холболтоо шалгана уу.",
		NotResponding:    "API хариу өгөхгүй байна",
		Thinking:         "Бодож байна...",
		Greeting:         "Сайн байна уу! 👋",
		Intro:            "Надтай монгол хэл дээр ярилцаарай. Асуулт асууж эхлээрэй!",
		Placeholder:      "Асуултаа энд бичнэ үү...",
		EndpointLabel:    "API Endpoint:",
		EndpointHint:     "Backend серверийн хаягаа оруулна уу",
		Cleared:          "Яриа цэвэрлэгдлээ",
		ClearLabel:       "Цэвэрлэх",
		Title:            "Монгол Chatbot",
		Subtitle:         "Qwen2.5 загвар ашигласан",
		Help:             "/clear цэвэрлэх, /endpoint [url] хаяг, /help тусламж, /quit гарах",
	},
	English: {
		Code:             English,
		FailureIndicator: "Error",
		failureFormat:    "%s: %s. Please check your API connection.",
		NotResponding:    "API is not responding",
		Thinking:         "Thinking...",
		Greeting:         "Hello! 👋",
		Intro:            "Ask me anything to get started.",
		Placeholder:      "Type your question here...",
		EndpointLabel:    "API Endpoint:",
		EndpointHint:     "Enter the address of your backend server",
		Cleared:          "Conversation cleared",
		ClearLabel:       "Clear",
		Title:            "Mongolian Chatbot",
		Subtitle:         "Powered by Qwen2.5",
		Help:             "/clear reset, /endpoint [url] backend, /help this text, /quit exit",
	},
}

// Lookup returns the catalog for code, falling back to Default.
func Lookup(code string) Catalog {
	if c, ok := catalogs[Code(strings.ToLower(strings.TrimSpace(code)))]; ok {
		return c
	}
	return catalogs[Default]
}

// Supported reports whether code names a known locale.
func Supported(code string) bool {
	_, ok := catalogs[Code(strings.ToLower(strings.TrimSpace(code)))]
	return ok
}
