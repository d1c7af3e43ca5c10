// Package commands parses and runs the slash commands shared by the chat
// front-ends.
package commands

import (
	"errors"
	"regexp"
	"strings"
)

const (
	DefaultPrefix       = "/"
	DefaultEscapePrefix = `\`
)

var (
	ErrEmpty      = errors.New("empty line")
	ErrNotCommand = errors.New("not a command")
	ErrEscaped    = errors.New("escaped command prefix")
	ErrNoName     = errors.New("empty command")
)

var tokenPattern = regexp.MustCompile(`'[^']*'|"[^"]*"|\S+`)

// Command is a parsed slash command line.
type Command struct {
	Raw  string
	Name string
	Args []string
}

// Parse reads line as a slash command. Lines that do not start with prefix
// return ErrNotCommand. A line starting with escapePrefix+prefix returns
// ErrEscaped and a Command whose Raw is the line with the escape removed, so
// the caller can send it as an ordinary message.
func Parse(line, prefix, escapePrefix string) (Command, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if escapePrefix == "" {
		escapePrefix = DefaultEscapePrefix
	}

	cmd := Command{Raw: line}
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return cmd, ErrEmpty
	}
	if strings.HasPrefix(trimmed, escapePrefix+prefix) {
		cmd.Raw = strings.TrimPrefix(trimmed, escapePrefix)
		return cmd, ErrEscaped
	}
	if !strings.HasPrefix(trimmed, prefix) {
		return cmd, ErrNotCommand
	}

	parts := tokenPattern.FindAllString(strings.TrimPrefix(trimmed, prefix), -1)
	if len(parts) == 0 {
		return cmd, ErrNoName
	}
	cmd.Name = strings.ToLower(parts[0])
	for _, p := range parts[1:] {
		if len(p) >= 2 && (p[0] == '\'' && p[len(p)-1] == '\'' || p[0] == '"' && p[len(p)-1] == '"') {
			p = p[1 : len(p)-1]
		}
		cmd.Args = append(cmd.Args, p)
	}
	return cmd, nil
}

// Message resolves line into the text to submit. It reports ok=false when
// line is a command that should be dispatched instead.
func Message(line, prefix, escapePrefix string) (text string, cmd Command, ok bool) {
	cmd, err := Parse(line, prefix, escapePrefix)
	switch {
	case err == nil, errors.Is(err, ErrNoName):
		return "", cmd, false
	case errors.Is(err, ErrEscaped):
		return cmd.Raw, cmd, true
	default:
		return line, cmd, true
	}
}
