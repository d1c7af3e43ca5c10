// Package repl is the line-mode front-end of the chat client.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/mnchat/internal/model/chat"
	chatService "github.com/zhouzirui/mnchat/internal/service/chat"
	"github.com/zhouzirui/mnchat/internal/ui/commands"
)

// Config holds REPL configuration.
type Config struct {
	UserPrompt    string
	BotPrefix     string
	CommandPrefix string
	EscapePrefix  string
}

func DefaultConfig() *Config {
	return &Config{UserPrompt: "you> ", BotPrefix: "bot> ", CommandPrefix: "/", EscapePrefix: `\`}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	botStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	infoStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Run reads lines from in until EOF, /quit or ctx cancellation. Plain lines
// are submitted to svc and the resulting assistant turn is printed to out.
// Command feedback also goes to out; IO errors while reading go to errOut.
func Run(ctx context.Context, svc *chatService.Service, in io.Reader, out, errOut io.Writer, cfg *Config, handler commands.Handler) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if handler == nil {
		handler = commands.NewHandler(svc, out)
	}
	catalog := svc.Catalog()

	if _, err := fmt.Fprintln(out, headerStyle.Render(catalog.Title+" · "+catalog.Subtitle)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out, infoStyle.Render(catalog.EndpointLabel+" "+svc.Endpoint())); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out, catalog.Greeting+" "+catalog.Intro); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := fmt.Fprint(out, cfg.UserPrompt); err != nil {
			return err
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				_, _ = fmt.Fprintln(errOut, errorStyle.Render("ERR:"), err)
				return err
			}
			_, _ = fmt.Fprintln(out)
			return nil
		}
		line := scanner.Text()

		text, cmd, isMessage := commands.Message(line, cfg.CommandPrefix, cfg.EscapePrefix)
		if !isMessage {
			handled, err := handler.Handle(ctx, cmd)
			if errors.Is(err, commands.ErrQuit) {
				return nil
			}
			if err != nil {
				if _, werr := fmt.Fprintln(errOut, errorStyle.Render("ERR:"), err); werr != nil {
					return werr
				}
				continue
			}
			if handled {
				continue
			}
			text = cmd.Raw
		}

		if err := exchange(ctx, svc, text, out, cfg); err != nil {
			return err
		}
	}
}

func exchange(ctx context.Context, svc *chatService.Service, text string, out io.Writer, cfg *Config) error {
	svc.SetDraft(text)
	done, ok := svc.SubmitDraft(ctx)
	if !ok {
		return nil
	}
	if _, err := fmt.Fprintln(out, infoStyle.Render(svc.Catalog().Thinking)); err != nil {
		return err
	}

	select {
	case <-done:
	case <-ctx.Done():
		// the exchange shares ctx and settles promptly
		<-done
	}

	last, ok := svc.Snapshot().Last()
	if !ok || last.Role != chat.RoleAssistant {
		return nil
	}
	_, err := fmt.Fprintln(out, botStyle.Render(cfg.BotPrefix)+last.Content)
	return err
}
