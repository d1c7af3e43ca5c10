package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/zhouzirui/mnchat/internal/locale"
)

// ErrQuit is returned by Handle for /quit. Front-ends stop on it.
var ErrQuit = errors.New("quit requested")

// Session is the part of the chat controller the commands operate on.
type Session interface {
	Clear()
	SetEndpoint(endpoint string)
	Endpoint() string
	Catalog() locale.Catalog
}

// Handler runs parsed commands. handled=false means the line should be sent
// to the assistant as typed.
type Handler interface {
	Handle(ctx context.Context, cmd Command) (handled bool, err error)
}

// NewHandler returns the built-in command set writing feedback to out.
func NewHandler(session Session, out io.Writer) Handler {
	return &defaultHandler{session: session, out: out}
}

type defaultHandler struct {
	session Session
	out     io.Writer
}

func (h *defaultHandler) Handle(_ context.Context, cmd Command) (bool, error) {
	catalog := h.session.Catalog()

	switch cmd.Name {
	case "clear":
		h.session.Clear()
		return true, h.println(catalog.Cleared)
	case "endpoint":
		if len(cmd.Args) > 0 {
			h.session.SetEndpoint(cmd.Args[0])
		}
		return true, h.println(catalog.EndpointLabel, h.session.Endpoint())
	case "help":
		return true, h.println(catalog.Help)
	case "quit", "exit":
		return true, ErrQuit
	case "":
		return true, h.println(catalog.Help)
	default:
		return true, h.println(fmt.Sprintf("unknown command: /%s", cmd.Name))
	}
}

func (h *defaultHandler) println(a ...any) error {
	if h.out == nil {
		return nil
	}
	_, err := fmt.Fprintln(h.out, a...)
	return err
}
