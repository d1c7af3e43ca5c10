package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/mnchat/internal/locale"
)

func TestParse(t *testing.T) {
	cmd, err := Parse(`/endpoint "http://a b/chat"`, "", "")
	require.NoError(t, err)
	assert.Equal(t, "endpoint", cmd.Name)
	assert.Equal(t, []string{"http://a b/chat"}, cmd.Args)

	cmd, err = Parse("  /CLEAR  ", "/", `\`)
	require.NoError(t, err)
	assert.Equal(t, "clear", cmd.Name)
	assert.Empty(t, cmd.Args)

	_, err = Parse("hello", "", "")
	assert.ErrorIs(t, err, ErrNotCommand)

	_, err = Parse("   ", "", "")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Parse("/", "", "")
	assert.ErrorIs(t, err, ErrNoName)

	cmd, err = Parse(`\/help me`, "", "")
	assert.ErrorIs(t, err, ErrEscaped)
	assert.Equal(t, "/help me", cmd.Raw)
}

func TestMessage(t *testing.T) {
	text, _, ok := Message("  сайн уу ", "", "")
	assert.True(t, ok)
	assert.Equal(t, "  сайн уу ", text, "plain text is sent verbatim")

	text, _, ok = Message(`\/clear please`, "", "")
	assert.True(t, ok)
	assert.Equal(t, "/clear please", text)

	_, cmd, ok := Message("/quit", "", "")
	assert.False(t, ok)
	assert.Equal(t, "quit", cmd.Name)
}

type fakeSession struct {
	cleared  int
	endpoint string
}

func (f *fakeSession) Clear()                  { f.cleared++ }
func (f *fakeSession) SetEndpoint(e string)    { f.endpoint = e }
func (f *fakeSession) Endpoint() string        { return f.endpoint }
func (f *fakeSession) Catalog() locale.Catalog { return locale.Lookup("en") }

func TestHandler(t *testing.T) {
	ctx := context.Background()
	sess := &fakeSession{endpoint: "http://localhost:8000/chat"}
	out := &bytes.Buffer{}
	h := NewHandler(sess, out)

	handled, err := h.Handle(ctx, Command{Name: "clear"})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, 1, sess.cleared)
	assert.Contains(t, out.String(), "Conversation cleared")

	out.Reset()
	handled, err = h.Handle(ctx, Command{Name: "endpoint"})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Contains(t, out.String(), "http://localhost:8000/chat")

	out.Reset()
	_, err = h.Handle(ctx, Command{Name: "endpoint", Args: []string{"ws://remote/ws"}})
	require.NoError(t, err)
	assert.Equal(t, "ws://remote/ws", sess.endpoint)
	assert.Contains(t, out.String(), "ws://remote/ws")

	out.Reset()
	_, err = h.Handle(ctx, Command{Name: "help"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "/endpoint")

	out.Reset()
	handled, err = h.Handle(ctx, Command{Name: "bogus"})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Contains(t, out.String(), "unknown command: /bogus")

	handled, err = h.Handle(ctx, Command{Name: "quit"})
	assert.True(t, handled)
	assert.ErrorIs(t, err, ErrQuit)
}
