// Package tui is the full-screen terminal front-end of the chat client.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/mnchat/internal/locale"
	"github.com/zhouzirui/mnchat/internal/model/chat"
	chatService "github.com/zhouzirui/mnchat/internal/service/chat"
	"github.com/zhouzirui/mnchat/internal/ui/commands"
)

const (
	headerHeight = 3
	inputHeight  = 5
	footerHeight = 1
)

// snapshotMsg carries session state from the controller into Update.
type snapshotMsg chat.Snapshot

// Model is the bubbletea model over one chat session.
type Model struct {
	ctx      context.Context
	svc      *chatService.Service
	catalog  locale.Catalog
	styles   styles
	changes  chan struct{}
	cancel   func()
	handler  commands.Handler
	feedback *strings.Builder

	textarea textarea.Model
	endpoint textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	snapshot     chat.Snapshot
	showSettings bool
	status       string
	width        int
	height       int
	ready        bool
}

// New builds the model and subscribes it to svc. Close releases the
// subscription.
func New(ctx context.Context, svc *chatService.Service) Model {
	catalog := svc.Catalog()

	ta := textarea.New()
	ta.Placeholder = catalog.Placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 4096
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	ti := textinput.New()
	ti.Prompt = catalog.EndpointLabel + " "
	ti.Placeholder = catalog.EndpointHint

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	st := defaultStyles()
	sp.Style = st.Spinner

	// one pending signal is enough: the reader always takes a fresh snapshot
	changes := make(chan struct{}, 1)
	cancel := svc.Subscribe(func(chat.Snapshot) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	// letters belong to the textarea; only paging keys scroll the transcript
	vp := viewport.New(80, 20)
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
	}

	feedback := &strings.Builder{}

	return Model{
		ctx:      ctx,
		svc:      svc,
		catalog:  catalog,
		styles:   st,
		changes:  changes,
		cancel:   cancel,
		handler:  commands.NewHandler(svc, feedback),
		feedback: feedback,
		textarea: ta,
		endpoint: ti,
		viewport: vp,
		spinner:  sp,
		snapshot: svc.Snapshot(),
	}
}

// Close unsubscribes from the session.
func (m Model) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.waitForChange())
}

func (m Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.changes:
			return snapshotMsg(m.svc.Snapshot())
		case <-m.ctx.Done():
			return tea.Quit()
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlL:
			m.svc.Clear()
			m.status = m.catalog.Cleared
			return m.sync(), nil
		case tea.KeyCtrlE:
			return m.toggleSettings(), nil
		case tea.KeyEnter:
			if m.showSettings {
				m.svc.SetEndpoint(m.endpoint.Value())
				return m.toggleSettings(), nil
			}
			return m.submit()
		}

		if m.showSettings {
			var cmd tea.Cmd
			m.endpoint, cmd = m.endpoint.Update(msg)
			return m, cmd
		}
		if !m.snapshot.Pending {
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			m.svc.SetDraft(m.textarea.Value())
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m = m.resize(msg.Width, msg.Height)

	case snapshotMsg:
		wasPending := m.snapshot.Pending
		m.snapshot = chat.Snapshot(msg)
		m = m.refresh()
		if !m.snapshot.Pending && wasPending {
			cmds = append(cmds, m.textarea.Focus())
		}
		cmds = append(cmds, m.waitForChange())

	case spinner.TickMsg:
		if m.snapshot.Pending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	default:
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, vpCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.snapshot.Pending {
		return m, nil
	}

	line := m.textarea.Value()
	text, cmd, isMessage := commands.Message(line, commands.DefaultPrefix, commands.DefaultEscapePrefix)
	if !isMessage {
		m.feedback.Reset()
		handled, err := m.handler.Handle(m.ctx, cmd)
		if errors.Is(err, commands.ErrQuit) {
			return m, tea.Quit
		}
		m.textarea.Reset()
		m.svc.SetDraft("")
		if err != nil {
			m.status = err.Error()
			return m.sync(), nil
		}
		if handled {
			m.status = strings.TrimSpace(m.feedback.String())
			return m.sync(), nil
		}
		text = cmd.Raw
	}

	m.svc.SetDraft(text)
	if _, ok := m.svc.SubmitDraft(m.ctx); !ok {
		return m, nil
	}
	m.textarea.Reset()
	m.textarea.Blur()
	m.status = ""
	return m.sync(), m.spinner.Tick
}

func (m Model) toggleSettings() Model {
	m.showSettings = !m.showSettings
	if m.showSettings {
		m.endpoint.SetValue(m.svc.Endpoint())
		m.endpoint.CursorEnd()
		m.endpoint.Focus()
		m.textarea.Blur()
	} else {
		m.endpoint.Blur()
		if !m.snapshot.Pending {
			m.textarea.Focus()
		}
	}
	return m.sync()
}

// sync pulls the current session state after a local mutation.
func (m Model) sync() Model {
	m.snapshot = m.svc.Snapshot()
	return m.refresh()
}

func (m Model) resize(width, height int) Model {
	m.width, m.height = width, height

	vpHeight := height - headerHeight - inputHeight - footerHeight
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.textarea.SetWidth(max(width-4, 10))
	m.endpoint.Width = max(width-len(m.endpoint.Prompt)-2, 10)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err == nil {
		m.renderer = renderer
	}
	m.ready = true
	return m.refresh()
}

func (m Model) refresh() Model {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
	return m
}

func (m Model) renderTranscript() string {
	if len(m.snapshot.Transcript) == 0 {
		greeting := lipgloss.JoinVertical(lipgloss.Center, m.catalog.Greeting, m.catalog.Intro)
		return m.styles.Empty.Width(m.viewport.Width).Render("\n" + greeting)
	}

	var sb strings.Builder
	for _, turn := range m.snapshot.Transcript {
		switch turn.Role {
		case chat.RoleUser:
			sb.WriteString(m.styles.UserLabel.Render("you") + "\n")
			sb.WriteString(m.styles.UserText.Render(turn.Content))
			sb.WriteString("\n")
		default:
			sb.WriteString(m.styles.BotLabel.Render("bot") + "\n")
			if turn.Failed {
				sb.WriteString(m.styles.Error.Render(turn.Content))
				sb.WriteString("\n")
			} else {
				sb.WriteString(m.renderMarkdown(turn.Content))
			}
		}
	}
	return sb.String()
}

// renderMarkdown falls back to the raw text when glamour fails or panics.
func (m Model) renderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content + "\n"
		}
	}()

	if m.renderer != nil && content != "" {
		if rendered, err := m.renderer.Render(content); err == nil {
			return rendered
		}
	}
	return content + "\n"
}

func (m Model) View() string {
	if !m.ready {
		return m.catalog.Thinking
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Title.Render(m.catalog.Title),
		m.styles.Subtitle.Render(m.catalog.Subtitle),
	)
	if m.showSettings {
		header = lipgloss.JoinVertical(lipgloss.Left, header, m.styles.Settings.Render(m.endpoint.View()))
	} else {
		header = lipgloss.JoinVertical(lipgloss.Left, header, m.styles.Settings.Render(m.catalog.EndpointLabel+" "+m.snapshot.Endpoint))
	}

	body := m.viewport.View()
	if m.snapshot.Pending {
		body += "\n" + m.spinner.View() + " " + m.catalog.Thinking
	}

	footer := "enter ↵ · ctrl+l " + m.catalog.ClearLabel + " · ctrl+e " + strings.TrimSuffix(m.catalog.EndpointLabel, ":") + " · esc"
	if m.status != "" {
		footer = m.status
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		m.styles.Input.Render(m.textarea.View()),
		m.styles.Footer.Render(footer),
	)
}

// Run starts the full-screen program and blocks until it exits.
func Run(ctx context.Context, svc *chatService.Service) error {
	m := New(ctx, svc)
	defer m.Close()

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
