package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/amaitari/secret-messaging-app/pkg/notify"
	"github.com/amaitari/secret-messaging-app/pkg/protect"
	"github.com/amaitari/secret-messaging-app/pkg/wallet"
)

// Run starts the screen and blocks until the user quits or ctx ends.
// Actions run with ctx, so in-flight calls outlive a single key press.
func Run(ctx context.Context, deps Deps) error {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	deps.Log = deps.Log.Named("tui")

	if err := initClipboard(); err != nil {
		deps.Log.Warn("clipboard not available", zap.Error(err))
	}

	refresh, stop := watch(deps)
	defer stop()

	p := tea.NewProgram(
		newModel(ctx, deps, refresh),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// watch subscribes to every state source. Changes are coalesced into a
// single pending signal; the view always reads current state.
func watch(deps Deps) (<-chan struct{}, func()) {
	refresh := make(chan struct{}, 1)
	poke := func() {
		select {
		case refresh <- struct{}{}:
		default:
		}
	}

	unsubscribe := []func(){
		deps.Tray.Subscribe(func([]notify.Notification) { poke() }),
		deps.Sessions.Subscribe(func(wallet.Session) { poke() }),
		deps.Messages.Subscribe(func(protect.Message) { poke() }),
	}
	return refresh, func() {
		for _, fn := range unsubscribe {
			fn()
		}
	}
}

func newModel(ctx context.Context, deps Deps, refresh <-chan struct{}) model {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	message := textinput.New()
	message.Placeholder = "Type your secret message..."
	message.CharLimit = 1024
	message.Width = 60
	message.Prompt = "✉  "
	message.PromptStyle = LabelStyle
	message.TextStyle = BaseStyle
	message.Focus()

	recipient := textinput.New()
	recipient.Placeholder = "0x recipient address"
	recipient.CharLimit = 42
	recipient.Width = 60
	recipient.Prompt = "→  "
	recipient.PromptStyle = LabelStyle
	recipient.TextStyle = BaseStyle

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(primaryColor))

	return model{
		ctx:       ctx,
		actions:   deps.Actions,
		tray:      deps.Tray,
		sessions:  deps.Sessions,
		messages:  deps.Messages,
		approver:  deps.Approver,
		log:       log,
		refresh:   refresh,
		message:   message,
		recipient: recipient,
		spinner:   s,
		help:      help.New(),
		keys:      Keys,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.SetWindowTitle("Secret Messaging"),
		m.initWallet(),
		m.listen(),
		m.awaitApproval(),
	)
}

// initWallet runs the startup probe: detect, silent query, then watch
func (m model) initWallet() tea.Cmd {
	ctx, sessions := m.ctx, m.sessions
	return func() tea.Msg {
		sessions.Init(ctx)
		return walletReadyMsg{}
	}
}

func (m model) listen() tea.Cmd {
	ctx, refresh := m.ctx, m.refresh
	return func() tea.Msg {
		select {
		case <-refresh:
			return refreshMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m model) awaitApproval() tea.Cmd {
	if m.approver == nil {
		return nil
	}
	ctx, requests := m.ctx, m.approver.requests
	return func() tea.Msg {
		select {
		case req := <-requests:
			return approvalMsg{request: req}
		case <-ctx.Done():
			return nil
		}
	}
}
