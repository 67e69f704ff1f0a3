package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/amaitari/secret-messaging-app/pkg/notify"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		inputWidth := max(msg.Width-12, 20)
		m.message.Width = inputWidth
		m.recipient.Width = inputWidth
		return m, nil

	case refreshMsg:
		return m, m.listen()

	case walletReadyMsg:
		return m, nil

	case actionDoneMsg:
		m.pending--
		if msg.err != nil {
			m.log.Debug("action finished with error", zap.String("action", msg.action), zap.Error(msg.err))
		}
		return m, nil

	case approvalMsg:
		m.approval = &msg.request
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.approval != nil {
			return m.answerApproval(msg)
		}
		return m.handleKey(msg)
	}

	// Cursor blink and other widget traffic
	var cmds [2]tea.Cmd
	m.message, cmds[0] = m.message.Update(msg)
	m.recipient, cmds[1] = m.recipient.Update(msg)
	return m, tea.Batch(cmds[:]...)
}

func (m model) answerApproval(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var answer bool
	switch {
	case key.Matches(msg, m.keys.Approve):
		answer = true
	case key.Matches(msg, m.keys.Decline):
		answer = false
	case key.Matches(msg, m.keys.Quit):
		m.approval.reply <- false
		m.approval = nil
		m.quitting = true
		return m, tea.Quit
	default:
		return m, nil
	}

	m.approval.reply <- answer
	m.approval = nil
	return m, m.awaitApproval()
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	guards := m.guards()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Next):
		m.setFocus(m.focus + 1)
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		m.setFocus(m.focus - 1)
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Connect):
		return m.dispatch("connect", guards.Connect, m.actions.Connect)

	case key.Matches(msg, m.keys.Encrypt):
		return m.dispatch("encrypt", guards.Encrypt, m.encrypt())

	case key.Matches(msg, m.keys.Decrypt):
		return m.dispatch("decrypt", guards.Decrypt, m.actions.Decrypt)

	case key.Matches(msg, m.keys.Send):
		return m.dispatch("send", guards.Send, m.send())

	case key.Matches(msg, m.keys.Submit):
		if m.focus == focusMessage {
			return m.dispatch("encrypt", guards.Encrypt, m.encrypt())
		}
		return m.dispatch("send", guards.Send, m.send())

	case key.Matches(msg, m.keys.Copy):
		m.copyHandle()
		return m, nil

	case key.Matches(msg, m.keys.Dismiss):
		if list := m.tray.List(); len(list) > 0 {
			m.tray.Dismiss(list[len(list)-1].ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == focusMessage {
		m.message, cmd = m.message.Update(msg)
	} else {
		m.recipient, cmd = m.recipient.Update(msg)
	}
	return m, cmd
}

// encrypt captures the draft at dispatch time
func (m model) encrypt() func(context.Context) error {
	draft, actions := m.message.Value(), m.actions
	return func(ctx context.Context) error {
		return actions.Encrypt(ctx, draft)
	}
}

func (m model) send() func(context.Context) error {
	recipient, actions := m.recipient.Value(), m.actions
	return func(ctx context.Context) error {
		return actions.Send(ctx, recipient)
	}
}

// dispatch runs an enabled action as its own command. Disabled actions are
// dropped without reaching the controller.
func (m model) dispatch(name string, enabled bool, run func(context.Context) error) (tea.Model, tea.Cmd) {
	if !enabled {
		return m, nil
	}

	m.pending++
	ctx := m.ctx
	cmds := []tea.Cmd{func() tea.Msg {
		return actionDoneMsg{action: name, err: run(ctx)}
	}}
	if m.pending == 1 {
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

func (m model) copyHandle() {
	msg := m.messages.Message()
	if !msg.HasHandle() {
		return
	}
	if err := writeClipboard(msg.Handle); err != nil {
		m.log.Warn("copy handle", zap.Error(err))
		m.tray.Notify("Copy Failed", err.Error(), notify.SeverityDestructive)
		return
	}
	m.tray.Notify("Handle Copied", "The protected data address is on your clipboard.", notify.SeverityInfo)
}
