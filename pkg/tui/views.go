package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"

	"github.com/amaitari/secret-messaging-app/pkg/controller"
	"github.com/amaitari/secret-messaging-app/pkg/notify"
	"github.com/amaitari/secret-messaging-app/pkg/protect"
	"github.com/amaitari/secret-messaging-app/pkg/wallet"
)

func (m model) View() string {
	if m.quitting {
		farewell := lipgloss.NewStyle().
			Foreground(lipgloss.Color(successColor)).
			Bold(true).
			Padding(1, 2).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color(primaryColor)).
			Render("👋 Your messages stay sealed. Goodbye!")
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, farewell)
	}

	if m.approval != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.approvalView())
	}

	sections := []string{
		m.headerView(),
		m.inputsView(),
		m.buttonsView(m.guards()),
	}
	if pane := m.messageView(m.messages.Message()); pane != "" {
		sections = append(sections, pane)
	}
	if tray := m.trayView(m.tray.List()); tray != "" {
		sections = append(sections, tray)
	}
	sections = append(sections, HelpBarStyle.Render(m.help.View(m.keys)))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m model) headerView() string {
	parts := []string{
		lipgloss.NewStyle().Foreground(lipgloss.Color(primaryColor)).Bold(true).Render("🔐 Secret Messaging"),
		QuantumBadgeStyle.Render("protected"),
		sessionView(m.sessions.Session()),
	}
	if m.busy() {
		parts = append(parts, m.spinner.View()+MutedStyle.Render(" working"))
	}

	sep := MutedStyle.Render(" • ")
	content := parts[0]
	for _, p := range parts[1:] {
		content = lipgloss.JoinHorizontal(lipgloss.Left, content, sep, p)
	}

	style := HeaderStyle
	if m.width > 0 {
		style = style.Width(m.width)
	}
	return style.Render(content)
}

func sessionView(s wallet.Session) string {
	if !s.ProviderAvailable {
		return ErrorStyle.Render("no wallet detected")
	}
	if addr, ok := s.Primary(); ok {
		return SuccessStyle.Render("connected ") + AddressStyle.Render(wallet.FormatAddress(addr))
	}
	return WarningStyle.Render("not connected")
}

func (m model) inputsView() string {
	box := func(focused bool, label, input string) string {
		style := BoxStyle
		if focused {
			style = FocusedBoxStyle
		}
		return style.Render(lipgloss.JoinVertical(lipgloss.Left, MutedStyle.Render(label), input))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		box(m.focus == focusMessage, "Message", m.message.View()),
		box(m.focus == focusRecipient, "Recipient", m.recipient.View()),
	)
}

func (m model) buttonsView(g controller.Guards) string {
	button := func(label string, enabled bool) string {
		if enabled {
			return ButtonStyle.Render(label)
		}
		return DisabledButtonStyle.Render(label)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		button("Connect", g.Connect),
		button("Encrypt", g.Encrypt),
		button("Decrypt", g.Decrypt),
		button("Send", g.Send),
	)
}

// messageView shows the handle and the revealed text once they exist
func (m model) messageView(msg protect.Message) string {
	var lines []string
	if msg.HasHandle() {
		lines = append(lines,
			LabelStyle.Render("Protected data: ")+AddressStyle.Render(msg.Handle)+
				MutedStyle.Render(fmt.Sprintf("  (%s)", msg.Phase)))
	}
	if msg.Revealed != "" {
		lines = append(lines, LabelStyle.Render("Revealed: ")+BaseStyle.Render(msg.Revealed))
	}
	if len(lines) == 0 {
		return ""
	}
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m model) trayView(list []notify.Notification) string {
	if len(list) == 0 {
		return ""
	}

	cards := lo.Map(list, func(n notify.Notification, _ int) string {
		title, style := InfoStyle, NoticeStyle
		if n.Severity == notify.SeverityDestructive {
			title, style = ErrorStyle, DestructiveNoticeStyle
		}
		return style.Render(lipgloss.JoinVertical(lipgloss.Left,
			title.Render(n.Title),
			BaseStyle.Render(n.Description),
		))
	})
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (m model) approvalView() string {
	accounts := lo.Map(m.approval.accounts, func(a common.Address, _ int) string {
		return AddressStyle.Render(a.Hex())
	})

	content := lipgloss.JoinVertical(lipgloss.Center,
		TitleStyle.Render("🔑 Connection Request"),
		BaseStyle.Render("Grant this application access to:"),
		"",
		lipgloss.JoinVertical(lipgloss.Left, accounts...),
		"",
		MutedStyle.Render("y • approve | n • decline"),
	)
	return ModalStyle.Width(60).Render(content)
}
