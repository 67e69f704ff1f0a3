package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"go.uber.org/zap"

	"github.com/amaitari/secret-messaging-app/pkg/controller"
	"github.com/amaitari/secret-messaging-app/pkg/notify"
	"github.com/amaitari/secret-messaging-app/pkg/protect"
	"github.com/amaitari/secret-messaging-app/pkg/wallet"
)

// Actions are the user-triggerable operations
type Actions interface {
	Guards(draft, recipient string) controller.Guards
	Connect(ctx context.Context) error
	Encrypt(ctx context.Context, draft string) error
	Decrypt(ctx context.Context) error
	Send(ctx context.Context, recipient string) error
}

// Tray is the notification list the screen renders
type Tray interface {
	notify.Notifier
	List() []notify.Notification
	Dismiss(id string) bool
	Subscribe(fn func([]notify.Notification)) func()
}

// Sessions is the wallet state source
type Sessions interface {
	Init(ctx context.Context)
	Session() wallet.Session
	Subscribe(fn func(wallet.Session)) func()
}

// Messages is the protection state source
type Messages interface {
	Message() protect.Message
	InFlight() int
	Subscribe(fn func(protect.Message)) func()
}

// Deps wires the screen to the application
type Deps struct {
	Actions  Actions
	Tray     Tray
	Sessions Sessions
	Messages Messages
	// Approver is only set for the keystore provider
	Approver *Approver
	Log      *zap.Logger
}

const (
	focusMessage = iota
	focusRecipient
	focusCount
)

type model struct {
	ctx      context.Context
	actions  Actions
	tray     Tray
	sessions Sessions
	messages Messages
	approver *Approver
	log      *zap.Logger

	refresh <-chan struct{}

	message   textinput.Model
	recipient textinput.Model
	focus     int

	spinner spinner.Model
	help    help.Model
	keys    keyMap

	// pending counts dispatched actions not yet resolved
	pending  int
	approval *approvalRequest

	width    int
	height   int
	quitting bool
}

// refreshMsg means one of the observed sources changed
type refreshMsg struct{}

// walletReadyMsg ends the startup wallet probe
type walletReadyMsg struct{}

type actionDoneMsg struct {
	action string
	err    error
}

type approvalMsg struct {
	request approvalRequest
}

func (m model) busy() bool {
	return m.pending > 0 || m.messages.InFlight() > 0
}

func (m model) guards() controller.Guards {
	return m.actions.Guards(m.message.Value(), m.recipient.Value())
}

func (m *model) setFocus(focus int) {
	m.focus = (focus + focusCount) % focusCount
	if m.focus == focusMessage {
		m.message.Focus()
		m.recipient.Blur()
	} else {
		m.recipient.Focus()
		m.message.Blur()
	}
}
