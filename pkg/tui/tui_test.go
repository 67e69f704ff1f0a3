package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/amaitari/secret-messaging-app/pkg/controller"
	"github.com/amaitari/secret-messaging-app/pkg/notify"
	"github.com/amaitari/secret-messaging-app/pkg/protect"
	"github.com/amaitari/secret-messaging-app/pkg/protect/sandbox"
	"github.com/amaitari/secret-messaging-app/pkg/quantum"
	"github.com/amaitari/secret-messaging-app/pkg/wallet"
)

var account = common.HexToAddress("0x8888888888888888888888888888888888888888")

type grantingProvider struct{}

func (grantingProvider) Detect(context.Context) error { return nil }

func (grantingProvider) Accounts(context.Context) ([]common.Address, error) { return nil, nil }

func (grantingProvider) RequestAccounts(context.Context) ([]common.Address, error) {
	return []common.Address{account}, nil
}

type fixture struct {
	center  *notify.Center
	manager *wallet.Manager
	gateway *protect.Gateway
	refresh <-chan struct{}
	model   model
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	vault, err := sandbox.OpenInMemory([]byte("pw"), sandbox.WithKDF(quantum.KDFParams{
		Memory: 1024, Iterations: 1, Parallelism: 1, KeyLen: quantum.AESKeySize,
	}))
	require.NoError(t, err)

	center := notify.NewCenter(notify.WithClock(clock.NewMock()), notify.WithLimit(50))
	manager := wallet.NewManager(grantingProvider{}, center, nil)
	gateway := protect.NewGateway(vault, manager, nil)
	observer := controller.NewErrorObserver(center, nil)
	observer.Start()

	deps := Deps{
		Actions:  controller.New(manager, gateway, center, observer, nil),
		Tray:     center,
		Sessions: manager,
		Messages: gateway,
	}
	refresh, stop := watch(deps)

	t.Cleanup(func() {
		stop()
		observer.Stop()
		manager.Close()
		center.Close()
		_ = vault.Close()
	})

	manager.Init(context.Background())
	m := newModel(context.Background(), deps, refresh)
	m, _ = update(m, tea.WindowSizeMsg{Width: 160, Height: 50})

	return &fixture{center: center, manager: manager, gateway: gateway, refresh: refresh, model: m}
}

func (f *fixture) press(t *testing.T, msgs ...tea.Msg) {
	t.Helper()
	for _, msg := range msgs {
		var cmd tea.Cmd
		f.model, cmd = update(f.model, msg)
		// Typing only yields cursor blink commands
		if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyRunes {
			continue
		}
		f.resolve(cmd)
	}
}

// resolve runs cmd and feeds every action result back into the model
func (f *fixture) resolve(cmd tea.Cmd) {
	for _, msg := range run(cmd) {
		if done, ok := msg.(actionDoneMsg); ok {
			f.model, _ = update(f.model, done)
		}
	}
}

func (f *fixture) titles() []string {
	var out []string
	for _, n := range f.center.List() {
		out = append(out, n.Title)
	}
	return out
}

func update(m model, msg tea.Msg) (model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func typed(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func ctrl(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func TestDisabledActionsAreNotDispatched(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	for _, k := range []tea.KeyType{tea.KeyCtrlE, tea.KeyCtrlD, tea.KeyCtrlS} {
		_, cmd := update(f.model, ctrl(k))
		req.Nil(cmd, "key %v", k)
	}
	req.Zero(f.model.pending)
	req.Empty(f.center.List())
}

func TestConnectEncryptDecryptSend(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	req.Contains(f.model.View(), "not connected")

	f.press(t, ctrl(tea.KeyCtrlO))
	req.True(f.manager.Session().Connected())
	req.Contains(f.model.View(), "0x8888...8888")

	f.press(t, typed("meet at noon"), ctrl(tea.KeyCtrlE))
	msg := f.gateway.Message()
	req.True(msg.HasHandle())
	req.Equal(protect.PhaseProtected, msg.Phase)
	req.Contains(f.model.View(), msg.Handle)

	f.press(t, ctrl(tea.KeyCtrlD))
	req.Equal("meet at noon", f.gateway.Message().Revealed)
	req.Contains(f.model.View(), "Revealed")

	f.press(t, ctrl(tea.KeyTab), typed("0x9999999999999999999999999999999999999999"), ctrl(tea.KeyEnter))
	req.Equal([]string{"Wallet Connected", "Message Encrypted", "Message Decrypted", "Message Ready"}, f.titles())
	req.Zero(f.model.pending)
}

func TestEnterOnMessageEncrypts(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	f.press(t, ctrl(tea.KeyCtrlO), typed("hi"), ctrl(tea.KeyEnter))
	req.True(f.gateway.Message().HasHandle())
}

func TestDispatchStartsSpinnerOnce(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	m, cmd := update(f.model, ctrl(tea.KeyCtrlO))
	req.Equal(1, m.pending)
	req.True(m.busy())

	msgs := run(cmd)
	req.Len(msgs, 2)

	m, _ = update(m, msgs[0])
	m, _ = update(m, msgs[1])
	req.Zero(m.pending)
}

func TestFocusCycles(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	f.press(t, typed("a"), ctrl(tea.KeyTab), typed("b"))
	req.Equal("a", f.model.message.Value())
	req.Equal("b", f.model.recipient.Value())
	req.Equal(focusRecipient, f.model.focus)

	f.press(t, ctrl(tea.KeyShiftTab))
	req.Equal(focusMessage, f.model.focus)
	f.press(t, ctrl(tea.KeyShiftTab))
	req.Equal(focusRecipient, f.model.focus)
}

func TestDismissNewestNotice(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	f.center.Info("first", "")
	f.center.Info("second", "")
	req.Contains(f.model.View(), "second")

	f.press(t, ctrl(tea.KeyCtrlX))
	req.Equal([]string{"first"}, f.titles())
}

func TestCopyHandle(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	var copied string
	writeClipboard = func(text string) error {
		copied = text
		return nil
	}
	t.Cleanup(func() { writeClipboard = copyToClipboard })

	// Nothing to copy yet
	f.press(t, ctrl(tea.KeyCtrlY))
	req.Empty(copied)

	f.press(t, ctrl(tea.KeyCtrlO), typed("hi"), ctrl(tea.KeyCtrlE), ctrl(tea.KeyCtrlY))
	req.Equal(f.gateway.Message().Handle, copied)
	req.Equal("Handle Copied", f.titles()[len(f.titles())-1])
}

func TestCopyHandle_ClipboardUnavailable(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	writeClipboard = func(string) error { return errors.New("no display") }
	t.Cleanup(func() { writeClipboard = copyToClipboard })

	f.press(t, ctrl(tea.KeyCtrlO), typed("hi"), ctrl(tea.KeyCtrlE), ctrl(tea.KeyCtrlY))
	last := f.center.List()[len(f.center.List())-1]
	req.Equal("Copy Failed", last.Title)
	req.Equal(notify.SeverityDestructive, last.Severity)
}

func TestHelpToggle(t *testing.T) {
	f := newFixture(t)
	require.False(t, f.model.help.ShowAll)

	f.press(t, ctrl(tea.KeyCtrlG))
	require.True(t, f.model.help.ShowAll)
	require.Contains(t, f.model.View(), "dismiss notice")
}

func TestQuit(t *testing.T) {
	f := newFixture(t)

	m, cmd := update(f.model, ctrl(tea.KeyCtrlC))
	require.True(t, m.quitting)
	require.IsType(t, tea.QuitMsg{}, cmd())
	require.Contains(t, m.View(), "Goodbye")
}

func TestWatchSignalsStateChanges(t *testing.T) {
	f := newFixture(t)

	// Drain anything left from setup
	select {
	case <-f.refresh:
	default:
	}

	f.center.Info("ping", "")
	require.Eventually(t, func() bool {
		select {
		case <-f.refresh:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)

	f.center.Info("pong", "")
	require.Equal(t, []tea.Msg{refreshMsg{}}, run(f.model.listen()))
}

func TestApprovalModal(t *testing.T) {
	testCases := []struct {
		name string
		key  tea.KeyMsg
		want bool
	}{
		{"approve", typed("y"), true},
		{"enter approves", ctrl(tea.KeyEnter), true},
		{"decline", typed("n"), false},
		{"escape declines", ctrl(tea.KeyEsc), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)
			f := newFixture(t)
			approver := NewApprover()
			f.model.approver = approver

			result := make(chan bool, 1)
			go func() {
				ok, err := approver.ApproveConnection(context.Background(), []common.Address{account})
				req.NoError(err)
				result <- ok
			}()

			msgs := run(f.model.awaitApproval())
			req.Len(msgs, 1)
			m, _ := update(f.model, msgs[0])
			req.NotNil(m.approval)
			req.Contains(m.View(), account.Hex())

			// Other keys leave the modal open
			m, _ = update(m, typed("x"))
			req.NotNil(m.approval)

			m, cmd := update(m, tc.key)
			req.Nil(m.approval)
			req.NotNil(cmd)
			req.Equal(tc.want, <-result)
		})
	}
}

func TestApprover_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := NewApprover().ApproveConnection(ctx, []common.Address{account})
	require.False(t, ok)
	require.ErrorIs(t, err, context.Canceled)
}
