package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/amaitari/secret-messaging-app/pkg/notify"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Manager owns the single wallet session of the process
type Manager struct {
	mu        sync.RWMutex
	provider  Provider
	notifier  notify.Notifier
	log       *zap.Logger
	session   Session
	listeners map[int]func(Session)
	nextID    int
	watch     Subscription
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewManager creates a session manager. A nil provider means none is installed.
func NewManager(provider Provider, notifier notify.Notifier, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		provider:  provider,
		notifier:  notifier,
		log:       log.Named("wallet"),
		listeners: make(map[int]func(Session)),
	}
}

// Init runs the startup sequence: detection, silent authorization lookup and,
// when supported, account change watching.
func (m *Manager) Init(ctx context.Context) {
	if !m.DetectProvider(ctx) {
		return
	}
	// Failure is already reported
	_ = m.QueryExistingAuthorization(ctx)

	if watcher, ok := m.provider.(AccountWatcher); ok {
		if err := m.startWatch(ctx, watcher); err != nil {
			m.log.Info("account changes not available", zap.Error(err))
		}
	}
}

// DetectProvider checks for an injected wallet and records the result
func (m *Manager) DetectProvider(ctx context.Context) bool {
	available := false
	if m.provider != nil {
		if err := m.provider.Detect(ctx); err != nil {
			m.log.Info("wallet provider not detected", zap.Error(err))
		} else {
			available = true
		}
	}

	m.update(func(s *Session) {
		s.ProviderAvailable = available
		if !available {
			s.Accounts = nil
		}
	})

	if !available {
		m.notifier.Notify("No Wallet Found",
			"Wallet actions are disabled until a wallet provider is available.",
			notify.SeverityInfo)
	}
	return available
}

// QueryExistingAuthorization loads accounts the user already approved without prompting
func (m *Manager) QueryExistingAuthorization(ctx context.Context) error {
	if !m.Session().ProviderAvailable {
		return nil
	}

	accounts, err := m.provider.Accounts(ctx)
	if err != nil {
		m.log.Warn("failed to query authorized accounts", zap.Error(err))
		m.notifier.Notify("Wallet Error",
			fmt.Sprintf("Could not check existing wallet connection: %v", err),
			notify.SeverityDestructive)
		return fmt.Errorf("query authorized accounts: %w", err)
	}

	if len(accounts) > 0 {
		m.setAccounts(accounts)
		m.log.Info("restored wallet session", zap.Int("accounts", len(accounts)))
	}
	return nil
}

// RequestConnection asks the provider for account access. This may prompt the user.
func (m *Manager) RequestConnection(ctx context.Context) error {
	if !m.Session().ProviderAvailable {
		m.notifier.Notify("Wallet Not Detected",
			"Please install or start an Ethereum wallet provider (MetaMask, Frame, ...) to use this app.",
			notify.SeverityDestructive)
		return ErrProviderMissing
	}

	accounts, err := m.provider.RequestAccounts(ctx)
	if err != nil {
		m.log.Warn("account request failed", zap.Error(err))
		description := fmt.Sprintf("An error occurred while connecting your wallet: %v", err)
		if errors.Is(err, ErrUserRejected) {
			description = "The connection request was rejected in the wallet."
		}
		m.notifier.Notify("Connection Failed", description, notify.SeverityDestructive)
		return fmt.Errorf("request accounts: %w", err)
	}

	if len(accounts) == 0 {
		m.notifier.Notify("Connection Failed",
			"The wallet did not authorize any account.",
			notify.SeverityDestructive)
		return ErrNoAccountsGranted
	}

	m.setAccounts(accounts)
	primary, _ := m.Session().Primary()
	m.log.Info("wallet connected", zap.String("account", primary.Hex()))
	m.notifier.Notify("Wallet Connected",
		fmt.Sprintf("Connected with %s.", FormatAddress(primary)),
		notify.SeverityInfo)
	return nil
}

// HandleAccountsChanged applies an account change pushed by the provider
func (m *Manager) HandleAccountsChanged(accounts []common.Address) {
	wasConnected := m.setAccounts(accounts)

	switch {
	case len(accounts) == 0 && wasConnected:
		m.notifier.Notify("Wallet Disconnected",
			"The wallet no longer authorizes any account.",
			notify.SeverityInfo)
	case len(accounts) > 0:
		m.notifier.Notify("Account Changed",
			fmt.Sprintf("Now using %s.", FormatAddress(accounts[0])),
			notify.SeverityInfo)
	}
}

// Session returns a copy of the current session
func (m *Manager) Session() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.clone()
}

// Subscribe registers fn to receive the session after every change
func (m *Manager) Subscribe(fn func(Session)) func() {
	m.mu.Lock()
	key := m.nextID
	m.nextID++
	m.listeners[key] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, key)
		m.mu.Unlock()
	}
}

// Close stops watching account changes
func (m *Manager) Close() {
	m.mu.Lock()
	cancel, done, watch := m.cancel, m.done, m.watch
	m.cancel, m.watch = nil, nil
	m.mu.Unlock()

	if watch != nil {
		watch.Unsubscribe()
	}
	if cancel != nil {
		cancel()
		<-done
	}
}

func (m *Manager) startWatch(ctx context.Context, watcher AccountWatcher) error {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan []common.Address, 4)
	sub, err := watcher.WatchAccounts(ctx, ch)
	if err != nil {
		cancel()
		return err
	}

	done := make(chan struct{})
	m.mu.Lock()
	m.watch, m.cancel, m.done = sub, cancel, done
	m.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case accounts := <-ch:
				m.HandleAccountsChanged(accounts)
			case err, ok := <-sub.Err():
				if ok && err != nil {
					m.log.Warn("account watch ended", zap.Error(err))
					m.notifier.Notify("Wallet Error",
						fmt.Sprintf("Account changes are no longer tracked: %v", err),
						notify.SeverityDestructive)
				}
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// setAccounts reports whether the session was connected before the change
func (m *Manager) setAccounts(accounts []common.Address) bool {
	unique := lo.Uniq(accounts)
	var wasConnected bool
	m.update(func(s *Session) {
		wasConnected = s.Connected()
		s.Accounts = unique
	})
	return wasConnected
}

func (m *Manager) update(apply func(*Session)) {
	m.mu.Lock()
	apply(&m.session)
	snapshot := m.session.clone()
	listeners := lo.Values(m.listeners)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

// FormatAddress shortens an address for display
func FormatAddress(addr common.Address) string {
	hex := addr.Hex()
	return hex[:6] + "..." + hex[len(hex)-4:]
}
