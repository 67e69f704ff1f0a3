package protect

import (
	"context"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/amaitari/secret-messaging-app/pkg/wallet"
)

// SessionSource exposes the current wallet session
type SessionSource interface {
	Session() wallet.Session
}

// Gateway wraps a Protector and owns the message state.
// Calls may overlap; the last call to resolve decides the stored handle.
type Gateway struct {
	protector Protector
	sessions  SessionSource
	log       *zap.Logger

	mu        sync.Mutex
	msg       Message
	inFlight  int
	listeners map[int]func(Message)
	nextID    int
}

// NewGateway creates a gateway in PhaseEmpty
func NewGateway(protector Protector, sessions SessionSource, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		protector: protector,
		sessions:  sessions,
		log:       log.Named("protect"),
		listeners: make(map[int]func(Message)),
	}
}

// Protect submits plaintext and stores the returned handle
func (g *Gateway) Protect(ctx context.Context, plaintext string) (string, error) {
	const op = "protect"

	if strings.TrimSpace(plaintext) == "" {
		return "", precondition(op, ErrEmptyMessage)
	}
	owner, ok := g.sessions.Session().Primary()
	if !ok {
		return "", precondition(op, ErrWalletNotConnected)
	}

	g.mutate(func(m *Message) {
		m.Plaintext = plaintext
		m.Phase = PhaseProtecting
	}, 1)

	handle, err := g.protector.Protect(ctx, ProtectRequest{
		Payload:  Payload{PayloadField: plaintext},
		Metadata: Metadata{Name: DatasetName, Owner: owner},
	})
	if err == nil && handle == "" {
		err = errEmptyHandle
	}

	if err != nil {
		g.log.Warn("protect failed", zap.Error(err))
		g.mutate(func(m *Message) {
			m.Handle = ""
			m.Revealed = ""
			m.Phase = PhaseEmpty
		}, -1)
		return "", &Error{Op: op, Kind: ErrProtectionFailed, Cause: err}
	}

	g.log.Info("message protected", zap.String("handle", handle))
	g.mutate(func(m *Message) {
		m.Plaintext = plaintext
		m.Handle = handle
		m.Revealed = ""
		m.Phase = PhaseProtected
	}, -1)
	return handle, nil
}

// Unprotect reveals the plaintext behind handle
func (g *Gateway) Unprotect(ctx context.Context, handle string) (string, error) {
	const op = "unprotect"

	if handle == "" {
		return "", precondition(op, ErrMissingHandle)
	}
	requester, ok := g.sessions.Session().Primary()
	if !ok {
		return "", precondition(op, ErrWalletNotConnected)
	}

	g.mutate(func(m *Message) {
		if m.Handle == handle {
			m.Phase = PhaseUnprotecting
		}
	}, 1)

	values, err := g.protector.Unprotect(ctx, UnprotectRequest{
		Handle:    handle,
		Schema:    MessageSchema(),
		Requester: requester,
	})
	if err == nil && (len(values) == 0 || values[0] == "") {
		err = errNothingRevealed
	}

	if err != nil {
		g.log.Warn("unprotect failed", zap.String("handle", handle), zap.Error(err))
		g.mutate(func(m *Message) {
			if m.Handle == handle && m.Phase == PhaseUnprotecting {
				m.Phase = PhaseProtected
			}
		}, -1)
		return "", &Error{Op: op, Kind: ErrRetrievalFailed, Cause: err}
	}

	revealed := values[0]
	g.mutate(func(m *Message) {
		if m.Handle != handle {
			g.log.Info("discarding reveal of a replaced handle", zap.String("handle", handle))
			return
		}
		m.Revealed = revealed
		m.Phase = PhaseRevealed
	}, -1)
	return revealed, nil
}

// Message returns a copy of the current message state
func (g *Gateway) Message() Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.msg
}

// InFlight is the number of unresolved protector calls
func (g *Gateway) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight
}

// Subscribe registers fn to receive the message after every change
func (g *Gateway) Subscribe(fn func(Message)) func() {
	g.mu.Lock()
	key := g.nextID
	g.nextID++
	g.listeners[key] = fn
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.listeners, key)
		g.mu.Unlock()
	}
}

func (g *Gateway) mutate(apply func(*Message), delta int) {
	g.mu.Lock()
	apply(&g.msg)
	g.inFlight += delta
	snapshot := g.msg
	listeners := lo.Values(g.listeners)
	g.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

func precondition(op string, reason error) error {
	return &Error{Op: op, Kind: ErrPreconditionFailed, Cause: reason}
}
