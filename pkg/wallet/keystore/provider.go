// Package keystore serves accounts from a local go-ethereum keystore directory.
// Access is granted per session through an Approver.
package keystore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	gethks "github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/amaitari/secret-messaging-app/pkg/wallet"
)

var ErrEmptyKeystore = errors.New("keystore has no accounts")

// Approver decides whether the listed accounts may be exposed to the app
type Approver interface {
	ApproveConnection(ctx context.Context, accounts []common.Address) (bool, error)
}

// ApproverFunc adapts a function to Approver
type ApproverFunc func(ctx context.Context, accounts []common.Address) (bool, error)

func (f ApproverFunc) ApproveConnection(ctx context.Context, accounts []common.Address) (bool, error) {
	return f(ctx, accounts)
}

type Option func(*options)

type options struct {
	scryptN, scryptP int
	log              *zap.Logger
}

// WithLightScrypt uses cheap key derivation parameters (tests, demos)
func WithLightScrypt() Option {
	return func(o *options) {
		o.scryptN, o.scryptP = gethks.LightScryptN, gethks.LightScryptP
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// Provider is a wallet.Provider over a keystore directory
type Provider struct {
	ks       *gethks.KeyStore
	approver Approver
	log      *zap.Logger

	mu       sync.RWMutex
	approved []common.Address
}

var _ wallet.Provider = (*Provider)(nil)

// New opens dir. A nil approver grants every request.
func New(dir string, approver Approver, opts ...Option) *Provider {
	o := options{
		scryptN: gethks.StandardScryptN,
		scryptP: gethks.StandardScryptP,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Provider{
		ks:       gethks.NewKeyStore(dir, o.scryptN, o.scryptP),
		approver: approver,
		log:      o.log.Named("keystore"),
	}
}

// Detect reports ErrEmptyKeystore until at least one key exists
func (p *Provider) Detect(ctx context.Context) error {
	if len(p.ks.Accounts()) == 0 {
		return fmt.Errorf("%w: %w", wallet.ErrProviderMissing, ErrEmptyKeystore)
	}
	return nil
}

// Accounts returns the accounts approved during this session
func (p *Provider) Accounts(ctx context.Context) ([]common.Address, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]common.Address(nil), p.approved...), nil
}

// RequestAccounts asks the approver to expose every keystore account
func (p *Provider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	available := lo.Map(p.ks.Accounts(), func(a accounts.Account, _ int) common.Address {
		return a.Address
	})
	if len(available) == 0 {
		return nil, nil
	}

	if p.approver != nil {
		ok, err := p.approver.ApproveConnection(ctx, available)
		if err != nil {
			return nil, fmt.Errorf("approval: %w", err)
		}
		if !ok {
			p.log.Info("connection declined", zap.Int("accounts", len(available)))
			return nil, wallet.ErrUserRejected
		}
	}

	p.mu.Lock()
	p.approved = available
	p.mu.Unlock()
	return available, nil
}

// NewAccount creates a key encrypted with passphrase
func (p *Provider) NewAccount(passphrase string) (common.Address, error) {
	account, err := p.ks.NewAccount(passphrase)
	if err != nil {
		return common.Address{}, fmt.Errorf("create account: %w", err)
	}
	p.log.Info("account created", zap.String("address", account.Address.Hex()))
	return account.Address, nil
}
