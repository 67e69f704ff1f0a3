// Package rpcwallet talks to an external wallet over Ethereum JSON-RPC
// (eth_accounts, eth_requestAccounts, eth_subscribe accountsChanged).
package rpcwallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/amaitari/secret-messaging-app/pkg/wallet"
)

// codeUserRejected is the EIP-1193 error code for a request the user declined
const codeUserRejected = 4001

// Provider is a wallet.Provider backed by a JSON-RPC endpoint
type Provider struct {
	url    string
	log    *zap.Logger
	mu     sync.Mutex
	client *rpc.Client
}

var (
	_ wallet.Provider       = (*Provider)(nil)
	_ wallet.AccountWatcher = (*Provider)(nil)
)

// New returns a provider that dials url lazily on Detect
func New(url string, log *zap.Logger) *Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{url: url, log: log.Named("rpcwallet")}
}

// NewWithClient wraps an already connected client
func NewWithClient(client *rpc.Client, log *zap.Logger) *Provider {
	p := New("", log)
	p.client = client
	return p
}

// Detect connects to the endpoint and checks that it answers eth_chainId
func (p *Provider) Detect(ctx context.Context) error {
	if _, err := p.conn(ctx); err != nil {
		return err
	}
	chainID, err := p.ChainID(ctx)
	if err != nil {
		return err
	}
	p.log.Info("wallet endpoint detected", zap.String("url", p.url), zap.Stringer("chain_id", chainID))
	return nil
}

// ChainID returns the chain the wallet is on
func (p *Provider) ChainID(ctx context.Context) (*big.Int, error) {
	var result hexutil.Big
	if err := p.call(ctx, &result, "eth_chainId"); err != nil {
		return nil, err
	}
	return (*big.Int)(&result), nil
}

// Accounts returns the accounts already exposed to this client
func (p *Provider) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := p.call(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

// RequestAccounts asks the wallet to expose accounts, which may prompt its user
func (p *Provider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := p.call(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

// WatchAccounts subscribes to accountsChanged. HTTP endpoints return rpc.ErrNotificationsUnsupported.
func (p *Provider) WatchAccounts(ctx context.Context, ch chan<- []common.Address) (wallet.Subscription, error) {
	client, err := p.conn(ctx)
	if err != nil {
		return nil, err
	}
	sub, err := client.EthSubscribe(ctx, ch, "accountsChanged")
	if err != nil {
		return nil, fmt.Errorf("subscribe accountsChanged: %w", err)
	}
	return sub, nil
}

// Close shuts the connection down
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
}

func (p *Provider) conn(ctx context.Context) (*rpc.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}
	if p.url == "" {
		return nil, wallet.ErrProviderMissing
	}
	client, err := rpc.DialContext(ctx, p.url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", p.url, errors.Join(wallet.ErrProviderMissing, err))
	}
	p.client = client
	return client, nil
}

func (p *Provider) call(ctx context.Context, result any, method string, args ...any) error {
	client, err := p.conn(ctx)
	if err != nil {
		return err
	}
	if err := client.CallContext(ctx, result, method, args...); err != nil {
		return fmt.Errorf("%s: %w", method, translate(err))
	}
	return nil
}

// translate maps wallet JSON-RPC errors onto wallet sentinels
func translate(err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == codeUserRejected {
		return errors.Join(wallet.ErrUserRejected, err)
	}
	return err
}
