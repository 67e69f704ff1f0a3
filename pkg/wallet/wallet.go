package wallet

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrProviderMissing   = errors.New("wallet provider not detected")
	ErrNoAccountsGranted = errors.New("no accounts granted")
	ErrUserRejected      = errors.New("user rejected the request")
)

// Provider is the wallet capability the session manager consumes.
// Accounts must never prompt the user; RequestAccounts may.
type Provider interface {
	Detect(ctx context.Context) error
	Accounts(ctx context.Context) ([]common.Address, error)
	RequestAccounts(ctx context.Context) ([]common.Address, error)
}

// Subscription is an active account watch
type Subscription interface {
	Unsubscribe()
	Err() <-chan error
}

// AccountWatcher is implemented by providers that push account changes
type AccountWatcher interface {
	WatchAccounts(ctx context.Context, ch chan<- []common.Address) (Subscription, error)
}

// Session is the wallet connection state
type Session struct {
	ProviderAvailable bool
	Accounts          []common.Address
}

// Connected reports whether at least one account is authorized
func (s Session) Connected() bool {
	return len(s.Accounts) > 0
}

// Primary returns the first authorized account
func (s Session) Primary() (common.Address, bool) {
	if len(s.Accounts) == 0 {
		return common.Address{}, false
	}
	return s.Accounts[0], true
}

func (s Session) clone() Session {
	out := Session{ProviderAvailable: s.ProviderAvailable}
	if len(s.Accounts) > 0 {
		out.Accounts = make([]common.Address, len(s.Accounts))
		copy(out.Accounts, s.Accounts)
	}
	return out
}
