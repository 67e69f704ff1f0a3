package tui

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/amaitari/secret-messaging-app/pkg/wallet/keystore"
)

type approvalRequest struct {
	accounts []common.Address
	reply    chan bool
}

// Approver asks the user, through a modal, whether to grant keystore
// accounts to the application
type Approver struct {
	requests chan approvalRequest
}

var _ keystore.Approver = (*Approver)(nil)

func NewApprover() *Approver {
	return &Approver{requests: make(chan approvalRequest)}
}

// ApproveConnection blocks until the user answers or ctx ends
func (a *Approver) ApproveConnection(ctx context.Context, accounts []common.Address) (bool, error) {
	req := approvalRequest{accounts: accounts, reply: make(chan bool, 1)}

	select {
	case a.requests <- req:
	case <-ctx.Done():
		return false, ctx.Err()
	}

	select {
	case ok := <-req.reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
