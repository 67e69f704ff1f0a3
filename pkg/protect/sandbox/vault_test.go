package sandbox

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/amaitari/secret-messaging-app/pkg/protect"
	"github.com/amaitari/secret-messaging-app/pkg/quantum"
	"github.com/amaitari/secret-messaging-app/pkg/wallet"
)

var (
	fastKDF = quantum.KDFParams{Memory: 1024, Iterations: 1, Parallelism: 1, KeyLen: quantum.AESKeySize}
	owner   = common.HexToAddress("0x4444444444444444444444444444444444444444")
	mallory = common.HexToAddress("0x5555555555555555555555555555555555555555")
)

func newVault(t *testing.T) *Vault {
	t.Helper()
	v, err := OpenInMemory([]byte("passphrase"), WithKDF(fastKDF))
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })
	return v
}

func protectMessage(t *testing.T, v *Vault, text string) string {
	t.Helper()
	handle, err := v.Protect(context.Background(), protect.ProtectRequest{
		Payload:  protect.Payload{protect.PayloadField: text},
		Metadata: protect.Metadata{Name: protect.DatasetName, Owner: owner},
	})
	require.NoError(t, err)
	return handle
}

func TestVault_RoundTrip(t *testing.T) {
	req := require.New(t)
	v := newVault(t)

	handle := protectMessage(t, v, "meet at noon")
	req.True(common.IsHexAddress(handle))

	values, err := v.Unprotect(context.Background(), protect.UnprotectRequest{
		Handle:    handle,
		Schema:    protect.MessageSchema(),
		Requester: owner,
	})
	req.NoError(err)
	req.Equal([]string{"meet at noon"}, values)
}

func TestVault_HandlesAreUnique(t *testing.T) {
	v := newVault(t)
	a := protectMessage(t, v, "same")
	b := protectMessage(t, v, "same")
	require.NotEqual(t, a, b)
}

func TestVault_Unprotect_Errors(t *testing.T) {
	v := newVault(t)
	handle := protectMessage(t, v, "secret")
	ctx := context.Background()

	testCases := []struct {
		name    string
		req     protect.UnprotectRequest
		wantErr error
	}{
		{
			name:    "unknown handle",
			req:     protect.UnprotectRequest{Handle: "0xdeadbeef", Schema: protect.MessageSchema(), Requester: owner},
			wantErr: ErrNotFound,
		},
		{
			name:    "not the owner",
			req:     protect.UnprotectRequest{Handle: handle, Schema: protect.MessageSchema(), Requester: mallory},
			wantErr: ErrAccessDenied,
		},
		{
			name:    "schema mismatch",
			req:     protect.UnprotectRequest{Handle: handle, Schema: protect.Schema{"email": "string"}, Requester: owner},
			wantErr: protect.ErrSchemaMismatch,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Unprotect(ctx, tc.req)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestVault_Protect_EmptyPayload(t *testing.T) {
	v := newVault(t)
	_, err := v.Protect(context.Background(), protect.ProtectRequest{})
	require.ErrorIs(t, err, ErrEmptyPayload)
}

func TestVault_CanceledContext(t *testing.T) {
	v := newVault(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := v.Protect(ctx, protect.ProtectRequest{Payload: protect.Payload{"message": "x"}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestVault_ReopenWithPassphrase(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()

	v, err := Open(dir, []byte("right"), WithKDF(fastKDF))
	req.NoError(err)
	handle := protectMessage(t, v, "persisted")
	req.NoError(v.Close())

	_, err = Open(dir, []byte("wrong"), WithKDF(fastKDF))
	req.ErrorIs(err, ErrWrongPassphrase)

	v, err = Open(dir, []byte("right"), WithKDF(fastKDF))
	req.NoError(err)
	defer v.Close()

	values, err := v.Unprotect(context.Background(), protect.UnprotectRequest{
		Handle:    handle,
		Schema:    protect.MessageSchema(),
		Requester: owner,
	})
	req.NoError(err)
	req.Equal([]string{"persisted"}, values)
}

func TestVault_WithGateway(t *testing.T) {
	req := require.New(t)
	v := newVault(t)
	ctx := context.Background()

	gw := protect.NewGateway(v, fixedSession{owner}, nil)
	handle, err := gw.Protect(ctx, "through the gateway")
	req.NoError(err)

	revealed, err := gw.Unprotect(ctx, handle)
	req.NoError(err)
	req.Equal("through the gateway", revealed)
	req.Equal(protect.PhaseRevealed, gw.Message().Phase)
}

type fixedSession struct {
	account common.Address
}

func (f fixedSession) Session() wallet.Session {
	return wallet.Session{ProviderAvailable: true, Accounts: []common.Address{f.account}}
}
