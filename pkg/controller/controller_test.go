package controller

//go:generate mockgen -source=controller.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/amaitari/secret-messaging-app/pkg/controller/mocks"
	"github.com/amaitari/secret-messaging-app/pkg/notify"
	"github.com/amaitari/secret-messaging-app/pkg/protect"
	"github.com/amaitari/secret-messaging-app/pkg/wallet"
)

const recipient = "0x7777777777777777777777777777777777777777"

var (
	connected    = wallet.Session{ProviderAvailable: true, Accounts: []common.Address{common.HexToAddress("0x01")}}
	disconnected = wallet.Session{ProviderAvailable: true}
	withHandle   = protect.Message{Plaintext: "hi", Handle: "0xhandle", Phase: protect.PhaseProtected}
)

type ControllerSuite struct {
	suite.Suite
	ctx        context.Context
	ctrl       *gomock.Controller
	wallet     *mocks.MockWallet
	gateway    *mocks.MockGateway
	center     *notify.Center
	observer   *ErrorObserver
	controller *Controller
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.wallet = mocks.NewMockWallet(s.ctrl)
	s.gateway = mocks.NewMockGateway(s.ctrl)
	s.center = notify.NewCenter(notify.WithClock(clock.NewMock()), notify.WithLimit(50))
	s.observer = NewErrorObserver(s.center, zap.NewNop())
	s.observer.Start()
	s.controller = New(s.wallet, s.gateway, s.center, s.observer, zap.NewNop())
}

func (s *ControllerSuite) TearDownTest() {
	s.observer.Stop()
	s.center.Close()
	s.ctrl.Finish()
}

func (s *ControllerSuite) lastNotice() notify.Notification {
	list := s.center.List()
	s.Require().NotEmpty(list)
	return list[len(list)-1]
}

func (s *ControllerSuite) TestGuards() {
	testCases := []struct {
		name      string
		session   wallet.Session
		message   protect.Message
		draft     string
		recipient string
		want      Guards
	}{
		{"fresh start", disconnected, protect.Message{}, "", "", Guards{Connect: true}},
		{"draft without wallet", disconnected, protect.Message{}, "hello", "", Guards{Connect: true}},
		{"connected, blank draft", connected, protect.Message{}, "  ", "", Guards{}},
		{"connected with draft", connected, protect.Message{}, "hello", "", Guards{Encrypt: true}},
		{"handle present", connected, withHandle, "", "", Guards{Decrypt: true}},
		{"handle and recipient", connected, withHandle, "hello", recipient, Guards{Encrypt: true, Decrypt: true, Send: true}},
		{"handle, wallet gone", disconnected, withHandle, "", recipient, Guards{Connect: true, Send: true}},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.wallet.EXPECT().Session().Return(tc.session)
			s.gateway.EXPECT().Message().Return(tc.message)

			s.Equal(tc.want, s.controller.Guards(tc.draft, tc.recipient))
		})
	}
}

func (s *ControllerSuite) TestConnect() {
	s.Run("already connected", func() {
		s.wallet.EXPECT().Session().Return(connected)
		s.NoError(s.controller.Connect(s.ctx))
	})

	s.Run("delegates to the wallet", func() {
		s.wallet.EXPECT().Session().Return(disconnected)
		s.wallet.EXPECT().RequestConnection(gomock.Any()).Return(wallet.ErrProviderMissing)
		s.ErrorIs(s.controller.Connect(s.ctx), wallet.ErrProviderMissing)
	})
}

func (s *ControllerSuite) TestEncrypt() {
	s.Run("empty draft never reaches the gateway", func() {
		err := s.controller.Encrypt(s.ctx, "   ")
		s.ErrorIs(err, protect.ErrPreconditionFailed)
		s.ErrorIs(err, protect.ErrEmptyMessage)
		s.Equal(notify.SeverityDestructive, s.lastNotice().Severity)
	})

	s.Run("disconnected wallet never reaches the gateway", func() {
		s.wallet.EXPECT().Session().Return(disconnected)
		err := s.controller.Encrypt(s.ctx, "hello")
		s.ErrorIs(err, protect.ErrWalletNotConnected)
		s.Equal("Wallet Not Connected", s.lastNotice().Title)
	})

	s.Run("success", func() {
		s.wallet.EXPECT().Session().Return(connected)
		s.gateway.EXPECT().Protect(gomock.Any(), "hello").Return("0xhandle", nil)

		s.NoError(s.controller.Encrypt(s.ctx, "hello"))
		n := s.lastNotice()
		s.Equal("Message Encrypted", n.Title)
		s.Equal("Your message has been successfully encrypted.", n.Description)
		s.Equal(notify.SeverityInfo, n.Severity)
	})

	s.Run("failure carries the cause", func() {
		s.wallet.EXPECT().Session().Return(connected)
		s.gateway.EXPECT().Protect(gomock.Any(), "hello").Return("", &protect.Error{
			Op: "protect", Kind: protect.ErrProtectionFailed, Cause: errors.New("service unavailable"),
		})

		before := len(s.center.List())
		err := s.controller.Encrypt(s.ctx, "hello")
		s.ErrorIs(err, protect.ErrProtectionFailed)
		s.Len(s.center.List(), before+1)

		n := s.lastNotice()
		s.Equal("Encryption Failed", n.Title)
		s.Contains(n.Description, "service unavailable")
		s.Equal(notify.SeverityDestructive, n.Severity)
	})
}

func (s *ControllerSuite) TestDecrypt() {
	s.Run("no handle never reaches the gateway", func() {
		s.gateway.EXPECT().Message().Return(protect.Message{})
		s.ErrorIs(s.controller.Decrypt(s.ctx), protect.ErrMissingHandle)
	})

	s.Run("disconnected wallet never reaches the gateway", func() {
		s.gateway.EXPECT().Message().Return(withHandle)
		s.wallet.EXPECT().Session().Return(disconnected)
		s.ErrorIs(s.controller.Decrypt(s.ctx), protect.ErrWalletNotConnected)
	})

	s.Run("success", func() {
		s.gateway.EXPECT().Message().Return(withHandle)
		s.wallet.EXPECT().Session().Return(connected)
		s.gateway.EXPECT().Unprotect(gomock.Any(), "0xhandle").Return("hi", nil)

		s.NoError(s.controller.Decrypt(s.ctx))
		s.Equal("Message Decrypted", s.lastNotice().Title)
	})

	s.Run("failure", func() {
		s.gateway.EXPECT().Message().Return(withHandle)
		s.wallet.EXPECT().Session().Return(connected)
		s.gateway.EXPECT().Unprotect(gomock.Any(), "0xhandle").Return("", errors.New("denied"))

		s.Error(s.controller.Decrypt(s.ctx))
		s.Equal("Decryption Failed", s.lastNotice().Title)
		s.Contains(s.lastNotice().Description, "denied")
	})
}

func (s *ControllerSuite) TestSend() {
	testCases := []struct {
		name      string
		message   protect.Message
		recipient string
		wantErr   error
		title     string
	}{
		{"no handle", protect.Message{}, recipient, protect.ErrMissingHandle, "Nothing Encrypted"},
		{"no recipient", withHandle, " ", ErrMissingRecipient, "Missing Recipient"},
		{"bad recipient", withHandle, "vitalik.eth", ErrInvalidRecipient, "Invalid Recipient"},
		{"ready", withHandle, recipient, nil, "Message Ready"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.gateway.EXPECT().Message().Return(tc.message)

			err := s.controller.Send(s.ctx, tc.recipient)
			if tc.wantErr != nil {
				s.ErrorIs(err, tc.wantErr)
				s.ErrorIs(err, protect.ErrPreconditionFailed)
			} else {
				s.NoError(err)
			}
			s.Equal(tc.title, s.lastNotice().Title)
		})
	}
}

func (s *ControllerSuite) TestPanicBecomesUnexpectedError() {
	s.wallet.EXPECT().Session().Return(connected)
	s.gateway.EXPECT().Protect(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, string) (string, error) {
		panic("nil map write")
	})

	err := s.controller.Encrypt(s.ctx, "hello")
	s.ErrorIs(err, ErrUnexpectedRuntime)

	n := s.lastNotice()
	s.Equal("Unexpected Error", n.Title)
	s.Contains(n.Description, "nil map write")
	s.Equal(notify.SeverityDestructive, n.Severity)
}

func (s *ControllerSuite) TestDefaultObserverReportsPanics() {
	c := New(s.wallet, s.gateway, s.center, nil, nil)
	s.gateway.EXPECT().Message().DoAndReturn(func() protect.Message {
		panic("gateway gone")
	})

	err := c.Send(s.ctx, recipient)
	s.ErrorIs(err, ErrUnexpectedRuntime)

	n := s.lastNotice()
	s.Equal("Unexpected Error", n.Title)
	s.Contains(n.Description, "gateway gone")
	s.Equal(notify.SeverityDestructive, n.Severity)
}

func (s *ControllerSuite) TestObserver_StoppedOnlyLogs() {
	s.observer.Stop()
	before := len(s.center.List())

	s.observer.Report(errors.New("late failure"))
	s.observer.Report(nil)

	s.Len(s.center.List(), before)
}
