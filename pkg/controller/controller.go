// Package controller maps user actions onto the wallet session and the
// protection gateway: it checks preconditions, delegates and reports the
// outcome through the notification center.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/amaitari/secret-messaging-app/pkg/notify"
	"github.com/amaitari/secret-messaging-app/pkg/protect"
	"github.com/amaitari/secret-messaging-app/pkg/wallet"
)

var (
	ErrMissingRecipient = errors.New("no recipient")
	ErrInvalidRecipient = errors.New("recipient is not an Ethereum address")
)

// Wallet is the session side the controller needs
type Wallet interface {
	Session() wallet.Session
	RequestConnection(ctx context.Context) error
}

// Gateway is the protection side the controller needs
type Gateway interface {
	Protect(ctx context.Context, plaintext string) (string, error)
	Unprotect(ctx context.Context, handle string) (string, error)
	Message() protect.Message
}

// Guards says which actions are currently enabled
type Guards struct {
	Connect bool
	Encrypt bool
	Decrypt bool
	Send    bool
}

type Controller struct {
	wallet   Wallet
	gateway  Gateway
	notifier notify.Notifier
	observer *ErrorObserver
	validate *validator.Validate
	log      *zap.Logger
}

func New(w Wallet, gw Gateway, notifier notify.Notifier, observer *ErrorObserver, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	if observer == nil {
		observer = NewErrorObserver(notifier, log)
		observer.Start()
	}
	return &Controller{
		wallet:   w,
		gateway:  gw,
		notifier: notifier,
		observer: observer,
		validate: validator.New(),
		log:      log.Named("controller"),
	}
}

// Guards evaluates the enablement rules for the current state
func (c *Controller) Guards(draft, recipient string) Guards {
	session := c.wallet.Session()
	connected := session.Connected()
	hasHandle := c.gateway.Message().HasHandle()

	return Guards{
		Connect: !connected,
		Encrypt: connected && strings.TrimSpace(draft) != "",
		Decrypt: connected && hasHandle,
		Send:    hasHandle && strings.TrimSpace(recipient) != "",
	}
}

// Connect asks the wallet for account access
func (c *Controller) Connect(ctx context.Context) error {
	return c.observer.Guard("connect", func() error {
		if c.wallet.Session().Connected() {
			return nil
		}
		// The session manager reports the outcome itself
		return c.wallet.RequestConnection(ctx)
	})
}

// Encrypt protects draft and stores the handle
func (c *Controller) Encrypt(ctx context.Context, draft string) error {
	return c.observer.Guard("encrypt", func() error {
		if strings.TrimSpace(draft) == "" {
			return c.rejected("encrypt", protect.ErrEmptyMessage)
		}
		if !c.wallet.Session().Connected() {
			return c.rejected("encrypt", protect.ErrWalletNotConnected)
		}

		if _, err := c.gateway.Protect(ctx, draft); err != nil {
			c.notifier.Notify("Encryption Failed",
				"An error occurred while encrypting your message: "+causeOf(err),
				notify.SeverityDestructive)
			return err
		}

		c.notifier.Notify("Message Encrypted",
			"Your message has been successfully encrypted.",
			notify.SeverityInfo)
		return nil
	})
}

// Decrypt reveals the message behind the current handle
func (c *Controller) Decrypt(ctx context.Context) error {
	return c.observer.Guard("decrypt", func() error {
		handle := c.gateway.Message().Handle
		if handle == "" {
			return c.rejected("decrypt", protect.ErrMissingHandle)
		}
		if !c.wallet.Session().Connected() {
			return c.rejected("decrypt", protect.ErrWalletNotConnected)
		}

		if _, err := c.gateway.Unprotect(ctx, handle); err != nil {
			c.notifier.Notify("Decryption Failed",
				"An error occurred while decrypting your message: "+causeOf(err),
				notify.SeverityDestructive)
			return err
		}

		c.notifier.Notify("Message Decrypted",
			"Your message has been successfully decrypted.",
			notify.SeverityInfo)
		return nil
	})
}

// Send hands the protected message to recipient. Delivery is not wired yet,
// so a valid request only confirms the message is ready.
func (c *Controller) Send(ctx context.Context, recipient string) error {
	return c.observer.Guard("send", func() error {
		handle := c.gateway.Message().Handle
		if handle == "" {
			return c.rejected("send", protect.ErrMissingHandle)
		}
		recipient = strings.TrimSpace(recipient)
		if recipient == "" {
			return c.rejected("send", ErrMissingRecipient)
		}
		if err := c.validate.Var(recipient, "eth_addr"); err != nil {
			return c.rejected("send", ErrInvalidRecipient)
		}

		c.log.Info("message ready to send", zap.String("handle", handle), zap.String("recipient", recipient))
		c.notifier.Notify("Message Ready",
			fmt.Sprintf("Protected message %s is ready for %s.", shorten(handle), shorten(recipient)),
			notify.SeverityInfo)
		return nil
	})
}

// rejected reports an unmet precondition without delegating
func (c *Controller) rejected(op string, reason error) error {
	title, description := preconditionNotice(reason)
	c.notifier.Notify(title, description, notify.SeverityDestructive)
	c.log.Debug("action rejected", zap.String("op", op), zap.Error(reason))
	return &protect.Error{Op: op, Kind: protect.ErrPreconditionFailed, Cause: reason}
}

func preconditionNotice(reason error) (string, string) {
	switch {
	case errors.Is(reason, protect.ErrEmptyMessage):
		return "Empty Message", "Type a message before encrypting."
	case errors.Is(reason, protect.ErrWalletNotConnected):
		return "Wallet Not Connected", "Connect your wallet first."
	case errors.Is(reason, protect.ErrMissingHandle):
		return "Nothing Encrypted", "Encrypt a message first."
	case errors.Is(reason, ErrMissingRecipient):
		return "Missing Recipient", "Enter the recipient address."
	case errors.Is(reason, ErrInvalidRecipient):
		return "Invalid Recipient", "The recipient must be a 0x-prefixed Ethereum address."
	default:
		return "Action Not Available", reason.Error()
	}
}

func causeOf(err error) string {
	var perr *protect.Error
	if errors.As(err, &perr) {
		return perr.CauseMessage()
	}
	return err.Error()
}

func shorten(s string) string {
	if len(s) <= 12 {
		return s
	}
	return s[:6] + "..." + s[len(s)-4:]
}
