// Package config loads settings from SECRETMSG_* environment variables
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

const prefix = "secretmsg"

const (
	WalletRPC      = "rpc"
	WalletKeystore = "keystore"
	WalletNone     = "none"

	BackendRemote  = "remote"
	BackendSandbox = "sandbox"
)

// Config contains all configuration parameters for the application.
// Passphrases are never read from the environment; see ReadSecret.
type Config struct {
	WalletProvider string `envconfig:"WALLET_PROVIDER" default:"rpc" validate:"oneof=rpc keystore none"`
	WalletRPCURL   string `envconfig:"WALLET_RPC_URL" default:"ws://127.0.0.1:1248" validate:"required_if=WalletProvider rpc"`
	KeystoreDir    string `envconfig:"KEYSTORE_DIR" default:"keystore" validate:"required_if=WalletProvider keystore"`

	ProtectorBackend string        `envconfig:"PROTECTOR_BACKEND" default:"sandbox" validate:"oneof=remote sandbox"`
	ProtectorURL     string        `envconfig:"PROTECTOR_URL" validate:"required_if=ProtectorBackend remote,omitempty,url"`
	ProtectorTimeout time.Duration `envconfig:"PROTECTOR_TIMEOUT" default:"0s" validate:"gte=0"`
	SandboxPath      string        `envconfig:"SANDBOX_PATH" default:"sandbox-data" validate:"required_if=ProtectorBackend sandbox"`

	NotificationTTL   time.Duration `envconfig:"NOTIFICATION_TTL" default:"3s" validate:"gt=0"`
	NotificationLimit int           `envconfig:"NOTIFICATION_LIMIT" default:"5" validate:"min=1"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFile  string `envconfig:"LOG_FILE" default:"secret-messaging.log" validate:"required"`
}

var validate = validator.New()

// Load reads and validates the configuration
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ReadSecret prompts on stderr and reads a line from stdin without echo.
// The caller must zero the returned slice.
func ReadSecret(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("stdin is not a terminal: run the app interactively to enter the passphrase")
	}

	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("passphrase cannot be empty")
	}
	return raw, nil
}
