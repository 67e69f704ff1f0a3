package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/amaitari/secret-messaging-app/pkg/config"
	"github.com/amaitari/secret-messaging-app/pkg/controller"
	"github.com/amaitari/secret-messaging-app/pkg/logging"
	"github.com/amaitari/secret-messaging-app/pkg/notify"
	"github.com/amaitari/secret-messaging-app/pkg/protect"
	"github.com/amaitari/secret-messaging-app/pkg/protect/remote"
	"github.com/amaitari/secret-messaging-app/pkg/protect/sandbox"
	"github.com/amaitari/secret-messaging-app/pkg/quantum"
	"github.com/amaitari/secret-messaging-app/pkg/tui"
	"github.com/amaitari/secret-messaging-app/pkg/wallet"
	"github.com/amaitari/secret-messaging-app/pkg/wallet/keystore"
	"github.com/amaitari/secret-messaging-app/pkg/wallet/rpcwallet"
)

func main() {
	newAccount := flag.Bool("new-account", false, "create a keystore account and exit")
	flag.Parse()

	if err := run(*newAccount); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(newAccount bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if newAccount {
		return createAccount(cfg, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	center := notify.NewCenter(
		notify.WithTTL(cfg.NotificationTTL),
		notify.WithLimit(cfg.NotificationLimit),
		notify.WithLogger(log),
	)
	defer center.Close()

	approver := tui.NewApprover()
	provider, closeProvider := newProvider(cfg, approver, log)
	defer closeProvider()

	protector, closeProtector, err := newProtector(cfg, log)
	if err != nil {
		return err
	}
	defer closeProtector()

	manager := wallet.NewManager(provider, center, log)
	defer manager.Close()

	gateway := protect.NewGateway(protector, manager, log)

	observer := controller.NewErrorObserver(center, log)
	observer.Start()
	defer observer.Stop()

	log.Info("starting",
		zap.String("wallet", cfg.WalletProvider),
		zap.String("protector", cfg.ProtectorBackend),
	)

	deps := tui.Deps{
		Actions:  controller.New(manager, gateway, center, observer, log),
		Tray:     center,
		Sessions: manager,
		Messages: gateway,
		Log:      log,
	}
	if cfg.WalletProvider == config.WalletKeystore {
		deps.Approver = approver
	}

	return tui.Run(ctx, deps)
}

// newProvider returns a nil provider for WalletNone; the manager then
// reports the wallet as absent.
func newProvider(cfg config.Config, approver *tui.Approver, log *zap.Logger) (wallet.Provider, func()) {
	switch cfg.WalletProvider {
	case config.WalletRPC:
		p := rpcwallet.New(cfg.WalletRPCURL, log)
		return p, p.Close
	case config.WalletKeystore:
		return keystore.New(cfg.KeystoreDir, approver, keystore.WithLogger(log)), func() {}
	default:
		return nil, func() {}
	}
}

func newProtector(cfg config.Config, log *zap.Logger) (protect.Protector, func(), error) {
	if cfg.ProtectorBackend == config.BackendRemote {
		return remote.NewClient(cfg.ProtectorURL, cfg.ProtectorTimeout, log), func() {}, nil
	}

	passphrase, err := config.ReadSecret("🔐 Sandbox passphrase: ")
	if err != nil {
		return nil, nil, err
	}
	defer quantum.SecureZero(passphrase)

	vault, err := sandbox.Open(cfg.SandboxPath, passphrase, sandbox.WithLogger(log))
	if errors.Is(err, sandbox.ErrWrongPassphrase) {
		return nil, nil, fmt.Errorf("cannot unlock %s: %w", cfg.SandboxPath, err)
	}
	if err != nil {
		return nil, nil, err
	}
	return vault, func() {
		if err := vault.Close(); err != nil {
			log.Warn("close sandbox", zap.Error(err))
		}
	}, nil
}

func createAccount(cfg config.Config, log *zap.Logger) error {
	passphrase, err := config.ReadSecret("🔑 New account passphrase: ")
	if err != nil {
		return err
	}
	defer quantum.SecureZero(passphrase)

	confirm, err := config.ReadSecret("🔑 Repeat passphrase: ")
	if err != nil {
		return err
	}
	defer quantum.SecureZero(confirm)

	if !quantum.SecureCompare(passphrase, confirm) {
		return errors.New("passphrases do not match")
	}

	addr, err := keystore.New(cfg.KeystoreDir, nil, keystore.WithLogger(log)).NewAccount(string(passphrase))
	if err != nil {
		return err
	}
	fmt.Printf("Created %s in %s\n", addr.Hex(), cfg.KeystoreDir)
	return nil
}
