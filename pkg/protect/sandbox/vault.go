// Package sandbox is a local protection service. Each protected payload is
// sealed with ML-KEM-1024 + AES-256-GCM and kept in badger; the ML-KEM private
// key is itself wrapped with an Argon2id key derived from a passphrase.
package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/amaitari/secret-messaging-app/pkg/logging"
	"github.com/amaitari/secret-messaging-app/pkg/protect"
	"github.com/amaitari/secret-messaging-app/pkg/quantum"
)

const (
	keyringKey   = "meta:keyring"
	recordPrefix = "pd:"
	algorithm    = "mlkem1024-aes256gcm"
)

var (
	ErrWrongPassphrase = errors.New("wrong passphrase")
	ErrNotFound        = errors.New("protected data not found")
	ErrAccessDenied    = errors.New("access denied")
	ErrEmptyPayload    = errors.New("empty payload")
)

// keyring is the stored key material
type keyring struct {
	Algorithm      string            `json:"algorithm"`
	KDF            quantum.KDFParams `json:"kdf"`
	Salt           []byte            `json:"salt"`
	Public         []byte            `json:"public"`
	WrappedPrivate []byte            `json:"wrapped_private"`
	CreatedAt      time.Time         `json:"created_at"`
}

// record is one protected artifact
type record struct {
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	Sealed    []byte    `json:"sealed"`
	CreatedAt time.Time `json:"created_at"`
}

type Option func(*options)

type options struct {
	kdf quantum.KDFParams
	log *zap.Logger
}

// WithKDF overrides the Argon2id parameters used when a new keyring is created
func WithKDF(params quantum.KDFParams) Option {
	return func(o *options) {
		o.kdf = params
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// Vault implements protect.Protector on a local badger store
type Vault struct {
	db   *badger.DB
	keys quantum.KeyPair
	log  *zap.Logger
}

var _ protect.Protector = (*Vault)(nil)

// Open opens or creates a vault in dir
func Open(dir string, passphrase []byte, opts ...Option) (*Vault, error) {
	o := buildOptions(opts)
	return open(badger.DefaultOptions(dir).WithLogger(logging.Badger(o.log)), passphrase, o)
}

// OpenInMemory creates a throwaway vault
func OpenInMemory(passphrase []byte, opts ...Option) (*Vault, error) {
	o := buildOptions(opts)
	return open(badger.DefaultOptions("").WithInMemory(true).WithLogger(logging.Badger(o.log)), passphrase, o)
}

func buildOptions(opts []Option) options {
	o := options{kdf: quantum.DefaultKDF, log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	o.log = o.log.Named("sandbox")
	return o
}

func open(bopts badger.Options, passphrase []byte, o options) (*Vault, error) {
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	v := &Vault{db: db, log: o.log}
	if err := v.unlock(passphrase, o.kdf); err != nil {
		_ = db.Close()
		return nil, err
	}
	return v, nil
}

// unlock loads the keyring, creating it on first use
func (v *Vault) unlock(passphrase []byte, kdf quantum.KDFParams) error {
	return v.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyringKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			ring, keys, err := newKeyring(passphrase, kdf)
			if err != nil {
				return err
			}
			data, err := json.Marshal(ring)
			if err != nil {
				return fmt.Errorf("marshal keyring: %w", err)
			}
			v.keys = keys
			v.log.Info("keyring created")
			return txn.Set([]byte(keyringKey), data)
		}
		if err != nil {
			return fmt.Errorf("read keyring: %w", err)
		}

		var ring keyring
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &ring)
		}); err != nil {
			return fmt.Errorf("decode keyring: %w", err)
		}

		keys, err := ring.unwrap(passphrase)
		if err != nil {
			return err
		}
		v.keys = keys
		return nil
	})
}

func newKeyring(passphrase []byte, kdf quantum.KDFParams) (keyring, quantum.KeyPair, error) {
	salt, err := quantum.NewSalt()
	if err != nil {
		return keyring{}, quantum.KeyPair{}, err
	}
	keys, err := quantum.GenerateKeyPair()
	if err != nil {
		return keyring{}, quantum.KeyPair{}, err
	}

	kek := quantum.DeriveKey(passphrase, salt, kdf)
	defer quantum.SecureZero(kek)

	wrapped, err := quantum.SealWithKey(keys.Private, kek)
	if err != nil {
		return keyring{}, quantum.KeyPair{}, fmt.Errorf("wrap private key: %w", err)
	}

	return keyring{
		Algorithm:      algorithm,
		KDF:            kdf,
		Salt:           salt[:],
		Public:         keys.Public,
		WrappedPrivate: wrapped,
		CreatedAt:      time.Now().UTC(),
	}, keys, nil
}

func (r keyring) unwrap(passphrase []byte) (quantum.KeyPair, error) {
	if r.Algorithm != algorithm {
		return quantum.KeyPair{}, fmt.Errorf("unsupported keyring algorithm %q", r.Algorithm)
	}

	var salt quantum.Salt
	copy(salt[:], r.Salt)
	kek := quantum.DeriveKey(passphrase, salt, r.KDF)
	defer quantum.SecureZero(kek)

	private, err := quantum.OpenWithKey(r.WrappedPrivate, kek)
	if err != nil {
		return quantum.KeyPair{}, fmt.Errorf("%w: %w", ErrWrongPassphrase, err)
	}

	public, err := quantum.PublicFromPrivate(private)
	if err != nil || !quantum.SecureCompare(public, r.Public) {
		quantum.SecureZero(private)
		return quantum.KeyPair{}, fmt.Errorf("%w: key mismatch", ErrWrongPassphrase)
	}
	return quantum.KeyPair{Public: r.Public, Private: private}, nil
}

// Protect seals the payload and returns a fresh address-shaped handle
func (v *Vault) Protect(ctx context.Context, req protect.ProtectRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(req.Payload) == 0 {
		return "", ErrEmptyPayload
	}

	plaintext, err := json.Marshal(req.Payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	defer quantum.SecureZero(plaintext)

	sealed, err := quantum.Seal(plaintext, v.keys.Public)
	if err != nil {
		return "", fmt.Errorf("seal payload: %w", err)
	}

	handle, err := newHandle(sealed)
	if err != nil {
		return "", fmt.Errorf("generate handle: %w", err)
	}

	data, err := json.Marshal(record{
		Name:      req.Metadata.Name,
		Owner:     req.Metadata.Owner.Hex(),
		Sealed:    sealed,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}

	if err := v.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(handle), data)
	}); err != nil {
		return "", fmt.Errorf("store record: %w", err)
	}

	v.log.Debug("payload protected",
		zap.String("handle", handle),
		zap.String("name", req.Metadata.Name),
		zap.String("owner", req.Metadata.Owner.Hex()),
	)
	return handle, nil
}

// Unprotect opens the artifact behind req.Handle for its owner.
// Values are ordered by schema field name.
func (v *Vault) Unprotect(ctx context.Context, req protect.UnprotectRequest) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec record
	err := v.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(req.Handle))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, req.Handle)
	}
	if err != nil {
		return nil, fmt.Errorf("load record: %w", err)
	}

	if common.HexToAddress(rec.Owner) != req.Requester {
		return nil, fmt.Errorf("%w: %s is not the owner", ErrAccessDenied, req.Requester.Hex())
	}

	plaintext, err := quantum.Open(rec.Sealed, v.keys.Private)
	if err != nil {
		return nil, fmt.Errorf("open record: %w", err)
	}
	defer quantum.SecureZero(plaintext)

	var payload protect.Payload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if !req.Schema.Matches(payload) {
		return nil, protect.ErrSchemaMismatch
	}

	fields := lo.Keys(req.Schema)
	slices.Sort(fields)

	values := make([]string, len(fields))
	for i, field := range fields {
		values[i] = payload[field]
	}
	return values, nil
}

// Close wipes the private key and closes the store
func (v *Vault) Close() error {
	v.keys.Zero()
	return v.db.Close()
}

// newHandle derives an address the way Ethereum does: the last 20 bytes of a
// Keccak-256 digest, here over a random salt and the sealed bytes
func newHandle(sealed []byte) (string, error) {
	salt, err := quantum.RandomBytes(32)
	if err != nil {
		return "", err
	}
	return common.BytesToAddress(crypto.Keccak256(salt, sealed)[12:]).Hex(), nil
}

func recordKey(handle string) []byte {
	return []byte(recordPrefix + handle)
}
