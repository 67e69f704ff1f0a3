package quantum

import "errors"

type (
	Salt  [32]byte
	Nonce [12]byte

	// Sealed is a self-contained ciphertext: everything needed to open it
	// except the key travels with it
	Sealed []byte
)

const (
	// ML-KEM-1024 ciphertext is 1568 bytes
	MLKEMCiphertextSize = 1568

	// AES-256 key size
	AESKeySize = 32

	NonceSize  = 12
	gcmTagSize = 16
)

var (
	ErrInvalidKey      = errors.New("invalid key")
	ErrCiphertextShort = errors.New("ciphertext too short")
	ErrDecrypt         = errors.New("decryption failed")
)

// KDFParams for Argon2id
type KDFParams struct {
	Memory      uint32 `json:"memory"`
	Iterations  uint32 `json:"iterations"`
	Parallelism uint8  `json:"parallelism"`
	KeyLen      uint32 `json:"key_len"`
}

// DefaultKDF matches the interactive profile: 64 MiB, 3 passes
var DefaultKDF = KDFParams{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 4,
	KeyLen:      AESKeySize,
}
