package quantum

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/mlkem"
	"crypto/rand"
	"fmt"
)

// Seal encrypts plaintext to an ML-KEM-1024 public key.
// Layout: ML-KEM ciphertext | nonce | AES-256-GCM ciphertext.
func Seal(plaintext, public []byte) (Sealed, error) {
	encapsKey, err := mlkem.NewEncapsulationKey1024(public)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	sharedSecret, kemCiphertext := encapsKey.Encapsulate()
	defer SecureZero(sharedSecret)

	body, err := SealWithKey(plaintext, sharedSecret[:AESKeySize])
	if err != nil {
		return nil, err
	}

	out := make(Sealed, 0, len(kemCiphertext)+len(body))
	out = append(out, kemCiphertext...)
	return append(out, body...), nil
}

// Open decrypts a Seal output with the matching private key
func Open(sealed Sealed, private []byte) ([]byte, error) {
	decapsKey, err := mlkem.NewDecapsulationKey1024(private)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	if len(sealed) < MLKEMCiphertextSize+NonceSize+gcmTagSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrCiphertextShort, len(sealed))
	}

	sharedSecret, err := decapsKey.Decapsulate(sealed[:MLKEMCiphertextSize])
	if err != nil {
		return nil, fmt.Errorf("ML-KEM decapsulation failed: %w", err)
	}
	defer SecureZero(sharedSecret)

	return OpenWithKey(sealed[MLKEMCiphertextSize:], sharedSecret[:AESKeySize])
}

// SealWithKey encrypts with AES-256-GCM under a symmetric key.
// The random nonce is prepended to the ciphertext.
func SealWithKey(plaintext, key []byte) (Sealed, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	var nonce Nonce
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make(Sealed, 0, NonceSize+len(plaintext)+gcm.Overhead())
	out = append(out, nonce[:]...)
	return gcm.Seal(out, nonce[:], plaintext, nil), nil
}

// OpenWithKey reverses SealWithKey
func OpenWithKey(sealed Sealed, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < NonceSize+gcm.Overhead() {
		return nil, fmt.Errorf("%w: got %d bytes", ErrCiphertextShort, len(sealed))
	}

	plaintext, err := gcm.Open(nil, sealed[:NonceSize], sealed[NonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != AESKeySize {
		return nil, fmt.Errorf("%w: got %d bytes, expected %d", ErrInvalidKey, len(key), AESKeySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
