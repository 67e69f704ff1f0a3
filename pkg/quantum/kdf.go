package quantum

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// NewSalt returns a random salt
func NewSalt() (Salt, error) {
	var salt Salt
	if _, err := rand.Read(salt[:]); err != nil {
		return Salt{}, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey stretches a passphrase with Argon2id
func DeriveKey(passphrase []byte, salt Salt, params KDFParams) []byte {
	return argon2.IDKey(passphrase, salt[:], params.Iterations, params.Memory, params.Parallelism, params.KeyLen)
}
