package quantum

import (
	"crypto/rand"
	"crypto/subtle"
)

// SecureCompare performs constant-time comparison
func SecureCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// SecureZero zeros memory
func SecureZero(b []byte) {
	clear(b)
}

// RandomBytes returns size bytes from the system CSPRNG
func RandomBytes(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
