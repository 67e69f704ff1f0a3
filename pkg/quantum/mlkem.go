package quantum

import (
	"crypto/mlkem"
	"fmt"
)

// KeyPair is an ML-KEM-1024 key pair in its serialized form.
// Public is the encapsulation key, Private the decapsulation seed.
type KeyPair struct {
	Public  []byte
	Private []byte
}

// GenerateKeyPair generates an ML-KEM-1024 key pair
func GenerateKeyPair() (KeyPair, error) {
	decapsKey, err := mlkem.GenerateKey1024()
	if err != nil {
		return KeyPair{}, fmt.Errorf("failed to generate ML-KEM-1024 keypair: %w", err)
	}
	return KeyPair{
		Public:  decapsKey.EncapsulationKey().Bytes(),
		Private: decapsKey.Bytes(),
	}, nil
}

// PublicFromPrivate recomputes the encapsulation key of a private key
func PublicFromPrivate(private []byte) ([]byte, error) {
	decapsKey, err := mlkem.NewDecapsulationKey1024(private)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return decapsKey.EncapsulationKey().Bytes(), nil
}

// Zero wipes the private half
func (kp *KeyPair) Zero() {
	SecureZero(kp.Private)
}
