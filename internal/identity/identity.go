// Package identity derives the operator's long-term Ed25519 keypair from a
// configured mnemonic seed, the public half of which is what /operator
// advertises and the prober reports back to downloaders.
//
// Adapted from a random-then-persisted-to-disk keypair to a deterministic
// one: the operator's identity must be reproducible across restarts from
// the same --mnemonic, not freshly generated or loaded off disk.
package identity

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Keypair holds the operator's Ed25519 identity.
type Keypair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// FromMnemonic deterministically derives a keypair from mnemonic: the
// mnemonic is hashed to a 32-byte seed and fed to ed25519.NewKeyFromSeed,
// so the same mnemonic always yields the same public key.
func FromMnemonic(mnemonic string) (*Keypair, error) {
	if mnemonic == "" {
		return nil, fmt.Errorf("mnemonic must not be empty")
	}
	seed := sha256.Sum256([]byte(mnemonic))
	priv := ed25519.NewKeyFromSeed(seed[:])
	pub := priv.Public().(ed25519.PublicKey)
	return &Keypair{Public: pub, Private: priv}, nil
}

// PublicKeyHex returns the public key as a hex string, the form /operator
// advertises.
func (kp *Keypair) PublicKeyHex() string {
	return hex.EncodeToString(kp.Public)
}

// Sign signs message with the operator's private key.
func (kp *Keypair) Sign(message []byte) []byte {
	return ed25519.Sign(kp.Private, message)
}

// Verify checks a signature against a public key.
func Verify(message, signature []byte, publicKey ed25519.PublicKey) bool {
	return ed25519.Verify(publicKey, message, signature)
}
