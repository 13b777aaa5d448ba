// Package cryptox derives the credentials used for account login. The
// password never leaves the device: the remote side only stores a salt and a
// verifier, and the same pair is cached locally for offline login.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

const (
	// SaltSize is the length of the per-account random salt.
	SaltSize = 32
	// KeySize is the length of the derived master key.
	KeySize = 32
)

func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize)
}

// VerifierFor derives the verifier for password and salt, wiping the
// intermediate master key before returning.
func VerifierFor(password, salt []byte) []byte {
	key := DeriveMasterKey(password, salt)
	defer func() {
		for i := range key {
			key[i] = 0
		}
	}()
	return MakeVerifier(key)
}

// VerifierMatches compares two verifiers in constant time.
func VerifierMatches(saved, candidate []byte) bool {
	return len(saved) > 0 && subtle.ConstantTimeCompare(saved, candidate) == 1
}
