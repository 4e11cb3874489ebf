// Package token generates opaque credential strings: session identifiers and
// the bearer tokens bound to an authenticated session.
package token

import (
	"crypto/rand"
	"encoding/hex"
)

const (
	// SessionIDLen is the byte length of raw session id entropy (256 bits).
	SessionIDLen = 32

	// CredentialLen is the byte length of raw credential token entropy (192 bits).
	CredentialLen = 24

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// NewSessionID returns a new random hex-encoded session identifier.
func NewSessionID() (string, error) {
	b := make([]byte, SessionIDLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// New returns a new random alphanumeric credential token.
// Bytes are rejection-sampled so every character of the alphabet is equally likely.
func New() (string, error) {
	return NewLen(CredentialLen)
}

// NewLen returns a new random alphanumeric token of the given length.
func NewLen(length int) (string, error) {
	if length == 0 {
		return "", nil
	}

	// Largest multiple of len(alphabet) that fits in a byte; values at or above
	// it are rejected to avoid modulo bias.
	maxByte := byte(256 - (256 % len(alphabet)))

	out := make([]byte, 0, length)
	buf := make([]byte, length*2)

	for {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}

		for _, b := range buf {
			if b >= maxByte {
				continue
			}

			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				return string(out), nil
			}
		}
	}
}
