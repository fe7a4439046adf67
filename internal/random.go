package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"math/big"
	"strings"
)

// ID is a 16-byte random identifier used for sessions and verification
// challenges. The string form is unpadded base64url (22 characters).
type ID [16]byte

const codeSecretSize = 32

// NewID returns a cryptographically random ID.
func NewID() (ID, error) {
	var id ID
	_, err := rand.Read(id[:])
	return id, err
}

func (id ID) Bytes() []byte {
	return id[:]
}

func (id ID) String() string {
	return base64.RawURLEncoding.EncodeToString(id[:])
}

// ParseID decodes the base64url string form produced by [ID.String].
func ParseID(s string) (ID, error) {
	var id ID

	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(raw) != len(id) {
		return id, errors.New("invalid id size")
	}

	copy(id[:], raw)
	return id, nil
}

// NewCodeSecret returns a 32-byte random verification code secret.
// Its base64url form is 43 characters, comfortably above the 24-character
// floor below which a code must be paired with its requesting identifier.
func NewCodeSecret() ([codeSecretSize]byte, error) {
	var secret [codeSecretSize]byte
	_, err := rand.Read(secret[:])
	return secret, err
}

// EncodeCodeSecret renders a code secret in the form handed to the caller.
func EncodeCodeSecret(secret [codeSecretSize]byte) string {
	return base64.RawURLEncoding.EncodeToString(secret[:])
}

// HashCode digests a raw verification code for at-rest storage. Only the
// digest is ever persisted.
func HashCode(raw string) [32]byte {
	return sha256.Sum256([]byte(raw))
}

// NewOTP generates a numeric one-time password of the given length. Each
// digit is drawn independently from crypto/rand. Numeric codes are short,
// so redemption always requires the original requesting identifier.
func NewOTP(digits int) (string, error) {
	if digits < 6 || digits > 10 {
		return "", errors.New("invalid otp digits")
	}

	var b strings.Builder
	b.Grow(digits)

	max := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	return b.String(), nil
}
