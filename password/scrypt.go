package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const scryptID = "scrypt"

// ScryptParams tunes the scrypt key derivation. LogN is the base-2 logarithm
// of the CPU/memory cost parameter N.
type ScryptParams struct {
	LogN       uint8
	R          int
	P          int
	SaltLength uint32
	KeyLength  uint32
}

// DefaultScryptParams are safe interactive-login parameters (N=2^15).
func DefaultScryptParams() ScryptParams {
	return ScryptParams{
		LogN:       15,
		R:          8,
		P:          1,
		SaltLength: 16,
		KeyLength:  32,
	}
}

// Scrypt hashes secrets with scrypt and verifies them against PHC-encoded
// hashes in constant time. It satisfies the same hasher capability as
// [Argon2] for deployments standardized on scrypt.
type Scrypt struct {
	params ScryptParams
}

// NewScrypt validates the parameters and returns a ready hasher.
func NewScrypt(params ScryptParams) (*Scrypt, error) {
	switch {
	case params.LogN < 10 || params.LogN > 22:
		return nil, errors.New("scrypt logN out of range")
	case params.R <= 0 || params.P <= 0:
		return nil, errors.New("scrypt r and p must be positive")
	case params.SaltLength < minSaltLength:
		return nil, errors.New("scrypt salt length below minimum")
	case params.KeyLength < minKeyLength:
		return nil, errors.New("scrypt key length below minimum")
	}

	return &Scrypt{params: params}, nil
}

// Hash derives an scrypt hash of the secret under a fresh random salt and
// returns it PHC-encoded.
func (s *Scrypt) Hash(secret string) (string, error) {
	salt := make([]byte, s.params.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key, err := scrypt.Key([]byte(secret), salt, 1<<s.params.LogN, s.params.R, s.params.P, int(s.params.KeyLength))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"$%s$ln=%d,r=%d,p=%d$%s$%s",
		scryptID,
		s.params.LogN,
		s.params.R,
		s.params.P,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the hash under the parameters embedded in the encoded
// form and compares digests in constant time.
func (s *Scrypt) Verify(secret, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 || parts[0] != "" {
		return false, errors.New("invalid PHC format")
	}
	if parts[1] != scryptID {
		return false, errors.New("unsupported algorithm")
	}

	var logN uint8
	var r, p int
	for _, field := range strings.Split(parts[2], ",") {
		name, value, ok := strings.Cut(field, "=")
		if !ok {
			return false, errors.New("invalid scrypt parameters")
		}
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return false, errors.New("invalid scrypt parameters")
		}
		switch name {
		case "ln":
			if n > 22 {
				return false, errors.New("invalid scrypt cost")
			}
			logN = uint8(n)
		case "r":
			r = n
		case "p":
			p = n
		default:
			return false, errors.New("invalid scrypt parameters")
		}
	}
	if logN == 0 || r == 0 || p == 0 {
		return false, errors.New("incomplete scrypt parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil || uint32(len(salt)) < minSaltLength {
		return false, errors.New("invalid salt")
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(key) == 0 {
		return false, errors.New("invalid hash")
	}

	computed, err := scrypt.Key([]byte(secret), salt, 1<<logN, r, p, len(key))
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}
