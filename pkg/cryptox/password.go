package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

// placeholderPrefix marks hashes that can never verify. They are stored for
// accounts created through an external identity provider.
const placeholderPrefix = "!external$"

var (
	ErrPasswordMismatch = errors.New("password does not match")
	ErrUnusableHash     = errors.New("password login disabled for this account")
)

// Hasher hashes and verifies passwords with Argon2id. The pepper is appended to
// every password before hashing and is never stored alongside the hash.
type Hasher struct {
	pepper string

	dummyOnce sync.Once
	dummy     string
}

func NewHasher(pepper string) *Hasher {
	return &Hasher{pepper: pepper}
}

// Hash returns a PHC-format Argon2id string with an embedded random salt.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password+h.pepper), salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify compares password against an encoded hash in constant time.
// It returns ErrPasswordMismatch on a wrong password and ErrUnusableHash for
// placeholder hashes.
func (h *Hasher) Verify(password, encoded string) error {
	if IsPlaceholderHash(encoded) {
		return ErrUnusableHash
	}

	// ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return errors.New("invalid hash format: expected 6 parts")
	}
	if parts[1] != "argon2id" {
		return errors.New("invalid hash format: not argon2id")
	}
	if parts[2] != "v=19" {
		return errors.New("invalid hash format: wrong version")
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("invalid hash format: failed to parse parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("invalid hash format: failed to decode salt: %w", err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("invalid hash format: failed to decode hash: %w", err)
	}

	computed := argon2.IDKey(
		[]byte(password+h.pepper),
		salt,
		iters,
		mem,
		par,
		uint32(len(expected)), // #nosec G115
	)
	if subtle.ConstantTimeCompare(computed, expected) == 1 {
		return nil
	}
	return ErrPasswordMismatch
}

// Burn runs a full verification against a throwaway hash. Callers use it when
// the account does not exist so the response time matches a real mismatch.
func (h *Hasher) Burn(password string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = h.Hash(MustGenerateToken(TokenSize128))
	})
	_ = h.Verify(password, h.dummy)
}

// PlaceholderHash returns a value that is stored like a password hash but can
// never be matched by any password.
func PlaceholderHash() string {
	return placeholderPrefix + MustGenerateToken(TokenSize128)
}

func IsPlaceholderHash(encoded string) bool {
	return strings.HasPrefix(encoded, placeholderPrefix)
}
