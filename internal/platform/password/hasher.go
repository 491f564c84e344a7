// Package password hashes and verifies user passwords.
//
// New hashes use argon2id encoded as a PHC string:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>
//
// Encoding and comparison are done by github.com/alexedwards/argon2id. Hashes produced
// by bcrypt are still accepted by Verify so existing accounts keep working; NeedsRehash
// reports them.
package password

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned by Verify when the password does not match the hash.
var ErrMismatch = errors.New("password does not match")

// ErrInvalidHash is returned when an encoded hash cannot be parsed.
var ErrInvalidHash = errors.New("invalid password hash encoding")

// Params are the argon2id cost parameters.
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams follows the second recommended option of RFC 9106 scaled to a web login.
var DefaultParams = Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// Hasher creates and verifies password hashes.
type Hasher struct {
	params Params
	dummy  string
}

// NewHasher returns a Hasher using p. Zero fields fall back to DefaultParams.
func NewHasher(p Params) (*Hasher, error) {
	if p.Memory == 0 {
		p.Memory = DefaultParams.Memory
	}
	if p.Iterations == 0 {
		p.Iterations = DefaultParams.Iterations
	}
	if p.Parallelism == 0 {
		p.Parallelism = DefaultParams.Parallelism
	}
	if p.SaltLength == 0 {
		p.SaltLength = DefaultParams.SaltLength
	}
	if p.KeyLength == 0 {
		p.KeyLength = DefaultParams.KeyLength
	}

	h := &Hasher{params: p}

	// Hash of a random secret, compared against when the user does not exist
	// so that unknown emails cost the same as wrong passwords.
	secret := make([]byte, 16)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate dummy secret: %w", err)
	}
	dummy, err := h.Hash(base64.RawStdEncoding.EncodeToString(secret))
	if err != nil {
		return nil, err
	}
	h.dummy = dummy
	return h, nil
}

// Hash returns the argon2id PHC encoding of password with a fresh random salt.
func (h *Hasher) Hash(password string) (string, error) {
	encoded, err := argon2id.CreateHash(password, h.params.toArgon2id())
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return encoded, nil
}

// Verify reports whether password matches encoded.
// It returns nil on match, ErrMismatch on mismatch and ErrInvalidHash for unreadable encodings.
func (h *Hasher) Verify(encoded, password string) error {
	if isBcrypt(encoded) {
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidHash, err)
		}
		return nil
	}

	if _, err := decode(encoded); err != nil {
		return err
	}
	match, err := argon2id.ComparePasswordAndHash(password, encoded)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	if !match {
		return ErrMismatch
	}
	return nil
}

// VerifyDummy runs a comparison against a throwaway hash and always reports a mismatch.
// Callers use it when no stored hash exists.
func (h *Hasher) VerifyDummy(password string) error {
	_ = h.Verify(h.dummy, password)
	return ErrMismatch
}

// NeedsRehash reports whether encoded was produced by another scheme or with weaker parameters.
func (h *Hasher) NeedsRehash(encoded string) bool {
	if isBcrypt(encoded) {
		return true
	}
	p, err := decode(encoded)
	if err != nil {
		return true
	}
	return p.Memory < h.params.Memory ||
		p.Iterations < h.params.Iterations ||
		p.SaltLength < h.params.SaltLength ||
		p.KeyLength < h.params.KeyLength
}

func (p Params) toArgon2id() *argon2id.Params {
	return &argon2id.Params{
		Memory:      p.Memory,
		Iterations:  p.Iterations,
		Parallelism: p.Parallelism,
		SaltLength:  p.SaltLength,
		KeyLength:   p.KeyLength,
	}
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

// decode reads the parameters of an argon2id hash. Zero costs are rejected
// before they reach the key derivation, which panics on them.
func decode(encoded string) (Params, error) {
	ap, salt, key, err := argon2id.DecodeHash(encoded)
	if err != nil {
		return Params{}, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	if ap.Memory == 0 || ap.Iterations == 0 || ap.Parallelism == 0 || len(salt) == 0 || len(key) == 0 {
		return Params{}, ErrInvalidHash
	}
	return Params{
		Memory:      ap.Memory,
		Iterations:  ap.Iterations,
		Parallelism: ap.Parallelism,
		SaltLength:  uint32(len(salt)),
		KeyLength:   uint32(len(key)),
	}, nil
}
