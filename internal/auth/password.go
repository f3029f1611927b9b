package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/sync/semaphore"
)

const (
	argonKeyLen  = 32
	argonSaltLen = 16
)

// Argon2Params are the Argon2id cost parameters used for new hashes.
// Existing hashes carry their own parameters and keep verifying after a change.
type Argon2Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
}

// DefaultArgon2Params follows the OWASP recommendation for Argon2id.
var DefaultArgon2Params = Argon2Params{
	MemoryKiB:   64 * 1024,
	Iterations:  3,
	Parallelism: 1,
}

// PasswordHasher hashes and verifies passwords with Argon2id.
//
// Each derivation allocates MemoryKiB of memory, so the number running at
// once is capped; callers beyond the cap wait until a slot frees or their
// context ends.
type PasswordHasher struct {
	params Argon2Params
	slots  *semaphore.Weighted
}

// NewPasswordHasher creates a hasher allowing maxConcurrent derivations at once.
func NewPasswordHasher(params Argon2Params, maxConcurrent int) *PasswordHasher {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &PasswordHasher{
		params: params,
		slots:  semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Hash derives a new salted hash and returns it in PHC string format:
// $argon2id$v=19$m=65536,t=3,p=1$<salt>$<hash>
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%w: generating salt: %w", ErrCouldNotHash, err)
	}

	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("%w: waiting for hashing slot: %w", ErrCouldNotHash, err)
	}
	key := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.MemoryKiB, h.params.Parallelism, argonKeyLen)
	h.slots.Release(1)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.MemoryKiB, h.params.Iterations, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches the PHC-encoded hash.
// A hash that cannot be decoded yields ErrCouldNotHash; callers must treat
// that as a failed verification.
func (h *PasswordHasher) Verify(ctx context.Context, password, encoded string) (bool, error) {
	p, salt, want, err := decodePHC(encoded)
	if err != nil {
		return false, fmt.Errorf("%w: %w: %w", ErrCouldNotHash, ErrMalformedHash, err)
	}

	if err := h.slots.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("%w: waiting for hashing slot: %w", ErrCouldNotHash, err)
	}
	got := argon2.IDKey([]byte(password), salt, p.Iterations, p.MemoryKiB, p.Parallelism, uint32(len(want))) //nolint:gosec // G115: hash length fits uint32
	h.slots.Release(1)

	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// maxDecodedMemoryKiB bounds the memory a stored hash may ask for (1 GiB).
const maxDecodedMemoryKiB = 1 << 20

// decodePHC parses an Argon2id PHC string into its parameters, salt and hash.
func decodePHC(encoded string) (params Argon2Params, salt, hash []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 { //nolint:mnd // "", alg, version, params, salt, hash
		return params, nil, nil, fmt.Errorf("invalid PHC hash format")
	}

	if parts[1] != "argon2id" {
		return params, nil, nil, fmt.Errorf("unsupported algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return params, nil, nil, fmt.Errorf("parsing version: %w", err)
	}
	if version != argon2.Version {
		return params, nil, nil, fmt.Errorf("unsupported argon2 version: %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.MemoryKiB, &params.Iterations, &params.Parallelism); err != nil {
		return params, nil, nil, fmt.Errorf("parsing parameters: %w", err)
	}
	if params.MemoryKiB == 0 || params.MemoryKiB > maxDecodedMemoryKiB || params.Iterations == 0 || params.Parallelism == 0 {
		return params, nil, nil, fmt.Errorf("parameters out of range: %s", parts[3])
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, fmt.Errorf("decoding salt: %w", err)
	}

	hash, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return params, nil, nil, fmt.Errorf("decoding hash: %w", err)
	}
	if len(hash) == 0 {
		return params, nil, nil, fmt.Errorf("empty hash")
	}

	return params, salt, hash, nil
}
