package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := testHasher()
	password := "correct-horse-battery-staple"

	hash, err := h.Hash(t.Context(), password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Errorf("hash should carry PHC prefix with parameters, got %q", hash)
	}

	ok, err := h.Verify(t.Context(), password, hash)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ok {
		t.Error("Verify() should return true for correct password")
	}
}

func TestPasswordHasher_WrongPassword(t *testing.T) {
	h := testHasher()

	hash, err := h.Hash(t.Context(), "correct-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	ok, err := h.Verify(t.Context(), "wrong-password", hash)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if ok {
		t.Error("Verify() should return false for wrong password")
	}
}

func TestPasswordHasher_UniqueSalts(t *testing.T) {
	h := testHasher()

	hash1, err := h.Hash(t.Context(), "same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	hash2, err := h.Hash(t.Context(), "same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if hash1 == hash2 {
		t.Error("two hashes of the same password should have different salts")
	}
}

func TestPasswordHasher_EmptyPassword(t *testing.T) {
	h := testHasher()

	hash, err := h.Hash(t.Context(), "")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	ok, err := h.Verify(t.Context(), "", hash)
	if err != nil || !ok {
		t.Errorf("Verify(empty) = %v, %v; want true, nil", ok, err)
	}
	ok, _ = h.Verify(t.Context(), "x", hash) //nolint:errcheck // only the result matters
	if ok {
		t.Error("Verify() should reject a non-empty password against an empty-password hash")
	}
}

func TestPasswordHasher_ParametersTravelWithHash(t *testing.T) {
	old := NewPasswordHasher(Argon2Params{MemoryKiB: 2048, Iterations: 2, Parallelism: 1}, 1)
	hash, err := old.Hash(t.Context(), "password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	ok, err := testHasher().Verify(t.Context(), "password", hash)
	if err != nil || !ok {
		t.Errorf("Verify() with different current params = %v, %v; want true, nil", ok, err)
	}
}

func TestPasswordHasher_InvalidFormat(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"not PHC", "plaintext"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=1$c2FsdA$aGFzaA"},
		{"too few parts", "$argon2id$v=19$m=65536,t=3,p=1"},
		{"wrong version", "$argon2id$v=16$m=65536,t=3,p=1$c2FsdA$aGFzaA"},
		{"zero memory", "$argon2id$v=19$m=0,t=3,p=1$c2FsdA$aGFzaA"},
		{"huge memory", "$argon2id$v=19$m=4194304,t=3,p=1$c2FsdA$aGFzaA"},
		{"bad salt", "$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA"},
		{"empty hash", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$"},
	}

	h := testHasher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify(t.Context(), "password", tt.hash)
			if !errors.Is(err, ErrCouldNotHash) || !errors.Is(err, ErrMalformedHash) {
				t.Errorf("Verify() error = %v, want ErrCouldNotHash and ErrMalformedHash", err)
			}
			if ok {
				t.Error("Verify() should not succeed on a malformed hash")
			}
		})
	}
}

func TestPasswordHasher_CancelledWhileWaiting(t *testing.T) {
	h := NewPasswordHasher(Argon2Params{MemoryKiB: 1024, Iterations: 1, Parallelism: 1}, 1)
	stored, err := h.Hash(t.Context(), "password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// Hold the only slot.
	if err := h.slots.Acquire(t.Context(), 1); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer h.slots.Release(1)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := h.Hash(ctx, "password"); !errors.Is(err, ErrCouldNotHash) {
		t.Errorf("Hash() error = %v, want ErrCouldNotHash", err)
	}

	_, err = h.Verify(ctx, "password", stored)
	if !errors.Is(err, ErrCouldNotHash) {
		t.Errorf("Verify() error = %v, want ErrCouldNotHash", err)
	}
	if errors.Is(err, ErrMalformedHash) {
		t.Errorf("Verify() error = %v, a cancelled wait is not a malformed hash", err)
	}
}
