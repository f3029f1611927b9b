package auth

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"database/sql"
	"encoding/pem"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/homehub-core/internal/infrastructure/database"
	_ "github.com/nerrad567/homehub-core/migrations" // registers the schema
)

// testDB opens a temp-file SQLite database with every migration applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(t.Context(), database.Config{
		Path:        filepath.Join(t.TempDir(), "auth.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(t.Context()); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return db.DB
}

// testHasher uses minimal Argon2 cost so tests stay fast.
func testHasher() *PasswordHasher {
	return NewPasswordHasher(Argon2Params{MemoryKiB: 1024, Iterations: 1, Parallelism: 1}, 2)
}

// pemPair encodes a key pair as PKCS#8 / PKIX PEM.
func pemPair(t *testing.T, priv crypto.Signer) (privPEM, pubPEM string) {
	t.Helper()

	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		t.Fatalf("marshalling private key: %v", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(priv.Public())
	if err != nil {
		t.Fatalf("marshalling public key: %v", err)
	}

	privPEM = string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}))
	pubPEM = string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}))
	return privPEM, pubPEM
}

// ed25519Pair generates a fresh Ed25519 key pair in PEM form.
func ed25519Pair(t *testing.T) (privPEM, pubPEM string) {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	return pemPair(t, priv)
}

// testTokenService builds a service from a fresh key pair.
func testTokenService(t *testing.T, lifetime time.Duration, now func() time.Time) *TokenService {
	t.Helper()

	priv, pub := ed25519Pair(t)
	svc, err := NewTokenService(TokenConfig{
		PrivateKeyPEM: priv,
		PublicKeyPEM:  pub,
		Lifetime:      lifetime,
		Now:           now,
	})
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return svc
}

// testManager wires a Manager over a fresh database.
func testManager(t *testing.T) *Manager {
	t.Helper()

	return NewManager(
		NewUserRepository(testDB(t)),
		testHasher(),
		testTokenService(t, 15*time.Minute, nil),
		testTokenService(t, 7*24*time.Hour, nil),
		nil,
	)
}
