package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestParseKeys_SupportedTypes(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating RSA key: %v", err)
	}
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating EC key: %v", err)
	}

	edPriv, edPub := ed25519Pair(t)
	rsaPriv, rsaPub := pemPair(t, rsaKey)
	ecPriv, ecPub := pemPair(t, ecKey)

	tests := []struct {
		name     string
		priv     string
		pub      string
		wantAlgo string
	}{
		{"rsa", rsaPriv, rsaPub, jwt.SigningMethodRS256.Alg()},
		{"ecdsa", ecPriv, ecPub, jwt.SigningMethodES256.Alg()},
		{"ed25519", edPriv, edPub, jwt.SigningMethodEdDSA.Alg()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signer, err := parsePrivateKey(tt.priv)
			if err != nil {
				t.Fatalf("parsePrivateKey() error = %v", err)
			}
			pub, err := parsePublicKey(tt.pub)
			if err != nil {
				t.Fatalf("parsePublicKey() error = %v", err)
			}
			if !matches(signer, pub) {
				t.Error("matches() = false for a genuine pair")
			}
			method, err := signingMethodFor(pub)
			if err != nil {
				t.Fatalf("signingMethodFor() error = %v", err)
			}
			if method.Alg() != tt.wantAlgo {
				t.Errorf("algorithm = %q, want %q", method.Alg(), tt.wantAlgo)
			}
		})
	}
}

func TestParsePrivateKey_PKCS1AndSEC1(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating RSA key: %v", err)
	}
	pkcs1 := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(rsaKey)})
	if _, err := parsePrivateKey(string(pkcs1)); err != nil {
		t.Errorf("parsePrivateKey(PKCS#1) error = %v", err)
	}

	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating EC key: %v", err)
	}
	der, err := x509.MarshalECPrivateKey(ecKey)
	if err != nil {
		t.Fatalf("marshalling EC key: %v", err)
	}
	sec1 := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})
	if _, err := parsePrivateKey(string(sec1)); err != nil {
		t.Errorf("parsePrivateKey(SEC 1) error = %v", err)
	}
}

func TestDecodePEM_Base64(t *testing.T) {
	priv, _ := ed25519Pair(t)
	encoded := base64.StdEncoding.EncodeToString([]byte(priv))

	if _, err := parsePrivateKey(encoded); err != nil {
		t.Errorf("parsePrivateKey(base64 PEM) error = %v", err)
	}
}

func TestParseKeys_Rejects(t *testing.T) {
	weakRSA, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("generating RSA key: %v", err)
	}
	p384, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		t.Fatalf("generating EC key: %v", err)
	}
	weakPriv, _ := pemPair(t, weakRSA)
	p384Priv, _ := pemPair(t, p384)
	_, edPub := ed25519Pair(t)

	tests := []struct {
		name     string
		material string
	}{
		{"empty", ""},
		{"garbage", "not a key"},
		{"base64 of non-PEM", base64.StdEncoding.EncodeToString([]byte("hello"))},
		{"short RSA", weakPriv},
		{"P-384", p384Priv},
		{"public key as private", edPub},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parsePrivateKey(tt.material); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("parsePrivateKey() error = %v, want ErrInvalidKey", err)
			}
		})
	}
}

func TestMatches_DifferentPairs(t *testing.T) {
	privA, _ := ed25519Pair(t)
	_, pubB := ed25519Pair(t)

	signer, err := parsePrivateKey(privA)
	if err != nil {
		t.Fatalf("parsePrivateKey() error = %v", err)
	}
	pub, err := parsePublicKey(pubB)
	if err != nil {
		t.Fatalf("parsePublicKey() error = %v", err)
	}
	if matches(signer, pub) {
		t.Error("matches() = true for keys from different pairs")
	}
}
