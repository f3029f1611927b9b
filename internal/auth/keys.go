package auth

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// minRSABits is the smallest RSA modulus accepted for signing keys.
const minRSABits = 2048

// decodePEM returns the first PEM block in material. Material may be the
// PEM text itself or its base64 encoding, which is how keys are usually
// passed through single-line environment variables.
func decodePEM(material string) (*pem.Block, error) {
	material = strings.TrimSpace(material)
	if material == "" {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidKey)
	}

	data := []byte(material)
	if !strings.HasPrefix(material, "-----BEGIN") {
		decoded, err := base64.StdEncoding.DecodeString(material)
		if err != nil {
			return nil, fmt.Errorf("%w: neither PEM nor base64-encoded PEM", ErrInvalidKey)
		}
		data = decoded
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", ErrInvalidKey)
	}
	return block, nil
}

// parsePrivateKey parses an RSA, ECDSA P-256 or Ed25519 private key in
// PKCS#1, SEC 1 or PKCS#8 form.
func parsePrivateKey(material string) (crypto.Signer, error) {
	block, err := decodePEM(material)
	if err != nil {
		return nil, err
	}

	var key any
	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err = x509.ParsePKCS1PrivateKey(block.Bytes)
	case "EC PRIVATE KEY":
		key, err = x509.ParseECPrivateKey(block.Bytes)
	case "PRIVATE KEY":
		key, err = x509.ParsePKCS8PrivateKey(block.Bytes)
	default:
		return nil, fmt.Errorf("%w: unexpected PEM block %q for a private key", ErrInvalidKey, block.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported private key type %T", ErrInvalidKey, key)
	}
	if _, err := signingMethodFor(signer.Public()); err != nil {
		return nil, err
	}
	return signer, nil
}

// parsePublicKey parses a PKIX or PKCS#1 public key.
func parsePublicKey(material string) (crypto.PublicKey, error) {
	block, err := decodePEM(material)
	if err != nil {
		return nil, err
	}

	var key any
	switch block.Type {
	case "PUBLIC KEY":
		key, err = x509.ParsePKIXPublicKey(block.Bytes)
	case "RSA PUBLIC KEY":
		key, err = x509.ParsePKCS1PublicKey(block.Bytes)
	default:
		return nil, fmt.Errorf("%w: unexpected PEM block %q for a public key", ErrInvalidKey, block.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	if _, err := signingMethodFor(key); err != nil {
		return nil, err
	}
	return key, nil
}

// signingMethodFor picks the JWT algorithm implied by a public key.
func signingMethodFor(pub crypto.PublicKey) (jwt.SigningMethod, error) {
	switch k := pub.(type) {
	case *rsa.PublicKey:
		if k.N.BitLen() < minRSABits {
			return nil, fmt.Errorf("%w: RSA key is %d bits, need at least %d", ErrInvalidKey, k.N.BitLen(), minRSABits)
		}
		return jwt.SigningMethodRS256, nil
	case *ecdsa.PublicKey:
		if k.Curve != elliptic.P256() {
			return nil, fmt.Errorf("%w: only P-256 ECDSA keys are supported", ErrInvalidKey)
		}
		return jwt.SigningMethodES256, nil
	case ed25519.PublicKey:
		return jwt.SigningMethodEdDSA, nil
	default:
		return nil, fmt.Errorf("%w: unsupported key type %T", ErrInvalidKey, pub)
	}
}

// matches reports whether pub is the public half of priv.
func matches(priv crypto.Signer, pub crypto.PublicKey) bool {
	eq, ok := priv.Public().(interface{ Equal(crypto.PublicKey) bool })
	return ok && eq.Equal(pub)
}
