package main

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Key algorithms accepted by keygen.
const (
	algRSA     = "rsa"
	algECDSA   = "ecdsa"
	algEd25519 = "ed25519"
)

// NewKeygenCmd creates the keygen subcommand. It prints two independent key
// pairs, one per token scope, as base64-encoded PEM environment lines.
func NewKeygenCmd() *cobra.Command {
	var (
		algorithm string
		bits      int
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate access and refresh token key pairs",
		Long: `Generate two distinct key pairs and print them as environment
variables ready for a .env file. --bits sets the RSA modulus size; ECDSA
keys are always P-256 and ed25519 ignores it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeKeyPairs(cmd.OutOrStdout(), algorithm, bits)
		},
	}

	cmd.Flags().StringVar(&algorithm, "algorithm", algEd25519, "key algorithm: rsa, ecdsa or ed25519")
	cmd.Flags().IntVar(&bits, "bits", 0, "RSA modulus size (default 2048)")

	return cmd
}

// writeKeyPairs generates one pair per scope and writes the env lines.
func writeKeyPairs(w io.Writer, algorithm string, bits int) error {
	for _, scope := range []string{"ACCESS_TOKEN", "REFRESH_TOKEN"} {
		key, err := generateKey(algorithm, bits)
		if err != nil {
			return err
		}
		privPEM, pubPEM, err := encodeKeyPair(key)
		if err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, "%s_PRIVATE_KEY=%s\n%s_PUBLIC_KEY=%s\n",
			scope, base64.StdEncoding.EncodeToString(privPEM),
			scope, base64.StdEncoding.EncodeToString(pubPEM),
		); err != nil {
			return fmt.Errorf("writing keys: %w", err)
		}
	}
	return nil
}

func generateKey(algorithm string, bits int) (crypto.Signer, error) {
	switch algorithm {
	case algRSA:
		if bits == 0 {
			bits = 2048
		}
		if bits < 2048 {
			return nil, fmt.Errorf("rsa keys must be at least 2048 bits, got %d", bits)
		}
		return rsa.GenerateKey(rand.Reader, bits)

	case algECDSA:
		// Tokens are signed with ES256, so P-256 is the only usable curve.
		if bits != 0 && bits != 256 {
			return nil, fmt.Errorf("ecdsa keys must use P-256, got %d bits", bits)
		}
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)

	case algEd25519:
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, err
		}
		return priv, nil

	default:
		return nil, fmt.Errorf("unknown algorithm %q (want rsa, ecdsa or ed25519)", algorithm)
	}
}

// encodeKeyPair returns the PKCS#8 private and PKIX public key as PEM.
func encodeKeyPair(key crypto.Signer) (privPEM, pubPEM []byte, err error) {
	privDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding private key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(key.Public())
	if err != nil {
		return nil, nil, fmt.Errorf("encoding public key: %w", err)
	}

	privPEM = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})
	pubPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	return privPEM, pubPEM, nil
}
