package auth

import (
	"crypto"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenConfig is the immutable input for one TokenService.
type TokenConfig struct {
	// PrivateKeyPEM signs issued tokens. PEM text or base64-encoded PEM.
	PrivateKeyPEM string

	// PublicKeyPEM verifies tokens. Must be the public half of PrivateKeyPEM.
	PublicKeyPEM string

	// Lifetime is added to the issue time to produce exp.
	Lifetime time.Duration

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Claims is what a verified token says.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies signed, expiring session tokens for one
// scope (access or refresh). It holds only read-only key material after
// construction and is safe for concurrent use.
//
// Scopes are kept apart by key material alone: a service only accepts
// tokens signed by its own private key, so access and refresh services must
// be built from different key pairs.
type TokenService struct {
	signer   crypto.Signer
	verifier crypto.PublicKey
	method   jwt.SigningMethod
	lifetime time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

// NewTokenService parses the key pair in cfg and checks that it is usable.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.Lifetime <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", cfg.Lifetime)
	}

	signer, err := parsePrivateKey(cfg.PrivateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	verifier, err := parsePublicKey(cfg.PublicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}

	if !matches(signer, verifier) {
		return nil, ErrKeyMismatch
	}

	method, err := signingMethodFor(verifier)
	if err != nil {
		return nil, err
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &TokenService{
		signer:   signer,
		verifier: verifier,
		method:   method,
		lifetime: cfg.Lifetime,
		now:      now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{method.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(now),
		),
	}, nil
}

// Lifetime returns how long issued tokens stay valid.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}

// SharesKeyWith reports whether s and other verify with the same public
// key, however the key material was encoded.
func (s *TokenService) SharesKeyWith(other *TokenService) bool {
	eq, ok := s.verifier.(interface{ Equal(crypto.PublicKey) bool })
	return ok && eq.Equal(other.verifier)
}

// Issue signs a token for subjectID valid from now until now+lifetime.
func (s *TokenService) Issue(subjectID string) (string, error) {
	if subjectID == "" {
		return "", fmt.Errorf("%w: empty subject", ErrTokenGeneration)
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.signer)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenGeneration, err)
	}
	return signed, nil
}

// Verify checks the token's algorithm, signature and expiry and returns its
// claims. Failures wrap ErrTokenInvalid and exactly one of ErrTokenSignature,
// ErrTokenMalformed or ErrTokenExpired.
func (s *TokenService) Verify(token string) (Claims, error) {
	var claims jwt.RegisteredClaims
	_, err := s.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.verifier, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w: %w", ErrTokenInvalid, classifyTokenError(err), err)
	}

	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: %w: missing subject", ErrTokenInvalid, ErrTokenMalformed)
	}

	out := Claims{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

// classifyTokenError maps a jwt parse error onto this package's token errors.
// Signature problems are checked first: jwt validates claims only after the
// signature has been accepted.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrTokenMalformed
	}
}
