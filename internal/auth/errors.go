package auth

import "errors"

// Account errors.
var (
	// ErrUserAlreadyExists indicates the email is already registered.
	ErrUserAlreadyExists = errors.New("auth: user already exists")

	// ErrUserNotFound indicates no account matches the lookup.
	ErrUserNotFound = errors.New("auth: user not found")

	// ErrInvalidPassword indicates the password did not match the stored hash.
	ErrInvalidPassword = errors.New("auth: invalid password")

	// ErrInvalidCredentials is the only credential failure callers outside
	// this package need to recognise. Login, Refresh and Authenticate wrap
	// the specific cause (ErrUserNotFound, ErrInvalidPassword, a token
	// error) inside it, so logs keep the cause while responses stay uniform.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrCouldNotHash indicates a password could not be hashed or a stored
	// hash could not be decoded.
	ErrCouldNotHash = errors.New("auth: could not hash password")

	// ErrMalformedHash indicates a stored hash is not a usable Argon2id PHC
	// string. It is always wrapped together with ErrCouldNotHash.
	ErrMalformedHash = errors.New("auth: malformed password hash")
)

// Token errors.
var (
	// ErrTokenGeneration indicates a token could not be signed.
	ErrTokenGeneration = errors.New("auth: token generation failed")

	// ErrTokenInvalid is wrapped by every verification failure below.
	ErrTokenInvalid = errors.New("auth: invalid token")

	// ErrTokenExpired indicates the token's exp instant has passed.
	ErrTokenExpired = errors.New("auth: token expired")

	// ErrTokenSignature indicates the signature or algorithm did not match
	// this service's key.
	ErrTokenSignature = errors.New("auth: token signature invalid")

	// ErrTokenMalformed indicates the token could not be decoded or lacks
	// required claims.
	ErrTokenMalformed = errors.New("auth: token malformed")
)

// Key errors.
var (
	// ErrInvalidKey indicates PEM key material could not be parsed.
	ErrInvalidKey = errors.New("auth: invalid key")

	// ErrKeyMismatch indicates a public key does not belong to its private key.
	ErrKeyMismatch = errors.New("auth: public key does not match private key")

	// ErrSharedKey indicates two token scopes were configured with the same
	// key pair.
	ErrSharedKey = errors.New("auth: token scopes share a key pair")
)
