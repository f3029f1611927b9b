package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nerrad567/homehub-core/internal/infrastructure/logging"
)

// tokenTypeBearer is the token_type reported in every TokenPair.
const tokenTypeBearer = "Bearer"

// Manager coordinates the account store, the password hasher and the two
// token services. It holds no mutable state beyond a lazily computed dummy
// hash and is safe for concurrent use.
type Manager struct {
	users   UserRepository
	hasher  *PasswordHasher
	access  *TokenService
	refresh *TokenService
	logger  *logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewManager creates a Manager. The access and refresh services must be
// built from different key pairs.
func NewManager(users UserRepository, hasher *PasswordHasher, access, refresh *TokenService, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{
		users:   users,
		hasher:  hasher,
		access:  access,
		refresh: refresh,
		logger:  logger.With("component", "auth"),
	}
}

// Register creates an account and returns its profile.
func (m *Manager) Register(ctx context.Context, reg Registration) (Profile, error) {
	hash, err := m.hasher.Hash(ctx, reg.Password)
	if err != nil {
		return Profile{}, err
	}

	_, err = m.users.GetByEmail(ctx, reg.Email)
	switch {
	case err == nil:
		return Profile{}, fmt.Errorf("%w: %s", ErrUserAlreadyExists, reg.Email)
	case !errors.Is(err, ErrUserNotFound):
		return Profile{}, fmt.Errorf("checking email: %w", err)
	}

	user := &User{
		Name:         reg.Name,
		Email:        reg.Email,
		PasswordHash: hash,
		Locale:       reg.Locale,
	}
	if err := m.users.Create(ctx, user); err != nil {
		return Profile{}, err
	}

	m.logger.Info("user registered", "user_id", user.ID)
	return user.Profile(), nil
}

// Login checks an email and password and issues a token pair.
// An unknown email, a wrong password and an undecodable stored hash all
// return ErrInvalidCredentials.
func (m *Manager) Login(ctx context.Context, email, password string) (TokenPair, error) {
	user, err := m.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return TokenPair{}, fmt.Errorf("looking up user: %w", err)
		}
		// Burn the same hashing cost as a real check.
		m.hasher.Verify(ctx, password, m.dummy(ctx)) //nolint:errcheck // result is irrelevant
		return TokenPair{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	ok, err := m.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		if errors.Is(err, ErrMalformedHash) {
			m.logger.Error("stored password hash is unusable", "user_id", user.ID, "error", err)
			return TokenPair{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return TokenPair{}, err
	}
	if !ok {
		return TokenPair{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, ErrInvalidPassword)
	}

	return m.issuePair(user.ID)
}

// Refresh exchanges a valid refresh token for a new pair. The presented
// token is not revoked and stays usable until it expires.
func (m *Manager) Refresh(_ context.Context, refreshToken string) (TokenPair, error) {
	claims, err := m.refresh.Verify(refreshToken)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	return m.issuePair(claims.Subject)
}

// Authenticate verifies an access token and loads its account fresh from
// the store. Token failures and a missing account wrap ErrInvalidCredentials;
// store failures are returned as they are.
func (m *Manager) Authenticate(ctx context.Context, accessToken string) (*User, error) {
	claims, err := m.access.Verify(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	user, err := m.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return user, nil
}

// Profile returns the profile of the account with the given ID.
func (m *Manager) Profile(ctx context.Context, userID string) (Profile, error) {
	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return user.Profile(), nil
}

func (m *Manager) issuePair(subject string) (TokenPair, error) {
	access, err := m.access.Issue(subject)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.refresh.Issue(subject)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int(m.access.Lifetime().Seconds()),
	}, nil
}

// dummy returns a hash made with the current parameters, computed once.
func (m *Manager) dummy(ctx context.Context) string {
	m.dummyOnce.Do(func() {
		h, err := m.hasher.Hash(ctx, "homehub-dummy-password")
		if err != nil {
			m.logger.Warn("computing dummy hash", "error", err)
			return
		}
		m.dummyHash = h
	})
	return m.dummyHash
}
