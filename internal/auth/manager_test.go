package auth

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func registerTestUser(t *testing.T, m *Manager, email string) Profile {
	t.Helper()

	p, err := m.Register(t.Context(), Registration{
		Name:     "Test User",
		Email:    email,
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return p
}

func TestManager_Register(t *testing.T) {
	m := testManager(t)

	p := registerTestUser(t, m, "alice@example.com")

	if p.ID == "" {
		t.Error("profile should carry the new ID")
	}
	if p.Email != "alice@example.com" || p.Name != "Test User" {
		t.Errorf("profile = %+v", p)
	}
	if p.Locale != DefaultLocale {
		t.Errorf("Locale = %q, want %q", p.Locale, DefaultLocale)
	}

	stored, err := m.users.GetByID(t.Context(), p.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !strings.HasPrefix(stored.PasswordHash, "$argon2id$") {
		t.Errorf("stored hash = %q, want PHC argon2id", stored.PasswordHash)
	}
	if strings.Contains(stored.PasswordHash, "correct-horse") {
		t.Error("stored hash must not contain the raw password")
	}
}

func TestManager_RegisterKeepsLocale(t *testing.T) {
	m := testManager(t)

	p, err := m.Register(t.Context(), Registration{Name: "B", Email: "b@example.com", Password: "pw", Locale: "fr-FR"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if p.Locale != "fr-FR" {
		t.Errorf("Locale = %q, want fr-FR", p.Locale)
	}
}

func TestManager_RegisterDuplicate(t *testing.T) {
	m := testManager(t)
	registerTestUser(t, m, "dup@example.com")

	_, err := m.Register(t.Context(), Registration{Name: "Other", Email: "dup@example.com", Password: "pw"})
	if !errors.Is(err, ErrUserAlreadyExists) {
		t.Errorf("Register(duplicate) error = %v, want ErrUserAlreadyExists", err)
	}
}

func TestManager_RegisterConcurrentSameEmail(t *testing.T) {
	m := testManager(t)

	const n = 4
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = m.Register(t.Context(), Registration{Name: "Race", Email: "race@example.com", Password: "pw"})
		}()
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case !errors.Is(err, ErrUserAlreadyExists):
			t.Errorf("unexpected error = %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("%d registrations succeeded, want exactly 1", ok)
	}
}

func TestManager_Login(t *testing.T) {
	m := testManager(t)
	p := registerTestUser(t, m, "alice@example.com")

	pair, err := m.Login(t.Context(), "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if pair.TokenType != "Bearer" {
		t.Errorf("TokenType = %q, want Bearer", pair.TokenType)
	}
	if pair.ExpiresIn != 900 {
		t.Errorf("ExpiresIn = %d, want 900", pair.ExpiresIn)
	}

	claims, err := m.access.Verify(pair.AccessToken)
	if err != nil {
		t.Fatalf("access.Verify() error = %v", err)
	}
	if claims.Subject != p.ID {
		t.Errorf("access sub = %q, want %q", claims.Subject, p.ID)
	}
	if _, err := m.refresh.Verify(pair.RefreshToken); err != nil {
		t.Errorf("refresh.Verify() error = %v", err)
	}
}

func TestManager_LoginFailuresLookAlike(t *testing.T) {
	m := testManager(t)
	registerTestUser(t, m, "alice@example.com")

	_, errUnknown := m.Login(t.Context(), "nobody@example.com", "correct-horse")
	_, errWrong := m.Login(t.Context(), "alice@example.com", "wrong")

	for name, err := range map[string]error{"unknown email": errUnknown, "wrong password": errWrong} {
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("%s: error = %v, want ErrInvalidCredentials", name, err)
		}
	}
	if !errors.Is(errUnknown, ErrUserNotFound) {
		t.Errorf("unknown email should keep ErrUserNotFound in the chain, got %v", errUnknown)
	}
	if !errors.Is(errWrong, ErrInvalidPassword) {
		t.Errorf("wrong password should keep ErrInvalidPassword in the chain, got %v", errWrong)
	}
}

func TestManager_LoginMalformedStoredHash(t *testing.T) {
	m := testManager(t)
	p := registerTestUser(t, m, "alice@example.com")

	db := m.users.(*SQLiteUserRepository).db
	if _, err := db.ExecContext(t.Context(),
		`UPDATE users SET password_hash = 'not-a-phc-string' WHERE id = ?`, p.ID); err != nil {
		t.Fatalf("corrupting hash: %v", err)
	}

	_, err := m.Login(t.Context(), "alice@example.com", "correct-horse")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
	}
	if !errors.Is(err, ErrMalformedHash) {
		t.Errorf("Login() error = %v, want ErrMalformedHash kept in the chain", err)
	}
}

func TestManager_Refresh(t *testing.T) {
	m := testManager(t)
	p := registerTestUser(t, m, "alice@example.com")

	pair, err := m.Login(t.Context(), "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	next, err := m.Refresh(t.Context(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Error("Refresh() should issue a new refresh token")
	}

	user, err := m.Authenticate(t.Context(), next.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if user.ID != p.ID {
		t.Errorf("user ID = %q, want %q", user.ID, p.ID)
	}

	// Stateless: the original refresh token still works.
	if _, err := m.Refresh(t.Context(), pair.RefreshToken); err != nil {
		t.Errorf("Refresh(reused) error = %v", err)
	}
}

func TestManager_ScopesDoNotCross(t *testing.T) {
	m := testManager(t)
	registerTestUser(t, m, "alice@example.com")

	pair, err := m.Login(t.Context(), "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if _, err := m.Refresh(t.Context(), pair.AccessToken); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Refresh(access token) error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := m.Authenticate(t.Context(), pair.RefreshToken); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Authenticate(refresh token) error = %v, want ErrInvalidCredentials", err)
	}
}

func TestManager_AuthenticateUnknownSubject(t *testing.T) {
	m := testManager(t)

	token, err := m.access.Issue("ghost")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = m.Authenticate(t.Context(), token)
	if !errors.Is(err, ErrInvalidCredentials) || !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Authenticate() error = %v, want ErrInvalidCredentials wrapping ErrUserNotFound", err)
	}
}

func TestManager_Profile(t *testing.T) {
	m := testManager(t)
	want := registerTestUser(t, m, "alice@example.com")

	got, err := m.Profile(t.Context(), want.ID)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if got != want {
		t.Errorf("Profile() = %+v, want %+v", got, want)
	}

	if _, err := m.Profile(t.Context(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Profile(missing) error = %v, want ErrUserNotFound", err)
	}
}
