package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register",
		`{"name":"Ada","email":"ada@example.com","password":"hunter22"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	body := decode[userResponse](t, rec)
	if body.User.ID == "" {
		t.Error("profile id should be set")
	}
	if body.User.Name != "Ada" || body.User.Email != "ada@example.com" {
		t.Errorf("profile = %+v", body.User)
	}
	if body.User.Locale != "en-GB" {
		t.Errorf("locale = %q, want default en-GB", body.User.Locale)
	}
	if strings.Contains(rec.Body.String(), "password") || strings.Contains(rec.Body.String(), "argon2") {
		t.Errorf("response leaks credential material: %s", rec.Body.String())
	}
}

func TestRegister_ExplicitLocale(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register",
		`{"name":"Ada","email":"ada@example.com","password":"hunter22","locale":"fr-FR"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	if got := decode[userResponse](t, rec).User.Locale; got != "fr-FR" {
		t.Errorf("locale = %q, want fr-FR", got)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ada@example.com", "hunter22")

	rec := env.do(t, http.MethodPost, "/auth/register",
		`{"name":"Other","email":"ada@example.com","password":"different"}`, "")
	assertError(t, rec, http.StatusConflict, ErrCodeConflict)
}

func TestRegister_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed json", `{"name":`, ErrCodeBadRequest},
		{"empty body", ``, ErrCodeBadRequest},
		{"missing name", `{"email":"a@example.com","password":"x"}`, ErrCodeValidation},
		{"bad email", `{"name":"A","email":"not-an-email","password":"x"}`, ErrCodeValidation},
		{"missing password", `{"name":"A","email":"a@example.com"}`, ErrCodeValidation},
		{"bad locale", `{"name":"A","email":"a@example.com","password":"x","locale":"!!"}`, ErrCodeValidation},
		{"name too long", `{"name":"` + strings.Repeat("n", 101) + `","email":"a@example.com","password":"x"}`, ErrCodeValidation},
	}

	env := newTestEnv(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/auth/register", tt.body, "")
			assertError(t, rec, http.StatusBadRequest, tt.code)
		})
	}
}

func TestRegister_ValidationMessageNamesField(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register", `{"name":"A","password":"x"}`, "")
	body := assertError(t, rec, http.StatusBadRequest, ErrCodeValidation)
	if body.Message != "email: is required" {
		t.Errorf("message = %q, want %q", body.Message, "email: is required")
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ada@example.com", "hunter22")

	pair := env.login(t, "ada@example.com", "hunter22")
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("pair = %+v, want both tokens", pair)
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Error("access and refresh tokens should differ")
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("token_type = %q, want Bearer", pair.TokenType)
	}
	if pair.ExpiresIn != 900 {
		t.Errorf("expires_in = %d, want 900", pair.ExpiresIn)
	}
}

func TestLogin_FailuresLookAlike(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ada@example.com", "hunter22")

	unknown := env.do(t, http.MethodPost, "/auth/login", `{"email":"nobody@example.com","password":"hunter22"}`, "")
	wrong := env.do(t, http.MethodPost, "/auth/login", `{"email":"ada@example.com","password":"wrong"}`, "")

	assertError(t, unknown, http.StatusUnauthorized, ErrCodeUnauthorized)
	assertError(t, wrong, http.StatusUnauthorized, ErrCodeUnauthorized)
	if unknown.Body.String() != wrong.Body.String() {
		t.Errorf("bodies differ:\nunknown email: %s\nwrong password: %s", unknown.Body.String(), wrong.Body.String())
	}
}

func TestLogin_UnusableStoredHash(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ada@example.com", "hunter22")

	if _, err := env.db.ExecContext(t.Context(),
		`UPDATE users SET password_hash = 'not-a-phc-string' WHERE email = ?`, "ada@example.com"); err != nil {
		t.Fatalf("corrupting hash: %v", err)
	}

	corrupt := env.do(t, http.MethodPost, "/auth/login", `{"email":"ada@example.com","password":"hunter22"}`, "")
	unknown := env.do(t, http.MethodPost, "/auth/login", `{"email":"nobody@example.com","password":"hunter22"}`, "")

	body := assertError(t, corrupt, http.StatusUnauthorized, ErrCodeUnauthorized)
	if body.Message != "invalid credentials" {
		t.Errorf("message = %q, want invalid credentials", body.Message)
	}
	if corrupt.Body.String() != unknown.Body.String() {
		t.Errorf("bodies differ:\nunusable hash: %s\nunknown email: %s", corrupt.Body.String(), unknown.Body.String())
	}
}

func TestLogin_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/login", `{"email":"ada@example.com"}`, "")
	assertError(t, rec, http.StatusBadRequest, ErrCodeValidation)
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ada@example.com", "hunter22")
	pair := env.login(t, "ada@example.com", "hunter22")

	rec := env.do(t, http.MethodPost, "/auth/refresh", `{"refresh_token":"`+pair.RefreshToken+`"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	fresh := decode[struct {
		AccessToken string `json:"access_token"`
	}](t, rec)

	if got := env.do(t, http.MethodGet, "/user", "", fresh.AccessToken); got.Code != http.StatusOK {
		t.Errorf("refreshed access token rejected: %d", got.Code)
	}

	// The old refresh token is not revoked.
	rec = env.do(t, http.MethodPost, "/auth/refresh", `{"refresh_token":"`+pair.RefreshToken+`"}`, "")
	if rec.Code != http.StatusOK {
		t.Errorf("reusing refresh token status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ada@example.com", "hunter22")
	pair := env.login(t, "ada@example.com", "hunter22")

	rec := env.do(t, http.MethodPost, "/auth/refresh", `{"refresh_token":"`+pair.AccessToken+`"}`, "")
	body := assertError(t, rec, http.StatusUnauthorized, ErrCodeUnauthorized)
	if body.Message != "invalid credentials" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestRefresh_Expired(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ada@example.com", "hunter22")
	pair := env.login(t, "ada@example.com", "hunter22")

	env.clock.Advance(7*24*time.Hour + time.Minute)

	rec := env.do(t, http.MethodPost, "/auth/refresh", `{"refresh_token":"`+pair.RefreshToken+`"}`, "")
	body := assertError(t, rec, http.StatusUnauthorized, ErrCodeUnauthorized)
	if body.Message != "invalid credentials" {
		t.Errorf("message = %q", body.Message)
	}
	if strings.Contains(rec.Body.String(), "access_token") || strings.Contains(rec.Body.String(), "refresh_token") {
		t.Errorf("expired refresh issued tokens: %s", rec.Body.String())
	}
}

func TestRefresh_Missing(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/refresh", `{}`, "")
	assertError(t, rec, http.StatusBadRequest, ErrCodeValidation)
}

func TestAuthMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ada@example.com", "hunter22")
	env.login(t, "ada@example.com", "hunter22")
	env.do(t, http.MethodPost, "/auth/login", `{"email":"ada@example.com","password":"nope"}`, "")
	env.do(t, http.MethodPost, "/auth/register", `{"name":"A","email":"ada@example.com","password":"x"}`, "")

	events := env.srv.metrics.authEvents
	checks := []struct {
		operation, outcome string
		want               float64
	}{
		{"register", outcomeSuccess, 1},
		{"register", outcomeRejected, 1},
		{"login", outcomeSuccess, 1},
		{"login", outcomeRejected, 1},
		{"login", outcomeError, 0},
	}
	for _, c := range checks {
		if got := testutil.ToFloat64(events.WithLabelValues(c.operation, c.outcome)); got != c.want {
			t.Errorf("auth events {%s,%s} = %v, want %v", c.operation, c.outcome, got, c.want)
		}
	}
}

func TestGetUser(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t)

	rec := env.do(t, http.MethodGet, "/user", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	if got := decode[userResponse](t, rec).User.Email; got != "owner@example.com" {
		t.Errorf("email = %q, want owner@example.com", got)
	}
}
