package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"DENAC/internal/auth"
)

func TestDisabledRoutes(t *testing.T) {
	h := NewAuthHandler(auth.NewGoogleAuth(auth.Config{}), nil)
	routes := map[string]http.HandlerFunc{
		"/auth/google":          h.BeginAuthHandler,
		"/auth/google/callback": h.CallbackHandler,
		"/logout/google":        h.LogoutHandler,
	}
	for path, fn := range routes {
		rec := httptest.NewRecorder()
		fn(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want 503", path, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	h.LoginPage(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "google disabled") {
		t.Errorf("login page: %d %s", rec.Code, rec.Body.String())
	}
}

func TestSignedInBeginRedirectsHome(t *testing.T) {
	g := auth.NewGoogleAuth(auth.Config{GoogleKey: "k", GoogleSecret: "s", SecretKey: []byte("secret"), SessionDuration: time.Hour})
	h := NewAuthHandler(g, nil)

	rec := httptest.NewRecorder()
	if err := g.StoreSession(rec, auth.User{Name: "Ada"}); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	h.BeginAuthHandler(rec, req)
	if rec.Code != http.StatusTemporaryRedirect || rec.Header().Get("Location") != "/" {
		t.Fatalf("got %d -> %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestLogoutClearsSession(t *testing.T) {
	g := auth.NewGoogleAuth(auth.Config{GoogleKey: "k", GoogleSecret: "s", SecretKey: []byte("secret")})
	h := NewAuthHandler(g, nil)
	rec := httptest.NewRecorder()
	h.LogoutHandler(rec, httptest.NewRequest(http.MethodGet, "/logout/google", nil))
	if rec.Code != http.StatusTemporaryRedirect || rec.Header().Get("Location") != "/" {
		t.Fatalf("got %d -> %q", rec.Code, rec.Header().Get("Location"))
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("session cookie not cleared")
	}
}

func TestCallbackFailure(t *testing.T) {
	g := auth.NewGoogleAuth(auth.Config{GoogleKey: "k", GoogleSecret: "s", SecretKey: []byte("secret")})
	h := NewAuthHandler(g, nil)
	rec := httptest.NewRecorder()
	h.CallbackHandler(rec, httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=x&state=y", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
