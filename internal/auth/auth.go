// Package auth is the Google sign-in gate. PulpuWEB's GoogleAuth runs the
// OAuth dance and signs the session cookie; this package adds the disabled
// gate, the cookie Secure flag and the request-scoped user.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	pulpuwebAuth "github.com/gchalakovmmi/PulpuWEB/auth"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
)

// CookieName is the session cookie written by StoreSession.
const CookieName = "auth_session"

var (
	ErrNoSession      = errors.New("auth: no session")
	ErrSessionExpired = errors.New("auth: session expired")
	ErrAuthDisabled   = errors.New("auth: google sign-in is not configured")
)

type Config struct {
	GoogleKey       string
	GoogleSecret    string
	CallbackURL     string
	SecretKey       []byte
	SessionDuration time.Duration
	// Secure marks cookies as HTTPS only.
	Secure bool
}

// Enabled reports whether both Google credentials are present.
func (c Config) Enabled() bool {
	return c.GoogleKey != "" && c.GoogleSecret != ""
}

// User is the identity kept in the session cookie.
type User struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Initial is the avatar fallback letter: the upper-cased first letter of the
// name, or "U".
func (u User) Initial() string {
	name := strings.TrimSpace(u.Name)
	if name == "" {
		return "U"
	}
	r, _ := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r))
}

// Session is a decoded session cookie.
type Session struct {
	User User
}

type GoogleAuth struct {
	config Config
	google *pulpuwebAuth.GoogleAuth
}

// NewGoogleAuth registers the Google provider and configures gothic's state
// store. With no credentials the gate is returned disabled and nothing is
// registered.
func NewGoogleAuth(cfg Config) *GoogleAuth {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = 24 * time.Hour
	}
	if len(cfg.SecretKey) == 0 {
		if key, err := pulpuwebAuth.GenerateSecretKey(); err == nil {
			cfg.SecretKey = key
		}
	}

	g := &GoogleAuth{config: cfg}
	if !cfg.Enabled() {
		return g
	}

	store := sessions.NewCookieStore(cfg.SecretKey)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.Secure
	gothic.Store = store

	g.google = pulpuwebAuth.NewGoogleAuth(&pulpuwebAuth.Config{
		GoogleKey:       cfg.GoogleKey,
		GoogleSecret:    cfg.GoogleSecret,
		CallbackURL:     cfg.CallbackURL,
		SecretKey:       cfg.SecretKey,
		SessionDuration: cfg.SessionDuration,
	})
	return g
}

func (g *GoogleAuth) Enabled() bool {
	return g.google != nil
}

// BeginAuthHandler redirects to Google's consent screen.
func (g *GoogleAuth) BeginAuthHandler(w http.ResponseWriter, r *http.Request) {
	if !g.Enabled() {
		http.Error(w, ErrAuthDisabled.Error(), http.StatusServiceUnavailable)
		return
	}
	g.google.BeginAuthHandler(w, r)
}

// CompleteUserAuth finishes the OAuth exchange on the callback request.
func (g *GoogleAuth) CompleteUserAuth(w http.ResponseWriter, r *http.Request) (User, error) {
	if !g.Enabled() {
		return User{}, ErrAuthDisabled
	}
	gu, err := g.google.CompleteUserAuth(w, r)
	if err != nil {
		return User{}, err
	}
	return User{
		UserID:    gu.UserID,
		Name:      gu.Name,
		Email:     gu.Email,
		AvatarURL: gu.AvatarURL,
	}, nil
}

// StoreSession writes the signed session cookie, valid for the configured
// session duration.
func (g *GoogleAuth) StoreSession(w http.ResponseWriter, user User) error {
	if !g.Enabled() {
		return ErrAuthDisabled
	}
	var err error
	g.rewriteCookies(w, func(cw http.ResponseWriter) {
		err = g.google.StoreSession(cw, goth.User{
			UserID:    user.UserID,
			Name:      user.Name,
			Email:     user.Email,
			AvatarURL: user.AvatarURL,
		})
	}, int(g.config.SessionDuration.Seconds()))
	return err
}

// GetSession decodes the session cookie on r.
func (g *GoogleAuth) GetSession(r *http.Request) (*Session, error) {
	if !g.Enabled() {
		return nil, ErrAuthDisabled
	}
	if _, err := r.Cookie(CookieName); err != nil {
		return nil, ErrNoSession
	}
	s, err := g.google.GetSession(r)
	if err != nil {
		if err.Error() == "session expired" {
			return nil, ErrSessionExpired
		}
		return nil, errors.Join(ErrNoSession, err)
	}
	return &Session{User: User{
		UserID:    s.User.UserID,
		Name:      s.User.Name,
		Email:     s.User.Email,
		AvatarURL: s.User.AvatarURL,
		ExpiresAt: s.ExpiresAt,
	}}, nil
}

// ClearSession expires the session cookie.
func (g *GoogleAuth) ClearSession(w http.ResponseWriter) {
	if !g.Enabled() {
		return
	}
	g.rewriteCookies(w, g.google.ClearSession, -1)
}

// LogoutHandler drops goth's provider session.
func (g *GoogleAuth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if !g.Enabled() {
		return
	}
	g.google.LogoutHandler(w, r)
}

// RedirectSignedIn sends requests that already carry a valid session to
// target and serves the rest with next.
func (g *GoogleAuth) RedirectSignedIn(target string, next http.HandlerFunc) http.HandlerFunc {
	if !g.Enabled() {
		return next
	}
	return g.google.WithOutGoogleAuth(target, next)
}

// WithUser attaches the signed-in user, if any, to the request context.
func (g *GoogleAuth) WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session, err := g.GetSession(r); err == nil {
			r = r.WithContext(NewContext(r.Context(), &session.User))
		}
		next.ServeHTTP(w, r)
	})
}

// rewriteCookies runs write against a scratch header and copies the cookies
// it sets onto w with Secure taken from the config and the given MaxAge.
func (g *GoogleAuth) rewriteCookies(w http.ResponseWriter, write func(http.ResponseWriter), maxAge int) {
	scratch := &headerWriter{header: http.Header{}}
	write(scratch)
	for _, c := range (&http.Response{Header: scratch.header}).Cookies() {
		c.Secure = g.config.Secure
		c.MaxAge = maxAge
		http.SetCookie(w, c)
	}
}

type headerWriter struct {
	header http.Header
}

func (h *headerWriter) Header() http.Header { return h.header }
func (h *headerWriter) Write(b []byte) (int, error) { return len(b), nil }
func (h *headerWriter) WriteHeader(int) {}

type contextKey struct{}

func NewContext(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromContext returns the user stored by WithUser.
func FromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(contextKey{}).(*User)
	return u, ok && u != nil
}

// CurrentUser returns the signed-in user of r.
func CurrentUser(r *http.Request) (*User, bool) {
	return FromContext(r.Context())
}
