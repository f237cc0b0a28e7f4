package auth

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"DENAC/internal/auth"
	"DENAC/web/templates/pages/login"
)

type AuthHandler struct {
	googleAuth *auth.GoogleAuth
	logger     *slog.Logger
}

func NewAuthHandler(googleAuth *auth.GoogleAuth, lg *slog.Logger) *AuthHandler {
	if lg == nil {
		lg = slog.Default()
	}
	return &AuthHandler{
		googleAuth: googleAuth,
		logger:     lg,
	}
}

// LoginPage renders the sign-in page.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	templ.Handler(login.Login(h.googleAuth.Enabled())).ServeHTTP(w, r)
}

func (h *AuthHandler) BeginAuthHandler(w http.ResponseWriter, r *http.Request) {
	if !h.googleAuth.Enabled() {
		http.Error(w, auth.ErrAuthDisabled.Error(), http.StatusServiceUnavailable)
		return
	}
	h.googleAuth.RedirectSignedIn("/", h.googleAuth.BeginAuthHandler)(w, r)
}

func (h *AuthHandler) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	if !h.googleAuth.Enabled() {
		http.Error(w, auth.ErrAuthDisabled.Error(), http.StatusServiceUnavailable)
		return
	}
	user, err := h.googleAuth.CompleteUserAuth(w, r)
	if err != nil {
		h.logger.Warn("google sign-in failed", "error", err)
		http.Error(w, "Authentication failed", http.StatusUnauthorized)
		return
	}

	if err := h.googleAuth.StoreSession(w, user); err != nil {
		h.logger.Error("session creation failed", "error", err)
		http.Error(w, "Session creation failed", http.StatusInternalServerError)
		return
	}

	h.logger.Info("user signed in", "user_id", user.UserID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if !h.googleAuth.Enabled() {
		http.Error(w, auth.ErrAuthDisabled.Error(), http.StatusServiceUnavailable)
		return
	}
	h.googleAuth.LogoutHandler(w, r)
	h.googleAuth.ClearSession(w)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}
