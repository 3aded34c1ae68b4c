package main

import (
	"crypto/sha256"
	"encoding/gob"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/hkdf"
)

const (
	sessionCookieName = "session"
	loggedInKey       = "logged_in"
	flashKey          = "_flash"
)

var (
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidPassword = errors.New("invalid password")
	ErrUnauthorized    = errors.New("unauthorized")
)

func init() {
	gob.Register(flash{})
}

// authenticate checks a login submission against the configured admin
// credentials. The comparison is a plain string equality: credentials are
// neither hashed nor compared in constant time.
func authenticate(cfg Config, username, password string) error {
	if username != cfg.AdminUsername {
		return ErrInvalidUsername
	}
	if password != cfg.AdminPassword {
		return ErrInvalidPassword
	}
	return nil
}

// deriveKey stretches the configured secret into a fixed-size key for the
// given purpose.
func deriveKey(secret, purpose string) ([]byte, error) {
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("postboard "+purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

// newSessionStore returns a cookie store that signs and encrypts session
// values with keys derived from cfg.SecretKey.
func newSessionStore(cfg Config) (*sessions.CookieStore, error) {
	hashKey, err := deriveKey(cfg.SecretKey, "session authentication")
	if err != nil {
		return nil, err
	}
	blockKey, err := deriveKey(cfg.SecretKey, "session encryption")
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	// Also bounds how old a signed cookie may be when it is decoded.
	store.MaxAge(store.Options.MaxAge)
	return store, nil
}

// session returns the client's session. A cookie that fails to decode, for
// example after a secret rotation, yields a fresh empty session.
func (b *Blog) session(r *http.Request) *sessions.Session {
	s, err := b.sessions.Get(r, sessionCookieName)
	if err != nil {
		b.logger.Warn("discarding unreadable session", "error", err)
	}
	return s
}

func isLoggedIn(s *sessions.Session) bool {
	loggedIn, _ := s.Values[loggedInKey].(bool)
	return loggedIn
}

func addFlash(s *sessions.Session, category, message string) {
	s.AddFlash(flash{Category: category, Message: message}, flashKey)
}

// popFlashes removes and returns the pending flashes. The session must be
// saved afterwards for the removal to stick.
func popFlashes(s *sessions.Session) []flash {
	var out []flash
	for _, v := range s.Flashes(flashKey) {
		if f, ok := v.(flash); ok {
			out = append(out, f)
		}
	}
	return out
}

// authorize reports whether the request carries a logged-in session.
func (b *Blog) authorize(r *http.Request) (*sessions.Session, error) {
	s := b.session(r)
	if !isLoggedIn(s) {
		return s, ErrUnauthorized
	}
	return s, nil
}

// requireLogin aborts with a bare 401 unless the session is logged in.
func (b *Blog) requireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := b.authorize(r); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// requireLoginJSON answers a JSON failure status unless the session is
// logged in, and leaves a flash explaining why.
func (b *Blog) requireLoginJSON(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := b.authorize(r)
		if err != nil {
			addFlash(s, "danger", "Action unavailable for guests, please log in.")
			if err := s.Save(r, w); err != nil {
				b.serverError(w, r, err)
				return
			}
			b.writeJSON(w, r, http.StatusUnauthorized, deleteResult{Status: 0, Message: "Please log in."})
			return
		}
		next(w, r)
	}
}
