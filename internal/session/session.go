// Package session owns the logged-in user's auth state. A Session is created
// per browser by Manager.Middleware, travels in the request context, and is
// only updated through SetAuth and Clear.
package session

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"holidaze/internal/domain"
)

const CookieName = "holidaze_session"

type ctxKey struct{}

type Session struct {
	id  string
	mgr *Manager

	mu   sync.RWMutex
	auth domain.AuthPayload
}

func (s *Session) ID() string { return s.id }

// Auth returns the exact login response body, or nil.
func (s *Session) Auth() domain.AuthPayload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auth
}

func (s *Session) Authenticated() bool { return len(s.Auth()) > 0 }

// Token extracts the "jwt" field of the auth payload.
func (s *Session) Token() string { return tokenOf(s.Auth()) }

// SetAuth replaces the auth state and persists it. Last writer wins.
func (s *Session) SetAuth(ctx context.Context, auth domain.AuthPayload) error {
	ttl := s.mgr.ttlFor(auth)
	if err := s.mgr.store.Set(ctx, s.id, auth, ttl); err != nil {
		return err
	}
	s.mu.Lock()
	s.auth = append(domain.AuthPayload(nil), auth...)
	s.mu.Unlock()
	return nil
}

func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.auth = nil
	s.mu.Unlock()
	return s.mgr.store.Del(ctx, s.id)
}

type Manager struct {
	store  domain.SessionStore
	ttl    time.Duration
	maxTTL time.Duration
	secure bool
}

func NewManager(store domain.SessionStore, ttl, maxTTL time.Duration, secure bool) *Manager {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	if maxTTL < ttl {
		maxTTL = ttl
	}
	return &Manager{store: store, ttl: ttl, maxTTL: maxTTL, secure: secure}
}

// Middleware attaches the browser's Session to the request context, starting
// a fresh one when the cookie is missing or unknown.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.load(w, r)
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
	})
}

// RequireAuth sends anonymous visitors to the login page.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := FromContext(r.Context())
		if s == nil || !s.Authenticated() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Manager) load(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(CookieName); err == nil {
		if _, perr := uuid.Parse(c.Value); perr == nil {
			auth, ok, err := m.store.Get(r.Context(), c.Value)
			if err != nil {
				log.Error().Err(err).Msg("session lookup failed")
			}
			if ok {
				return &Session{id: c.Value, mgr: m, auth: auth}
			}
			// unknown or expired id: keep it, nothing is stored yet
			return &Session{id: c.Value, mgr: m}
		}
	}
	s := &Session{id: uuid.NewString(), mgr: m}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.id,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

// ttlFor uses the jwt expiry when there is one, capped at maxTTL.
func (m *Manager) ttlFor(auth domain.AuthPayload) time.Duration {
	tok := tokenOf(auth)
	if tok == "" {
		return m.ttl
	}
	t, _, err := jwt.NewParser().ParseUnverified(tok, &jwt.RegisteredClaims{})
	if err != nil {
		return m.ttl
	}
	exp, err := t.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return m.ttl
	}
	d := time.Until(exp.Time)
	switch {
	case d <= 0:
		return time.Second
	case d > m.maxTTL:
		return m.maxTTL
	}
	return d
}

func tokenOf(auth domain.AuthPayload) string {
	if len(auth) == 0 {
		return ""
	}
	var p struct {
		JWT string `json:"jwt"`
	}
	if err := json.Unmarshal(auth, &p); err != nil {
		return ""
	}
	return p.JWT
}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
