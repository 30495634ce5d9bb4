// Package session implements Redis-backed cookie sessions. A session is a
// JSON map keyed by a random session ID; the cookie carries only the ID.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shashiranjanraj/enventory/pkg/cache"
	"github.com/shashiranjanraj/enventory/pkg/logger"
	"github.com/shashiranjanraj/enventory/pkg/rbac"
)

const (
	// CookieName is the session cookie sent to browsers.
	CookieName = "enventory_session"

	// TTL is session lifetime; refreshed on every Save.
	TTL = 24 * time.Hour

	principalKey = "user"
	redisPrefix  = "session:"
)

var ErrNoStore = errors.New("session: redis unavailable")

// Session holds the per-visitor state for one request.
type Session struct {
	ID     string
	values map[string]json.RawMessage
	dirty  bool
}

func newID() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic("session: rand failed: " + err.Error())
	}
	return hex.EncodeToString(buf)
}

// load fetches an existing session from Redis, or returns a fresh one.
func load(ctx context.Context, id string) *Session {
	s := &Session{ID: id, values: map[string]json.RawMessage{}}
	if id == "" || cache.RDB == nil {
		if id == "" {
			s.ID = newID()
		}
		return s
	}

	var values map[string]json.RawMessage
	ok, err := cache.Get(ctx, redisPrefix+id, &values)
	if err != nil {
		logger.Warn("session load failed", "error", err.Error())
	}
	if ok {
		s.values = values
	}
	return s
}

// Set stores a JSON-marshalable value under key.
func (s *Session) Set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.values[key] = raw
	s.dirty = true
	return nil
}

// Get unmarshals the value under key into dest. Returns false on a miss.
func (s *Session) Get(key string, dest interface{}) bool {
	raw, ok := s.values[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// Delete removes a single key.
func (s *Session) Delete(key string) {
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.dirty = true
	}
}

// Save writes the session to Redis and refreshes the cookie. Called only
// when something changed.
func (s *Session) Save(ctx context.Context, w http.ResponseWriter) error {
	if cache.RDB == nil {
		return ErrNoStore
	}
	if err := cache.Set(ctx, redisPrefix+s.ID, s.values, TTL); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.ID,
		Path:     "/",
		MaxAge:   int(TTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.dirty = false
	return nil
}

// Destroy deletes the session from Redis and expires the cookie.
func (s *Session) Destroy(ctx context.Context, w http.ResponseWriter) error {
	s.values = map[string]json.RawMessage{}
	s.dirty = false

	if err := cache.Del(ctx, redisPrefix+s.ID); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// SetPrincipal stores the authenticated identity snapshot in the session.
func (s *Session) SetPrincipal(p rbac.Principal) error {
	return s.Set(principalKey, p)
}

// Principal returns the identity snapshot stored at login, if any.
func (s *Session) Principal() (rbac.Principal, bool) {
	var p rbac.Principal
	if !s.Get(principalKey, &p) {
		return rbac.Principal{}, false
	}
	return p, p.ID != ""
}

type ctxKey struct{}

// FromCtx returns the request session. The second result is false only for
// requests that did not pass through Middleware.
func FromCtx(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok
}

// Middleware attaches a session to every request. The session is lazy: it
// is persisted only when a handler mutates it and calls Save.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(CookieName); err == nil {
			id = c.Value
		}

		s := load(r.Context(), id)
		ctx := context.WithValue(r.Context(), ctxKey{}, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
