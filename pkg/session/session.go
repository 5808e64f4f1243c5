package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Keys under which the session is persisted. They are cleared together.
const (
	TokenKey = "auth_token"
	UserKey  = "auth_user"
)

// FailureHook is notified when the persistent store fails. op is one of
// "get", "set" or "delete".
type FailureHook func(op string, err error)

// Session holds the bearer token and a cached user record for one logged-in
// identity. It is shared by reference between the HTTP client and its owner
// and is safe for concurrent use.
//
// Persistence is best effort: the first store failure is logged and the
// session continues memory-only for the rest of its lifetime. A nil store
// means no persistent storage is available at all.
type Session struct {
	mu       sync.Mutex
	token    string
	user     []byte
	store    Store
	degraded bool

	logger    *zap.Logger
	onFailure FailureHook
	opTimeout time.Duration
}

// Option customises a Session.
type Option func(*Session)

// WithLogger attaches a logger for store failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFailureHook registers a callback for store failures (metrics).
func WithFailureHook(h FailureHook) Option {
	return func(s *Session) { s.onFailure = h }
}

// WithStoreTimeout bounds each store round trip.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.opTimeout = d
		}
	}
}

// New builds a session over store. store may be nil.
func New(store Store, opts ...Option) *Session {
	s := &Session{
		store:     store,
		logger:    zap.NewNop(),
		opTimeout: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewWithToken builds a memory-only session that already carries token.
func NewWithToken(token string, opts ...Option) *Session {
	s := New(nil, opts...)
	s.token = token
	return s
}

// SetToken stores token in memory and, best effort, in the store.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.put(TokenKey, token)
}

// Token returns the in-memory token, hydrating it from the store when memory
// is empty. It returns "" when neither source has a value.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		if v, ok := s.get(TokenKey); ok {
			s.token = v
		}
	}
	return s.token
}

// ClearToken drops the token and the cached user from memory and store.
func (s *Session) ClearToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	s.del(TokenKey, UserKey)
}

// SetUser caches v (JSON encoded) next to the token.
func (s *Session) SetUser(v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = raw
	s.put(UserKey, string(raw))
	return nil
}

// User decodes the cached user into dest. It reports false when no user is
// cached or the cached value no longer decodes.
func (s *Session) User(dest interface{}) bool {
	s.mu.Lock()
	if s.user == nil {
		if v, ok := s.get(UserKey); ok {
			s.user = []byte(v)
		}
	}
	raw := s.user
	s.mu.Unlock()

	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// ExpiresAt returns the exp claim when the token is a JWT.
func (s *Session) ExpiresAt() (time.Time, bool) {
	return ExpiryOf(s.Token())
}

// ExpiryOf parses the exp claim of a JWT without verifying its signature; the
// backend remains the authority. Opaque tokens report no expiry.
func ExpiryOf(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the token carries an exp claim at or before now.
func (s *Session) Expired(now time.Time) bool {
	exp, ok := s.ExpiresAt()
	return ok && !now.Before(exp)
}

// Persistent reports whether writes still reach the store.
func (s *Session) Persistent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usable()
}

func (s *Session) usable() bool {
	return s.store != nil && !s.degraded
}

// get, put and del must be called with s.mu held. get and put skip a
// degraded store.

func (s *Session) get(key string) (string, bool) {
	if !s.usable() {
		return "", false
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()
	v, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.fail("get", err)
		return "", false
	}
	return v, ok && v != ""
}

func (s *Session) put(key, value string) {
	if !s.usable() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()
	if err := s.store.Set(ctx, key, value); err != nil {
		s.fail("set", err)
	}
}

// del still reaches a degraded store: a logout must not leave a token behind
// for the next process to hydrate.
func (s *Session) del(keys ...string) {
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()
	err := s.store.Delete(ctx, keys...)
	switch {
	case err == nil:
	case s.degraded:
		s.logger.Warn("session store delete failed", zap.Strings("keys", keys), zap.Error(err))
	default:
		s.fail("delete", err)
	}
}

func (s *Session) fail(op string, err error) {
	s.degraded = true
	s.logger.Warn("session store unavailable, continuing in memory",
		zap.String("op", op), zap.Error(err))
	if s.onFailure != nil {
		s.onFailure(op, err)
	}
}
