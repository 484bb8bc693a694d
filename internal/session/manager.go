package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const (
	defaultCookieName = "luravie_session"
	defaultCookiePath = "/"
	defaultMaxAge     = 30 * 24 * time.Hour
)

var (
	// ErrInvalidConfig rejects a Manager without a hash key or with a bad block key length.
	ErrInvalidConfig = errors.New("session: invalid config")
	// ErrMalformed marks a cookie that failed to decode. The caller still gets an empty store.
	ErrMalformed = errors.New("session: malformed cookie")
)

// Config controls cookie encoding.
type Config struct {
	CookieName string
	CookiePath string
	HashKey    []byte
	BlockKey   []byte
	Secure     bool
	MaxAge     time.Duration
	Now        func() time.Time
}

// Manager decodes and persists the browser store via a signed and encrypted cookie.
type Manager struct {
	cfg   Config
	codec *securecookie.SecureCookie
	now   func() time.Time
}

// NewManager fills cookie defaults (luravie_session, path /, 30 days) and
// builds the securecookie codec.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.HashKey) == 0 {
		return nil, fmt.Errorf("%w: hash key is required", ErrInvalidConfig)
	}
	if n := len(cfg.BlockKey); n != 0 && n != 16 && n != 24 && n != 32 {
		return nil, fmt.Errorf("%w: block key must be 16, 24 or 32 bytes", ErrInvalidConfig)
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = defaultCookiePath
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaultMaxAge
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	codec := securecookie.New(cfg.HashKey, cfg.BlockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(cfg.MaxAge.Seconds()))

	return &Manager{cfg: cfg, codec: codec, now: now}, nil
}

// GenerateKeys returns random hash and block keys for environments without configured ones.
// Cookies signed with them do not survive a restart.
func GenerateKeys() (hashKey, blockKey []byte) {
	return securecookie.GenerateRandomKey(64), securecookie.GenerateRandomKey(32)
}

// New returns an empty store with a fresh id.
func (m *Manager) New() *Store {
	now := m.now().UTC()
	return &Store{data: Data{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}}
}

// Load decodes the store from the request. A missing cookie yields an empty
// store. A cookie that fails to decode also yields an empty store, together
// with an error wrapping ErrMalformed so the caller can log it.
func (m *Manager) Load(r *http.Request) (*Store, error) {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return m.New(), nil
	}

	var stored Data
	if err := m.codec.Decode(m.cfg.CookieName, cookie.Value, &stored); err != nil {
		store := m.New()
		store.dirty = true
		return store, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	return &Store{data: stored}, nil
}

// Save writes the store back when it changed.
func (m *Manager) Save(w http.ResponseWriter, store *Store) error {
	if store == nil {
		return errors.New("session: nil store")
	}
	if !store.dirty {
		return nil
	}
	store.data.UpdatedAt = m.now().UTC()

	encoded, err := m.codec.Encode(m.cfg.CookieName, store.data)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    encoded,
		Path:     m.cfg.CookiePath,
		MaxAge:   int(m.cfg.MaxAge.Seconds()),
		Expires:  m.now().Add(m.cfg.MaxAge),
		Secure:   m.cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	store.dirty = false
	return nil
}
