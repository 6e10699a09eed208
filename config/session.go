package config

import (
	"strings"
	"time"
)

// SessionConfig controls persisted sessions and the browser cookie that names them.
type SessionConfig struct {
	TTL        time.Duration `env:"SESSION_TTL"              envDefault:"8h"`
	CookieName string        `env:"SESSION_COOKIE_NAME"      envDefault:"session_id"`
	KeyPrefix  string        `env:"SESSION_REDIS_KEY_PREFIX" envDefault:"trail:session:"`
}

// Sanitize restores defaults for empty or non-positive values.
func (s *SessionConfig) Sanitize() {
	if s.TTL <= 0 {
		s.TTL = 8 * time.Hour
	}
	if s.CookieName = strings.TrimSpace(s.CookieName); s.CookieName == "" {
		s.CookieName = "session_id"
	}
	if s.KeyPrefix == "" {
		s.KeyPrefix = "trail:session:"
	}
}
