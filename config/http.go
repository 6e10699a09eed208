package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the externally visible URL of the dashboard (e.g., "https://school.example.org").
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request host.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// CookieSecure marks session cookies Secure. Derived from BaseURL when unset outside dev.
	CookieSecure bool `env:"APP_COOKIE_SECURE" envDefault:"false"`

	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT"    envDefault:"15s"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize(isDev bool) {
	h.CookieDomain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(h.CookieDomain)), ".")
	h.BaseURL = strings.TrimRight(strings.TrimSpace(h.BaseURL), "/")
	if !isDev && strings.HasPrefix(h.BaseURL, "https://") {
		h.CookieSecure = true
	}
	if h.ReadHeaderTimeout <= 0 {
		h.ReadHeaderTimeout = 5 * time.Second
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 15 * time.Second
	}
}

// Validate rejects a cookie domain browsers would refuse and a malformed base URL.
func (h *HTTPConfig) Validate() error {
	if _, err := url.ParseRequestURI(h.BaseURL); err != nil {
		return fmt.Errorf("APP_BASE_URL %q is not a valid URL: %w", h.BaseURL, err)
	}
	return ValidateCookieDomain(h.CookieDomain)
}

// ValidateCookieDomain rejects public suffixes such as "com" or "co.uk".
// An empty domain means host-only cookies and is always valid.
func ValidateCookieDomain(domain string) error {
	if domain == "" || domain == "localhost" {
		return nil
	}
	suffix, icann := publicsuffix.PublicSuffix(domain)
	if icann && suffix == domain {
		return fmt.Errorf("APP_COOKIE_DOMAIN %q is a public suffix", domain)
	}
	if _, err := publicsuffix.EffectiveTLDPlusOne(domain); err != nil {
		return fmt.Errorf("APP_COOKIE_DOMAIN %q: %w", domain, err)
	}
	return nil
}
