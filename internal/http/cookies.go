package httpx

import (
	"net/http"
	"time"
)

// DefaultSessionCookieName is the cookie carrying the opaque session token.
const DefaultSessionCookieName = "session_id"

// CookieConfig controls the attributes of the session cookie.
type CookieConfig struct {
	Name   string
	Domain string
	// Secure forces the Secure attribute; it is also set for TLS and X-Forwarded-Proto https.
	Secure bool
}

func (c CookieConfig) withDefaults() CookieConfig {
	if c.Name == "" {
		c.Name = DefaultSessionCookieName
	}
	return c
}

func (c CookieConfig) token(r *http.Request) string {
	ck, err := r.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return ck.Value
}

// set writes the session cookie so it lives exactly as long as the server-side record.
func (c CookieConfig) set(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.Secure || isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// clear expires the session cookie, mirroring the attributes used when it was set.
func (c CookieConfig) clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.Secure || isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}
