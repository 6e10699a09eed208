package httpx

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	// maxBodyBytes bounds login form and JSON bodies.
	maxBodyBytes = 64 << 10

	// retryAfter is the Retry-After value in seconds sent with every 503. It also drives the
	// loading page refresh.
	retryAfter = 2
)

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return ""
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return ""
	}
	// "//evil.example" and "/\evil.example" are treated as hosts by browsers.
	if strings.HasPrefix(candidate, "//") || strings.HasPrefix(candidate, "/\\") {
		return ""
	}
	return candidate
}

// loginURL builds the login redirect, carrying the originally requested path when there is one.
func loginURL(loginPath, redirectPath string) string {
	u := url.URL{Path: loginPath}
	if redirectPath = safeRedirectPath(redirectPath); redirectPath != "" && redirectPath != "/" {
		q := url.Values{}
		q.Set("redirect_uri", redirectPath)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// wantsJSON reports whether the caller is an API client rather than a browser:
// /api/ paths, JSON bodies, and JSON-only Accept headers.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest") {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
