package util

import (
	"net/url"
	"strings"
)

// IsRedirectSafe reports whether target may be used as a post-login redirect.
// Two shapes pass: a local path ("/dashboard") or an absolute URL whose host
// matches baseURL. Everything else is treated as an open-redirect attempt.
func IsRedirectSafe(target, baseURL string) bool {
	// Empty means "use the default landing page".
	if target == "" {
		return true
	}

	// CR/LF would split the Location header.
	if strings.ContainsAny(target, "\r\n") {
		return false
	}

	if strings.HasPrefix(target, "/") {
		// "//host" and "/\host" are scheme-relative escapes, not local paths.
		return !strings.HasPrefix(target, "//") && !strings.Contains(target, "\\")
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return false
	}

	switch parsed.Scheme {
	case "", "http", "https":
	default:
		// javascript:, data: and friends.
		return false
	}

	if parsed.Host == "" {
		return true
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	return parsed.Host == base.Host
}
