package utils

import "strings"

// SanitizeRedirect accepts only same-origin path targets. Anything that
// does not start with a single "/" (absolute URLs, protocol-relative
// "//host" payloads, empty strings) falls back to the default. Every
// redirect surface in the app must route caller-supplied targets through
// here.
func SanitizeRedirect(to, fallback string) string {
	if to == "" {
		return fallback
	}
	if strings.HasPrefix(to, "/") && !strings.HasPrefix(to, "//") {
		return to
	}
	return fallback
}
