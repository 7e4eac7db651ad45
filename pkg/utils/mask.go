package utils

import "strings"

// MaskEmail redacts the local part of an email address for disclosure
// after identity recovery. Short local parts keep one character, longer
// ones keep two; the domain is left intact.
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at < 0 {
		return email
	}
	local, domain := email[:at], email[at+1:]
	if len(local) <= 2 {
		if local == "" {
			return "*@" + domain
		}
		return local[:1] + "*@" + domain
	}
	return local[:2] + "***@" + domain
}
