package auth

import (
	"regexp"
	"strings"
)

var (
	nonDigitRe = regexp.MustCompile(`\D`)
	phoneRe    = regexp.MustCompile(`^\d{10,11}$`)
	codeRe     = regexp.MustCompile(`^\d{6}$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// NormalizePhone strips everything but digits so hyphenated and plain
// inputs compare equal against the directory and the challenge record.
func NormalizePhone(phone string) string {
	return nonDigitRe.ReplaceAllString(phone, "")
}

// NormalizeEmail lowercases and trims an email for lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validName(name string) bool {
	return len([]rune(strings.TrimSpace(name))) >= 2
}

func validPhone(phone string) bool {
	return phoneRe.MatchString(phone)
}

func validEmail(email string) bool {
	return emailRe.MatchString(email)
}

func validCode(code string) bool {
	return codeRe.MatchString(code)
}
