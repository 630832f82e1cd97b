package utils

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// Truncate shortens s to at most n runes, ending in an ellipsis when cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	if n == 1 {
		return "…"
	}
	return strings.TrimRight(string(runes[:n-1]), " ") + "…"
}

// Plural returns "s" if n is not 1, otherwise returns an empty string.
func Plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// HumanizeTime renders t relative to now, e.g. "3 minutes ago".
func HumanizeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

// FormatDate renders t as a short UTC date and time for messages.
func FormatDate(t time.Time) string {
	return t.UTC().Format("Jan 2, 2006 15:04 MST")
}

// NormalizeEmail lowercases and trims an address for comparisons and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsEmail reports whether s is a bare email address (no display name).
func IsEmail(s string) bool {
	if s == "" || strings.ContainsAny(s, " <>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}
