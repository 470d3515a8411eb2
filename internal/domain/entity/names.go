package entity

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	usernamePattern    = regexp.MustCompile(`^[a-z_][a-z0-9_]{1,31}$`)
	displayNamePattern = regexp.MustCompile(`^[\p{L}_ ()][\p{L}_ ()0-9]*$`)
)

const (
	minDisplayNameLength = 2
	maxDisplayNameLength = 64
)

// IsUsername reports whether s is a valid local username.
func IsUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// IsDisplayName reports whether s is a valid user display name.
func IsDisplayName(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < minDisplayNameLength || n > maxDisplayNameLength {
		return false
	}

	return displayNamePattern.MatchString(s)
}

// IsEmailAddress is the coarse check used to tell emails and usernames apart
// in a login field. Full address validation happens at the delivery boundary.
func IsEmailAddress(s string) bool {
	at := strings.IndexByte(s, '@')

	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t\r\n")
}

// RemoteDisplayName derives a local display name from a remote account name.
// The remote name is kept when valid, then retried with the service prefix,
// and the service fallback is used as a last resort.
func RemoteDisplayName(service RemoteService, remoteName string) string {
	if IsDisplayName(remoteName) {
		return remoteName
	}
	if prefixed := service.displayNamePrefix() + remoteName; IsDisplayName(prefixed) {
		return prefixed
	}

	return service.fallbackDisplayName()
}
