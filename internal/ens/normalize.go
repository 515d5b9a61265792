package ens

import (
	"regexp"
	"strings"
)

// NormalizeName lowercases and trims an ENS name, appending ".eth" when the
// input has no TLD label at all (e.g. "vitalik" -> "vitalik.eth").
func NormalizeName(input string) string {
	name := strings.ToLower(strings.TrimSpace(input))
	if name != "" && !strings.Contains(name, ".") {
		name += ".eth"
	}
	return name
}

var namePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)*\.eth$`)

// IsValidName reports whether the input normalizes to a plausible .eth name.
func IsValidName(input string) bool {
	return namePattern.MatchString(NormalizeName(input))
}
