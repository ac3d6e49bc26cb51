package registration

import "regexp"

// Field patterns for citizen signup. These are the exact shapes the portal
// accepts; anything looser is rejected before an account is created.
var (
	// Mobile numbers on the NTC/Ncell 98x/97x ranges, or Kathmandu-valley
	// landlines starting 01.
	phonePattern = regexp.MustCompile(`^(?:98\d{8}|97\d{8}|01\d{7})$`)

	// Deliberately permissive: one @, no whitespace, a dot in the domain.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// Devanagari block plus spaces and the abbreviation dot.
	devanagariNamePattern = regexp.MustCompile(`^[\x{0900}-\x{097F}\s.]+$`)
)

// ValidPhone reports whether raw is an acceptable Nepali phone number.
func ValidPhone(raw string) bool {
	return phonePattern.MatchString(raw)
}

// ValidEmail reports whether raw has the shape of an email address.
func ValidEmail(raw string) bool {
	return emailPattern.MatchString(raw)
}

// ValidDevanagariName reports whether raw is a non-empty name written
// entirely in Devanagari script.
func ValidDevanagariName(raw string) bool {
	return devanagariNamePattern.MatchString(raw)
}

const minPasswordLength = 6

// ValidPasswordLength reports whether the password meets the minimum length.
func ValidPasswordLength(raw string) bool {
	return len([]rune(raw)) >= minPasswordLength
}
