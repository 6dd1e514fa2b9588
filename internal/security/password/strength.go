package password

import "unicode/utf8"

const (
	minLength = 6
	maxLength = 50
	specials  = "@$!%*?#&"
)

// StrengthMessage is the client-facing explanation of the IsStrong rule.
const StrengthMessage = "Password must be 6+ characters & include: uppercase, lowercase, number & special character."

// IsStrong reports whether s is 6 to 50 characters drawn from letters, digits and @$!%*?#&
// with at least one of each class.
func IsStrong(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < minLength || n > maxLength {
		return false
	}
	var lower, upper, digit, special bool
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		case isSpecial(c):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}

func isSpecial(c rune) bool {
	for _, s := range specials {
		if c == s {
			return true
		}
	}
	return false
}
