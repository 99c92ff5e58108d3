package payment

import (
	"regexp"
	"strings"
)

const countryCode = "254"

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhone formats a phone number to the canonical international form
// the gateway requires: digits only, country code prefixed.
//
//	"0712345678"      -> "254712345678"
//	"712345678"       -> "254712345678"
//	"254712345678"    -> "254712345678"
//	" 0712 345 678 "  -> "254712345678"
func NormalizePhone(phoneNumber string) string {
	digits := nonDigits.ReplaceAllString(strings.TrimSpace(phoneNumber), "")

	if strings.HasPrefix(digits, countryCode) {
		return digits
	}
	// A leading local trunk prefix is replaced with the country code.
	digits = strings.TrimLeft(digits, "0")
	return countryCode + digits
}

// ValidPhone reports whether a normalized number looks like a valid mobile
// subscriber number (country code + 9 digits).
func ValidPhone(phoneNumber string) bool {
	normalized := NormalizePhone(phoneNumber)
	return len(normalized) == 12 && strings.HasPrefix(normalized, countryCode+"7")
}
