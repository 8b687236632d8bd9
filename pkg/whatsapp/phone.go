package whatsapp

import "strings"

// StripPlus removes a leading '+', the format most provider APIs expect.
func StripPlus(phone string) string {
	return strings.TrimPrefix(strings.TrimSpace(phone), "+")
}

// WithPlus returns the number in E.164 form with a leading '+'.
func WithPlus(phone string) string {
	p := strings.TrimSpace(phone)
	if p == "" || strings.HasPrefix(p, "+") {
		return p
	}
	return "+" + p
}

// DigitsOnly drops every non-digit character.
func DigitsOnly(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize reduces any provider sender format to '+' followed by digits.
// Meta sends "254700000001", Twilio "whatsapp:+254700000001"; both become "+254700000001".
func Normalize(phone string) string {
	d := DigitsOnly(phone)
	if d == "" {
		return ""
	}
	return "+" + d
}

// IsValidNumber is a basic shape check: 10 to 15 digits once formatting is removed.
func IsValidNumber(phone string) bool {
	n := len(DigitsOnly(phone))
	return n >= 10 && n <= 15
}

// Mask keeps the first and last four characters; values of eight or fewer are fully masked.
func Mask(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}
