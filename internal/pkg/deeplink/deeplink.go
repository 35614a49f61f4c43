// Package deeplink builds tel:, sms: and mailto: links used as the booking
// notification channel. Nothing here can confirm delivery.
package deeplink

import (
	"fmt"
	"net/url"
	"strings"
)

// SanitizeDigits strips everything except 0-9.
func SanitizeDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ToE164 normalizes a North American number. The second result is false when
// the digits are neither 10 long nor 11 long with a leading 1.
func ToE164(phone string) (string, bool) {
	digits := SanitizeDigits(phone)
	switch {
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return "+" + digits, true
	case len(digits) == 10:
		return "+1" + digits, true
	default:
		return "", false
	}
}

// FormatPhoneDisplay renders "(xxx) xxx-xxxx", falling back to the raw value
// or "Not set".
func FormatPhoneDisplay(phone string) string {
	digits := SanitizeDigits(phone)
	if len(digits) == 11 && strings.HasPrefix(digits, "1") {
		digits = digits[1:]
	}
	if len(digits) == 10 {
		return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
	}
	if phone == "" {
		return "Not set"
	}
	return phone
}

// EncodeComponent escapes s the way encodeURIComponent does for spaces.
func EncodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Tel returns a tel: link.
func Tel(e164 string) string {
	return "tel:" + e164
}

// SMS returns an sms: compose link with a prefilled body.
func SMS(e164, body string) string {
	if body == "" {
		return "sms:" + e164
	}
	return "sms:" + e164 + "?&body=" + EncodeComponent(body)
}

// Mailto returns a mailto: link with optional subject and body.
func Mailto(email, subject, body string) string {
	var params []string
	if subject != "" {
		params = append(params, "subject="+EncodeComponent(subject))
	}
	if body != "" {
		params = append(params, "body="+EncodeComponent(body))
	}
	if len(params) == 0 {
		return "mailto:" + email
	}
	return "mailto:" + email + "?" + strings.Join(params, "&")
}
