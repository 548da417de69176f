package usecase

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	phoneSeparators = regexp.MustCompile(`[\s\-()]`)
	phoneCandidate  = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	emailPattern    = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	sheetNameStrip  = regexp.MustCompile(`[\\/?*\[\]:]`)
)

var socialDomains = []string{
	"facebook.com", "fb.com", "linkedin.com", "instagram.com", "twitter.com", "x.com",
	"youtube.com", "tiktok.com", "pinterest.com", "snapchat.com", "whatsapp.com", "telegram.org",
}

// NormalizeMobile returns the number as +947XXXXXXXX, or "" when it is not a
// Sri Lankan mobile number. Accepted inputs: 07XXXXXXXX, 7XXXXXXXX,
// 947XXXXXXXX and +947XXXXXXXX, with any spaces, dashes or parentheses.
func NormalizeMobile(raw string) string {
	digits := strings.TrimPrefix(phoneSeparators.ReplaceAllString(raw, ""), "+")
	if !isDigits(digits) {
		return ""
	}
	switch {
	case strings.HasPrefix(digits, "947") && len(digits) == 11:
		return "+" + digits
	case strings.HasPrefix(digits, "07") && len(digits) == 10:
		return "+94" + digits[1:]
	case strings.HasPrefix(digits, "7") && len(digits) == 9:
		return "+94" + digits
	default:
		return ""
	}
}

// TransportAddress converts a stored contact number into the digits-only,
// country-code-prefixed form the WhatsApp gateway expects.
func TransportAddress(contact string) (string, error) {
	formatted := strings.NewReplacer(" ", "", "\t", "", "+", "", "-", "").Replace(contact)
	switch {
	case strings.HasPrefix(formatted, "0") && len(formatted) == 10:
		formatted = "94" + formatted[1:]
	case !strings.HasPrefix(formatted, "94") && len(formatted) == 9:
		formatted = "94" + formatted
	}
	if !strings.HasPrefix(formatted, "94") || len(formatted) < 11 || len(formatted) > 12 || !isDigits(formatted) {
		return "", fmt.Errorf("Invalid phone number format: %s (formatted: %s)", contact, formatted)
	}
	return formatted, nil
}

// ExtractPhone returns the first phone-like substring of text.
func ExtractPhone(text string) string {
	return phoneCandidate.FindString(text)
}

// ExtractEmail returns the first email address in text.
func ExtractEmail(text string) string {
	return emailPattern.FindString(text)
}

// IsValidWebsite is false for blank values and social media profiles.
func IsValidWebsite(website string) bool {
	url := strings.ToLower(strings.TrimSpace(website))
	if url == "" {
		return false
	}
	for _, d := range socialDomains {
		if strings.Contains(url, d) {
			return false
		}
	}
	return true
}

// SanitizeSheetName strips characters Sheets rejects and caps the length.
func SanitizeSheetName(phrase string) string {
	name := sheetNameStrip.ReplaceAllString(strings.TrimSpace(phrase), "")
	if r := []rune(name); len(r) > 100 {
		name = string(r[:100])
	}
	if name == "" {
		return "Search Results"
	}
	return name
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
