package clients

import (
	"regexp"
	"strings"
	"unicode"
)

// Client is a row in the clientes table.
type Client struct {
	ID    int64
	Name  string
	Phone string
}

// DefaultName is used when the channel gives us no profile name.
const DefaultName = "Cliente"

var phonePattern = regexp.MustCompile(`^\+55\d{11}$`)

// NormalizePhone reduces whatever the channel sends ("whatsapp:+55 (11) 9...")
// to the canonical +55DDXXXXXXXXX form.
func NormalizePhone(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	number := digits.String()
	if !strings.HasPrefix(number, "55") {
		number = "55" + number
	}
	if len(number) > 13 {
		number = number[:13]
	}
	return "+" + number
}

// ValidPhone reports whether the normalized phone is a Brazilian mobile number.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidName requires at least 3 letters and only alphabetic characters or
// spaces. Diacritics count as letters.
func ValidName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if len([]rune(trimmed)) < 3 {
		return false
	}
	for _, r := range trimmed {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
