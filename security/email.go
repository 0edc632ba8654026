package security

import (
	"net/mail"
	"strings"

	"messenger-api/exception"
)

func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return "", exception.Validation("email is required")
	}
	address, err := mail.ParseAddress(email)
	if err != nil || address.Address != email {
		return "", exception.Validation("email format is invalid")
	}
	return email, nil
}

// MaskEmail keeps enough of the address to correlate log lines.
func MaskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}
	local, domain := parts[0], parts[1]
	switch len(local) {
	case 0:
		return "***@" + domain
	case 1, 2:
		return local[:1] + "***@" + domain
	default:
		return local[:1] + "***" + local[len(local)-1:] + "@" + domain
	}
}
