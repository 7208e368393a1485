// Package gateway adapts the external channels used to deliver one-time
// passcodes. Providers are plain HTTP/SMTP endpoints configured at
// construction; nothing provider-specific leaks into the workflow.
package gateway

import (
	"context"
	"net/mail"
	"strings"

	"github.com/paraphe-sign/internal/apperrors"
)

// OtpGateway delivers a rendered message to a recipient over one channel.
type OtpGateway interface {
	Send(ctx context.Context, recipient, message string) (messageID string, err error)
}

// ValidEmail checks recipient syntax before any dispatch is attempted.
func ValidEmail(address string) bool {
	if strings.TrimSpace(address) == "" {
		return false
	}
	_, err := mail.ParseAddress(address)
	return err == nil
}

// NormalizePhone strips everything but digits, keeping one leading "+".
// Bare national numbers (no "+" prefix) get the default country code; a
// single leading zero is dropped first, so "0499123456" with country code
// 32 becomes "+32499123456".
func NormalizePhone(raw, defaultCountryCode string) (string, error) {
	raw = strings.TrimSpace(raw)
	international := strings.HasPrefix(raw, "+")

	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	number := digits.String()
	if len(number) < 6 {
		return "", apperrors.Validation("invalid phone number %q", raw)
	}

	if international {
		return "+" + number, nil
	}
	number = strings.TrimPrefix(number, "0")
	return "+" + defaultCountryCode + number, nil
}
