package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	store := NewStore()

	msg := store.Render(MessageOtpSms, "en", map[string]string{
		"recipient_name": "Sam Signer",
		"document_name":  "Lease Agreement",
		"otp":            "123456",
	})

	assert.Contains(t, msg, "Sam Signer")
	assert.Contains(t, msg, "Lease Agreement")
	assert.Contains(t, msg, "123456")
	assert.NotContains(t, msg, "{{")
}

func TestGetContentLanguageSelection(t *testing.T) {
	store := NewStore()

	assert.Contains(t, store.GetContent(MessageOtpSms, "fr"), "Bonjour")
	assert.Contains(t, store.GetContent(MessageOtpSms, "NL"), "Hallo")
	// Unsupported languages fall back to English.
	assert.Contains(t, store.GetContent(MessageOtpSms, "pt"), "Hello")
	assert.Contains(t, store.GetContent(MessageOtpEmail, ""), "Hello")
}

func TestGetContentUnknownType(t *testing.T) {
	store := NewStore()
	assert.Empty(t, store.GetContent("unknown_type", "en"))
}
