// Package templates holds the localized message snippets sent over the
// OTP channels. Placeholders use the {{name}} form shared with the rest
// of the product; unsupported languages fall back to English.
package templates

import "strings"

const (
	MessageOtpSms   = "otp_sms"
	MessageOtpEmail = "otp_email"
)

const fallbackLanguage = "en"

var messages = map[string]map[string]string{
	MessageOtpSms: {
		"en": "Hello {{recipient_name}}, your code to sign \"{{document_name}}\" is {{otp}}. It expires in one minute.",
		"fr": "Bonjour {{recipient_name}}, votre code pour signer \"{{document_name}}\" est {{otp}}. Il expire dans une minute.",
		"nl": "Hallo {{recipient_name}}, uw code om \"{{document_name}}\" te ondertekenen is {{otp}}. De code vervalt over een minuut.",
		"de": "Hallo {{recipient_name}}, Ihr Code zum Signieren von \"{{document_name}}\" lautet {{otp}}. Er ist eine Minute gueltig.",
	},
	MessageOtpEmail: {
		"en": "Hello {{recipient_name}},\n\nYour one-time code to sign \"{{document_name}}\" is {{otp}}.\nThe code expires in one minute.",
		"fr": "Bonjour {{recipient_name}},\n\nVotre code unique pour signer \"{{document_name}}\" est {{otp}}.\nLe code expire dans une minute.",
		"nl": "Hallo {{recipient_name}},\n\nUw eenmalige code om \"{{document_name}}\" te ondertekenen is {{otp}}.\nDe code vervalt over een minuut.",
		"de": "Hallo {{recipient_name}},\n\nIhr Einmalcode zum Signieren von \"{{document_name}}\" lautet {{otp}}.\nDer Code ist eine Minute gueltig.",
	},
}

// Store resolves message content by type and language.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

// GetContent returns the raw template for the message type, falling back
// to English when the language is unsupported.
func (s *Store) GetContent(messageType, languageCode string) string {
	byLang, ok := messages[messageType]
	if !ok {
		return ""
	}
	if msg, ok := byLang[strings.ToLower(languageCode)]; ok {
		return msg
	}
	return byLang[fallbackLanguage]
}

// Render substitutes the placeholder variables into the template.
func (s *Store) Render(messageType, languageCode string, vars map[string]string) string {
	content := s.GetContent(messageType, languageCode)
	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{{"+name+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(content)
}
