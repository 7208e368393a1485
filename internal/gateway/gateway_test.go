package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"testing"
	"time"

	"github.com/paraphe-sign/internal/apperrors"
	"github.com/paraphe-sign/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		country string
		want    string
		wantErr bool
	}{
		{name: "national number gets default country code", input: "0499123456", country: "32", want: "+32499123456"},
		{name: "international number kept", input: "+32499123456", country: "32", want: "+32499123456"},
		{name: "formatting stripped", input: "0499 12.34-56", country: "32", want: "+32499123456"},
		{name: "international with spaces", input: "+1 (555) 010-9999", country: "32", want: "+15550109999"},
		{name: "too short", input: "12", country: "32", wantErr: true},
		{name: "empty", input: "", country: "32", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.input, tt.country)
			if tt.wantErr {
				assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("p@x.com"))
	assert.True(t, ValidEmail("First Last <first.last@example.org>"))
	assert.False(t, ValidEmail(""))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail("@missing-local.com"))
}

func newSmsGateway(t *testing.T, baseURL string) *SmsGateway {
	t.Helper()
	return NewSmsGateway(config.SmsConfig{
		BaseURL:            baseURL,
		APIKey:             "test-key",
		Originator:         "Paraphe",
		Route:              "7",
		DefaultCountryCode: "32",
		Timeout:            2 * time.Second,
	}, zap.NewNop())
}

func TestSmsGatewaySend(t *testing.T) {
	var gotAuth, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg-42","success":true}`))
	}))
	defer server.Close()

	gw := newSmsGateway(t, server.URL)
	id, err := gw.Send(context.Background(), "+32499123456", "your code is 123456")
	require.NoError(t, err)
	assert.Equal(t, "msg-42", id)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Contains(t, gotBody, `"originator":"Paraphe"`)
	assert.Contains(t, gotBody, `"route":"7"`)
	assert.Contains(t, gotBody, `"recipient":"+32499123456"`)
}

func TestSmsGatewayStatusClassification(t *testing.T) {
	tests := []struct {
		status int
		kind   apperrors.Kind
	}{
		{http.StatusUnauthorized, apperrors.KindAuthConfig},
		{http.StatusBadRequest, apperrors.KindValidation},
		{http.StatusTooManyRequests, apperrors.KindRateLimited},
		{http.StatusInternalServerError, apperrors.KindServiceUnavailable},
		{http.StatusBadGateway, apperrors.KindServiceUnavailable},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		gw := newSmsGateway(t, server.URL)
		_, err := gw.Send(context.Background(), "+32499123456", "message")
		assert.True(t, apperrors.IsKind(err, tt.kind), "status %d", tt.status)
		server.Close()
	}
}

func TestSmsGatewayProviderReportedFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false,"error":"invalid originator"}`))
	}))
	defer server.Close()

	gw := newSmsGateway(t, server.URL)
	_, err := gw.Send(context.Background(), "+32499123456", "message")
	assert.True(t, apperrors.IsKind(err, apperrors.KindServiceUnavailable))
	assert.Contains(t, err.Error(), "invalid originator")
}

func TestSmsGatewayNotConfigured(t *testing.T) {
	gw := NewSmsGateway(config.SmsConfig{Timeout: time.Second}, zap.NewNop())
	_, err := gw.Send(context.Background(), "+32499123456", "message")
	assert.True(t, apperrors.IsKind(err, apperrors.KindServiceUnavailable))
}

func TestSmtpGatewayNotConfigured(t *testing.T) {
	gw := NewSmtpGateway(config.SmtpConfig{}, zap.NewNop())
	_, err := gw.Send(context.Background(), "p@x.com", "message")
	assert.True(t, apperrors.IsKind(err, apperrors.KindServiceUnavailable))
}

func TestSmtpGatewaySend(t *testing.T) {
	gw := NewSmtpGateway(config.SmtpConfig{
		Host: "mail.local",
		Port: "587",
		From: "no-reply@paraphe.local",
	}, zap.NewNop())

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	gw.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotFrom = from
		gotTo = to
		gotMsg = msg
		return nil
	}

	id, err := gw.Send(context.Background(), "p@x.com", "your code is 123456")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, "mail.local:587", gotAddr)
	assert.Equal(t, "no-reply@paraphe.local", gotFrom)
	assert.Equal(t, []string{"p@x.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "your code is 123456")
	assert.Contains(t, string(gotMsg), "To: p@x.com")
}

func TestSmtpGatewaySendFailure(t *testing.T) {
	gw := NewSmtpGateway(config.SmtpConfig{Host: "mail.local", Port: "587", From: "x@y.z"}, zap.NewNop())
	gw.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		return errors.New("connection refused")
	}

	_, err := gw.Send(context.Background(), "p@x.com", "message")
	assert.True(t, apperrors.IsKind(err, apperrors.KindServiceUnavailable))
}
