package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/paraphe-sign/internal/apperrors"
	"github.com/paraphe-sign/internal/config"
	"go.uber.org/zap"
)

// SmsGateway sends passcodes through a REST SMS provider. Originator and
// route come from configuration, never from business logic.
type SmsGateway struct {
	baseURL    string
	apiKey     string
	originator string
	route      string
	client     *http.Client
	logger     *zap.Logger
}

func NewSmsGateway(cfg config.SmsConfig, logger *zap.Logger) *SmsGateway {
	return &SmsGateway{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		originator: cfg.Originator,
		route:      cfg.Route,
		client:     &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With(zap.String("gateway", "sms")),
	}
}

// Configured reports whether the provider credentials are present.
func (g *SmsGateway) Configured() bool {
	return g.baseURL != "" && g.apiKey != ""
}

type smsRequest struct {
	Originator string `json:"originator"`
	Recipient  string `json:"recipient"`
	Message    string `json:"message"`
	Route      string `json:"route"`
}

type smsResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (g *SmsGateway) Send(ctx context.Context, recipient, message string) (string, error) {
	if !g.Configured() {
		return "", apperrors.New(apperrors.KindServiceUnavailable, "sms gateway is not configured")
	}

	body, err := json.Marshal(smsRequest{
		Originator: g.originator,
		Recipient:  recipient,
		Message:    message,
		Route:      g.route,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", apperrors.ServiceUnavailable("sms provider unreachable", err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode, "sms provider"); err != nil {
		g.logger.Warn("SMS dispatch failed",
			zap.Int("status", resp.StatusCode),
			zap.String("recipient", recipient))
		return "", err
	}

	var parsed smsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&parsed); err != nil {
		return "", apperrors.ServiceUnavailable("sms provider returned an unreadable response", err)
	}

	// Some providers report delivery failures in the body of a 2xx.
	if !parsed.Success {
		reason := parsed.Error
		if reason == "" {
			reason = "no reason given"
		}
		g.logger.Warn("SMS dispatch refused by provider",
			zap.String("reason", reason),
			zap.String("recipient", recipient))
		return "", apperrors.New(apperrors.KindServiceUnavailable, "sms provider refused the message: "+reason)
	}

	g.logger.Info("SMS dispatched",
		zap.String("message_id", parsed.ID),
		zap.String("recipient", recipient))
	return parsed.ID, nil
}

// classifyStatus maps provider status codes onto the error taxonomy so
// callers can tell retryable faults from configuration and input faults.
func classifyStatus(status int, provider string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return apperrors.New(apperrors.KindAuthConfig, provider+" rejected the configured credentials")
	case status == http.StatusBadRequest:
		return apperrors.Validation("%s rejected the request", provider)
	case status == http.StatusTooManyRequests:
		return apperrors.New(apperrors.KindRateLimited, provider+" rate limit reached")
	default:
		return apperrors.New(apperrors.KindServiceUnavailable,
			fmt.Sprintf("%s returned status %d", provider, status))
	}
}
