package gateway

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/google/uuid"
	"github.com/paraphe-sign/internal/apperrors"
	"github.com/paraphe-sign/internal/config"
	"go.uber.org/zap"
)

// SmtpGateway sends passcodes by email. The send function is swappable so
// tests can intercept the dispatch.
type SmtpGateway struct {
	host     string
	port     string
	username string
	password string
	from     string
	send     func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
	logger   *zap.Logger
}

func NewSmtpGateway(cfg config.SmtpConfig, logger *zap.Logger) *SmtpGateway {
	return &SmtpGateway{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		send:     smtp.SendMail,
		logger:   logger.With(zap.String("gateway", "smtp")),
	}
}

func (g *SmtpGateway) Configured() bool {
	return g.host != ""
}

func (g *SmtpGateway) Send(ctx context.Context, recipient, message string) (string, error) {
	if !g.Configured() {
		return "", apperrors.New(apperrors.KindServiceUnavailable, "email gateway is not configured")
	}

	var auth smtp.Auth
	if g.username != "" {
		auth = smtp.PlainAuth("", g.username, g.password, g.host)
	}

	messageID := uuid.New().String()
	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Your signing code\r\nMessage-ID: <%s>\r\n\r\n%s\r\n",
		g.from, recipient, messageID, message)

	if err := g.send(g.host+":"+g.port, auth, g.from, []string{recipient}, []byte(body)); err != nil {
		g.logger.Warn("email dispatch failed", zap.String("recipient", recipient), zap.Error(err))
		return "", apperrors.ServiceUnavailable("email provider unreachable", err)
	}

	g.logger.Info("email dispatched",
		zap.String("message_id", messageID),
		zap.String("recipient", recipient))
	return messageID, nil
}
