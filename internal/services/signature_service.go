package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/paraphe-sign/internal/apperrors"
	"github.com/paraphe-sign/internal/db/models"
	"github.com/paraphe-sign/internal/gateway"
	"github.com/paraphe-sign/internal/otp"
	"github.com/paraphe-sign/internal/store"
	"github.com/paraphe-sign/internal/templates"
	"github.com/paraphe-sign/pkg/metrics"
	"go.uber.org/zap"
)

// SignatureService runs the OTP protocol for signature fields: issuing
// codes over email or SMS and turning a verified code into an immutable
// SignatureValue. Both channels share the protocol; only templating and
// the gateway differ.
type SignatureService struct {
	store          store.PackageStore
	codes          *otp.Store
	email          gateway.OtpGateway
	sms            gateway.OtpGateway
	templates      *templates.Store
	defaultCountry string
	logger         *zap.Logger
	metrics        *metrics.MetricsCollector
	now            func() time.Time
}

func NewSignatureService(
	st store.PackageStore,
	codes *otp.Store,
	email gateway.OtpGateway,
	sms gateway.OtpGateway,
	tmpl *templates.Store,
	defaultCountry string,
	logger *zap.Logger,
	collector *metrics.MetricsCollector,
) *SignatureService {
	return &SignatureService{
		store:          st,
		codes:          codes,
		email:          email,
		sms:            sms,
		templates:      tmpl,
		defaultCountry: defaultCountry,
		logger:         logger.With(zap.String("service", "signature_service")),
		metrics:        collector,
		now:            time.Now,
	}
}

// SendOtp generates a fresh code for the (field, participant) pair,
// stores it, and dispatches it over the requested channel. A re-send
// replaces any earlier unconsumed code. When dispatch fails the stored
// record is invalidated so no live code exists without a delivery.
func (ss *SignatureService) SendOtp(ctx context.Context, packageID, participantID, fieldID, method, channelValue string) error {
	pkg, err := ss.store.GetPackage(ctx, packageID)
	if err != nil {
		return err
	}
	assignment, err := ss.signableAssignment(pkg, participantID, fieldID)
	if err != nil {
		return err
	}
	if !assignment.AllowsMethod(method) {
		return apperrors.Authorization("signature method %s is not allowed for this participant", method)
	}

	var gw gateway.OtpGateway
	var messageType string
	switch method {
	case models.MethodEmailOTP:
		if !gateway.ValidEmail(channelValue) {
			return apperrors.Validation("invalid email address")
		}
		gw = ss.email
		messageType = templates.MessageOtpEmail
	case models.MethodSMSOTP:
		normalized, err := gateway.NormalizePhone(channelValue, ss.defaultCountry)
		if err != nil {
			return err
		}
		channelValue = normalized
		gw = ss.sms
		messageType = templates.MessageOtpSms
	default:
		return apperrors.Validation("unknown signature method %s", method)
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return err
	}
	recordID := uuid.New().String()
	if err := ss.codes.Issue(fieldID, participantID, code, method, channelValue, recordID); err != nil {
		return err
	}

	message := ss.templates.Render(messageType, assignment.Language, map[string]string{
		"recipient_name": assignment.ContactName,
		"document_name":  pkg.Name,
		"otp":            code,
	})

	messageID, err := gw.Send(ctx, channelValue, message)
	if err != nil {
		ss.codes.Invalidate(fieldID, participantID)
		return err
	}

	ss.appendAudit(ctx, packageID, participantID, models.AuditOtpSent, assignment.ContactName, method, "",
		"message "+messageID)
	ss.metrics.IncrementCounter("otp_sent", map[string]string{"method": method})
	ss.logger.Info("OTP dispatched",
		zap.String("package_id", packageID),
		zap.String("field_id", fieldID),
		zap.String("method", method))
	return nil
}

// VerifyOtp consumes the live code and, on a match, writes the signature
// value, marks the assignment signed, and completes the package when it
// was the last outstanding work. The code is single-use: a second verify
// with the same code fails as expired.
func (ss *SignatureService) VerifyOtp(ctx context.Context, packageID, participantID, fieldID, code, sourceIP string) (*models.Package, error) {
	var actorName, method string
	var completed bool
	var consumed *otp.Record

	pkg, err := ss.store.Mutate(ctx, packageID, func(pkg *models.Package) error {
		assignment, err := ss.signableAssignment(pkg, participantID, fieldID)
		if err != nil {
			return err
		}

		record, err := ss.codes.Consume(fieldID, participantID, code)
		if err != nil {
			return err
		}
		consumed = record

		now := ss.now()
		signature := &models.SignatureValue{
			SignedBy: assignment.ContactName,
			Date:     now.UTC().Format(time.RFC3339),
			Method:   record.Channel,
			OtpRef:   record.ID,
		}
		switch record.Channel {
		case models.MethodEmailOTP:
			signature.Email = record.ChannelValue
		case models.MethodSMSOTP:
			signature.Phone = record.ChannelValue
		}

		field := pkg.FindField(fieldID)
		field.Value = &models.FieldValue{Kind: models.ValueSignature, Signature: signature}
		assignment.Signed = true
		assignment.SignedAt = &now
		assignment.SignedMethod = record.Channel
		assignment.SignedIP = sourceIP

		actorName = assignment.ContactName
		method = record.Channel
		completed = completeIfReady(pkg)
		return nil
	})
	if err != nil {
		// A commit failure after the consume would otherwise burn the
		// delivered code with no signature written.
		if consumed != nil {
			ss.codes.Restore(fieldID, participantID, consumed)
		}
		ss.metrics.IncrementCounter("otp_verify_failed", nil)
		return nil, err
	}

	ss.appendAudit(ctx, packageID, participantID, models.AuditSigned, actorName, method, sourceIP, "field "+fieldID)
	if completed {
		ss.appendAudit(ctx, packageID, participantID, models.AuditCompleted, "", "", "", "")
		ss.metrics.IncrementCounter("packages_completed", nil)
		ss.logger.Info("Package completed", zap.String("package_id", packageID))
	}
	ss.metrics.IncrementCounter("otp_verified", map[string]string{"method": method})
	return pkg, nil
}

// signableAssignment applies the shared preconditions for both send and
// verify: live package, existing signature field, and a non-receiver
// assignment that has not signed yet.
func (ss *SignatureService) signableAssignment(pkg *models.Package, participantID, fieldID string) (*models.AssignedUser, error) {
	if _, err := resolveParticipant(pkg, participantID); err != nil {
		return nil, err
	}
	if err := guardParticipantMutable(pkg); err != nil {
		return nil, err
	}

	field := pkg.FindField(fieldID)
	if field == nil {
		return nil, apperrors.NotFound("field")
	}
	if field.Type != models.FieldSignature {
		return nil, apperrors.Validation("field %s is not a signature field", fieldID)
	}

	var assignment *models.AssignedUser
	for i := range field.Assignments {
		if field.Assignments[i].ParticipantID == participantID {
			assignment = &field.Assignments[i]
			break
		}
	}
	if assignment == nil {
		return nil, apperrors.Authorization("field %s is not assigned to this participant", fieldID)
	}
	if assignment.Role == models.RoleReceiver {
		return nil, apperrors.Authorization("receivers cannot sign")
	}
	if assignment.Signed {
		return nil, apperrors.Validation("field %s is already signed", fieldID)
	}
	return assignment, nil
}

func (ss *SignatureService) appendAudit(ctx context.Context, packageID, participantID string, action models.AuditAction, actor, method, sourceIP, detail string) {
	event := &models.AuditEvent{
		ID:            uuid.New().String(),
		PackageID:     packageID,
		ParticipantID: participantID,
		Action:        action,
		ActorName:     actor,
		Method:        method,
		SourceIP:      sourceIP,
		Detail:        detail,
		OccurredAt:    ss.now(),
	}
	if err := ss.store.AppendAudit(ctx, event); err != nil {
		ss.logger.Error("append audit event failed",
			zap.String("package_id", packageID),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}
