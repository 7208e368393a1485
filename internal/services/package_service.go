package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paraphe-sign/internal/apperrors"
	"github.com/paraphe-sign/internal/db/models"
	"github.com/paraphe-sign/internal/filestore"
	"github.com/paraphe-sign/internal/store"
	"github.com/paraphe-sign/pkg/metrics"
	"go.uber.org/zap"
)

const maxRejectionReasonLength = 500

// PackageService owns the package state machine: participant views,
// field submission, rejection, revocation, and downloads.
type PackageService struct {
	store   store.PackageStore
	files   filestore.FileStore
	logger  *zap.Logger
	metrics *metrics.MetricsCollector
	now     func() time.Time
}

func NewPackageService(st store.PackageStore, files filestore.FileStore, logger *zap.Logger, collector *metrics.MetricsCollector) *PackageService {
	return &PackageService{
		store:   st,
		files:   files,
		logger:  logger.With(zap.String("service", "package_service")),
		metrics: collector,
		now:     time.Now,
	}
}

// ParticipantView is everything a signing link needs to render: the
// package, the viewer's assignments, progress, and history.
type ParticipantView struct {
	Package         *models.Package
	ParticipantID   string
	ParticipantName string
	Assignments     []*models.AssignedUser
	Progress        Progress
	CanReassign     bool
	ReassignBlocked string
	History         []models.ReassignmentEvent
}

func (ps *PackageService) GetParticipantView(ctx context.Context, packageID, participantID string) (*ParticipantView, error) {
	pkg, err := ps.store.GetPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}
	assignments, err := resolveParticipant(pkg, participantID)
	if err != nil {
		return nil, err
	}

	history, err := ps.store.ListReassignments(ctx, packageID)
	if err != nil {
		return nil, err
	}

	eligible, blocked := CanParticipantReassign(pkg, participantID)
	return &ParticipantView{
		Package:         pkg,
		ParticipantID:   participantID,
		ParticipantName: assignments[0].ContactName,
		Assignments:     assignments,
		Progress:        ParticipantProgress(pkg, participantID),
		CanReassign:     eligible,
		ReassignBlocked: blocked,
		History:         history,
	}, nil
}

// SubmitFields writes non-signature values for the participant's own
// fields. Signature fields only change through OTP verification, and a
// field holding a signature is immutable. The whole batch applies or
// nothing does.
func (ps *PackageService) SubmitFields(ctx context.Context, packageID, participantID string, values map[string]models.FieldValue, sourceIP string) (*models.Package, error) {
	if len(values) == 0 {
		return nil, apperrors.Validation("no field values submitted")
	}

	var actorName string
	var completed bool
	pkg, err := ps.store.Mutate(ctx, packageID, func(pkg *models.Package) error {
		assignments, err := resolveParticipant(pkg, participantID)
		if err != nil {
			return err
		}
		if err := guardParticipantMutable(pkg); err != nil {
			return err
		}
		actorName = assignments[0].ContactName

		for fieldID, value := range values {
			field := pkg.FindField(fieldID)
			if field == nil {
				return apperrors.NotFound("field " + fieldID)
			}
			if !assignedTo(field, participantID) {
				return apperrors.Authorization("field %s is not assigned to this participant", fieldID)
			}
			if field.Type == models.FieldSignature {
				return apperrors.Validation("signature fields require code verification")
			}
			if field.Value != nil && field.Value.Kind == models.ValueSignature {
				return apperrors.Validation("field %s is already signed", fieldID)
			}
			if err := checkValueKind(field.Type, &value); err != nil {
				return err
			}
			v := value
			field.Value = &v
		}

		completed = completeIfReady(pkg)
		return nil
	})
	if err != nil {
		return nil, err
	}

	ps.appendAudit(ctx, packageID, participantID, models.AuditFieldsSubmitted, actorName, "", sourceIP, "")
	if completed {
		ps.recordCompletion(ctx, pkg, participantID)
	}
	ps.metrics.IncrementCounter("fields_submitted", nil)
	return pkg, nil
}

// Reject finalizes the package on behalf of a participant. Receivers are
// record-only and cannot reject, and a participant whose work is already
// complete can no longer reject either.
func (ps *PackageService) Reject(ctx context.Context, packageID, participantID, reason, sourceIP string) (*models.Package, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.Validation("a rejection reason is required")
	}
	if len(reason) > maxRejectionReasonLength {
		return nil, apperrors.Validation("rejection reason exceeds %d characters", maxRejectionReasonLength)
	}

	var actorName string
	pkg, err := ps.store.Mutate(ctx, packageID, func(pkg *models.Package) error {
		assignments, err := resolveParticipant(pkg, participantID)
		if err != nil {
			return err
		}
		if receiverOnly(assignments) {
			return apperrors.Authorization("receivers cannot reject a package")
		}
		if err := guardParticipantMutable(pkg); err != nil {
			return err
		}
		if !hasOutstanding(pkg, participantID) {
			return apperrors.Authorization("participant has no outstanding work to reject")
		}

		actorName = assignments[0].ContactName
		now := ps.now()
		pkg.Status = models.StatusRejected
		pkg.RejectionReason = reason
		pkg.RejectedByID = participantID
		pkg.RejectedByName = actorName
		pkg.RejectedIP = sourceIP
		pkg.RejectedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	ps.appendAudit(ctx, packageID, participantID, models.AuditRejected, actorName, "", sourceIP, reason)
	ps.metrics.IncrementCounter("packages_rejected", nil)
	ps.logger.Info("Package rejected",
		zap.String("package_id", packageID),
		zap.String("participant_id", participantID))
	return pkg, nil
}

// Revoke is the owner-side withdrawal of a sent package.
func (ps *PackageService) Revoke(ctx context.Context, packageID, reason string) (*models.Package, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.Validation("a revocation reason is required")
	}

	pkg, err := ps.store.Mutate(ctx, packageID, func(pkg *models.Package) error {
		if pkg.Status != models.StatusSent {
			return apperrors.PackageFinalized(string(pkg.Status))
		}
		now := ps.now()
		pkg.Status = models.StatusRevoked
		pkg.RevocationReason = reason
		pkg.RevokedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	ps.appendAudit(ctx, packageID, "", models.AuditRevoked, "owner", "", "", reason)
	ps.metrics.IncrementCounter("packages_revoked", nil)
	return pkg, nil
}

// Download returns the document bytes and the filename to serve. An
// uncompleted package is only downloadable when the owner allowed it.
func (ps *PackageService) Download(ctx context.Context, packageID, participantID string) ([]byte, string, error) {
	pkg, err := ps.store.GetPackage(ctx, packageID)
	if err != nil {
		return nil, "", err
	}
	if _, err := resolveParticipant(pkg, participantID); err != nil {
		return nil, "", err
	}
	if pkg.Status != models.StatusCompleted && !pkg.AllowDownloadUnsigned {
		return nil, "", apperrors.Authorization("downloading the unsigned document is not allowed")
	}

	data, err := ps.files.Get(ctx, pkg.FileRef)
	if err != nil {
		return nil, "", err
	}

	name := pkg.DownloadName
	if name == "" {
		name = pkg.Name + ".pdf"
	}
	return data, name, nil
}

// AuditTrail lists the signing-related audit entries for a package.
func (ps *PackageService) AuditTrail(ctx context.Context, packageID string) ([]models.AuditEvent, error) {
	return ps.store.ListAudit(ctx, packageID)
}

func (ps *PackageService) appendAudit(ctx context.Context, packageID, participantID string, action models.AuditAction, actor, method, sourceIP, detail string) {
	event := &models.AuditEvent{
		ID:            uuid.New().String(),
		PackageID:     packageID,
		ParticipantID: participantID,
		Action:        action,
		ActorName:     actor,
		Method:        method,
		SourceIP:      sourceIP,
		Detail:        detail,
		OccurredAt:    ps.now(),
	}
	if err := ps.store.AppendAudit(ctx, event); err != nil {
		ps.logger.Error("append audit event failed",
			zap.String("package_id", packageID),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}

func (ps *PackageService) recordCompletion(ctx context.Context, pkg *models.Package, participantID string) {
	ps.appendAudit(ctx, pkg.ID, participantID, models.AuditCompleted, "", "", "", "")
	ps.metrics.IncrementCounter("packages_completed", nil)
	ps.logger.Info("Package completed", zap.String("package_id", pkg.ID))
}

func assignedTo(field *models.Field, participantID string) bool {
	for i := range field.Assignments {
		if field.Assignments[i].ParticipantID == participantID {
			return true
		}
	}
	return false
}

func checkValueKind(fieldType models.FieldType, value *models.FieldValue) error {
	switch fieldType {
	case models.FieldCheckbox:
		if value.Kind != models.ValueBool {
			return apperrors.Validation("checkbox fields take a boolean value")
		}
	case models.FieldText, models.FieldTextarea, models.FieldDate:
		if value.Kind != models.ValueString && value.Kind != models.ValueNumber {
			return apperrors.Validation("%s fields take a string value", fieldType)
		}
	case models.FieldSignature:
		return apperrors.Validation("signature fields take no direct value")
	}
	return nil
}
