package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paraphe-sign/internal/apperrors"
	"github.com/paraphe-sign/internal/db/models"
	"github.com/paraphe-sign/internal/gateway"
	"github.com/paraphe-sign/internal/store"
	"github.com/paraphe-sign/pkg/metrics"
	"go.uber.org/zap"
)

// ReassignService transfers outstanding obligations to another contact
// and adds record-only receivers.
type ReassignService struct {
	store   store.PackageStore
	logger  *zap.Logger
	metrics *metrics.MetricsCollector
	now     func() time.Time
}

func NewReassignService(st store.PackageStore, logger *zap.Logger, collector *metrics.MetricsCollector) *ReassignService {
	return &ReassignService{
		store:   st,
		logger:  logger.With(zap.String("service", "reassign_service")),
		metrics: collector,
		now:     time.Now,
	}
}

// CanParticipantReassign is the pure eligibility predicate: package still
// open, reassignment allowed by the owner, and the participant holding
// outstanding work. The blocked reason is empty when eligible.
func CanParticipantReassign(pkg *models.Package, participantID string) (bool, string) {
	if !pkg.ParticipantMutable() {
		return false, "package is finalized"
	}
	if !pkg.AllowReassign {
		return false, "reassignment is not allowed for this package"
	}
	if !hasOutstanding(pkg, participantID) {
		return false, "participant has no outstanding assignments"
	}
	return true, ""
}

func hasOutstanding(pkg *models.Package, participantID string) bool {
	for i := range pkg.Fields {
		field := &pkg.Fields[i]
		for j := range field.Assignments {
			assignment := &field.Assignments[j]
			if assignment.ParticipantID != participantID || assignment.Role == models.RoleReceiver {
				continue
			}
			if !assignmentComplete(field, assignment) {
				return true
			}
		}
	}
	return false
}

// ContactData is the input for registering a reassignment target.
type ContactData struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Language  string
}

// RegisterContact creates a contact scoped to the package owner, usable
// as a reassignment or receiver target within this package.
func (rs *ReassignService) RegisterContact(ctx context.Context, packageID, participantID string, data ContactData) (*models.ReassignmentContact, error) {
	data.FirstName = strings.TrimSpace(data.FirstName)
	data.LastName = strings.TrimSpace(data.LastName)
	data.Email = strings.TrimSpace(data.Email)
	if data.FirstName == "" || data.LastName == "" {
		return nil, apperrors.Validation("first and last name are required")
	}
	if !gateway.ValidEmail(data.Email) {
		return nil, apperrors.Validation("a valid email address is required")
	}

	pkg, err := rs.store.GetPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if _, err := resolveParticipant(pkg, participantID); err != nil {
		return nil, err
	}
	if err := guardParticipantMutable(pkg); err != nil {
		return nil, err
	}

	language := data.Language
	if language == "" {
		language = "en"
	}
	contact := &models.ReassignmentContact{
		ID:        uuid.New().String(),
		OwnerID:   pkg.OwnerID,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
		Phone:     data.Phone,
		Language:  language,
	}
	if err := rs.store.CreateContact(ctx, contact); err != nil {
		return nil, err
	}

	rs.logger.Info("Reassignment contact registered",
		zap.String("package_id", packageID),
		zap.String("contact_id", contact.ID))
	return contact, nil
}

// ListContacts returns the owner-scoped contacts available to the
// participant's reassignment flow.
func (rs *ReassignService) ListContacts(ctx context.Context, packageID, participantID string) ([]models.ReassignmentContact, error) {
	pkg, err := rs.store.GetPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if _, err := resolveParticipant(pkg, participantID); err != nil {
		return nil, err
	}
	return rs.store.ListContacts(ctx, pkg.OwnerID)
}

// Perform transfers every outstanding assignment of the participant to
// the contact. Completed work keeps its original signer; only unsigned
// and unfilled assignments move. The transfer appends an immutable
// history entry separate from the signing audit trail.
func (rs *ReassignService) Perform(ctx context.Context, packageID, participantID, newContactID, reason, sourceIP string) (*models.Package, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.Validation("a reassignment reason is required")
	}

	contact, err := rs.store.GetContact(ctx, newContactID)
	if err != nil {
		return nil, err
	}

	newParticipantID := uuid.New().String()
	var oldName string
	var moved int

	pkg, err := rs.store.Mutate(ctx, packageID, func(pkg *models.Package) error {
		assignments, err := resolveParticipant(pkg, participantID)
		if err != nil {
			return err
		}
		if eligible, blocked := CanParticipantReassign(pkg, participantID); !eligible {
			if !pkg.ParticipantMutable() {
				return apperrors.PackageFinalized(string(pkg.Status))
			}
			return apperrors.Authorization("%s", blocked)
		}
		oldName = assignments[0].ContactName

		for i := range pkg.Fields {
			field := &pkg.Fields[i]
			for j := range field.Assignments {
				assignment := &field.Assignments[j]
				if assignment.ParticipantID != participantID || assignment.Role == models.RoleReceiver {
					continue
				}
				if assignmentComplete(field, assignment) {
					continue
				}
				assignment.ParticipantID = newParticipantID
				assignment.ContactID = contact.ID
				assignment.ContactName = contact.FullName()
				assignment.ContactEmail = contact.Email
				assignment.ContactPhone = contact.Phone
				assignment.Language = contact.Language
				moved++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := &models.ReassignmentEvent{
		ID:             uuid.New().String(),
		PackageID:      packageID,
		OldContactID:   participantID,
		OldContactName: oldName,
		NewContactID:   contact.ID,
		NewContactName: contact.FullName(),
		Reason:         reason,
		ActorIP:        sourceIP,
		OccurredAt:     rs.now(),
	}
	if err := rs.store.AppendReassignment(ctx, event); err != nil {
		rs.logger.Error("append reassignment event failed",
			zap.String("package_id", packageID), zap.Error(err))
	}
	rs.appendAudit(ctx, packageID, participantID, models.AuditReassigned, oldName, sourceIP,
		"to "+contact.FullName())

	rs.metrics.IncrementCounter("reassignments_performed", nil)
	rs.logger.Info("Assignments reassigned",
		zap.String("package_id", packageID),
		zap.String("old_participant", participantID),
		zap.String("new_participant", newParticipantID),
		zap.Int("moved", moved))
	return pkg, nil
}

// AddReceiver attaches a record-only participant to the package. Unlike
// a reassignment this never touches existing assignments, and finished
// participants may still add receivers.
func (rs *ReassignService) AddReceiver(ctx context.Context, packageID, participantID, newContactID, sourceIP string) (*models.Package, error) {
	contact, err := rs.store.GetContact(ctx, newContactID)
	if err != nil {
		return nil, err
	}

	var actorName string
	pkg, err := rs.store.Mutate(ctx, packageID, func(pkg *models.Package) error {
		assignments, err := resolveParticipant(pkg, participantID)
		if err != nil {
			return err
		}
		if err := guardParticipantMutable(pkg); err != nil {
			return err
		}
		if !pkg.AllowReassign {
			return apperrors.Authorization("adding receivers is not allowed for this package")
		}
		if len(pkg.Fields) == 0 {
			return apperrors.Validation("package has no fields")
		}
		actorName = assignments[0].ContactName

		for i := range pkg.Fields {
			for j := range pkg.Fields[i].Assignments {
				a := &pkg.Fields[i].Assignments[j]
				if a.Role == models.RoleReceiver && a.ContactID == contact.ID {
					return apperrors.Validation("contact is already a receiver on this package")
				}
			}
		}

		// Receivers carry no field obligations; the row anchors on the
		// first field purely so the participant loads with the aggregate.
		anchor := &pkg.Fields[0]
		anchor.Assignments = append(anchor.Assignments, models.AssignedUser{
			ID:            uuid.New().String(),
			FieldID:       anchor.ID,
			PackageID:     pkg.ID,
			ParticipantID: uuid.New().String(),
			ContactID:     contact.ID,
			ContactName:   contact.FullName(),
			ContactEmail:  contact.Email,
			ContactPhone:  contact.Phone,
			Language:      contact.Language,
			Role:          models.RoleReceiver,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	rs.appendAudit(ctx, packageID, participantID, models.AuditReceiverAdded, actorName, sourceIP,
		"receiver "+contact.FullName())
	rs.metrics.IncrementCounter("receivers_added", nil)
	return pkg, nil
}

func (rs *ReassignService) appendAudit(ctx context.Context, packageID, participantID string, action models.AuditAction, actor, sourceIP, detail string) {
	event := &models.AuditEvent{
		ID:            uuid.New().String(),
		PackageID:     packageID,
		ParticipantID: participantID,
		Action:        action,
		ActorName:     actor,
		SourceIP:      sourceIP,
		Detail:        detail,
		OccurredAt:    rs.now(),
	}
	if err := rs.store.AppendAudit(ctx, event); err != nil {
		rs.logger.Error("append audit event failed",
			zap.String("package_id", packageID),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}
