package store

import (
	"context"
	"errors"

	"github.com/paraphe-sign/internal/apperrors"
	"github.com/paraphe-sign/internal/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm persists package aggregates in the relational database. The parent
// package row is locked FOR UPDATE for the duration of a Mutate, which
// gives the single-writer-per-aggregate discipline the workflow needs.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) CreatePackage(ctx context.Context, pkg *models.Package) error {
	return s.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Create(pkg).Error
}

func (s *Gorm) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	var pkg models.Package
	err := s.db.WithContext(ctx).
		Preload("Fields.Assignments").
		Preload("Fields").
		First(&pkg, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("package")
		}
		return nil, err
	}
	return &pkg, nil
}

func (s *Gorm) Mutate(ctx context.Context, id string, fn func(pkg *models.Package) error) (*models.Package, error) {
	var out *models.Package
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pkg models.Package
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "packages"}}).
			Preload("Fields.Assignments").
			Preload("Fields").
			First(&pkg, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("package")
			}
			return err
		}
		if err := fn(&pkg); err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&pkg).Error; err != nil {
			return err
		}
		out = &pkg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Gorm) CreateContact(ctx context.Context, contact *models.ReassignmentContact) error {
	return s.db.WithContext(ctx).Create(contact).Error
}

func (s *Gorm) GetContact(ctx context.Context, id string) (*models.ReassignmentContact, error) {
	var contact models.ReassignmentContact
	if err := s.db.WithContext(ctx).First(&contact, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("contact")
		}
		return nil, err
	}
	return &contact, nil
}

func (s *Gorm) ListContacts(ctx context.Context, ownerID string) ([]models.ReassignmentContact, error) {
	var contacts []models.ReassignmentContact
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&contacts).Error
	return contacts, err
}

func (s *Gorm) AppendAudit(ctx context.Context, event *models.AuditEvent) error {
	return s.db.WithContext(ctx).Create(event).Error
}

func (s *Gorm) ListAudit(ctx context.Context, packageID string) ([]models.AuditEvent, error) {
	var events []models.AuditEvent
	err := s.db.WithContext(ctx).
		Where("package_id = ?", packageID).
		Order("occurred_at ASC").
		Find(&events).Error
	return events, err
}

func (s *Gorm) AppendReassignment(ctx context.Context, event *models.ReassignmentEvent) error {
	return s.db.WithContext(ctx).Create(event).Error
}

func (s *Gorm) ListReassignments(ctx context.Context, packageID string) ([]models.ReassignmentEvent, error) {
	var events []models.ReassignmentEvent
	err := s.db.WithContext(ctx).
		Where("package_id = ?", packageID).
		Order("occurred_at ASC").
		Find(&events).Error
	return events, err
}
