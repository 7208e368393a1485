// Package store abstracts persistence for package aggregates so the
// workflow services stay independent of the backing database.
package store

import (
	"context"

	"github.com/paraphe-sign/internal/db/models"
)

// PackageStore is the narrow persistence interface the workflow engine
// depends on. A package aggregate (package, fields, assignments) is always
// loaded and saved as a whole, and Mutate serializes writers per package.
type PackageStore interface {
	// CreatePackage inserts a new aggregate. Authoring happens outside
	// this service; the engine only needs this for seeding and tests.
	CreatePackage(ctx context.Context, pkg *models.Package) error

	// GetPackage loads the full aggregate. Returns a not-found error kind
	// when the id does not resolve.
	GetPackage(ctx context.Context, id string) (*models.Package, error)

	// Mutate loads the aggregate, applies fn under a per-package writer
	// lock, and persists the result if fn returns nil. No partial state is
	// committed when fn fails.
	Mutate(ctx context.Context, id string, fn func(pkg *models.Package) error) (*models.Package, error)

	CreateContact(ctx context.Context, contact *models.ReassignmentContact) error
	GetContact(ctx context.Context, id string) (*models.ReassignmentContact, error)
	ListContacts(ctx context.Context, ownerID string) ([]models.ReassignmentContact, error)

	AppendAudit(ctx context.Context, event *models.AuditEvent) error
	ListAudit(ctx context.Context, packageID string) ([]models.AuditEvent, error)

	AppendReassignment(ctx context.Context, event *models.ReassignmentEvent) error
	ListReassignments(ctx context.Context, packageID string) ([]models.ReassignmentEvent, error)
}
