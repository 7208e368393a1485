package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/paraphe-sign/internal/apperrors"
	"github.com/paraphe-sign/internal/db/models"
)

// Memory keeps everything in process. It backs tests and the no-database
// development mode. Each package id owns a mutex so aggregate mutations
// are serialized per package while distinct packages proceed in parallel.
type Memory struct {
	mu       sync.RWMutex
	packages map[string]*models.Package
	locks    map[string]*sync.Mutex
	contacts map[string]*models.ReassignmentContact
	audits   []models.AuditEvent
	reassign []models.ReassignmentEvent
}

func NewMemory() *Memory {
	return &Memory{
		packages: make(map[string]*models.Package),
		locks:    make(map[string]*sync.Mutex),
		contacts: make(map[string]*models.ReassignmentContact),
	}
}

func (s *Memory) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[id]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[id] = l
	return l
}

func (s *Memory) CreatePackage(ctx context.Context, pkg *models.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packages[pkg.ID] = clonePackage(pkg)
	return nil
}

func (s *Memory) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pkg, ok := s.packages[id]
	if !ok {
		return nil, apperrors.NotFound("package")
	}
	return clonePackage(pkg), nil
}

func (s *Memory) Mutate(ctx context.Context, id string, fn func(pkg *models.Package) error) (*models.Package, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	stored, ok := s.packages[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("package")
	}

	working := clonePackage(stored)
	if err := fn(working); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.packages[id] = clonePackage(working)
	s.mu.Unlock()
	return working, nil
}

func (s *Memory) CreateContact(ctx context.Context, contact *models.ReassignmentContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *contact
	s.contacts[contact.ID] = &c
	return nil
}

func (s *Memory) GetContact(ctx context.Context, id string) (*models.ReassignmentContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contact, ok := s.contacts[id]
	if !ok {
		return nil, apperrors.NotFound("contact")
	}
	c := *contact
	return &c, nil
}

func (s *Memory) ListContacts(ctx context.Context, ownerID string) ([]models.ReassignmentContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ReassignmentContact
	for _, c := range s.contacts {
		if c.OwnerID == ownerID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Memory) AppendAudit(ctx context.Context, event *models.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, *event)
	return nil
}

func (s *Memory) ListAudit(ctx context.Context, packageID string) ([]models.AuditEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.AuditEvent
	for _, e := range s.audits {
		if e.PackageID == packageID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Memory) AppendReassignment(ctx context.Context, event *models.ReassignmentEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reassign = append(s.reassign, *event)
	return nil
}

func (s *Memory) ListReassignments(ctx context.Context, packageID string) ([]models.ReassignmentEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ReassignmentEvent
	for _, e := range s.reassign {
		if e.PackageID == packageID {
			out = append(out, e)
		}
	}
	return out, nil
}

func clonePackage(pkg *models.Package) *models.Package {
	out := *pkg
	out.RejectedAt = cloneTime(pkg.RejectedAt)
	out.RevokedAt = cloneTime(pkg.RevokedAt)
	out.Fields = make([]models.Field, len(pkg.Fields))
	for i := range pkg.Fields {
		out.Fields[i] = cloneField(&pkg.Fields[i])
	}
	return &out
}

func cloneField(f *models.Field) models.Field {
	out := *f
	if f.Value != nil {
		v := *f.Value
		if f.Value.Signature != nil {
			sig := *f.Value.Signature
			v.Signature = &sig
		}
		out.Value = &v
	}
	out.Assignments = make([]models.AssignedUser, len(f.Assignments))
	for i := range f.Assignments {
		a := f.Assignments[i]
		a.SignedAt = cloneTime(f.Assignments[i].SignedAt)
		if f.Assignments[i].AllowedMethods != nil {
			a.AllowedMethods = append(models.MethodList(nil), f.Assignments[i].AllowedMethods...)
		}
		out.Assignments[i] = a
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
