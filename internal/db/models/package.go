package models

import (
	"time"

	"gorm.io/gorm"
)

type PackageStatus string

const (
	StatusDraft     PackageStatus = "DRAFT"
	StatusSent      PackageStatus = "SENT"
	StatusCompleted PackageStatus = "COMPLETED"
	StatusRejected  PackageStatus = "REJECTED"
	StatusRevoked   PackageStatus = "REVOKED"
	StatusExpired   PackageStatus = "EXPIRED"
	StatusArchived  PackageStatus = "ARCHIVED"
)

// Package is the signable unit: a document, its fields, and its participants.
type Package struct {
	gorm.Model
	ID           string        `gorm:"primaryKey"`
	Name         string        `gorm:"not null"`
	FileRef      string        `gorm:"not null"`
	DownloadName string
	Status       PackageStatus `gorm:"not null;default:'DRAFT';index"`
	OwnerID      string        `gorm:"index"`

	AllowReassign         bool `gorm:"not null;default:false"`
	AllowDownloadUnsigned bool `gorm:"not null;default:false"`

	RejectionReason string
	RejectedByID    string
	RejectedByName  string
	RejectedIP      string
	RejectedAt      *time.Time

	RevocationReason string
	RevokedAt        *time.Time

	Fields []Field `gorm:"foreignKey:PackageID"`
}

// ParticipantMutable reports whether participant-initiated operations
// (submit, send/verify OTP, reject, reassign, add receiver) are still legal.
func (p *Package) ParticipantMutable() bool {
	return p.Status == StatusSent
}

// Terminal reports whether the package has reached a state that no
// participant action can leave.
func (p *Package) Terminal() bool {
	switch p.Status {
	case StatusCompleted, StatusRejected, StatusRevoked, StatusExpired, StatusArchived:
		return true
	}
	return false
}

// Participants collects the distinct assigned users across all fields,
// keyed by participant id. The same contact may appear on several fields;
// every occurrence shares the participant id.
func (p *Package) Participants() map[string][]*AssignedUser {
	out := make(map[string][]*AssignedUser)
	for i := range p.Fields {
		f := &p.Fields[i]
		for j := range f.Assignments {
			a := &f.Assignments[j]
			out[a.ParticipantID] = append(out[a.ParticipantID], a)
		}
	}
	return out
}

// FindField returns the field with the given id, or nil.
func (p *Package) FindField(fieldID string) *Field {
	for i := range p.Fields {
		if p.Fields[i].ID == fieldID {
			return &p.Fields[i]
		}
	}
	return nil
}
