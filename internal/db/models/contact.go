package models

import (
	"time"

	"gorm.io/gorm"
)

// ReassignmentContact is a contact scoped to the package owner, created by
// a participant during reassignment or add-receiver flows.
type ReassignmentContact struct {
	gorm.Model
	ID        string `gorm:"primaryKey"`
	OwnerID   string `gorm:"index;not null"`
	FirstName string `gorm:"not null"`
	LastName  string `gorm:"not null"`
	Email     string `gorm:"not null"`
	Phone     string
	Language  string `gorm:"default:'en'"`
}

func (c *ReassignmentContact) FullName() string {
	return c.FirstName + " " + c.LastName
}

// ReassignmentEvent is the immutable history entry a transfer of
// responsibility appends to the package. Kept apart from the audit trail
// used for signing events.
type ReassignmentEvent struct {
	gorm.Model
	ID             string `gorm:"primaryKey"`
	PackageID      string `gorm:"index;not null"`
	OldContactID   string
	OldContactName string
	NewContactID   string
	NewContactName string
	Reason         string    `gorm:"not null"`
	ActorIP        string
	OccurredAt     time.Time `gorm:"autoCreateTime"`
}
