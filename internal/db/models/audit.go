package models

import (
	"time"

	"gorm.io/gorm"
)

type AuditAction string

const (
	AuditFieldsSubmitted AuditAction = "FIELDS_SUBMITTED"
	AuditOtpSent         AuditAction = "OTP_SENT"
	AuditSigned          AuditAction = "SIGNED"
	AuditRejected        AuditAction = "REJECTED"
	AuditReassigned      AuditAction = "REASSIGNED"
	AuditReceiverAdded   AuditAction = "RECEIVER_ADDED"
	AuditRevoked         AuditAction = "REVOKED"
	AuditCompleted       AuditAction = "COMPLETED"
)

// AuditEvent is an append-only record of a state-changing action on a
// package. Rows are never updated or deleted.
type AuditEvent struct {
	gorm.Model
	ID            string      `gorm:"primaryKey"`
	PackageID     string      `gorm:"index;not null"`
	ParticipantID string      `gorm:"index"`
	Action        AuditAction `gorm:"not null"`
	ActorName     string
	Method        string
	SourceIP      string
	Detail        string
	OccurredAt    time.Time `gorm:"autoCreateTime"`
}
