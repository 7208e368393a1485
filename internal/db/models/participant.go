package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type ParticipantRole string

const (
	RoleSigner     ParticipantRole = "SIGNER"
	RoleApprover   ParticipantRole = "APPROVER"
	RoleFormFiller ParticipantRole = "FORMFILLER"
	RoleReceiver   ParticipantRole = "RECEIVER"
)

const (
	MethodEmailOTP = "EMAIL_OTP"
	MethodSMSOTP   = "SMS_OTP"
)

// AssignedUser binds a contact to a field with a role. One row per
// (field, participant) pair; rows belonging to the same person within a
// package share ParticipantID, which is the id used in signing links.
type AssignedUser struct {
	gorm.Model
	ID            string `gorm:"primaryKey"`
	FieldID       string `gorm:"index;not null"`
	PackageID     string `gorm:"index;not null"`
	ParticipantID string `gorm:"index;not null"`
	ContactID     string
	ContactName   string `gorm:"not null"`
	ContactEmail  string
	ContactPhone  string
	Language      string          `gorm:"default:'en'"`
	Role          ParticipantRole `gorm:"not null;default:'SIGNER'"`

	AllowedMethods MethodList `gorm:"type:json"`

	Signed       bool `gorm:"not null;default:false"`
	SignedAt     *time.Time
	SignedMethod string
	SignedIP     string
}

// AllowsMethod reports whether the participant may sign over the given
// channel. An empty list allows every channel.
func (a *AssignedUser) AllowsMethod(method string) bool {
	if len(a.AllowedMethods) == 0 {
		return true
	}
	for _, m := range a.AllowedMethods {
		if m == method {
			return true
		}
	}
	return false
}

// MethodList persists the allowed signature channels as a JSON array.
type MethodList []string

func (m MethodList) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *MethodList) Scan(src interface{}) error {
	switch data := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(data, m)
	case string:
		return json.Unmarshal([]byte(data), m)
	}
	return fmt.Errorf("unsupported method list source %T", src)
}
