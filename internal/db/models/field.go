package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type FieldType string

const (
	FieldText      FieldType = "text"
	FieldTextarea  FieldType = "textarea"
	FieldDate      FieldType = "date"
	FieldCheckbox  FieldType = "checkbox"
	FieldSignature FieldType = "signature"
)

// Field is a positioned, typed slot on a page of the package document.
type Field struct {
	gorm.Model
	ID        string    `gorm:"primaryKey"`
	PackageID string    `gorm:"index;not null"`
	Type      FieldType `gorm:"not null"`
	Page      int       `gorm:"not null;default:1"`
	X         float64
	Y         float64
	Width     float64
	Height    float64
	Required  bool        `gorm:"not null;default:false"`
	Value     *FieldValue `gorm:"type:json"`

	Assignments []AssignedUser `gorm:"foreignKey:FieldID"`
}

const (
	ValueString    = "string"
	ValueBool      = "bool"
	ValueNumber    = "number"
	ValueSignature = "signature"
)

// FieldValue is the typed union a field can hold. Exactly one of the
// payload members is meaningful, selected by Kind.
type FieldValue struct {
	Kind      string          `json:"kind"`
	String    string          `json:"string,omitempty"`
	Bool      bool            `json:"bool,omitempty"`
	Number    float64         `json:"number,omitempty"`
	Signature *SignatureValue `json:"signature,omitempty"`
}

// SignatureValue is the immutable proof written by a successful OTP
// verification. OtpRef identifies the consumed record for audit display;
// the code itself is never stored.
type SignatureValue struct {
	SignedBy string `json:"signedBy"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Date     string `json:"date"`
	Method   string `json:"method"`
	OtpRef   string `json:"otpRef"`
}

// Present reports whether the value counts as filled for completion
// purposes: strings must be non-blank after trimming.
func (v *FieldValue) Present() bool {
	if v == nil {
		return false
	}
	switch v.Kind {
	case ValueString:
		return strings.TrimSpace(v.String) != ""
	case ValueSignature:
		return v.Signature != nil
	case ValueBool, ValueNumber:
		return true
	}
	return false
}

func (v *FieldValue) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func (v *FieldValue) Scan(src interface{}) error {
	switch data := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(data, v)
	case string:
		return json.Unmarshal([]byte(data), v)
	}
	return fmt.Errorf("unsupported field value source %T", src)
}
