package services

import (
	"testing"
	"time"

	"github.com/paraphe-sign/internal/db/models"
	"github.com/stretchr/testify/assert"
)

func TestParticipantProgressBlockedByRequiredField(t *testing.T) {
	pkg := sentPackage()

	progress := ParticipantProgress(pkg, fillerID)
	assert.False(t, progress.Completed)
	assert.Equal(t, 0, progress.ProgressPercent)

	pkg.Fields[0].Value = &models.FieldValue{Kind: models.ValueString, String: "Alice"}
	progress = ParticipantProgress(pkg, fillerID)
	assert.True(t, progress.Completed)
	assert.Equal(t, 100, progress.ProgressPercent)
}

func TestParticipantProgressBlankStringDoesNotCount(t *testing.T) {
	pkg := sentPackage()
	pkg.Fields[0].Value = &models.FieldValue{Kind: models.ValueString, String: "   "}

	progress := ParticipantProgress(pkg, fillerID)
	assert.False(t, progress.Completed)
}

func TestParticipantProgressOptionalFieldsDoNotBlock(t *testing.T) {
	pkg := sentPackage()
	pkg.Fields[0].Required = false

	progress := ParticipantProgress(pkg, fillerID)
	assert.True(t, progress.Completed, "optional fields never gate completion")
	assert.Equal(t, 0, progress.ProgressPercent)
}

func TestParticipantProgressSignatureRequiresSignedFlag(t *testing.T) {
	pkg := sentPackage()

	// A signature payload alone is not enough; the assignment flag decides.
	pkg.Fields[1].Value = &models.FieldValue{
		Kind:      models.ValueSignature,
		Signature: &models.SignatureValue{SignedBy: "Sam Signer"},
	}
	progress := ParticipantProgress(pkg, signerID)
	assert.False(t, progress.Completed)

	pkg.Fields[1].Assignments[0].Signed = true
	progress = ParticipantProgress(pkg, signerID)
	assert.True(t, progress.Completed)
}

func TestPackageCompleteIsConjunctionOverParticipants(t *testing.T) {
	pkg := sentPackage()
	assert.False(t, PackageComplete(pkg))

	pkg.Fields[0].Value = &models.FieldValue{Kind: models.ValueString, String: "Alice"}
	assert.False(t, PackageComplete(pkg), "second participant still outstanding")

	pkg.Fields[1].Assignments[0].Signed = true
	assert.True(t, PackageComplete(pkg))
}

func TestPackageCompleteIgnoresReceivers(t *testing.T) {
	pkg := sentPackage()
	pkg.Fields[0].Value = &models.FieldValue{Kind: models.ValueString, String: "Alice"}
	pkg.Fields[1].Assignments[0].Signed = true

	pkg.Fields[0].Assignments = append(pkg.Fields[0].Assignments, models.AssignedUser{
		ID:            "assign-receiver",
		FieldID:       textFieldID,
		PackageID:     testPackageID,
		ParticipantID: "part-receiver",
		ContactName:   "Rita Receiver",
		Role:          models.RoleReceiver,
	})

	assert.True(t, PackageComplete(pkg), "receivers carry no obligations")
	progress := ParticipantProgress(pkg, "part-receiver")
	assert.True(t, progress.Completed)
	assert.Equal(t, 100, progress.ProgressPercent)
}

func TestCompleteIfReadyOnlyFlipsSentPackages(t *testing.T) {
	pkg := sentPackage()
	pkg.Fields[0].Value = &models.FieldValue{Kind: models.ValueString, String: "Alice"}
	pkg.Fields[1].Assignments[0].Signed = true

	assert.True(t, completeIfReady(pkg))
	assert.Equal(t, models.StatusCompleted, pkg.Status)

	// Re-running on a completed package is a no-op.
	assert.False(t, completeIfReady(pkg))
	assert.Equal(t, models.StatusCompleted, pkg.Status)

	rejected := sentPackage()
	rejected.Status = models.StatusRejected
	rejected.Fields[0].Value = &models.FieldValue{Kind: models.ValueString, String: "Alice"}
	rejected.Fields[1].Assignments[0].Signed = true
	assert.False(t, completeIfReady(rejected))
	assert.Equal(t, models.StatusRejected, rejected.Status)
}

func TestCompleteIfReadyNotReadyLeavesStatus(t *testing.T) {
	pkg := sentPackage()
	assert.False(t, completeIfReady(pkg))
	assert.Equal(t, models.StatusSent, pkg.Status)
}

func TestAssignmentCompleteNonSignature(t *testing.T) {
	now := time.Now()
	field := &models.Field{Type: models.FieldCheckbox}
	assignment := &models.AssignedUser{SignedAt: &now}

	assert.False(t, assignmentComplete(field, assignment))
	field.Value = &models.FieldValue{Kind: models.ValueBool, Bool: false}
	assert.True(t, assignmentComplete(field, assignment), "an unchecked checkbox still counts as filled")
}
