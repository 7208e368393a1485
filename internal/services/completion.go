package services

import (
	"github.com/paraphe-sign/internal/db/models"
)

// Progress summarizes how far a participant is through their assigned
// work. Only Completed is authoritative for state transitions; the
// percentage is advisory and UI-facing.
type Progress struct {
	Completed       bool
	ProgressPercent int
}

// assignmentComplete reports whether one (field, participant) binding is
// done: signature fields require the assignment's signed flag, everything
// else requires a present value (strings non-blank after trimming).
func assignmentComplete(field *models.Field, assignment *models.AssignedUser) bool {
	if field.Type == models.FieldSignature {
		return assignment.Signed
	}
	return field.Value.Present()
}

// ParticipantProgress evaluates a participant's required work across the
// package. Receiver-role assignments carry no obligations and never
// block completion; non-required fields count toward the percentage but
// not toward the completed flag.
func ParticipantProgress(pkg *models.Package, participantID string) Progress {
	var total, done int
	completed := true

	for i := range pkg.Fields {
		field := &pkg.Fields[i]
		for j := range field.Assignments {
			assignment := &field.Assignments[j]
			if assignment.ParticipantID != participantID || assignment.Role == models.RoleReceiver {
				continue
			}
			total++
			if assignmentComplete(field, assignment) {
				done++
			} else if field.Required {
				completed = false
			}
		}
	}

	percent := 100
	if total > 0 {
		percent = done * 100 / total
	}
	return Progress{Completed: completed, ProgressPercent: percent}
}

// PackageComplete is the conjunction of per-participant completion over
// every participant holding at least one non-receiver assignment.
func PackageComplete(pkg *models.Package) bool {
	seen := make(map[string]bool)
	for i := range pkg.Fields {
		field := &pkg.Fields[i]
		for j := range field.Assignments {
			assignment := &field.Assignments[j]
			if assignment.Role == models.RoleReceiver || seen[assignment.ParticipantID] {
				continue
			}
			seen[assignment.ParticipantID] = true
			if !ParticipantProgress(pkg, assignment.ParticipantID).Completed {
				return false
			}
		}
	}
	return true
}

// completeIfReady flips a Sent package to Completed when every
// participant is done. The status check doubles as the compare-and-set:
// callers run this under the per-package writer lock, and re-running it
// on an already-Completed package is a no-op.
func completeIfReady(pkg *models.Package) bool {
	if pkg.Status != models.StatusSent {
		return false
	}
	if !PackageComplete(pkg) {
		return false
	}
	pkg.Status = models.StatusCompleted
	return true
}
