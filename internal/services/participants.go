package services

import (
	"github.com/paraphe-sign/internal/apperrors"
	"github.com/paraphe-sign/internal/db/models"
)

// participantAssignments collects every assignment row held by the
// participant across the package fields.
func participantAssignments(pkg *models.Package, participantID string) []*models.AssignedUser {
	var out []*models.AssignedUser
	for i := range pkg.Fields {
		field := &pkg.Fields[i]
		for j := range field.Assignments {
			if field.Assignments[j].ParticipantID == participantID {
				out = append(out, &field.Assignments[j])
			}
		}
	}
	return out
}

// resolveParticipant returns the participant's assignments or a
// not-found error when the id does not resolve on this package.
func resolveParticipant(pkg *models.Package, participantID string) ([]*models.AssignedUser, error) {
	assignments := participantAssignments(pkg, participantID)
	if len(assignments) == 0 {
		return nil, apperrors.NotFound("participant")
	}
	return assignments, nil
}

// receiverOnly reports whether the participant holds nothing but
// receiver-role assignments.
func receiverOnly(assignments []*models.AssignedUser) bool {
	for _, a := range assignments {
		if a.Role != models.RoleReceiver {
			return false
		}
	}
	return true
}

// guardParticipantMutable rejects mutation attempts on a finalized
// package.
func guardParticipantMutable(pkg *models.Package) error {
	if !pkg.ParticipantMutable() {
		return apperrors.PackageFinalized(string(pkg.Status))
	}
	return nil
}
