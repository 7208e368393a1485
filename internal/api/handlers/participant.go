package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paraphe-sign/internal/db/models"
	"github.com/paraphe-sign/internal/services"
	"go.uber.org/zap"
)

// ParticipantHandler serves the link-authorized participant endpoints:
// package view, field submission, rejection, and download.
type ParticipantHandler struct {
	packages *services.PackageService
	logger   *zap.Logger
}

func NewParticipantHandler(packages *services.PackageService, logger *zap.Logger) *ParticipantHandler {
	return &ParticipantHandler{
		packages: packages,
		logger:   logger.With(zap.String("handler", "participant")),
	}
}

type fieldView struct {
	ID       string             `json:"id"`
	Type     models.FieldType   `json:"type"`
	Page     int                `json:"page"`
	X        float64            `json:"x"`
	Y        float64            `json:"y"`
	Width    float64            `json:"width"`
	Height   float64            `json:"height"`
	Required bool               `json:"required"`
	Value    *models.FieldValue `json:"value,omitempty"`
	Mine     bool               `json:"mine"`
	Signed   bool               `json:"signed"`
	Methods  []string           `json:"allowedMethods,omitempty"`
}

type reassignmentView struct {
	OldContactName string    `json:"oldContactName"`
	NewContactName string    `json:"newContactName"`
	Reason         string    `json:"reason"`
	OccurredAt     time.Time `json:"occurredAt"`
}

type packageView struct {
	ID                    string               `json:"id"`
	Name                  string               `json:"name"`
	Status                models.PackageStatus `json:"status"`
	AllowReassign         bool                 `json:"allowReassign"`
	AllowDownloadUnsigned bool                 `json:"allowDownloadUnsigned"`
	RejectionReason       string               `json:"rejectionReason,omitempty"`
	ParticipantName       string               `json:"participantName"`
	Completed             bool                 `json:"completed"`
	ProgressPercent       int                  `json:"progressPercent"`
	CanReassign           bool                 `json:"canReassign"`
	ReassignBlocked       string               `json:"reassignBlocked,omitempty"`
	Fields                []fieldView          `json:"fields"`
	History               []reassignmentView   `json:"reassignmentHistory"`
}

func (h *ParticipantHandler) GetView(c *gin.Context) {
	view, err := h.packages.GetParticipantView(c.Request.Context(), c.Param("packageId"), c.Param("participantId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "package retrieved", buildPackageView(view))
}

func buildPackageView(view *services.ParticipantView) packageView {
	pkg := view.Package
	out := packageView{
		ID:                    pkg.ID,
		Name:                  pkg.Name,
		Status:                pkg.Status,
		AllowReassign:         pkg.AllowReassign,
		AllowDownloadUnsigned: pkg.AllowDownloadUnsigned,
		RejectionReason:       pkg.RejectionReason,
		ParticipantName:       view.ParticipantName,
		Completed:             view.Progress.Completed,
		ProgressPercent:       view.Progress.ProgressPercent,
		CanReassign:           view.CanReassign,
		ReassignBlocked:       view.ReassignBlocked,
	}

	mine := make(map[string]*models.AssignedUser, len(view.Assignments))
	for _, a := range view.Assignments {
		mine[a.FieldID] = a
	}
	for i := range pkg.Fields {
		field := &pkg.Fields[i]
		fv := fieldView{
			ID:       field.ID,
			Type:     field.Type,
			Page:     field.Page,
			X:        field.X,
			Y:        field.Y,
			Width:    field.Width,
			Height:   field.Height,
			Required: field.Required,
			Value:    field.Value,
		}
		if a, ok := mine[field.ID]; ok {
			fv.Mine = true
			fv.Signed = a.Signed
			fv.Methods = a.AllowedMethods
		}
		out.Fields = append(out.Fields, fv)
	}
	for _, e := range view.History {
		out.History = append(out.History, reassignmentView{
			OldContactName: e.OldContactName,
			NewContactName: e.NewContactName,
			Reason:         e.Reason,
			OccurredAt:     e.OccurredAt,
		})
	}
	return out
}

type submitFieldsRequest struct {
	FieldValues map[string]models.FieldValue `json:"fieldValues" binding:"required"`
}

func (h *ParticipantHandler) SubmitFields(c *gin.Context) {
	var req submitFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "fieldValues is required")
		return
	}

	pkg, err := h.packages.SubmitFields(c.Request.Context(),
		c.Param("packageId"), c.Param("participantId"), req.FieldValues, c.ClientIP())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "fields saved", gin.H{"status": pkg.Status})
}

type rejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *ParticipantHandler) Reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "reason is required")
		return
	}

	pkg, err := h.packages.Reject(c.Request.Context(),
		c.Param("packageId"), c.Param("participantId"), req.Reason, c.ClientIP())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "package rejected", gin.H{"status": pkg.Status})
}

func (h *ParticipantHandler) Download(c *gin.Context) {
	data, name, err := h.packages.Download(c.Request.Context(), c.Param("packageId"), c.Param("participantId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Writer.Write(data)
}

type revokeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Revoke is the owner-side withdrawal endpoint.
func (h *ParticipantHandler) Revoke(c *gin.Context) {
	var req revokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "reason is required")
		return
	}

	pkg, err := h.packages.Revoke(c.Request.Context(), c.Param("packageId"), req.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "package revoked", gin.H{"status": pkg.Status})
}
