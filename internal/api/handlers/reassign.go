package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paraphe-sign/internal/db/models"
	"github.com/paraphe-sign/internal/services"
	"go.uber.org/zap"
)

// ReassignHandler covers the transfer-of-responsibility endpoints:
// contact registration and listing, the reassignment itself, and
// add-receiver.
type ReassignHandler struct {
	reassign *services.ReassignService
	logger   *zap.Logger
}

func NewReassignHandler(reassign *services.ReassignService, logger *zap.Logger) *ReassignHandler {
	return &ReassignHandler{
		reassign: reassign,
		logger:   logger.With(zap.String("handler", "reassign")),
	}
}

type contactView struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Language  string `json:"language"`
}

func toContactView(c *models.ReassignmentContact) contactView {
	return contactView{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Language:  c.Language,
	}
}

func (h *ReassignHandler) ListContacts(c *gin.Context) {
	contacts, err := h.reassign.ListContacts(c.Request.Context(), c.Param("packageId"), c.Param("participantId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	views := make([]contactView, 0, len(contacts))
	for i := range contacts {
		views = append(views, toContactView(&contacts[i]))
	}
	respondOK(c, http.StatusOK, "contacts retrieved", views)
}

type registerContactRequest struct {
	Email     string `json:"email" binding:"required"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Phone     string `json:"phone"`
	Language  string `json:"language"`
}

func (h *ReassignHandler) RegisterContact(c *gin.Context) {
	var req registerContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email, firstName and lastName are required")
		return
	}

	contact, err := h.reassign.RegisterContact(c.Request.Context(),
		c.Param("packageId"), c.Param("participantId"), services.ContactData{
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			Language:  req.Language,
		})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, "contact registered", toContactView(contact))
}

type performReassignmentRequest struct {
	NewContactID string `json:"newContactId" binding:"required"`
	Reason       string `json:"reason" binding:"required"`
}

func (h *ReassignHandler) Perform(c *gin.Context) {
	var req performReassignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "newContactId and reason are required")
		return
	}

	pkg, err := h.reassign.Perform(c.Request.Context(),
		c.Param("packageId"), c.Param("participantId"), req.NewContactID, req.Reason, c.ClientIP())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "assignments transferred", gin.H{"status": pkg.Status})
}

type addReceiverRequest struct {
	NewContactID string `json:"newContactId" binding:"required"`
}

func (h *ReassignHandler) AddReceiver(c *gin.Context) {
	var req addReceiverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "newContactId is required")
		return
	}

	pkg, err := h.reassign.AddReceiver(c.Request.Context(),
		c.Param("packageId"), c.Param("participantId"), req.NewContactID, c.ClientIP())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "receiver added", gin.H{"status": pkg.Status})
}
