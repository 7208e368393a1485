package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paraphe-sign/internal/db/models"
	"github.com/paraphe-sign/internal/services"
	"go.uber.org/zap"
)

// SignatureHandler exposes the OTP protocol over both channels. The
// email and SMS endpoints differ only in the channel they hand to the
// service.
type SignatureHandler struct {
	signatures *services.SignatureService
	logger     *zap.Logger
}

func NewSignatureHandler(signatures *services.SignatureService, logger *zap.Logger) *SignatureHandler {
	return &SignatureHandler{
		signatures: signatures,
		logger:     logger.With(zap.String("handler", "signature")),
	}
}

type sendOtpRequest struct {
	FieldID string `json:"fieldId" binding:"required"`
	Email   string `json:"email" binding:"required"`
}

func (h *SignatureHandler) SendOtp(c *gin.Context) {
	var req sendOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "fieldId and email are required")
		return
	}

	err := h.signatures.SendOtp(c.Request.Context(),
		c.Param("packageId"), c.Param("participantId"), req.FieldID,
		models.MethodEmailOTP, req.Email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "verification code sent", gin.H{"sent": true})
}

type sendSmsOtpRequest struct {
	FieldID string `json:"fieldId" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
}

func (h *SignatureHandler) SendSmsOtp(c *gin.Context) {
	var req sendSmsOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "fieldId and phone are required")
		return
	}

	err := h.signatures.SendOtp(c.Request.Context(),
		c.Param("packageId"), c.Param("participantId"), req.FieldID,
		models.MethodSMSOTP, req.Phone)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "verification code sent", gin.H{"sent": true})
}

type verifyOtpRequest struct {
	FieldID string `json:"fieldId" binding:"required"`
	Otp     string `json:"otp" binding:"required"`
}

func (h *SignatureHandler) VerifyOtp(c *gin.Context) {
	var req verifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "fieldId and otp are required")
		return
	}

	pkg, err := h.signatures.VerifyOtp(c.Request.Context(),
		c.Param("packageId"), c.Param("participantId"), req.FieldID, req.Otp, c.ClientIP())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "signature recorded", gin.H{"status": pkg.Status})
}
