package handlers

import (
	"net/http"

	"github.com/getmentor/mentorship-api/internal/services"
	"github.com/gin-gonic/gin"
)

// CertificateHandler handles certificate verification
type CertificateHandler struct {
	service services.CertificateServiceInterface
}

// NewCertificateHandler creates a new CertificateHandler
func NewCertificateHandler(service services.CertificateServiceInterface) *CertificateHandler {
	return &CertificateHandler{
		service: service,
	}
}

// Verify handles GET /api/v1/certificates/verify?token=
func (h *CertificateHandler) Verify(c *gin.Context) {
	certificate, err := h.service.Verify(c.Query("token"))
	if err != nil {
		respondServiceError(c, err, "Failed to verify certificate")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":       true,
		"certificate": certificate,
	})
}
