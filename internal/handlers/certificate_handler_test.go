package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/getmentor/mentorship-api/internal/models"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newCertificateRouter(service *MockCertificateService) *gin.Engine {
	router := gin.New()
	router.GET("/api/v1/certificates/verify", NewCertificateHandler(service).Verify)
	return router
}

func TestCertificateHandler_Verify(t *testing.T) {
	service := new(MockCertificateService)
	service.On("Verify", "good").Return(&models.Certificate{
		EngagementID: "eng-1",
		MenteeID:     "mentee-1",
		MentorID:     "mentor-1",
		Topic:        "Go",
		IssuedDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}, nil)

	w := serve(newCertificateRouter(service), http.MethodGet, "/api/v1/certificates/verify?token=good", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"valid": true,
		"certificate": {
			"engagementId": "eng-1",
			"menteeId": "mentee-1",
			"mentorId": "mentor-1",
			"topic": "Go",
			"issuedDate": "2024-03-01T00:00:00Z"
		}
	}`, w.Body.String())
}

func TestCertificateHandler_VerifyRejectsBadToken(t *testing.T) {
	service := new(MockCertificateService)
	service.On("Verify", "bad").Return(nil, apperrors.ValidationError("token", "invalid token"))

	w := serve(newCertificateRouter(service), http.MethodGet, "/api/v1/certificates/verify?token=bad", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
