package handlers

import (
	"net/http"

	"github.com/getmentor/mentorship-api/internal/models"
	"github.com/getmentor/mentorship-api/internal/services"
	"github.com/gin-gonic/gin"
)

// PreferencesHandler handles mentee preference endpoints
type PreferencesHandler struct {
	service services.PreferencesServiceInterface
}

// NewPreferencesHandler creates a new PreferencesHandler
func NewPreferencesHandler(service services.PreferencesServiceInterface) *PreferencesHandler {
	return &PreferencesHandler{
		service: service,
	}
}

// Get handles GET /api/v1/mentees/:id/preferences
func (h *PreferencesHandler) Get(c *gin.Context) {
	response, err := h.service.GetPreferences(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to fetch preferences")
		return
	}

	c.JSON(http.StatusOK, response)
}

// Save handles PUT /api/v1/mentees/:id/preferences
func (h *PreferencesHandler) Save(c *gin.Context) {
	var req models.SavePreferencesRequest
	if !bindJSON(c, &req) {
		return
	}

	preferences, err := h.service.SavePreferences(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err, "Failed to save preferences")
		return
	}

	c.JSON(http.StatusOK, models.PreferencesResponse{Set: true, Preferences: preferences})
}
