package handlers

import (
	"net/http"

	"github.com/getmentor/mentorship-api/internal/models"
	"github.com/getmentor/mentorship-api/internal/services"
	"github.com/gin-gonic/gin"
)

// RequestHandler handles mentorship request endpoints
type RequestHandler struct {
	service services.MentorshipServiceInterface
	input   inputBinder
}

// NewRequestHandler creates a new RequestHandler
func NewRequestHandler(service services.MentorshipServiceInterface, notifier services.Notifier) *RequestHandler {
	return &RequestHandler{
		service: service,
		input:   inputBinder{notifier: notifier},
	}
}

// Submit handles POST /api/v1/requests
func (h *RequestHandler) Submit(c *gin.Context) {
	var payload models.SubmitRequestPayload
	if !h.input.bind(c, services.OpSubmitRequest, &payload) {
		return
	}

	request, err := h.service.SubmitRequest(c.Request.Context(), &payload)
	if err != nil {
		respondServiceError(c, err, "Failed to submit request")
		return
	}

	c.JSON(http.StatusCreated, request)
}

// List handles GET /api/v1/requests?menteeId=&mentorId=&status=
func (h *RequestHandler) List(c *gin.Context) {
	filter := models.RequestFilter{
		MenteeID: c.Query("menteeId"),
		MentorID: c.Query("mentorId"),
		Status:   models.RequestStatus(c.Query("status")),
	}

	response, err := h.service.ListRequests(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch requests")
		return
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/v1/requests/:id
func (h *RequestHandler) Get(c *gin.Context) {
	request, err := h.service.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to fetch request")
		return
	}

	c.JSON(http.StatusOK, request)
}

// Accept handles POST /api/v1/requests/:id/accept
func (h *RequestHandler) Accept(c *gin.Context) {
	var payload models.AcceptRequestPayload
	if !h.input.bindOptional(c, services.OpAcceptRequest, &payload) {
		return
	}

	response, err := h.service.AcceptRequest(c.Request.Context(), c.Param("id"), &payload)
	if err != nil {
		respondServiceError(c, err, "Failed to accept request")
		return
	}

	c.JSON(http.StatusOK, response)
}

// Reject handles POST /api/v1/requests/:id/reject
func (h *RequestHandler) Reject(c *gin.Context) {
	var payload models.RejectRequestPayload
	if !h.input.bindOptional(c, services.OpRejectRequest, &payload) {
		return
	}

	request, err := h.service.RejectRequest(c.Request.Context(), c.Param("id"), &payload)
	if err != nil {
		respondServiceError(c, err, "Failed to reject request")
		return
	}

	c.JSON(http.StatusOK, request)
}
