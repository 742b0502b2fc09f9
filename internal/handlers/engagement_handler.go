package handlers

import (
	"net/http"

	"github.com/getmentor/mentorship-api/internal/models"
	"github.com/getmentor/mentorship-api/internal/services"
	"github.com/gin-gonic/gin"
)

// EngagementHandler handles engagement lifecycle endpoints
type EngagementHandler struct {
	service services.MentorshipServiceInterface
	input   inputBinder
}

// NewEngagementHandler creates a new EngagementHandler. Rejected request
// bodies are reported to notifier.
func NewEngagementHandler(service services.MentorshipServiceInterface, notifier services.Notifier) *EngagementHandler {
	return &EngagementHandler{
		service: service,
		input:   inputBinder{notifier: notifier},
	}
}

// List handles GET /api/v1/engagements?menteeId=&mentorId=&status=
func (h *EngagementHandler) List(c *gin.Context) {
	filter := models.EngagementFilter{
		MenteeID: c.Query("menteeId"),
		MentorID: c.Query("mentorId"),
		Status:   models.EngagementStatus(c.Query("status")),
	}

	response, err := h.service.ListEngagements(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch engagements")
		return
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/v1/engagements/:id
func (h *EngagementHandler) Get(c *gin.Context) {
	engagement, err := h.service.GetEngagement(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, engagement, err, "Failed to fetch engagement")
}

// Activity handles GET /api/v1/engagements/:id/activity
func (h *EngagementHandler) Activity(c *gin.Context) {
	activity, err := h.service.GetActivity(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to fetch activity")
		return
	}

	c.JSON(http.StatusOK, activity)
}

// AddSession handles POST /api/v1/engagements/:id/sessions
func (h *EngagementHandler) AddSession(c *gin.Context) {
	var payload models.AddSessionRequest
	if !h.input.bind(c, services.OpAddSession, &payload) {
		return
	}

	engagement, err := h.service.AddSession(c.Request.Context(), c.Param("id"), &payload)
	h.respond(c, http.StatusCreated, engagement, err, "Failed to add session")
}

// CompleteSession handles POST /api/v1/engagements/:id/sessions/:sessionId/complete
func (h *EngagementHandler) CompleteSession(c *gin.Context) {
	var payload models.CompleteSessionRequest
	if !h.input.bindOptional(c, services.OpCompleteSession, &payload) {
		return
	}

	engagement, err := h.service.CompleteSession(c.Request.Context(), c.Param("id"), c.Param("sessionId"), &payload)
	h.respond(c, http.StatusOK, engagement, err, "Failed to complete session")
}

// CancelSession handles POST /api/v1/engagements/:id/sessions/:sessionId/cancel
func (h *EngagementHandler) CancelSession(c *gin.Context) {
	engagement, err := h.service.CancelSession(c.Request.Context(), c.Param("id"), c.Param("sessionId"))
	h.respond(c, http.StatusOK, engagement, err, "Failed to cancel session")
}

// RecordSessionNotes handles POST /api/v1/engagements/:id/sessions/:sessionId/notes
func (h *EngagementHandler) RecordSessionNotes(c *gin.Context) {
	var payload models.SessionNotesRequest
	if !h.input.bind(c, services.OpRecordSessionNotes, &payload) {
		return
	}

	engagement, err := h.service.RecordSessionNotes(c.Request.Context(), c.Param("id"), c.Param("sessionId"), &payload)
	h.respond(c, http.StatusOK, engagement, err, "Failed to record session notes")
}

// AddTask handles POST /api/v1/engagements/:id/tasks
func (h *EngagementHandler) AddTask(c *gin.Context) {
	var payload models.AddTaskRequest
	if !h.input.bind(c, services.OpAddTask, &payload) {
		return
	}

	engagement, err := h.service.AddTask(c.Request.Context(), c.Param("id"), &payload)
	h.respond(c, http.StatusCreated, engagement, err, "Failed to add task")
}

// CompleteTask handles POST /api/v1/engagements/:id/tasks/:taskId/complete
func (h *EngagementHandler) CompleteTask(c *gin.Context) {
	var payload models.CompleteTaskRequest
	if !h.input.bindOptional(c, services.OpCompleteTask, &payload) {
		return
	}

	engagement, err := h.service.CompleteTask(c.Request.Context(), c.Param("id"), c.Param("taskId"), &payload)
	h.respond(c, http.StatusOK, engagement, err, "Failed to complete task")
}

// SetGoals handles POST /api/v1/engagements/:id/goals
func (h *EngagementHandler) SetGoals(c *gin.Context) {
	engagement, err := h.service.SetGoals(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, engagement, err, "Failed to set goals")
}

// Withdraw handles POST /api/v1/engagements/:id/withdraw
func (h *EngagementHandler) Withdraw(c *gin.Context) {
	var payload models.WithdrawRequest
	if !h.input.bindOptional(c, services.OpWithdraw, &payload) {
		return
	}

	engagement, err := h.service.Withdraw(c.Request.Context(), c.Param("id"), &payload)
	h.respond(c, http.StatusOK, engagement, err, "Failed to withdraw engagement")
}

// Complete handles POST /api/v1/engagements/:id/complete
func (h *EngagementHandler) Complete(c *gin.Context) {
	engagement, err := h.service.Complete(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, engagement, err, "Failed to complete engagement")
}

// Eligibility handles GET /api/v1/engagements/:id/eligibility
func (h *EngagementHandler) Eligibility(c *gin.Context) {
	eligibility, err := h.service.GetEligibility(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to check eligibility")
		return
	}

	c.JSON(http.StatusOK, eligibility)
}

// Certificate handles GET /api/v1/engagements/:id/certificate
func (h *EngagementHandler) Certificate(c *gin.Context) {
	document, err := h.service.GetCertificate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to fetch certificate")
		return
	}

	c.JSON(http.StatusOK, document)
}

func (h *EngagementHandler) respond(c *gin.Context, status int, engagement *models.Engagement, err error, fallback string) {
	if err != nil {
		respondServiceError(c, err, fallback)
		return
	}
	c.JSON(status, engagement)
}
