package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caseeracademy/sky-agent-platform-sub002/internal/models"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/services/application"
)

// ApplicationHandler handles agent-facing application requests
type ApplicationHandler struct {
	db     *gorm.DB
	appSvc *application.ApplicationService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(db *gorm.DB, appSvc *application.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{db: db, appSvc: appSvc}
}

// CreateApplication creates a draft application for one of the agent's students
func (h *ApplicationHandler) CreateApplication(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}

	var input struct {
		StudentID uuid.UUID `json:"student_id" binding:"required"`
		ProgramID uuid.UUID `json:"program_id" binding:"required"`
		Notes     string    `json:"notes"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.appSvc.CreateApplication(agentID, input.StudentID, input.ProgramID, input.Notes)
	if err != nil {
		if errors.Is(err, application.ErrNotOwner) {
			c.JSON(http.StatusForbidden, gin.H{"error": "student does not belong to agent"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create application"})
		return
	}

	c.JSON(http.StatusCreated, app)
}

// ListApplications lists the agent's own applications
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}

	status := models.ApplicationStatus(c.Query("status"))
	apps, err := h.appSvc.ListApplications(&agentID, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list applications"})
		return
	}

	c.JSON(http.StatusOK, apps)
}

// GetApplication gets one of the agent's applications
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application ID"})
		return
	}

	app, err := h.appSvc.GetApplication(appID, &agentID)
	if err != nil {
		if errors.Is(err, application.ErrNotOwner) {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
		return
	}

	c.JSON(http.StatusOK, app)
}

// SubmitApplication submits a draft or documents-requested application
func (h *ApplicationHandler) SubmitApplication(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application ID"})
		return
	}

	app, err := h.appSvc.Submit(appID, agentID)
	if err != nil {
		respondApplicationError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// CancelApplication cancels one of the agent's applications
func (h *ApplicationHandler) CancelApplication(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application ID"})
		return
	}

	app, err := h.appSvc.Cancel(appID, agentID, false)
	if err != nil {
		respondApplicationError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// respondApplicationError maps lifecycle errors to HTTP responses
func respondApplicationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "action not allowed from current status"})
	case errors.Is(err, application.ErrInvalidOutcome):
		c.JSON(http.StatusBadRequest, gin.H{"error": "decision outcome must be approved or rejected"})
	case errors.Is(err, application.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
