package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caseeracademy/sky-agent-platform-sub002/internal/jobs"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/models"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/services/application"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/services/ledger"
)

// AdminApplicationHandler handles back-office application review requests
type AdminApplicationHandler struct {
	db        *gorm.DB
	appSvc    *application.ApplicationService
	systemJob *jobs.SystemScholarshipJob
}

// NewAdminApplicationHandler creates a new admin application handler
func NewAdminApplicationHandler(db *gorm.DB, appSvc *application.ApplicationService, systemJob *jobs.SystemScholarshipJob) *AdminApplicationHandler {
	return &AdminApplicationHandler{db: db, appSvc: appSvc, systemJob: systemJob}
}

// ListApplications lists all applications, optionally filtered by status
func (h *AdminApplicationHandler) ListApplications(c *gin.Context) {
	status := models.ApplicationStatus(c.Query("status"))
	apps, err := h.appSvc.ListApplications(nil, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list applications"})
		return
	}

	c.JSON(http.StatusOK, apps)
}

// StartReview moves a submitted application to under review
func (h *AdminApplicationHandler) StartReview(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application ID"})
		return
	}

	app, err := h.appSvc.StartReview(appID, adminID)
	if err != nil {
		respondApplicationError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// RequestDocuments sends an application back to the agent for more documents
func (h *AdminApplicationHandler) RequestDocuments(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application ID"})
		return
	}

	var input struct {
		Note string `json:"note"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.appSvc.RequestDocuments(appID, adminID, input.Note)
	if err != nil {
		respondApplicationError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// Decide applies an approve/reject decision. Approval triggers commission and
// scholarship accrual atomically with the status change; when an award is
// earned, a system-wide evaluation job is enqueued after the commit.
func (h *AdminApplicationHandler) Decide(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application ID"})
		return
	}

	var input struct {
		Outcome models.ApplicationStatus `json:"outcome" binding:"required"`
		Notes   string                   `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, award, err := h.appSvc.Decide(appID, adminID, input.Outcome, input.Notes)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrDuplicateCommission):
			c.JSON(http.StatusConflict, gin.H{"error": "commission already recorded for this application"})
		case errors.Is(err, ledger.ErrMissingCommissionConfig):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "program has no agent commission configured"})
		default:
			respondApplicationError(c, err)
		}
		return
	}

	if award != nil && h.systemJob != nil {
		// accrual already committed; a failed enqueue just means the projection
		// gets recomputed on demand instead
		_ = h.systemJob.EnqueueForAward(award)
	}

	c.JSON(http.StatusOK, gin.H{"application": app, "award": award})
}

// Enroll marks an approved application as enrolled
func (h *AdminApplicationHandler) Enroll(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application ID"})
		return
	}

	app, err := h.appSvc.Enroll(appID, adminID)
	if err != nil {
		respondApplicationError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}
