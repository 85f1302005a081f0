package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/caseeracademy/sky-agent-platform-sub002/internal/config"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/models"
	"github.com/caseeracademy/sky-agent-platform-sub002/internal/services/ledger"
)

// ScholarshipHandler handles agent-facing scholarship progress requests
type ScholarshipHandler struct {
	db        *gorm.DB
	ledgerSvc *ledger.LedgerService
	cfg       config.ScholarshipConfig
}

// NewScholarshipHandler creates a new scholarship handler
func NewScholarshipHandler(db *gorm.DB, ledgerSvc *ledger.LedgerService, cfg config.ScholarshipConfig) *ScholarshipHandler {
	return &ScholarshipHandler{db: db, ledgerSvc: ledgerSvc, cfg: cfg}
}

// currentYear resolves the year query parameter, defaulting to the running
// application year
func (h *ScholarshipHandler) currentYear(c *gin.Context) int {
	if yearStr := c.Query("year"); yearStr != "" {
		if year, err := strconv.Atoi(yearStr); err == nil {
			return year
		}
	}
	return ledger.ApplicationYear(time.Now(), h.cfg.CycleMonth, h.cfg.CycleDay)
}

// GetProgress returns the agent's merged completed/in-progress scholarship view
func (h *ScholarshipHandler) GetProgress(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}

	entries, err := h.ledgerSvc.ScholarshipProgress(agentID, h.currentYear(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get scholarship progress"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// ListAwards lists the agent's own scholarship awards
func (h *ScholarshipHandler) ListAwards(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}

	awards, err := h.ledgerSvc.ListAwards(ledger.AwardFilters{
		AgentID: &agentID,
		Status:  models.ScholarshipAwardStatus(c.Query("status")),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list awards"})
		return
	}

	c.JSON(http.StatusOK, awards)
}

// AdminScholarshipHandler handles back-office scholarship administration
type AdminScholarshipHandler struct {
	db        *gorm.DB
	ledgerSvc *ledger.LedgerService
	cfg       config.ScholarshipConfig
}

// NewAdminScholarshipHandler creates a new admin scholarship handler
func NewAdminScholarshipHandler(db *gorm.DB, ledgerSvc *ledger.LedgerService, cfg config.ScholarshipConfig) *AdminScholarshipHandler {
	return &AdminScholarshipHandler{db: db, ledgerSvc: ledgerSvc, cfg: cfg}
}

// ListAwards lists awards across all agents with filters
func (h *AdminScholarshipHandler) ListAwards(c *gin.Context) {
	filters := ledger.AwardFilters{
		DegreeType: models.DegreeType(c.Query("degree_type")),
		Status:     models.ScholarshipAwardStatus(c.Query("status")),
	}

	if agentStr := c.Query("agent_id"); agentStr != "" {
		agentID, err := uuid.Parse(agentStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid agent ID"})
			return
		}
		filters.AgentID = &agentID
	}
	if universityStr := c.Query("university_id"); universityStr != "" {
		universityID, err := uuid.Parse(universityStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid university ID"})
			return
		}
		filters.UniversityID = &universityID
	}
	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
			return
		}
		filters.Year = year
	}

	awards, err := h.ledgerSvc.ListAwards(filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list awards"})
		return
	}

	c.JSON(http.StatusOK, awards)
}

// UpdateAwardStatus applies an admin decision to an award
func (h *AdminScholarshipHandler) UpdateAwardStatus(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}

	awardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid award ID"})
		return
	}

	var input struct {
		Status models.ScholarshipAwardStatus `json:"status" binding:"required"`
		Notes  string                        `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	award, err := h.ledgerSvc.UpdateAwardStatus(awardID, adminID, input.Status, input.Notes)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidAwardStatus) {
			c.JSON(http.StatusConflict, gin.H{"error": "award status change not allowed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update award"})
		return
	}

	c.JSON(http.StatusOK, award)
}

// GetSystemProgress computes the system-wide qualification projection for a
// university/degree combination
func (h *AdminScholarshipHandler) GetSystemProgress(c *gin.Context) {
	universityID, err := uuid.Parse(c.Query("university_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid university ID"})
		return
	}

	degree := models.DegreeType(c.Query("degree_type"))
	if degree == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "degree_type is required"})
		return
	}

	year := ledger.ApplicationYear(time.Now(), h.cfg.CycleMonth, h.cfg.CycleDay)
	if yearStr := c.Query("year"); yearStr != "" {
		if parsed, parseErr := strconv.Atoi(yearStr); parseErr == nil {
			year = parsed
		}
	}

	progress, err := h.ledgerSvc.SystemProgress(universityID, degree, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute system progress"})
		return
	}

	c.JSON(http.StatusOK, progress)
}
